package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/voiceminder/voiceminder/internal/models"
)

const transactionColumns = `uuid, user_uid, user_email, plan, amount,
	transaction_id, screenshot_url, status, created_at`

func scanTransaction(row interface{ Scan(...any) error }) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.UUID, &t.UserUID, &t.UserEmail, &t.Plan, &t.Amount,
		&t.TransactionID, &t.ScreenshotURL, &t.Status, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTransaction вставляет новую запись о платеже со статусом pending.
func (s *Storage) CreateTransaction(ctx context.Context, t models.Transaction) error {
	const op = "storage.CreateTransaction"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO transactions (uuid, user_uid, user_email, plan, amount,
			      transaction_id, screenshot_url, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.DB.ExecContext(ctx, query,
		t.UUID, t.UserUID, t.UserEmail, t.Plan, t.Amount,
		t.TransactionID, t.ScreenshotURL, t.Status)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ReadTransaction возвращает платёж по идентификатору.
func (s *Storage) ReadTransaction(ctx context.Context, uuid string) (*models.Transaction, error) {
	const op = "storage.ReadTransaction"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE uuid = $1`
	t, err := scanTransaction(s.DB.QueryRowContext(ctx, query, uuid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// ListTransactions возвращает все платежи с пагинацией (админ-панель).
func (s *Storage) ListTransactions(ctx context.Context, limit, offset int) ([]*models.Transaction, error) {
	const op = "storage.ListTransactions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions
			  ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListUserTransactions возвращает платежи одного пользователя.
func (s *Storage) ListUserTransactions(ctx context.Context, userUID string) ([]*models.Transaction, error) {
	const op = "storage.ListUserTransactions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions
			  WHERE user_uid = $1 ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateTransactionStatus переводит платёж из pending в конечный статус.
// Условие status = 'pending' делает переход односторонним: повторное
// решение по уже рассмотренному платежу не изменит ни одной строки.
func (s *Storage) UpdateTransactionStatus(ctx context.Context, uuid string, status models.TransactionStatus) (int, error) {
	const op = "storage.UpdateTransactionStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE transactions SET status = $1 WHERE uuid = $2 AND status = 'pending'`
	result, err := s.DB.ExecContext(ctx, query, status, uuid)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveTransactions массово удаляет платежи по списку идентификаторов (админ).
func (s *Storage) RemoveTransactions(ctx context.Context, uuids []string) (int, error) {
	const op = "storage.RemoveTransactions"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM transactions WHERE uuid = ANY($1)`
	result, err := s.DB.ExecContext(ctx, query, uuids)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
