// Package objectstore реализует загрузку бинарных вложений (скриншоты оплат,
// файлы чата) в S3-совместимое хранилище. Вместо встраивания base64 в строки
// таблиц приложение хранит публичные ссылки на загруженные объекты.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/voiceminder/voiceminder/internal/config"
)

// Store клиент S3-совместимого хранилища объектов.
type Store struct {
	cli       *s3.Client
	bucket    string
	publicURL string
}

// New создает клиента хранилища по настройкам из конфига.
func New(cfg config.ObjectStore) *Store {
	cred := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	cli := s3.New(s3.Options{
		Credentials:  cred,
		BaseEndpoint: aws.String(cfg.Endpoint),
		UsePathStyle: true,
		Region:       cfg.Region,
	})
	return &Store{
		cli:       cli,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}
}

// Upload загружает объект и возвращает его публичную ссылку.
func (s *Store) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	const op = "objectstore.Upload"

	_, err := s.cli.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return s.publicURL + "/" + key, nil
}

// Remove удаляет объект по ключу.
func (s *Store) Remove(ctx context.Context, key string) error {
	const op = "objectstore.Remove"

	_, err := s.cli.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
