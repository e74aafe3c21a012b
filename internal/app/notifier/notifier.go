// Package notifier собирает воркер почтовых уведомлений: потребляет события
// из RabbitMQ и рассылает письма об одобренном тарифе и окончании триала.
package notifier

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/voiceminder/voiceminder/internal/config"
	"github.com/voiceminder/voiceminder/internal/lib/rabbitmq"
	"github.com/voiceminder/voiceminder/internal/lib/smtp"
	senderservice "github.com/voiceminder/voiceminder/internal/services/sender"
)

// App воркер почтовых уведомлений.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

// New собирает зависимости воркера.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.AddressRabbit, cfg.RabbitConnection.MaxRetries, cfg.RetryDelay)
	if err != nil {
		return nil, err
	}

	queues := rabbitmq.GetNotificationQueues()
	ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange, queues)
	if err != nil {
		conn.Close()
		return nil, err
	}

	newTransport := smtp.NewTransport(cfg, logger)
	senderService := senderservice.NewSenderService(newTransport, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run запускает потребителей очередей и ждет отмены контекста.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumeMessages(ctx, a.ch, "notification.plan.approved", a.senderService.SendPlanApproved)
	if err != nil {
		a.logger.Error("failed to start plan approved consumer", slog.Any("err", err))
		return err
	}

	err = rabbitmq.ConsumeMessages(ctx, a.ch, "notification.trial.expired", a.senderService.SendTrialExpired)
	if err != nil {
		a.logger.Error("failed to start trial expired consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("notifier shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
