// Package voiceminder собирает основное приложение: HTTP API, websocket-хаб,
// опрос расписания и звуковые циклы напоминаний.
package voiceminder

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/voiceminder/voiceminder/internal/cache"
	"github.com/voiceminder/voiceminder/internal/config"
	"github.com/voiceminder/voiceminder/internal/lib/jwt"
	"github.com/voiceminder/voiceminder/internal/lib/rabbitmq"
	"github.com/voiceminder/voiceminder/internal/lib/sl"
	"github.com/voiceminder/voiceminder/internal/migrations"
	authservice "github.com/voiceminder/voiceminder/internal/services/auth"
	chatservice "github.com/voiceminder/voiceminder/internal/services/chat"
	paymentservice "github.com/voiceminder/voiceminder/internal/services/payment"
	"github.com/voiceminder/voiceminder/internal/services/playback"
	"github.com/voiceminder/voiceminder/internal/services/poller"
	reminderservice "github.com/voiceminder/voiceminder/internal/services/reminder"
	sessionservice "github.com/voiceminder/voiceminder/internal/services/session"
	"github.com/voiceminder/voiceminder/internal/storage"
	"github.com/voiceminder/voiceminder/internal/storage/objectstore"
	"github.com/voiceminder/voiceminder/internal/tts"
	"github.com/voiceminder/voiceminder/internal/ws"
)

// App основное приложение.
type App struct {
	server *http.Server
	poller *poller.Service
	logger *slog.Logger
	db     *storage.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New собирает все зависимости основного приложения.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}
	if err = storage.CheckDatabaseReady(db); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	// RabbitMQ необязателен: без него события нотификатора просто не публикуются.
	var conn *amqp.Connection
	var ch *amqp.Channel
	conn, err = rabbitmq.Connect(cfg.AddressRabbit, cfg.RabbitConnection.MaxRetries, cfg.RetryDelay)
	if err != nil {
		logger.Warn("rabbitmq unavailable, notifications disabled", sl.Err(err))
	} else {
		ch, err = rabbitmq.SetupChannel(conn, cfg.Exchange, rabbitmq.GetNotificationQueues())
		if err != nil {
			conn.Close()
			return nil, err
		}
	}

	store := objectstore.New(cfg.ObjectStore)
	maker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	hub := ws.NewHub(logger)

	var synth playback.Synthesizer
	if client := tts.New(cfg.TTS); client != nil {
		synth = client
	} else {
		logger.Warn("tts api key is empty, falling back to native speech")
	}
	player := playback.NewManager(synth, hub, logger)

	sessionService := sessionservice.New(db, db, hub, ch, cfg.Exchange, cfg.OwnerEmail, logger)
	authService := authservice.New(db, maker, cfg.OwnerEmail, logger)
	reminderService := reminderservice.New(db, sessionService, player, cacheRedis, logger)
	paymentService := paymentservice.New(db, db, store, ch, cfg.Exchange, logger)
	chatService := chatservice.New(db, store, logger)
	pollerService := poller.New(db, sessionService, player, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, maker, hub,
		authService, sessionService, reminderService, paymentService, chatService, db)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		poller: pollerService,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP-сервер и цикл опроса расписания, останавливая
// обоих по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	go a.poller.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.ch != nil {
			a.ch.Close()
		}
		if a.conn != nil {
			a.conn.Close()
		}
		a.db.DB.Close()
		return err
	}
}
