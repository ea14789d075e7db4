package fitcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/magabrotheeeer/fitcheck/internal/cache"
	"github.com/magabrotheeeer/fitcheck/internal/config"
	"github.com/magabrotheeeer/fitcheck/internal/http/handlers/health"
	"github.com/magabrotheeeer/fitcheck/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/fitcheck/internal/lib/sl"
	"github.com/magabrotheeeer/fitcheck/internal/migrations"
	"github.com/magabrotheeeer/fitcheck/internal/observability/metrics"
	"github.com/magabrotheeeer/fitcheck/internal/observability/reporting"
	"github.com/magabrotheeeer/fitcheck/internal/observability/tracing"
	"github.com/magabrotheeeer/fitcheck/internal/services/checkin"
	"github.com/magabrotheeeer/fitcheck/internal/services/events"
	"github.com/magabrotheeeer/fitcheck/internal/storage/cached"
	"github.com/magabrotheeeer/fitcheck/internal/storage/memory"
	"github.com/magabrotheeeer/fitcheck/internal/storage/postgresql"
)

const shutdownTimeout = 15 * time.Second

// App HTTP-сервер FitCheck вместе с ресурсами, которые нужно закрыть при остановке.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	closers []func(context.Context) error
}

// New создаёт приложение по конфигу: хранилище, кеш, публикацию событий,
// трассировку, метрики и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (app *App, err error) {
	const op = "app.fitcheck.New"

	a := &App{logger: logger}
	defer func() {
		if err != nil {
			a.close(context.Background())
		}
	}()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.closers = append(a.closers, shutdownTracing)

	repo, pinger, err := a.openStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if cfg.AddressRedis != "" {
		c, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.addCloser(c)
		repo = cached.New(repo, c, cfg.TTL, logger)
		logger.Info("redis lookup cache enabled", slog.String("address", cfg.AddressRedis))
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	opts := []checkin.Option{
		checkin.WithTracer(tracing.New(nil)),
		checkin.WithErrorReporter(reporting.New(logger)),
		checkin.WithRecorder(m),
	}

	if cfg.RabbitMQ.URL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RetryDelay)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.addCloser(conn)
		ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange, rabbitmq.CheckInQueues())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		opts = append(opts, checkin.WithEventPublisher(events.NewPublisher(ch, cfg.Exchange)))
		logger.Info("check-in events enabled", slog.String("exchange", cfg.Exchange))
	}

	service := checkin.NewService(repo, checkin.NewDelayVerifier(cfg.LocationVerifyDelay), logger, opts...)

	router := chi.NewRouter()
	if err := RegisterRoutes(router, logger, repo, service, m, reg, pinger); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return a, nil
}

// openStorage выбирает хранилище по драйверу. Для postgres применяет миграции.
func (a *App) openStorage(ctx context.Context, cfg *config.Config) (cached.Repository, health.Pinger, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := postgresql.New(ctx, cfg.ConnectionString)
		if err != nil {
			return nil, nil, err
		}
		a.addCloser(db)
		if err := migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
			return nil, nil, err
		}
		a.logger.Info("using postgres storage")
		return db, db.DB, nil
	default:
		a.logger.Info("using in-memory storage")
		return memory.NewSeeded(), nil, nil
	}
}

func (a *App) addCloser(c io.Closer) {
	a.closers = append(a.closers, func(context.Context) error { return c.Close() })
}

// close освобождает ресурсы в обратном порядке.
func (a *App) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Warn("failed to release resource", sl.Err(err))
		}
	}
	a.closers = nil
}

// Handler возвращает корневой HTTP-обработчик.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run запускает сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
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
		a.close(context.Background())
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close(timeoutCtx)
		return err
	}
}
