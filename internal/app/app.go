// Пакет app собирает витрину из компонентов: хранилище, ledger, сервисы,
// HTTP-транспорт, фоновые воркеры и наблюдаемость.
package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/ARADHYA200/glow-shop-keeper/internal/domain"
	healthcheck "github.com/ARADHYA200/glow-shop-keeper/internal/health"
	"github.com/ARADHYA200/glow-shop-keeper/internal/messaging/kafka"
	"github.com/ARADHYA200/glow-shop-keeper/internal/service/cart"
	"github.com/ARADHYA200/glow-shop-keeper/internal/service/checkout"
	"github.com/ARADHYA200/glow-shop-keeper/internal/service/outbox"
	transport "github.com/ARADHYA200/glow-shop-keeper/internal/transport/http"
	"github.com/ARADHYA200/glow-shop-keeper/internal/version"
)

// Config описывает настройки запуска витрины.
type Config struct {
	HTTPAddr    string
	MetricsAddr string

	// PostgresDSN пустой — витрина работает на in-memory хранилище.
	PostgresDSN string
	// KafkaBrokers пустой — события публикуются только в outbox.
	KafkaBrokers string

	SweepInterval time.Duration
	SweepGrace    time.Duration
	OutboxPoll    time.Duration
}

// DefaultConfig возвращает базовые настройки для локального запуска.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:      ":8080",
		MetricsAddr:   ":9090",
		SweepInterval: time.Minute,
		SweepGrace:    15 * time.Minute,
		OutboxPoll:    time.Second,
	}
}

// ConfigFromEnv читает настройки из переменных окружения SHOP_*.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("SHOP_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("SHOP_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	cfg.PostgresDSN = os.Getenv("SHOP_PG_DSN")
	cfg.KafkaBrokers = os.Getenv("KAFKA_BROKERS")
	cfg.SweepInterval = envDuration("SHOP_SWEEP_INTERVAL", cfg.SweepInterval)
	cfg.SweepGrace = envDuration("SHOP_SWEEP_GRACE", cfg.SweepGrace)
	cfg.OutboxPoll = envDuration("SHOP_OUTBOX_POLL", cfg.OutboxPoll)
	return cfg
}

// envDuration парсит значение как time.Duration или целые секунды.
func envDuration(name string, fallback time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	log.WithFields(log.Fields{"var": name, "value": raw}).Warn("invalid duration, using default")
	return fallback
}

// Run запускает витрину и блокируется до отмены контекста или падения
// HTTP-сервера.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := buildDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close(logger)

	kafkaProducer := initKafkaProducer(cfg.KafkaBrokers, logger)
	defer closeKafka(kafkaProducer, logger)

	workflowDeps := checkout.Deps{
		Carts:      deps.Carts,
		Products:   deps.Products,
		Orders:     deps.Orders,
		Profiles:   deps.Profiles,
		Placements: deps.Placements,
		Outbox:     deps.Outbox,
		Timeline:   deps.Timeline,
		Ledger:     deps.Ledger,
	}
	var workflow *checkout.Workflow
	if kafkaProducer != nil {
		workflow = checkout.NewWorkflowWithKafka(workflowDeps, kafkaProducer, logger.WithField("component", "checkout"))
	} else {
		workflow = checkout.NewWorkflow(workflowDeps, logger.WithField("component", "checkout"))
	}

	cartSvc := cart.NewService(deps.Products, deps.Carts, logger.WithField("component", "cart"))

	// Фоновые процессы: sweeper брошенных оформлений и публикация outbox.
	sweeper := checkout.NewSweeper(workflow, cfg.SweepInterval, cfg.SweepGrace, logger.WithField("component", "sweeper"))
	go sweeper.Run(ctx)

	var publisher domain.OutboxPublisher
	if kafkaProducer != nil {
		publisher = kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicOrderEvents)
	}
	outboxWorker := outbox.NewWorker(deps.Outbox, publisher,
		outbox.WithLogger(logger.WithField("component", "outbox-worker")),
		outbox.WithPollInterval(cfg.OutboxPoll),
	)
	go outboxWorker.Run(ctx)

	healthHandler := healthcheck.NewHandler(version.String())
	if deps.Store != nil {
		healthHandler.Register("postgres", healthcheck.NewFuncChecker("postgres", func() error {
			return deps.Store.Ping(context.Background())
		}))
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)
	defer shutdownHTTP(metricsSrv, logger)

	handler := transport.NewHandler(cartSvc, workflow, deps.Products, deps.Profiles, logger.WithField("component", "http"))
	apiSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP сервер слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(apiSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer поднимает служебный HTTP: /metrics и health-пробы.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
