package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/checkout_gateway/config"
	cachemem "github.com/Gunvolt24/checkout_gateway/internal/cache/memory"
	"github.com/Gunvolt24/checkout_gateway/internal/gateway/razorpay"
	"github.com/Gunvolt24/checkout_gateway/internal/gateway/shiprocket"
	"github.com/Gunvolt24/checkout_gateway/internal/kafka"
	"github.com/Gunvolt24/checkout_gateway/internal/ports"
	"github.com/Gunvolt24/checkout_gateway/internal/repo/postgres"
	rest "github.com/Gunvolt24/checkout_gateway/internal/transport/http"
	"github.com/Gunvolt24/checkout_gateway/internal/usecase"
	"github.com/Gunvolt24/checkout_gateway/pkg/logger"
	"github.com/Gunvolt24/checkout_gateway/pkg/metrics"
	"github.com/Gunvolt24/checkout_gateway/pkg/telemetry"
	"github.com/Gunvolt24/checkout_gateway/pkg/validate"
)

// Janitor — фоновая очистка истёкших записей кэша.
type Janitor interface {
	RunJanitor(ctx context.Context, interval time.Duration) error
}

// App — собранное приложение и его внешние интерфейсы (HTTP, consumer, janitor).
type App struct {
	Logger          ports.Logger          // логгер
	HTTPServer      *http.Server          // HTTP-сервер
	KafkaConsumer   ports.MessageConsumer // консьюмер событий каталога (nil — выключен)
	Janitor         Janitor               // очистка кэша (nil — выключена)
	JanitorInterval time.Duration         // период очистки
	gracefulTimeout time.Duration         // время ожидания завершения HTTP-сервера
}

// Cleanup — функция освобождения ресурсов.
type Cleanup func()

// applyGinMode — устанавливает режим Gin по строке;
// неизвестное значение → debug и предупреждение в лог.
func applyGinMode(ctx context.Context, mode string, log ports.Logger) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	case "", "debug":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.DebugMode)
		log.Warnf(ctx, "unknown GIN_MODE=%q, fallback to debug", mode)
	}
}

// Bootstrap — собирает зависимости и возвращает приложение, функцию очистки и ошибку.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, Cleanup, error) {
	// Логгер (dev/prod режим задаётся конфигурацией).
	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		return nil, func() {}, err
	}
	closeLogger := func() {
		if cErr := cleanupLogger(); cErr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cErr)
		}
	}

	// Регистрация метрик (Prometheus).
	metrics.MustRegister()

	// Пул подключений Postgres
	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		DSN:             cfg.Postgres.DSN,
		MaxConns:        cfg.Postgres.MaxConns,
		MaxConnLifetime: cfg.Postgres.MaxConnLifetime,
		MaxConnIdleTime: cfg.Postgres.MaxConnIdleTime,
	})
	if err != nil {
		closeLogger()
		return nil, func() {}, err
	}

	// Трейсинг OTEL (при включённой конфигурации); по умолчанию — no-op.
	shutdownTrace := func(context.Context) error { return nil }
	if cfg.Tracing.Enabled {
		setup, tErr := telemetry.SetupTracing(ctx, telemetry.TracingOptions{
			ServiceName: cfg.Tracing.ServiceName,
			Endpoint:    cfg.Tracing.Endpoint,
			SampleRatio: cfg.Tracing.SampleRatio,
			Environment: cfg.Tracing.Environment,
		})
		if tErr != nil {
			logg.Warnf(ctx, "failed to setup tracing: %v", tErr)
		} else {
			logg.Infof(ctx, "otel tracing enabled service=%s endpoint=%s sample=%.2f",
				cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
			shutdownTrace = setup
		}
	}

	// Кэш.
	store, err := cachemem.NewStore(cfg.Cache.MaxSize, cfg.Cache.DefaultTTL, cachemem.WithLogger(logg))
	if err != nil {
		pool.Close()
		closeLogger()
		return nil, func() {}, err
	}

	// Каталог.
	productRepo := postgres.NewProductRepository(pool)
	productValidator := validate.NewProductValidator()
	productService := usecase.NewProductService(productRepo, store, logg, productValidator, cfg.Cache.DefaultTTL)

	// Платёжный и логистический шлюзы.
	payments := razorpay.NewClient(
		cfg.Razorpay.BaseURL, cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret,
		&http.Client{Timeout: cfg.Razorpay.Timeout},
	)
	switch {
	case cfg.Razorpay.KeySecret == "":
		logg.Errorf(ctx, "razorpay key secret is empty: every payment verification will be rejected")
	case cfg.Razorpay.KeyID == "":
		logg.Errorf(ctx, "razorpay key id is empty: payment orders will be rejected by gateway")
	}
	shipping := shiprocket.NewClient(
		cfg.Shiprocket.BaseURL, cfg.Shiprocket.Email, cfg.Shiprocket.Password, store,
		&http.Client{Timeout: cfg.Shiprocket.Timeout},
	)

	// Заказы покупателей: цены из каталога, онлайн-оплата через платёжный шлюз.
	orderRepo := postgres.NewOrderRepository(pool)
	orderService := usecase.NewOrderService(orderRepo, productService, payments,
		validate.NewOrderValidator(), store, logg, cfg.Cache.DefaultTTL)

	checkoutService := usecase.NewCheckoutService(payments, shipping, store, logg, cfg.Cache.TrackingTTL,
		usecase.WithPaymentRecorder(orderService))

	// Прогрев кэша
	if n := cfg.Cache.WarmUpN; n > 0 {
		if err := productService.WarmUpCache(ctx, n); err != nil {
			logg.Warnf(ctx, "warm-up cache failed: %v", err)
		}
	}

	// Режим Gin.
	applyGinMode(ctx, cfg.HTTP.GinMode, logg)

	// Имя сервиса для otelgin (только при включённом трейсинге).
	otelServiceName := ""
	if cfg.Tracing.Enabled {
		otelServiceName = cfg.Tracing.ServiceName
	}

	// Роутер и HTTP-сервер.
	httpHandler := rest.NewHandler(productService, checkoutService, orderService, store, logg, cfg.HTTP.HandlerTimeout)
	router := rest.NewRouter(httpHandler, rest.RouterOptions{
		OtelServiceName:      otelServiceName,
		AdminToken:           cfg.Admin.Token,
		RateLimitPerMinute:   cfg.RateLimit.PerMinute,
		RateLimitBurst:       cfg.RateLimit.Burst,
		ResponseTTL:          cfg.Cache.ResponseTTL,
		ResponseMaxBodyBytes: cfg.Cache.MaxBodyBytes,
		MaxRequestBodyBytes:  cfg.HTTP.MaxBodyBytes,
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	// Конфигурация и создание консьюмера событий каталога.
	var consumer ports.MessageConsumer
	if cfg.Kafka.Enabled {
		kafkaCfg := kafka.ConsumerConfig{
			Brokers:        cfg.Kafka.Brokers,
			GroupID:        cfg.Kafka.GroupID,
			Topic:          cfg.Kafka.Topic,
			StartOffset:    cfg.Kafka.StartOffset,
			ProcessTimeout: cfg.Kafka.ProcessTimeout,
			RetryInitial:   cfg.Kafka.RetryInitial,
			RetryMax:       cfg.Kafka.RetryMax,
		}
		consumer = kafka.NewConsumer(&kafkaCfg, productService, logg)
	} else {
		logg.Infof(ctx, "kafka consumer disabled")
	}

	app := &App{
		Logger:          logg,
		HTTPServer:      httpSrv,
		KafkaConsumer:   consumer,
		Janitor:         store,
		JanitorInterval: cfg.Cache.CleanupInterval,
		gracefulTimeout: cfg.HTTP.GracefulTimeout,
	}

	// Очистка ресурсов (в обратном порядке).
	cleanup := func() {
		if terr := shutdownTrace(context.Background()); terr != nil {
			logg.Warnf(ctx, "shutdown tracing: %v", terr)
		}
		if consumer != nil {
			if err := consumer.Close(); err != nil {
				logg.Warnf(ctx, "kafka consumer close error: %v", err)
			}
		}

		pool.Close()
		closeLogger()
	}

	return app, cleanup, nil
}

// Run — запускает HTTP-сервер, консьюмера и очистку кэша; ждёт отмены контекста или ошибки и останавливает их.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 3)

	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()

	// Запуск консьюмера.
	if a.KafkaConsumer != nil {
		go func() {
			a.Logger.Infof(ctx, "kafka consumer starting")
			if err := a.KafkaConsumer.Run(bgCtx); err != nil {
				errCh <- err
			}
		}()
	}

	// Запуск очистки кэша.
	if a.Janitor != nil && a.JanitorInterval > 0 {
		go func() {
			a.Logger.Infof(ctx, "cache janitor starting (interval=%s)", a.JanitorInterval)
			if err := a.Janitor.RunJanitor(bgCtx, a.JanitorInterval); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- err
			}
		}()
	}

	// Запуск HTTP-сервера.
	go func() {
		a.Logger.Infof(ctx, "http server starting (addr=%s)", a.HTTPServer.Addr)
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Ожидание сигнала остановки или фоновой ошибки.
	select {
	case <-ctx.Done():
		a.Logger.Infof(ctx, "shutdown requested, starting graceful shutdown")
	case err := <-errCh:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			a.Logger.Infof(ctx, "background component stopped: %v", err)
		} else {
			a.Logger.Warnf(ctx, "background error: %v", err)
		}
	}
	stopBackground()

	gt := a.gracefulTimeout
	if gt <= 0 {
		gt = 5 * time.Second
	}

	// Корректная остановка HTTP-сервера.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gt)
	defer cancel()

	if err := a.HTTPServer.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warnf(ctx, "http server shutdown failed: %v", err)
	} else {
		a.Logger.Infof(ctx, "http server stopped gracefully")
	}

	// Остановка Kafka-консьюмера
	if a.KafkaConsumer != nil {
		if err := a.KafkaConsumer.Close(); err != nil {
			a.Logger.Warnf(ctx, "kafka consumer close error: %v", err)
		}
	}

	a.Logger.Infof(ctx, "service stopped")
	return nil
}
