package main

import (
	"context"
	"net/http"
	"time"

	"github.com/md-rashed-zaman/carebook/libs/auth"
	"github.com/md-rashed-zaman/carebook/libs/config"
	"github.com/md-rashed-zaman/carebook/libs/db"
	"github.com/md-rashed-zaman/carebook/libs/httpx"
	"github.com/md-rashed-zaman/carebook/libs/kafkax"
	otelx "github.com/md-rashed-zaman/carebook/libs/otel"
	"github.com/md-rashed-zaman/carebook/libs/runtime"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/accounts"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/appointment"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/handlers"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/notify"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/outbox"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/reminders"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/storage"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/validation"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}
	service := config.String("SERVICE_NAME", "booking-service")
	port, err := config.Port("PORT", "8083")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	jwtSecret, err := config.RequiredString("JWT_SECRET")
	if err != nil {
		panic(err)
	}
	clinic, err := time.LoadLocation(config.String("CLINIC_TZ", "UTC"))
	if err != nil {
		logger.Error("invalid CLINIC_TZ", "err", err)
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	if config.Bool("AUTO_MIGRATE", true) {
		applied, err := storage.NewMigrator(pool).Up(ctx)
		if err != nil {
			logger.Error("migrations failed", "err", err)
			panic(err)
		}
		logger.Info("migrations applied", "count", applied)
	}

	outboxRepo := outbox.NewRepository(pool)
	store := storage.NewStore(pool, outboxRepo)
	v := validation.New()
	issuer, err := auth.NewIssuer(jwtSecret, config.String("JWT_ISSUER", "carebook"), config.Duration("JWT_TTL", 24*time.Hour))
	if err != nil {
		panic(err)
	}

	appointments := appointment.NewService(store,
		appointment.WithLocation(clinic),
		appointment.WithValidator(v),
	)

	brokers := config.String("KAFKA_BROKERS", "")
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   brokers,
		PollEvery: config.Duration("OUTBOX_POLL_INTERVAL", 2*time.Second),
		BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
	})
	go outboxPublisher.Run(ctx)

	if config.Bool("REMINDERS_ENABLED", true) {
		job, err := reminders.New(appointments, logger, reminders.Config{
			Spec:     config.String("REMINDER_SCHEDULE", "@every 15m"),
			Timeout:  config.Duration("REMINDER_TIMEOUT", time.Minute),
			Location: clinic,
		})
		if err != nil {
			logger.Error("reminder job init failed", "err", err)
			panic(err)
		}
		go job.Run(ctx)
	}

	if err := startGrpcServer(ctx, logger, appointments); err != nil {
		logger.Error("grpc server init failed", "err", err)
		panic(err)
	}

	var (
		rateLimitMW httpx.Middleware
		redisReady  runtime.ReadyCheck
	)
	limitPerMinute := config.Int("RATE_LIMIT_PER_MINUTE", 120)
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
		})
		defer func() { _ = rdb.Close() }()

		rl := httpx.NewRedisRateLimiter(rdb, limitPerMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "carebook:rl"))
		rateLimitMW = rl.Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true))
		redisReady = runtime.ReadyCheck{Name: "redis", Check: httpx.RedisReadyCheck(rdb)}
		logger.Info("rate limiting enabled (redis)", "per_minute", limitPerMinute, "redis_addr", addr)
	} else {
		rateLimitMW = httpx.NewRateLimiter(limitPerMinute, time.Minute).Middleware()
		logger.Info("rate limiting enabled (in-memory)", "per_minute", limitPerMinute)
	}

	var kafkaReady runtime.ReadyCheck
	if brokers != "" {
		kafkaReady = runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)}
	}
	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		kafkaReady,
		redisReady,
	)
	handlers.New(handlers.Deps{
		Appointments: appointments,
		Accounts:     accounts.NewService(store, issuer, v),
		Templates:    availability.NewService(store, v),
		Inbox:        notify.NewInbox(store),
		Verifier:     issuer,
		Logger:       logger,
	}).Register(mux)

	httpHandler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins:   config.List("CORS_ALLOWED_ORIGINS", ""),
			AllowedMethods:   config.List("CORS_ALLOWED_METHODS", "GET,POST,PUT,OPTIONS"),
			AllowedHeaders:   config.List("CORS_ALLOWED_HEADERS", "Authorization,Content-Type,X-Request-Id"),
			AllowCredentials: config.Bool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           config.Duration("CORS_MAX_AGE", 10*time.Minute),
		}),
		httpx.WithRequestID,
		httpx.WithRecover(logger),
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(int64(config.Int("REQUEST_BODY_LIMIT_BYTES", 1<<20))),
		httpx.WithTimeout(config.Duration("REQUEST_TIMEOUT", 10*time.Second)),
		rateLimitMW,
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "booking")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr, "clinic_tz", clinic.String())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
