package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx as database/sql driver
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sema-ai/commsgate/internal/audit"
	"github.com/sema-ai/commsgate/internal/auth"
	"github.com/sema-ai/commsgate/internal/dispatch"
	"github.com/sema-ai/commsgate/internal/handlers"
	"github.com/sema-ai/commsgate/internal/news"
	"github.com/sema-ai/commsgate/internal/provider"
	"github.com/sema-ai/commsgate/internal/ratelimit"
	"github.com/sema-ai/commsgate/internal/safety"
	"github.com/sema-ai/commsgate/internal/server"
	"github.com/sema-ai/commsgate/internal/translate"
)

func main() {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	logger := mustBuildLogger(envOrDefault("COMMSGATE_LOG_LEVEL", "info"))
	defer logger.Sync() //nolint:errcheck // best-effort flush

	// Config from env
	httpPort := envOrDefault("COMMSGATE_HTTP_PORT", "8080")
	safetyMode := envOrDefault("COMMSGATE_SAFETY_MODE", "advisory")
	strictSafety := envOrDefault("COMMSGATE_STRICT_SAFETY", "") == "true"
	safeThreshold := envOrDefaultFloat("COMMSGATE_SAFE_THRESHOLD", 0.6)
	clickhouseDSN := os.Getenv("CLICKHOUSE_DSN")
	postgresDSN := os.Getenv("POSTGRES_DSN")
	redisAddr := os.Getenv("REDIS_ADDR")
	cacheTTL := envOrDefaultInt("COMMSGATE_AUTH_CACHE_TTL_S", 30)

	logger.Info("starting commsgate server",
		zap.String("http_port", httpPort),
		zap.String("safety_mode", safetyMode),
		zap.Bool("strict_safety", strictSafety),
		zap.Float64("safe_threshold", safeThreshold),
	)

	// Provider client
	comms, err := provider.New(provider.Config{
		Username:         os.Getenv("AT_USERNAME"),
		APIKey:           os.Getenv("AT_API_KEY"),
		Sandbox:          envOrDefault("AT_SANDBOX", "") == "true",
		VoiceCallbackURL: os.Getenv("VOICE_CALLBACK_URL"),
	}, logger)
	if err != nil {
		logger.Fatal("provider client init failed", zap.Error(err))
	}

	deps := handlers.Deps{
		Comms:           comms,
		DataProductName: envOrDefault("AT_DATA_PRODUCT", "mobiledata"),
	}

	// Optional capabilities
	if key := os.Getenv("NEWS_API_KEY"); key != "" {
		searcher, err := news.NewClient(key, logger)
		if err != nil {
			logger.Warn("news client init failed, search_news disabled", zap.Error(err))
		} else {
			deps.News = searcher
			logger.Info("news search enabled")
		}
	} else {
		logger.Info("no NEWS_API_KEY set, search_news disabled")
	}

	if base := os.Getenv("TRANSLATE_BASE_URL"); base != "" {
		translator, err := translate.NewClient(translate.Config{
			BaseURL: base,
			APIKey:  os.Getenv("TRANSLATE_API_KEY"),
			Model:   envOrDefault("TRANSLATE_MODEL", "qwen2.5:0.5b"),
		}, logger)
		if err != nil {
			logger.Warn("translator init failed, translate_text disabled", zap.Error(err))
		} else {
			deps.Translator = translator
			logger.Info("translation enabled")
		}
	} else {
		logger.Info("no TRANSLATE_BASE_URL set, translate_text disabled")
	}

	registry := handlers.BuildRegistry(deps)
	engine := dispatch.NewEngine(registry, logger)

	// Audit storage — ClickHouse or LogWriter fallback
	var writer audit.EventWriter
	if clickhouseDSN != "" {
		chWriter, err := audit.NewClickHouseWriter(clickhouseDSN, logger)
		if err != nil {
			logger.Warn("clickhouse connection failed, falling back to log writer",
				zap.Error(err),
			)
			writer = audit.NewLogWriter(logger)
		} else {
			writer = chWriter
			logger.Info("clickhouse writer connected")
		}
	} else {
		writer = audit.NewLogWriter(logger)
		logger.Info("no CLICKHOUSE_DSN set, using log writer")
	}
	defer writer.Close()

	// Authentication — Postgres-backed when configured, static otherwise
	var authenticator auth.Authenticator
	if postgresDSN != "" {
		db, err := sql.Open("pgx", postgresDSN)
		if err != nil {
			logger.Fatal("failed to open postgres", zap.Error(err))
		}
		defer func() { _ = db.Close() }()
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(context.Background()); err != nil {
			logger.Fatal("failed to ping postgres", zap.Error(err))
		}
		authenticator = auth.NewPostgresAuthenticator(auth.PostgresAuthConfig{
			DB:       db,
			CacheTTL: time.Duration(cacheTTL) * time.Second,
			Logger:   logger,
		})
		logger.Info("postgres auth connected")
	} else {
		authenticator = auth.NewStaticAuthenticator(safetyMode, strictSafety)
		logger.Info("no POSTGRES_DSN set, using static key-format auth")
	}

	// Rate limiting for sensitive operations
	var limiter ratelimit.Limiter = ratelimit.NoopLimiter{}
	if redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis unreachable, rate limiting disabled", zap.Error(err))
		} else {
			limiter = ratelimit.NewRedisLimiter(rdb, ratelimit.Config{
				Limit:  envOrDefaultInt("COMMSGATE_RATE_LIMIT", 10),
				Window: time.Duration(envOrDefaultInt("COMMSGATE_RATE_WINDOW_S", 60)) * time.Second,
			}, logger)
			logger.Info("redis rate limiter connected", zap.String("addr", redisAddr))
		}
	} else {
		logger.Info("no REDIS_ADDR set, rate limiting disabled")
	}

	policy := safety.DefaultPolicy()
	policy.SafeThreshold = safeThreshold

	httpServer := &http.Server{
		Addr: ":" + httpPort,
		Handler: server.NewRouter(&server.Dependencies{
			Engine:  engine,
			Auth:    authenticator,
			Limiter: limiter,
			Writer:  writer,
			Policy:  policy,
			Logger:  logger,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	// Block until shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", zap.Error(err))
	}

	logger.Info("commsgate server stopped")
}

func mustBuildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	return logger
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func envOrDefaultFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
