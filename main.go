package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/example/arithmetic-dispatcher/config"
	"github.com/example/arithmetic-dispatcher/middleware/ratelimit"
	"github.com/example/arithmetic-dispatcher/modules/api"
	"github.com/example/arithmetic-dispatcher/modules/calculator"
	"github.com/example/arithmetic-dispatcher/modules/stats"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

func main() {
	log.Println("=== Arithmetic Dispatcher ===")
	log.Println("Calculator, stats and REST API modules on an embedded NATS server")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel := mono.WithLogLevel(mono.LogLevelInfo)
	slogLevel := slog.LevelInfo
	if cfg.LogLevel == config.LogLevelError {
		logLevel = mono.WithLogLevel(mono.LogLevelError)
		slogLevel = slog.LevelError
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		logLevel,
		mono.WithLogFormat(mono.LogFormatText),
		mono.WithNATSPort(cfg.NATSPort),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	logger := app.Logger()

	// Middleware must be registered before the modules it wraps.
	if cfg.RateLimit.Enabled {
		limiter, err := ratelimit.New(
			ratelimit.WithRedis(cfg.RateLimit.RedisAddr, cfg.RateLimit.RedisPassword, cfg.RateLimit.RedisDB),
			ratelimit.WithDefaultLimit(cfg.RateLimit.Limit, cfg.RateLimit.Window),
			// A batch counts once but does up to MaxBatchSize evaluations.
			ratelimit.WithServiceLimit(calculator.ServiceComputeBatch, max(1, cfg.RateLimit.Limit/10), cfg.RateLimit.Window),
			ratelimit.WithExemptService(calculator.ServiceOperations, stats.ServiceGetStats),
			ratelimit.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel}))),
		)
		if err != nil {
			log.Fatalf("Failed to create rate limiting middleware: %v", err)
		}
		if err := app.Register(limiter); err != nil {
			log.Fatalf("Failed to register rate limiting middleware: %v", err)
		}
	}

	calculatorModule := calculator.NewModule(logger,
		calculator.WithWorkers(cfg.BatchWorkers),
		calculator.WithMaxBatchSize(cfg.MaxBatchSize),
	)
	if err := app.Register(calculatorModule); err != nil {
		log.Fatalf("Failed to register calculator module: %v", err)
	}
	if err := app.Register(stats.NewModule(logger)); err != nil {
		log.Fatalf("Failed to register stats module: %v", err)
	}
	if err := app.Register(api.NewModule(cfg.HTTPPort, cfg.MaxBatchSize, logger)); err != nil {
		log.Fatalf("Failed to register api module: %v", err)
	}

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg *config.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("HTTP API on :%d", cfg.HTTPPort)
	log.Println("  GET  /health")
	log.Println("  GET  /api/v1/operations")
	log.Println("  POST /api/v1/compute          {\"a\":10,\"b\":5,\"operation\":\"addition\"}")
	log.Println("  GET  /api/v1/compute?a=10&b=5&operation=suma")
	log.Println("  POST /api/v1/compute/batch    {\"items\":[...]}")
	log.Println("  GET  /api/v1/stats")
	log.Println("")
	log.Printf("NATS on :%d", cfg.NATSPort)
	log.Println("  services.calculator.compute")
	log.Println("  services.calculator.compute-batch")
	log.Println("  services.calculator.operations")
	log.Println("  services.stats.get-stats")
	if cfg.RateLimit.Enabled {
		log.Printf("Rate limit: %d requests per %s per client (Redis %s)",
			cfg.RateLimit.Limit, cfg.RateLimit.Window, cfg.RateLimit.RedisAddr)
	}
	log.Println("")
	log.Printf("CLI: arithctl compute 10 5 addition --remote nats://localhost:%d", cfg.NATSPort)
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
