package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/loan-schedule/internal/config"
	"github.com/iwvelando/loan-schedule/internal/exchange"
	"github.com/iwvelando/loan-schedule/internal/logging"
	"github.com/iwvelando/loan-schedule/internal/server"
	"github.com/iwvelando/loan-schedule/internal/state"
	"github.com/iwvelando/loan-schedule/internal/tracing"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	configLocation := flag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	appConfigLocation := flag.String("app-config", constants.DefaultConfigFile, "path to application configuration file (exchange settings)")
	envFile := flag.String("env-file", ".env", "optional dotenv file loaded before configuration")
	address := flag.String("address", "", "listen address override")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	if err := config.LoadEnvFiles(*envFile); err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load env file\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}

	serverConf, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}
	if *address != "" {
		serverConf.Address = *address
	}

	logger, err := logging.New(serverConf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	appConf, err := loadAppConfiguration(*appConfigLocation)
	if err != nil {
		logger.Fatal("failed to load application configuration",
			zap.String("op", "main"),
			zap.String("path", *appConfigLocation),
			zap.Error(err),
		)
	}
	for _, warning := range appConf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	tracer, shutdownTracing, err := tracing.Init(context.Background(),
		serverConf.Tracing.ServiceName, version, serverConf.Tracing.Endpoint)
	if err != nil {
		logger.Fatal("failed to initialize tracing",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	rates, closeCache := exchange.NewServiceFromConfig(logger, appConf.Exchange)

	var limiter *server.RateLimiter
	if serverConf.RateLimit.Requests > 0 {
		limiter = server.NewRateLimiter(serverConf.RateLimit.Requests, serverConf.RateLimit.Window)
		defer limiter.Stop()
	}

	handler := server.NewHandler(logger, server.Dependencies{
		State:        state.New(),
		Rates:        rates,
		Tracer:       tracer,
		Limiter:      limiter,
		Strict:       serverConf.Strict || appConf.Strict,
		MaxBodySize:  serverConf.BodySizeBytes(),
		Version:      version,
		BaseCurrency: appConf.Exchange.BaseCurrency,
	})

	srv := &http.Server{
		Addr:         serverConf.Address,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("loan schedule server listening",
			zap.String("op", "main"),
			zap.String("address", serverConf.Address),
			zap.String("version", version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Error("server failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	case sig := <-quit:
		logger.Info("shutting down server",
			zap.String("op", "main"),
			zap.String("signal", sig.String()),
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("error during server shutdown",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("failed to flush traces",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	if err := closeCache(); err != nil {
		logger.Warn("failed to close exchange rate cache",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	logger.Info("server exited", zap.String("op", "main"))
}

func loadAppConfiguration(path string) (*config.Configuration, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return config.Defaults()
	}
	return config.LoadConfiguration(path)
}
