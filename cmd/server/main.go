package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flexihomes/formrelay/internal/api"
	"github.com/flexihomes/formrelay/internal/config"
	"github.com/flexihomes/formrelay/internal/pkg/logger"
	"github.com/flexihomes/formrelay/internal/relay"
)

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		logger.Error("failed to load config", "err", err.Error())
		os.Exit(1)
	}
	if cfg.Server.Diagnostic {
		logger.SetLevel(logger.DEBUG)
	}

	// Missing live-mode configuration is fatal here, never per-request.
	if err := cfg.SMTP.Validate(); err != nil {
		logger.Error("invalid relay configuration", "err", err.Error())
		os.Exit(1)
	}

	transporter, err := relay.ResolveTransporter(cfg.SMTP)
	if err != nil {
		logger.Error("failed to resolve transporter", "err", err.Error())
		os.Exit(1)
	}

	composer, err := relay.NewComposer()
	if err != nil {
		logger.Error("failed to build composer", "err", err.Error())
		os.Exit(1)
	}

	handlers := api.NewHandlers(transporter, composer, relay.NewDispatcher(), cfg)
	server := api.NewServer(handlers, cfg.CORS.AllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	logger.Info("form relay server starting",
		"addr", addr,
		"mode", cfg.SMTP.Mode,
		"relay_host", transporter.Host,
		"diagnostic", cfg.Server.Diagnostic,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe(addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("server exited", "err", err.Error())
		os.Exit(1)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", "err", err.Error())
		}
	}
}
