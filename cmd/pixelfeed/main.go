package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pixelfeed/internal/app"
	"pixelfeed/internal/config"
	"pixelfeed/internal/lib/handlers/slogpretty"
)

const (
	envLocal = "local"
	envProd  = "prod"
)

func main() {
	configPath := flag.String("config", "config/local.yaml", "path to config file")
	flag.Parse()

	cfg := config.LoadConfig(*configPath)
	logger := setupLogger(cfg.Env)
	logger.Info("starting pixelfeed server", slog.String("env", cfg.Env))

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	application := app.New(startCtx, logger, cfg)
	cancel()

	go application.HTTPSrv.MustRun()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	application.Stop(stopCtx)

	logger.Info("shutting down pixelfeed server")
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		panic("unknown environment: " + env)
	}
	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}
	h := opts.NewPrettyHandler(os.Stdout)

	return slog.New(h)
}
