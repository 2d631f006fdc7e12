package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"carpool/internal/carpool-service/adapters/driver/myhttp"
	"carpool/internal/config"
	"carpool/internal/mylogger"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	mylog := mylogger.New("carpool-service", cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := myhttp.NewServer(ctx, mylog, cfg)
	if err := srv.Run(); err != nil {
		mylog.Error("server stopped with error", err)
		os.Exit(1)
	}

	mylog.Info("server stopped")
}
