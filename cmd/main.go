package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/cart-store/internal/config"
	h "github.com/fjod/go_cart/cart-store/internal/http"
	"github.com/fjod/go_cart/cart-store/internal/logger"
	"github.com/fjod/go_cart/cart-store/internal/poller"
	s "github.com/fjod/go_cart/cart-store/internal/service"
	"github.com/fjod/go_cart/cart-store/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	blobs, err := storage.Open(connectCtx, cfg.Storage)
	cancel()
	if err != nil {
		lg.Fatal("Failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer blobs.Close()
	lg.Info("Storage ready", zap.String("driver", cfg.Storage.Driver))

	checkout := s.NewCheckoutInfoService(blobs, lg)
	carts := s.NewCartService(blobs, checkout, lg)

	closedDone := make(chan struct{})
	close(closedDone)
	var pollerDone <-chan struct{} = closedDone
	if cfg.Kafka.Enabled() {
		p := poller.NewPoller(carts, lg, cfg.Kafka.Topic, cfg.Kafka.GroupID, cfg.Kafka.Brokers...)
		defer p.Close()
		pollerDone = p.Start(ctx)
		lg.Info("Listening for placed orders", zap.Strings("brokers", cfg.Kafka.Brokers))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      h.NewRouter(carts, checkout, cfg.RequestTimeout, lg),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lg.Info("Cart store listening", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	lg.Info("Shutting down cart store...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("server forced to shutdown", zap.Error(err))
	}

	// storage and the reader are closed by the deferred calls, after the poller is done with them
	select {
	case <-pollerDone:
	case <-shutdownCtx.Done():
		lg.Warn("order poller did not stop before shutdown timeout")
	}
	lg.Info("Cart store stopped")
}
