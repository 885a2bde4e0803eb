package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/botc-tools/overlay-ebs/internal/channel"
	"github.com/botc-tools/overlay-ebs/internal/config"
	"github.com/botc-tools/overlay-ebs/internal/httpapi"
	"github.com/botc-tools/overlay-ebs/internal/store"
)

func main() {
	log, _ := zap.NewProduction()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}
	if cfg.Debug {
		log, _ = zap.NewDevelopment()
	}
	defer log.Sync()

	var st store.Store
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("postgres", zap.Error(err))
		}
		st = pg
		log.Info("using postgres store")
	} else {
		st = store.NewMemory()
		log.Info("using in-memory store")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := channel.NewHub(ctx, log.Named("hub"))
	api := httpapi.New(st, hub, []byte(cfg.JWTSecret), log.Named("api"))

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.Routes(),
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		hub.Inbox() <- channel.Shutdown{}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Fatal("server", zap.Error(err))
	}
}
