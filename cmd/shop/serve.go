package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/MikeMC777/shop-web/internal/cart"
	"github.com/MikeMC777/shop-web/internal/catalog"
	"github.com/MikeMC777/shop-web/internal/db"
	"github.com/MikeMC777/shop-web/internal/health"
	"github.com/MikeMC777/shop-web/internal/server"
	"github.com/MikeMC777/shop-web/internal/session"
	"github.com/MikeMC777/shop-web/internal/user"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		if err := db.MigrateUp(cfg.PostgresDSN); err != nil {
			return err
		}
	}
	pool, err := db.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	checker := health.New(pool)
	go checker.Watch(ctx, 10*time.Second)

	lis, err := net.Listen("tcp", cfg.HealthAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.HealthAddr, err)
	}
	go func() {
		if err := checker.Serve(lis); err != nil {
			log.Error().Err(err).Msg("[health] grpc server stopped")
		}
	}()

	gin.SetMode(cfg.GinMode)
	router := server.New(server.Deps{
		Catalog:  catalog.NewPGRepo(pool),
		Carts:    cart.NewPGStore(pool),
		Users:    user.NewPGRepo(pool),
		Session:  session.NewManager(cfg.SessionSecret, cfg.SessionTTL, cfg.CookieSecure),
		PageSize: cfg.PageSize,
		Ready:    checker.Healthy,
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("[http] listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		checker.Stop()
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("[http] shutdown error")
	}
	checker.Stop()
	log.Info().Msg("server stopped")
	return nil
}
