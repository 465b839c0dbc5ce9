package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/MikeMC777/shop-web/internal/config"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "shop",
	Short: "Storefront web app: catalog, cart and accounts",
	Long: `shop serves the storefront pages and the JSON catalog API, backed by Postgres.

Configuration comes from the environment (a .env file is loaded when present).

Examples:
  shop serve              # run the HTTP and gRPC health servers
  shop migrate up         # apply pending schema migrations
  shop migrate down -n 1  # roll back the last migration`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		setupLogging(cfg.LogLevel, cfg.LogFormat)
	},
}

func setupLogging(level, format string) {
	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
