// Package main is the octavia command: it issues one call against an
// Octavia database and prints the normalized result.
//
// Usage:
//
//	octavia [-collection name] [-no-encrypt] <method> [argument ...]
//
// Connection settings come from the environment (see internal/config).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	rediscache "github.com/octavia-db/octavia-go/cache/redis"
	"github.com/octavia-db/octavia-go/internal/config"
	"github.com/octavia-db/octavia-go/octavia"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("octavia", flag.ContinueOnError)
	flags.SetOutput(stderr)
	collection := flags.String("collection", "", "collection name; empty for database-level methods")
	noEncrypt := flags.Bool("no-encrypt", false, "do not ask the server to encrypt the collection")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: octavia [-collection name] [-no-encrypt] <method> [argument ...]")
		return 2
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "failed to load configuration: %v\n", err)
		return 1
	}
	setupLogging(cfg.Log, stderr)

	method, err := octavia.ParseMethod(flags.Arg(0))
	if err != nil {
		log.Error().Err(err).Msg("invalid method")
		return 2
	}

	options := []octavia.Option{
		octavia.WithTransport(octavia.NewHTTPTransport(&octavia.HTTPTransportConfig{
			HTTPClient: &http.Client{Timeout: cfg.Octavia.Timeout},
			Compress:   cfg.Octavia.Compress,
		})),
		octavia.WithLogger(log.Logger),
	}

	if cfg.Cache.Enabled {
		cache, err := rediscache.NewCache(rediscache.Config{
			Host:       cfg.Cache.Host,
			Port:       cfg.Cache.Port,
			Password:   cfg.Cache.Password,
			DB:         cfg.Cache.DB,
			DefaultTTL: cfg.Cache.TTL,
		})
		if err != nil {
			log.Warn().Err(err).Msg("result cache disabled")
		} else {
			defer cache.Close()
			options = append(options, octavia.WithCache(cache, cfg.Cache.TTL))
		}
	}

	db, err := octavia.NewDatabase(cfg.Octavia.Options(), options...)
	if err != nil {
		log.Error().Err(err).Msg("failed to create client")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	call := &Call{
		Collection: *collection,
		Encrypt:    !*noEncrypt,
		Method:     method,
		Args:       flags.Args()[1:],
	}

	result, err := call.Execute(ctx, db)
	if err != nil {
		log.Error().Err(err).Msg("invalid arguments")
		return 2
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("failed to encode result")
		return 1
	}
	fmt.Fprintln(stdout, string(out))

	if !result.Ack {
		return 1
	}
	return 0
}

// setupLogging configures the global zerolog logger.
func setupLogging(cfg config.LogConfig, w io.Writer) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
}
