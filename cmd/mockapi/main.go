// Command mockapi serves an in-memory service-center backend seeded with demo data, for running
// the dashboard locally without the real API.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jrsteele09/evcenter-admin/internal/logging"
	"github.com/jrsteele09/evcenter-admin/internal/mockapi"
	"github.com/rs/zerolog/log"
)

func main() {
	addr := flag.String("addr", ":9090", "listen address")
	ttl := flag.Duration("token-ttl", 15*time.Minute, "access token lifetime")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	logging.Init(logging.Options{Level: *level, Pretty: true})

	api := mockapi.New(mockapi.WithTokenTTL(*ttl))
	if err := api.SeedDemo(); err != nil {
		log.Fatal().Err(err).Msg("failed to seed demo data")
	}
	for _, u := range mockapi.DemoUsers {
		log.Info().Str("email", u.Email).Str("password", u.Password).Str("role", u.Role).Msg("demo account")
	}

	srv := &http.Server{Addr: *addr, Handler: api, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Info().Str("addr", *addr).Msg("mock API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("mock API stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
