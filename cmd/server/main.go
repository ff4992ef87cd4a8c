package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/evcenter-admin/gateway"
	"github.com/jrsteele09/evcenter-admin/internal/config"
	"github.com/jrsteele09/evcenter-admin/internal/logging"
	"github.com/jrsteele09/evcenter-admin/server"
	"github.com/jrsteele09/evcenter-admin/sessions"
	"github.com/jrsteele09/evcenter-admin/sessions/redisrepo"
	"github.com/jrsteele09/evcenter-admin/sessions/sqliterepo"
	"github.com/rs/zerolog/log"
)

const sessionPurgeInterval = time.Hour

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := config.New(ctx)
	if err != nil {
		return err
	}
	logging.Init(logging.Options{Level: c.GetLogLevel(), Pretty: c.IsDev()})
	displayAppname(c.GetAppName())

	repo, closeRepo, err := openSessionRepo(ctx, c)
	if err != nil {
		return err
	}
	defer closeRepo()

	backend := gateway.New(c.GetAPIBaseURL(), gateway.WithTimeout(c.GetAPITimeout()))
	handler, err := server.New(c, backend, repo, nil)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(srv) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

// openSessionRepo selects the durable session store named by the configuration.
func openSessionRepo(ctx context.Context, c config.Config) (sessions.Repo, func(), error) {
	switch c.GetSessionStore() {
	case config.StoreSQLite:
		if dir := filepath.Dir(c.GetSQLitePath()); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create session directory: %w", err)
			}
		}
		repo, err := sqliterepo.New(ctx, c.GetSQLitePath())
		if err != nil {
			return nil, nil, err
		}
		go purgeSessions(ctx, repo, c.GetSessionMaxAge())
		log.Info().Str("path", c.GetSQLitePath()).Msg("sessions stored in sqlite")
		return repo, closer(repo, "sqlite"), nil

	case config.StoreRedis:
		repo, err := redisrepo.Connect(ctx, redisrepo.Config{
			Addr: c.GetRedisAddr(),
			DB:   c.GetRedisDB(),
			TTL:  c.GetSessionMaxAge(),
		})
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("addr", c.GetRedisAddr()).Msg("sessions stored in redis")
		return repo, closer(repo, "redis"), nil
	}

	log.Warn().Msg("sessions stored in memory; they will not survive a restart")
	return sessions.NewInMemoryRepo(), func() {}, nil
}

func closer(c io.Closer, name string) func() {
	return func() {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Str("store", name).Msg("failed to close session store")
		}
	}
}

// purgeSessions removes sqlite sessions older than maxAge until ctx is cancelled.
func purgeSessions(ctx context.Context, repo *sqliterepo.Repo, maxAge time.Duration) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteOlderThan(ctx, time.Now().Add(-maxAge))
			if err != nil {
				log.Warn().Err(err).Msg("session purge failed")
				continue
			}
			if n > 0 {
				log.Info().Int64("removed", n).Msg("purged expired sessions")
			}
		}
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
