package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"fyyur/internal/app/artists"
	"fyyur/internal/app/genres"
	"fyyur/internal/app/shows"
	"fyyur/internal/app/venues"
	"fyyur/internal/booking"
	"fyyur/internal/config"
	"fyyur/internal/directory"
	"fyyur/internal/logging"
	"fyyur/internal/store"
	"fyyur/internal/store/memory"
)

// dataStore is everything the services need from a persistence backend.
// Both the Postgres and the in-memory store satisfy it.
type dataStore interface {
	venues.Store
	artists.Store
	genres.Store
	shows.Store
	directory.Store
	booking.Store
}

var (
	_ dataStore = (*store.Store)(nil)
	_ dataStore = (*memory.Store)(nil)
)

// openBackend returns the configured store and a func that releases it.
func openBackend(ctx context.Context, cfg *config.Config, logger *logging.Logger) (dataStore, func(), error) {
	if cfg.Store.Backend == config.BackendMemory {
		logger.Warn("using in-memory store; data is lost on restart")
		return memory.New(), func() {}, nil
	}

	db, err := openDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	return store.New(db), func() { _ = db.Close() }, nil
}

// openDatabase establishes a database connection and retries until the instance responds.
func openDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	const (
		pingTimeout    = 5 * time.Second
		maxWait        = 30 * time.Second
		initialBackoff = 500 * time.Millisecond
		maxBackoff     = 5 * time.Second
	)

	deadline := time.Now().Add(maxWait)
	backoff := initialBackoff
	var lastErr error

	for {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = db.PingContext(pingCtx)
		cancel()

		if lastErr == nil {
			return db, nil
		}
		if ctx.Err() != nil || time.Now().After(deadline) {
			break
		}

		select {
		case <-ctx.Done():
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}

	_ = db.Close()
	return nil, fmt.Errorf("ping database: %w", lastErr)
}
