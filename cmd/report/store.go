package main

import (
	"context"

	"github.com/coderva/tutoring-reports/config"
	"github.com/coderva/tutoring-reports/internal/domain/tutoring"
	"github.com/coderva/tutoring-reports/internal/infrastructure/persistence/postgres"
	"github.com/coderva/tutoring-reports/internal/infrastructure/persistence/sqlite"
	"github.com/coderva/tutoring-reports/pkg/logger"
)

// recordStore is a tutoring.Reader that holds a connection.
type recordStore interface {
	tutoring.Reader
	Close() error
}

// pgStore adapts the postgres connection and repository to recordStore.
type pgStore struct {
	*postgres.DatasetRepository
	conn *postgres.Connection
}

func (s pgStore) Close() error {
	s.conn.Close()
	return nil
}

// openStore connects to the configured record store. A store that cannot be
// reached fails the run before any aggregation starts.
func openStore(ctx context.Context, cfg *config.Config) (recordStore, error) {
	log := logger.FromContext(ctx)
	db := cfg.Database

	if db.Driver == config.DriverSQLite || (db.Driver == "" && sqlite.IsURL(db.URL)) {
		path, ok := sqlite.PathFromURL(db.URL)
		if !ok {
			path = db.URL
		}
		log.Info("opening sqlite database", logger.Path(path))
		store, err := sqlite.Open(ctx, path, db.QueryTimeout)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	pcfg := postgres.DefaultConfig()
	pcfg.URL = db.URL
	pcfg.User = db.User
	pcfg.Password = db.Password
	pcfg.SSLMode = db.SSLMode
	if db.ConnectTimeout > 0 {
		pcfg.ConnectTimeout = db.ConnectTimeout
	}
	if db.ConnectAttempts > 0 {
		pcfg.ConnectAttempts = db.ConnectAttempts
	}
	if db.ConnectBackoff > 0 {
		pcfg.ConnectBackoff = db.ConnectBackoff
	}
	if db.QueryTimeout > 0 {
		pcfg.QueryTimeout = db.QueryTimeout
	}

	log.Info("connecting to database", logger.String("url", postgres.Redact(db.URL)))
	conn, err := postgres.NewConnection(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	return pgStore{DatasetRepository: postgres.NewDatasetRepository(conn), conn: conn}, nil
}
