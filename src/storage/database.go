package storage

import (
	"fmt"

	"spot-observer/src/interfaces"
	"spot-observer/src/logger"
	"spot-observer/src/models"
)

// NewDatabase opens the archive backend named by storage.db_type. It returns
// a nil database for "none".
func NewDatabase(cfg *models.MConfig, log *logger.Logger) (interfaces.IDatabase, error) {
	var (
		db  interfaces.IDatabase
		err error
	)
	switch cfg.Storage.DBType {
	case "", "none":
		return nil, nil
	case "sqlite":
		db, err = NewAsyncSQLiteDB(cfg, log)
	case "postgres":
		db, err = NewPostgresDB(cfg, log)
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Storage.DBType)
	}
	if err != nil {
		return nil, err
	}
	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
