package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"spot-observer/src/helpers"
	"spot-observer/src/logger"
	"spot-observer/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type AsyncSQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
	Now    func() time.Time
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	if cfg.Storage.DBPath == "" {
		return nil, helpers.NewConfigurationError("sqlite database path is empty", nil)
	}
	return &AsyncSQLiteDB{
		Config: cfg,
		Logger: log,
		Now:    time.Now,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize() error {
	dsn := d.Config.Storage.DBPath
	if dir := filepath.Dir(dsn); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return helpers.NewDatabaseError("failed to create database directory", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return helpers.NewDatabaseError("failed to open sqlite", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return helpers.NewDatabaseError("failed to ping sqlite", err)
	}

	// A single writer avoids SQLITE_BUSY between the scheduler workers.
	db.SetMaxOpenConns(1)
	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.recreateTables()
}

// -----------------------------------------------------------------------------

// recreateTables starts every process with an empty archive.
func (d *AsyncSQLiteDB) recreateTables() error {
	for _, table := range []string{"snapshot_rows", "snapshots"} {
		if _, err := d.DB.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return helpers.NewDatabaseError(fmt.Sprintf("failed to drop %s", table), err)
		}
	}

	query := `
		CREATE TABLE snapshots (
			fetch_id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			retrieved_at INTEGER NOT NULL,
			upstream_updated_at INTEGER,
			row_count INTEGER NOT NULL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return helpers.NewDatabaseError("failed to create snapshots", err)
	}

	// SQLite types: INTEGER for unix seconds, TEXT for the raw upstream value
	query = `
		CREATE TABLE snapshot_rows (
			source TEXT,
			series TEXT,
			start_time INTEGER,
			value TEXT,
			fetch_id TEXT,
			PRIMARY KEY (source, series, start_time)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return helpers.NewDatabaseError("failed to create snapshot_rows", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// SaveSnapshot stores the snapshot header and upserts its rows, so a later
// snapshot overwrites values for the same slot.
func (d *AsyncSQLiteDB) SaveSnapshot(snap *models.MSnapshot) error {
	if snap == nil {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return helpers.NewDatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var upstream sql.NullInt64
	if !snap.UpstreamUpdatedAt.IsZero() {
		upstream = sql.NullInt64{Int64: snap.UpstreamUpdatedAt.Unix(), Valid: true}
	}
	_, err = tx.Exec(`
		INSERT INTO snapshots (fetch_id, source, retrieved_at, upstream_updated_at, row_count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (fetch_id) DO NOTHING
	`, snap.FetchID, string(snap.Source), snap.RetrievedAt.Unix(), upstream, snap.RowCount())
	if err != nil {
		return helpers.NewDatabaseError("failed to insert snapshot", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO snapshot_rows (source, series, start_time, value, fetch_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (source, series, start_time) DO UPDATE SET
			value = excluded.value,
			fetch_id = excluded.fetch_id
	`)
	if err != nil {
		return helpers.NewDatabaseError("failed to prepare row insert", err)
	}
	defer stmt.Close()

	for series, rows := range snap.Series {
		for _, r := range rows {
			if _, err := stmt.Exec(string(snap.Source), series, r.StartTime.Unix(), string(r.Value), snap.FetchID); err != nil {
				return helpers.NewDatabaseError(fmt.Sprintf("failed to insert %s row", series), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return helpers.NewDatabaseError("failed to commit snapshot", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) CountRows(source models.MSourceID) (int, error) {
	var n int
	if err := d.DB.QueryRow("SELECT COUNT(*) FROM snapshot_rows WHERE source = ?", string(source)).Scan(&n); err != nil {
		return 0, helpers.NewDatabaseError("failed to count rows", err)
	}
	return n, nil
}

// -----------------------------------------------------------------------------

// CleanupOldData drops rows and snapshot headers older than the retention
// window. A retention of zero keeps everything.
func (d *AsyncSQLiteDB) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays()
	if retentionDays <= 0 {
		return nil
	}
	cutoff := d.Now().UTC().AddDate(0, 0, -retentionDays).Unix()

	d.Logger.Debug("Cleaning up data older than %d days (timestamp < %d)...", retentionDays, cutoff)

	if _, err := d.DB.Exec("DELETE FROM snapshot_rows WHERE start_time < ?", cutoff); err != nil {
		return helpers.NewDatabaseError("cleanup snapshot_rows", err)
	}
	if _, err := d.DB.Exec("DELETE FROM snapshots WHERE retrieved_at < ?", cutoff); err != nil {
		return helpers.NewDatabaseError("cleanup snapshots", err)
	}

	d.Logger.Debug("Cleanup completed")
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
