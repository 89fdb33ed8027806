package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"spot-observer/src/helpers"
	"spot-observer/src/logger"
	"spot-observer/src/models"

	"github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
	Now    func() time.Time
}

// -----------------------------------------------------------------------------

// NewPostgresDB keeps every table in a schema named after the application,
// falling back to the executable name.
func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	if cfg.Storage.DBConnectionString == "" {
		return nil, helpers.NewConfigurationError("postgres connection string is empty", nil)
	}

	name := cfg.Name
	if name == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to get executable name: %w", err)
		}
		name = strings.TrimSuffix(filepath.Base(exe), filepath.Ext(exe))
	}

	return &PostgresDB{
		Config: cfg,
		Schema: name,
		Logger: log,
		Now:    time.Now,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) table(name string) string {
	return pq.QuoteIdentifier(d.Schema) + "." + pq.QuoteIdentifier(name)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	connector, err := pq.NewConnector(d.Config.Storage.DBConnectionString)
	if err != nil {
		return helpers.NewConfigurationError("invalid postgres connection string", err)
	}
	db := sql.OpenDB(connector)
	if err := db.Ping(); err != nil {
		db.Close()
		return helpers.NewDatabaseError("failed to ping postgres", err)
	}
	d.DB = db

	if _, err := d.DB.Exec(`CREATE SCHEMA IF NOT EXISTS ` + pq.QuoteIdentifier(d.Schema)); err != nil {
		return helpers.NewDatabaseError(fmt.Sprintf("failed to create schema %s", d.Schema), err)
	}
	if err := d.recreateTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) recreateTables() error {
	for _, table := range []string{"snapshot_rows", "snapshots"} {
		if _, err := d.DB.Exec(`DROP TABLE IF EXISTS ` + d.table(table)); err != nil {
			return helpers.NewDatabaseError(fmt.Sprintf("failed to drop %s", table), err)
		}
	}

	query := fmt.Sprintf(`
		CREATE TABLE %s (
			fetch_id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			retrieved_at BIGINT NOT NULL,
			upstream_updated_at BIGINT,
			row_count INTEGER NOT NULL
		);
	`, d.table("snapshots"))
	if _, err := d.DB.Exec(query); err != nil {
		return helpers.NewDatabaseError("failed to create snapshots", err)
	}

	query = fmt.Sprintf(`
		CREATE TABLE %s (
			source TEXT,
			series TEXT,
			start_time BIGINT,
			value TEXT,
			fetch_id TEXT,
			PRIMARY KEY (source, series, start_time)
		);
	`, d.table("snapshot_rows"))
	if _, err := d.DB.Exec(query); err != nil {
		return helpers.NewDatabaseError("failed to create snapshot_rows", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveSnapshot(snap *models.MSnapshot) error {
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
	_, err = tx.Exec(fmt.Sprintf(`
		INSERT INTO %s (fetch_id, source, retrieved_at, upstream_updated_at, row_count)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (fetch_id) DO NOTHING
	`, d.table("snapshots")), snap.FetchID, string(snap.Source), snap.RetrievedAt.Unix(), upstream, snap.RowCount())
	if err != nil {
		return helpers.NewDatabaseError("failed to insert snapshot", err)
	}

	stmt, err := tx.Prepare(fmt.Sprintf(`
		INSERT INTO %s (source, series, start_time, value, fetch_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source, series, start_time) DO UPDATE SET
			value = EXCLUDED.value,
			fetch_id = EXCLUDED.fetch_id
	`, d.table("snapshot_rows")))
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

func (d *PostgresDB) CountRows(source models.MSourceID) (int, error) {
	var n int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE source = $1`, d.table("snapshot_rows"))
	if err := d.DB.QueryRow(query, string(source)).Scan(&n); err != nil {
		return 0, helpers.NewDatabaseError("failed to count rows", err)
	}
	return n, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays()
	if retentionDays <= 0 {
		return nil
	}
	cutoff := d.Now().UTC().AddDate(0, 0, -retentionDays).Unix()

	d.Logger.Debug("Cleaning up data older than %d days (timestamp < %d)...", retentionDays, cutoff)

	if _, err := d.DB.Exec(fmt.Sprintf(`DELETE FROM %s WHERE start_time < $1`, d.table("snapshot_rows")), cutoff); err != nil {
		return helpers.NewDatabaseError("cleanup snapshot_rows", err)
	}
	if _, err := d.DB.Exec(fmt.Sprintf(`DELETE FROM %s WHERE retrieved_at < $1`, d.table("snapshots")), cutoff); err != nil {
		return helpers.NewDatabaseError("cleanup snapshots", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
