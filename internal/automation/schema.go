package automation

import (
	"database/sql"

	"codeberg.org/mutker/prxgyz/internal/errors"
	"codeberg.org/mutker/prxgyz/internal/logger"
)

const (
	SchemaVersion = 1

	createTablesSQL = `
	   CREATE TABLE IF NOT EXISTS schema_versions (
	       version     INTEGER PRIMARY KEY,
	       applied_at  TEXT NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS gestures (
	       id          INTEGER PRIMARY KEY AUTOINCREMENT,
	       handle      TEXT NOT NULL,
	       began_at    INTEGER NOT NULL CHECK (typeof(began_at) = 'integer'),
	       ended_at    INTEGER NOT NULL CHECK (ended_at >= began_at),
	       point_count INTEGER NOT NULL CHECK (point_count >= 0)
	   );
	   CREATE INDEX IF NOT EXISTS gestures_handle ON gestures (handle);
	   CREATE TABLE IF NOT EXISTS points (
	       gesture_id  INTEGER NOT NULL REFERENCES gestures (id) ON DELETE CASCADE,
	       seq         INTEGER NOT NULL,
	       at          INTEGER NOT NULL,
	       value       REAL NOT NULL,
	       PRIMARY KEY (gesture_id, seq)
	   );`

	insertGestureSQL = `
    INSERT INTO gestures (handle, began_at, ended_at, point_count)
    VALUES (?, ?, ?, ?)`

	insertPointSQL = `
    INSERT INTO points (gesture_id, seq, at, value)
    VALUES (?, ?, ?, ?)`

	selectGesturesSQL = `
    SELECT id, began_at, ended_at
    FROM gestures
    WHERE handle = ?
    ORDER BY id`

	selectPointsSQL = `
    SELECT at, value
    FROM points
    WHERE gesture_id = ?
    ORDER BY seq`
)

var managedTables = []string{"points", "gestures", "schema_versions"}

// InitSchema creates a new database schema with the current version
func InitSchema(db *sql.DB, log logger.Logger) error {
	errFactory := errors.New()

	log.Debug().Msg("Creating database...")

	tx, err := db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				log.Debug().Err(err).Msg("Failed to rollback transaction")
			}
		}
	}()

	if _, err := tx.Exec(createTablesSQL); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, struct {
			Error string
			SQL   string
		}{
			Error: err.Error(),
			SQL:   createTablesSQL,
		})
	}

	if _, err := tx.Exec(`
        INSERT INTO schema_versions (version, applied_at)
        VALUES (?, datetime('now'))
    `, SchemaVersion); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, struct {
			Error string
			Phase string
		}{
			Error: err.Error(),
			Phase: "record_version",
		})
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}
	committed = true

	log.Info().
		Int("version", SchemaVersion).
		Msg("Schema initialized successfully")

	return nil
}

// GetSchemaVersion returns the current schema version, or 0 for a database
// without one.
func GetSchemaVersion(db *sql.DB) (int, error) {
	errFactory := errors.New()

	exists, err := TableExists(db, "schema_versions")
	if err != nil {
		return 0, errFactory.Wrap(ErrSchemaValidationFailed, err)
	}
	if !exists {
		return 0, nil
	}

	var version int
	err = db.QueryRow(`
        SELECT version
        FROM schema_versions
        ORDER BY version DESC
        LIMIT 1
    `).Scan(&version)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errFactory.WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Error string
		}{
			Phase: "get_version",
			Error: err.Error(),
		})
	}

	return version, nil
}

// TableExists checks if a table exists
func TableExists(db *sql.DB, tableName string) (bool, error) {
	errFactory := errors.New()
	var exists bool
	err := db.QueryRow(`
        SELECT EXISTS (
            SELECT 1 FROM sqlite_master
            WHERE type='table' AND name=?
        )
    `, tableName).Scan(&exists)
	if err != nil {
		return false, errFactory.WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Table string
			Error string
		}{
			Phase: "check_table_exists",
			Table: tableName,
			Error: err.Error(),
		})
	}
	return exists, nil
}
