// Package progress tracks the per-file build state of the STRING store so
// interrupted builds can be resumed instead of silently reattempted from
// scratch.
package progress

import (
	"database/sql"
	"fmt"
	"time"
)

// State represents the ingest state of a single dump file.
type State string

const (
	StatePending  State = "pending"
	StateFetching State = "fetching"
	StateFetched  State = "fetched"
	StateLoading  State = "loading"
	StateLoaded   State = "loaded"
	StateFailed   State = "failed"
)

// FileProgress represents the tracked state of one dump file.
type FileProgress struct {
	FileName     string    `json:"file_name"`
	State        State     `json:"state"`
	Records      int64     `json:"records"`
	StartedAt    time.Time `json:"started_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// Tracker manages per-file ingest state. State lives in the store itself, so
// the store file and its build state cannot drift apart.
type Tracker struct {
	db *sql.DB
}

// NewTracker creates a tracker backed by the given database connection.
func NewTracker(db *sql.DB) (*Tracker, error) {
	t := &Tracker{db: db}
	if err := t.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create progress tables: %w", err)
	}
	return t, nil
}

func (t *Tracker) createTables() error {
	_, err := t.db.Exec(`
		CREATE TABLE IF NOT EXISTS ingest_files (
			file_name TEXT PRIMARY KEY,
			state TEXT NOT NULL DEFAULT 'pending',
			records INTEGER DEFAULT 0,
			started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			error_message TEXT DEFAULT ''
		)`)
	return err
}

// Register ensures a file is tracked, starting in the pending state. Already
// tracked files keep their current state.
func (t *Tracker) Register(fileName string) error {
	_, err := t.db.Exec(`
		INSERT OR IGNORE INTO ingest_files (file_name, state)
		VALUES (?, ?)`, fileName, StatePending)
	return err
}

// SetState transitions a file to the given state.
func (t *Tracker) SetState(fileName string, state State) error {
	_, err := t.db.Exec(`
		UPDATE ingest_files
		SET state = ?, updated_at = CURRENT_TIMESTAMP
		WHERE file_name = ?`, state, fileName)
	return err
}

// SetLoadedTx marks a file loaded with its inserted record count, within an
// open transaction. Running the update on the same transaction that holds the
// file's rows means the loaded state and the rows commit or roll back
// together: a crash can never leave committed rows behind a non-loaded state.
func (t *Tracker) SetLoadedTx(tx *sql.Tx, fileName string, records int64) error {
	_, err := tx.Exec(`
		UPDATE ingest_files
		SET state = ?, records = ?, error_message = '', updated_at = CURRENT_TIMESTAMP
		WHERE file_name = ?`, StateLoaded, records, fileName)
	return err
}

// SetFailed marks a file failed with the error message for the operator.
func (t *Tracker) SetFailed(fileName string, message string) error {
	_, err := t.db.Exec(`
		UPDATE ingest_files
		SET state = ?, error_message = ?, updated_at = CURRENT_TIMESTAMP
		WHERE file_name = ?`, StateFailed, message, fileName)
	return err
}

// Get retrieves the tracked state of a file.
// Returns sql.ErrNoRows wrapped if the file is not tracked.
func (t *Tracker) Get(fileName string) (*FileProgress, error) {
	fp := &FileProgress{}
	err := t.db.QueryRow(`
		SELECT file_name, state, records, started_at, updated_at, error_message
		FROM ingest_files
		WHERE file_name = ?`, fileName).Scan(
		&fp.FileName, &fp.State, &fp.Records, &fp.StartedAt, &fp.UpdatedAt, &fp.ErrorMessage)
	if err != nil {
		return nil, fmt.Errorf("file not tracked: %s: %w", fileName, err)
	}
	return fp, nil
}

// All returns the tracked state of every file, in registration order.
func (t *Tracker) All() ([]FileProgress, error) {
	rows, err := t.db.Query(`
		SELECT file_name, state, records, started_at, updated_at, error_message
		FROM ingest_files
		ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []FileProgress
	for rows.Next() {
		var fp FileProgress
		err := rows.Scan(&fp.FileName, &fp.State, &fp.Records,
			&fp.StartedAt, &fp.UpdatedAt, &fp.ErrorMessage)
		if err != nil {
			return nil, err
		}
		files = append(files, fp)
	}

	return files, rows.Err()
}

// Complete reports whether every named file has reached the loaded state.
// Unregistered files count as incomplete.
func (t *Tracker) Complete(fileNames []string) (bool, error) {
	for _, name := range fileNames {
		var state State
		err := t.db.QueryRow(
			"SELECT state FROM ingest_files WHERE file_name = ?", name).Scan(&state)
		if err == sql.ErrNoRows {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if state != StateLoaded {
			return false, nil
		}
	}
	return true, nil
}
