package persistence

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const (
	currentSchemaVersion = 2 // Current database schema version

	historyIDBytes = 6

	// DefaultHistoryLimit is used by List when limit is not positive.
	DefaultHistoryLimit = 20

	historySelectColumns = `id, created_at, name, provider, model, error_type, error_message,
		strategy, failed, duration_ms, code_sha256, report_json`
)

// ErrEntryNotFound is returned by Get for unknown IDs.
var ErrEntryNotFound = errors.New("history entry not found")

// HistoryEntry is one stored analysis.
type HistoryEntry struct {
	ID           string
	CreatedAt    time.Time
	Name         string
	Provider     string
	Model        string
	ErrorType    string
	ErrorMessage string
	Strategy     string
	Failed       bool
	Duration     time.Duration
	CodeSHA256   string
	// ReportJSON is the full JSON report as printed by --format json.
	ReportJSON []byte
}

// History stores past analyses in ~/.advisor/history.db.
type History struct {
	db   *sql.DB
	path string
}

// OpenHistory opens the default history database, creating it when needed.
func OpenHistory() (*History, error) {
	path, err := GetHistoryPath()
	if err != nil {
		return nil, fmt.Errorf("failed to compute history path: %w", err)
	}
	return OpenHistoryAt(path)
}

// OpenHistoryAt opens the history database at dbPath.
func OpenHistoryAt(dbPath string) (*History, error) {
	if mkdirErr := createDirIfNotExists(filepath.Dir(dbPath)); mkdirErr != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", mkdirErr)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			if closeErr := db.Close(); closeErr != nil {
				return nil, fmt.Errorf("failed to execute %s: %w (additionally, failed to close database: %v)", pragma, err, closeErr)
			}
			return nil, fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	h := &History{db: db, path: dbPath}

	if err := h.initSchema(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w (additionally, failed to close database: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	// WAL mode creates -wal and -shm next to the database
	if err := secureDBFiles(dbPath); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to set database permissions: %w (additionally, failed to close database: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to set database permissions: %w", err)
	}

	return h, nil
}

func createDirIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// #nosec G301 - restrictive permissions for data directory (owner-only access)
		return os.MkdirAll(path, 0o700)
	}
	return nil
}

// secureDBFiles sets 0600 on the database and its WAL/SHM companions.
func secureDBFiles(dbPath string) error {
	// #nosec G302 - intentionally setting restrictive permissions
	if err := os.Chmod(dbPath, 0o600); err != nil {
		return fmt.Errorf("chmod %s: %w", dbPath, err)
	}

	for _, f := range []string{dbPath + "-wal", dbPath + "-shm"} {
		// #nosec G302 - intentionally setting restrictive permissions
		if err := os.Chmod(f, 0o600); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("chmod %s: %w", f, err)
		}
	}
	return nil
}

func (h *History) initSchema() error {
	if _, err := h.db.Exec(`
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at INTEGER NOT NULL
	);
	`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var version int
	if err := h.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to query schema version: %w", err)
	}

	if version < currentSchemaVersion {
		if err := h.applyMigrations(version); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}
	return nil
}

func (h *History) applyMigrations(fromVersion int) error {
	migrations := []struct {
		version int
		name    string
		sql     string
	}{
		{
			version: 1,
			name:    "create_analyses",
			sql: `
			CREATE TABLE IF NOT EXISTS analyses (
				id TEXT PRIMARY KEY,
				created_at INTEGER NOT NULL,
				name TEXT NOT NULL DEFAULT '',
				provider TEXT NOT NULL,
				model TEXT NOT NULL,
				error_type TEXT NOT NULL,
				error_message TEXT NOT NULL,
				strategy TEXT NOT NULL,
				failed INTEGER NOT NULL DEFAULT 0,
				report_json TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);
			`,
		},
		{
			version: 2,
			name:    "add_duration_and_code_hash",
			sql: `
			ALTER TABLE analyses ADD COLUMN duration_ms INTEGER NOT NULL DEFAULT 0;
			ALTER TABLE analyses ADD COLUMN code_sha256 TEXT NOT NULL DEFAULT '';
			CREATE INDEX IF NOT EXISTS idx_analyses_code_sha256 ON analyses(code_sha256);
			`,
		},
	}

	for _, migration := range migrations {
		if migration.version <= fromVersion {
			continue
		}

		tx, err := h.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration v%d: %w", migration.version, err)
		}

		if _, err := tx.Exec(migration.sql); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("failed to execute migration v%d (%s): %w (additionally, failed to rollback: %v)",
					migration.version, migration.name, err, rbErr)
			}
			return fmt.Errorf("failed to execute migration v%d (%s): %w", migration.version, migration.name, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version, applied_at) VALUES (?, ?)",
			migration.version, time.Now().Unix()); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("failed to record migration v%d: %w (additionally, failed to rollback: %v)",
					migration.version, err, rbErr)
			}
			return fmt.Errorf("failed to record migration v%d: %w", migration.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration v%d: %w", migration.version, err)
		}
	}
	return nil
}

func newEntryID() (string, error) {
	b := make([]byte, historyIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate entry ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Record stores e. Empty ID and zero CreatedAt are filled in, and the
// stored values are written back to e.
func (h *History) Record(e *HistoryEntry) error {
	if e.ID == "" {
		id, err := newEntryID()
		if err != nil {
			return err
		}
		e.ID = id
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO analyses (` + historySelectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := h.db.Exec(query,
		e.ID, e.CreatedAt.UnixMilli(), e.Name, e.Provider, e.Model, e.ErrorType, e.ErrorMessage,
		e.Strategy, boolToInt(e.Failed), e.Duration.Milliseconds(), e.CodeSHA256, string(e.ReportJSON))
	if err != nil {
		return fmt.Errorf("failed to record analysis: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first.
func (h *History) List(limit int) ([]*HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := h.db.Query(`SELECT `+historySelectColumns+` FROM analyses
		ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*HistoryEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return entries, nil
}

// Get returns the entry with the given ID or ErrEntryNotFound.
func (h *History) Get(id string) (*HistoryEntry, error) {
	row := h.db.QueryRow(`SELECT `+historySelectColumns+` FROM analyses WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	return e, err
}

// Count returns the number of stored entries.
func (h *History) Count() (int, error) {
	var n int
	if err := h.db.QueryRow(`SELECT COUNT(*) FROM analyses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return n, nil
}

// Prune deletes entries older than cutoff and returns how many went.
func (h *History) Prune(cutoff time.Time) (int64, error) {
	res, err := h.db.Exec(`DELETE FROM analyses WHERE created_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned rows: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(s rowScanner) (*HistoryEntry, error) {
	var (
		e          HistoryEntry
		createdAt  int64
		failed     int
		durationMS int64
		report     string
	)
	err := s.Scan(&e.ID, &createdAt, &e.Name, &e.Provider, &e.Model, &e.ErrorType, &e.ErrorMessage,
		&e.Strategy, &failed, &durationMS, &e.CodeSHA256, &report)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan history row: %w", err)
	}
	e.CreatedAt = time.UnixMilli(createdAt)
	e.Failed = failed != 0
	e.Duration = time.Duration(durationMS) * time.Millisecond
	e.ReportJSON = []byte(report)
	return &e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Close closes the database connection and secures file permissions.
func (h *History) Close() error {
	if h.db == nil {
		return nil
	}
	closeErr := h.db.Close()
	if h.path != "" {
		_ = secureDBFiles(h.path)
	}
	return closeErr
}

// Path returns the path to the SQLite database file.
func (h *History) Path() string {
	return h.path
}
