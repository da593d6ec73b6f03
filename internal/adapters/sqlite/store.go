package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"ifcmass/internal/ports"

	_ "github.com/mattn/go-sqlite3"
)

// Store implements ports.DensityStore using SQLite
type Store struct {
	db     *sql.DB
	dbPath string
}

// Ensure Store implements DensityStore
var _ ports.DensityStore = (*Store)(nil)

// Open opens or creates the database at dbPath
func Open(dbPath string) (*Store, error) {
	if len(dbPath) > 0 && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;

		CREATE TABLE IF NOT EXISTS densities (
			name TEXT PRIMARY KEY,
			density INTEGER NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// DefaultPath returns the database location under the XDG data directory
func DefaultPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "ifcmass", "densities.db")
}

// Path returns the database file
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load reads every density
func (s *Store) Load() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT name, density FROM densities`)
	if err != nil {
		return nil, fmt.Errorf("failed to query densities: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]int)
	for rows.Next() {
		var name string
		var density int
		if err := rows.Scan(&name, &density); err != nil {
			return nil, err
		}
		entries[name] = density
	}
	return entries, rows.Err()
}

// Save replaces all rows with entries in a single transaction
func (s *Store) Save(entries map[string]int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM densities`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO densities (name, density) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for name, density := range entries {
		if _, err := stmt.Exec(name, density); err != nil {
			return fmt.Errorf("failed to store %s: %w", name, err)
		}
	}

	return tx.Commit()
}
