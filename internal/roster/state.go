package roster

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/meltforce/slotcheck/internal/models"
)

// StateDB is a local SQLite ledger of processed export files, keyed by
// scope: the same export imported into a different tenant or academy is a
// fresh import, not a skip.
type StateDB struct {
	db *sql.DB
}

// OpenStateDB opens (or creates) the SQLite ledger at dir/state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "state.db"))
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS import_ledger (
		tenant      TEXT NOT NULL,
		academy     TEXT NOT NULL,
		file        TEXT NOT NULL,
		size        INTEGER NOT NULL,
		hash        TEXT NOT NULL,
		imported_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (tenant, academy, file)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// Unchanged reports whether the file was already imported into this scope
// with the same content. A size or hash mismatch means the export was
// regenerated and must be processed again.
func (s *StateDB) Unchanged(scope models.Scope, file string, size int64, hash string) (bool, error) {
	var gotSize int64
	var gotHash string
	err := s.db.QueryRow(
		`SELECT size, hash FROM import_ledger WHERE tenant = ? AND academy = ? AND file = ?`,
		scope.TenantID.String(), scope.AcademyID.String(), file,
	).Scan(&gotSize, &gotHash)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return gotSize == size && gotHash == hash, nil
}

// Record marks the file as imported into this scope, replacing any earlier
// entry for the same file.
func (s *StateDB) Record(scope models.Scope, file string, size int64, hash string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO import_ledger (tenant, academy, file, size, hash) VALUES (?, ?, ?, ?, ?)`,
		scope.TenantID.String(), scope.AcademyID.String(), file, size, hash,
	)
	return err
}

// Close closes the ledger database.
func (s *StateDB) Close() error {
	return s.db.Close()
}

// HashFile computes the SHA-256 hash of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
