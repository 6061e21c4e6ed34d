// Package catalog serves the list of known symptom ids for free-text search.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/samber/lo"

	"github.com/kartoza/symptom-checker/internal/logging"
	"github.com/kartoza/symptom-checker/internal/symptoms"
)

// ErrNoCatalog is returned when a database has no symptoms table
var ErrNoCatalog = errors.New("catalog: no symptoms table")

// Source names where the catalog entries come from
const (
	SourceSQLite = "sqlite"
	SourceMemory = "memory"
)

// Store answers symptom searches from a sqlite database or an in-memory list
type Store struct {
	mu    sync.RWMutex
	db    *sql.DB
	names []string
}

// NewMemory creates a catalog over a fixed list of ids
func NewMemory(ids ...string) *Store {
	names := lo.Uniq(lo.Filter(ids, func(id string, _ int) bool {
		return strings.TrimSpace(id) != ""
	}))
	sort.Strings(names)
	return &Store{names: names}
}

// Open opens a read-only sqlite catalog
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}

	var count int
	err = db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type IN ('table','view') AND name='symptoms'").Scan(&count)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	if count == 0 {
		db.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrNoCatalog)
	}

	return &Store{db: db}, nil
}

// Load opens the sqlite catalog at path, falling back to the common
// symptoms when path is empty or cannot be used.
func Load(path string, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	if path == "" {
		return NewMemory(symptoms.Common...)
	}

	store, err := Open(path)
	if err != nil {
		logger.Warn("symptom catalog unavailable, using common symptoms",
			logging.String("path", path),
			logging.Err(err),
		)
		return NewMemory(symptoms.Common...)
	}
	logger.Info("loaded symptom catalog", logging.String("path", path))
	return store
}

// Source reports whether the catalog is backed by sqlite or memory
func (s *Store) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db != nil {
		return SourceSQLite
	}
	return SourceMemory
}

// normalize folds an id or display text to lower case words
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(strings.ReplaceAll(s, "_", " ")), " "))
}

// Search returns ids whose id or display name contains query, case
// insensitively, sorted by id. A non-positive limit returns every match.
func (s *Store) Search(query string, limit int) ([]string, error) {
	q := normalize(query)
	if q == "" {
		return []string{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		matches := lo.Filter(s.names, func(id string, _ int) bool {
			return strings.Contains(normalize(id), q)
		})
		if limit > 0 && len(matches) > limit {
			matches = matches[:limit]
		}
		return matches, nil
	}

	if limit <= 0 {
		limit = -1
	}
	pattern := "%" + strings.NewReplacer(`\`, `\\`, `%`, `\%`).Replace(q) + "%"
	rows, err := s.db.Query(
		`SELECT name FROM symptoms
		 WHERE lower(replace(name, '_', ' ')) LIKE ? ESCAPE '\'
		 ORDER BY name LIMIT ?`,
		pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search catalog: %w", err)
	}
	defer rows.Close()

	matches := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		matches = append(matches, name)
	}
	return matches, rows.Err()
}

// Len returns the number of catalog entries
func (s *Store) Len() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return len(s.names), nil
	}
	var count int
	if err := s.db.QueryRow("SELECT count(*) FROM symptoms").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count catalog: %w", err)
	}
	return count, nil
}

// Close releases the database connection
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
