package catalog

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kartoza/symptom-checker/internal/symptoms"
)

// createTestCatalog creates a temporary symptoms database
func createTestCatalog(t *testing.T, names ...string) string {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "symptoms.db")
	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE symptoms (name TEXT PRIMARY KEY)`)
	require.NoError(t, err)
	for _, name := range names {
		_, err := db.Exec(`INSERT INTO symptoms (name) VALUES (?)`, name)
		require.NoError(t, err, "insert %s", name)
	}
	return dbPath
}

var testNames = []string{
	"abdominal_pain", "back_pain", "joint_pain", "high_fever", "mild_fever", "chills", "100%_itch",
}

func TestOpenSQLite(t *testing.T) {
	store, err := Open(createTestCatalog(t, testNames...))
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, SourceSQLite, store.Source())
	n, err := store.Len()
	require.NoError(t, err)
	assert.Equal(t, len(testNames), n)
}

func TestOpenRejectsDatabaseWithoutSymptoms(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "other.db")
	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE tiles (id INTEGER)`)
	require.NoError(t, err)
	db.Close()

	_, err = Open(dbPath)
	assert.ErrorIs(t, err, ErrNoCatalog)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.db"))
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	sqlite, err := Open(createTestCatalog(t, testNames...))
	require.NoError(t, err)
	defer sqlite.Close()

	stores := map[string]*Store{
		SourceSQLite: sqlite,
		SourceMemory: NewMemory(testNames...),
	}

	for source, store := range stores {
		t.Run(source, func(t *testing.T) {
			got, err := store.Search("PAIN", 0)
			require.NoError(t, err)
			assert.Equal(t, []string{"abdominal_pain", "back_pain", "joint_pain"}, got)

			got, err = store.Search("high fever", 0)
			require.NoError(t, err)
			assert.Equal(t, []string{"high_fever"}, got)

			got, err = store.Search("_fever", 0)
			require.NoError(t, err)
			assert.Equal(t, []string{"high_fever", "mild_fever"}, got)

			got, err = store.Search("pain", 2)
			require.NoError(t, err)
			assert.Equal(t, []string{"abdominal_pain", "back_pain"}, got)

			got, err = store.Search("%", 0)
			require.NoError(t, err)
			assert.Equal(t, []string{"100%_itch"}, got)

			got, err = store.Search("  ", 0)
			require.NoError(t, err)
			assert.Empty(t, got)

			got, err = store.Search("dizziness", 0)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestLoadFallsBackToCommon(t *testing.T) {
	store := Load("", nil)
	assert.Equal(t, SourceMemory, store.Source())
	n, err := store.Len()
	require.NoError(t, err)
	assert.Equal(t, len(symptoms.Common), n)

	store = Load(filepath.Join(t.TempDir(), "missing.db"), nil)
	assert.Equal(t, SourceMemory, store.Source())

	store = Load(createTestCatalog(t, "chills"), nil)
	defer store.Close()
	assert.Equal(t, SourceSQLite, store.Source())
}

func TestNewMemoryDedupes(t *testing.T) {
	store := NewMemory("cough", "", "cough", "chills")
	n, err := store.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCloseIsIdempotent(t *testing.T) {
	store, err := Open(createTestCatalog(t, "chills"))
	require.NoError(t, err)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
