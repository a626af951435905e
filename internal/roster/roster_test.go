package roster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeRoster(t, `name,team,id,gender
Kim,Support 1,EMP001,female
Kim,Support 2,EMP002,male
Park,Support 1,EMP003,
`)

	r := Load(path)
	assert.Equal(t, 3, r.Len())

	entry, ok := r.Lookup("Kim", "Support 2")
	require.True(t, ok)
	assert.Equal(t, "EMP002", entry.ExternalID)
	assert.Equal(t, "male", entry.Gender)

	assert.Equal(t, []string{"Support 1", "Support 2"}, r.TeamsFor("Kim"))
	assert.Equal(t, []string{"Support 1"}, r.TeamsFor("Park"))
	assert.Empty(t, r.TeamsFor("Lee"))
}

func TestLoad_MissingFileYieldsEmptyRoster(t *testing.T) {
	r := Load(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Zero(t, r.Len())
}

// A roster that cannot be used degrades the same way a missing one does:
// the run keeps going with an empty registry.
func TestLoad_MalformedRosterYieldsEmptyRoster(t *testing.T) {
	t.Run("Missing required column", func(t *testing.T) {
		r := Load(writeRoster(t, "name,id\nKim,EMP001\n"))
		assert.Zero(t, r.Len())
	})

	t.Run("Unreadable header", func(t *testing.T) {
		r := Load(writeRoster(t, ""))
		assert.Zero(t, r.Len())
	})
}

func TestLoad_SkipsIncompleteAndDuplicateRows(t *testing.T) {
	path := writeRoster(t, `name,team,id,gender
Kim,Support 1,EMP001,female
,Support 1,EMP009,
Park,,EMP010,
Kim,Support 1,EMP099,male
`)

	r := Load(path)
	assert.Equal(t, 1, r.Len())

	// First entry wins on duplicate keys.
	entry, ok := r.Lookup("Kim", "Support 1")
	require.True(t, ok)
	assert.Equal(t, "EMP001", entry.ExternalID)
}

func TestFind(t *testing.T) {
	path := writeRoster(t, `name,team,id,gender
Kim,Support 1,EMP001,female
Kim,Support 2,EMP002,male
Park,Support 1,EMP003,female
`)
	r := Load(path)

	t.Run("Exact match", func(t *testing.T) {
		entry, ok := r.Find("Kim", "Support 2")
		require.True(t, ok)
		assert.Equal(t, "EMP002", entry.ExternalID)
	})

	t.Run("Known team never falls back to name", func(t *testing.T) {
		_, ok := r.Find("Park", "Support 2")
		assert.False(t, ok)
	})

	t.Run("Unknown team with unique name", func(t *testing.T) {
		entry, ok := r.Find("Park", "Unknown")
		require.True(t, ok)
		assert.Equal(t, "EMP003", entry.ExternalID)
	})

	t.Run("Unknown team with ambiguous name", func(t *testing.T) {
		_, ok := r.Find("Kim", "Unknown")
		assert.False(t, ok)
	})
}
