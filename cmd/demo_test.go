package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantkit/quantkit/config"
	"github.com/quantkit/quantkit/journal"
)

func TestJournalRecorderDefaultsToSQLite(t *testing.T) {
	cfg := config.Config{
		JournalPath: filepath.Join(t.TempDir(), "demo_journal"),
	}

	recorder := newJournalRecorder(cfg)

	writer, ok := recorder.(*journal.SQLiteWriter)
	require.True(t, ok,
		"without a ClickHouse host the journal must be a SQLite file")
	assert.NotNil(t, writer.DB)

	writer.DB.Close()
}
