package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLogFile(t *testing.T) *ZapLogger {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.log")
	lines := `{"timestamp":"2026-09-01T10:00:00Z","level":"INFO","message":"first"}
{"timestamp":"2026-09-01T10:00:01Z","level":"WARN","message":"second"}
{"timestamp":"2026-09-01T10:00:02Z","level":"INFO","message":"third"}
`
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))
	return &ZapLogger{filePath: path}
}

func TestGetLogsNewestFirst(t *testing.T) {
	l := writeLogFile(t)

	entries, err := l.GetLogs("", 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "third", entries[0].Message)
	assert.Equal(t, "first", entries[2].Message)
}

func TestGetLogsLevelFilterAndPaging(t *testing.T) {
	l := writeLogFile(t)

	entries, err := l.GetLogs("INFO", 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	entries, err = l.GetLogs("", 1, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "second", entries[0].Message)
}

func TestGetLogsClampsNegativePagination(t *testing.T) {
	l := writeLogFile(t)

	entries, err := l.GetLogs("", -1, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = l.GetLogs("", 10, -5)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestGetLogsMissingFile(t *testing.T) {
	l := &ZapLogger{filePath: filepath.Join(t.TempDir(), "absent.log")}

	entries, err := l.GetLogs("", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
