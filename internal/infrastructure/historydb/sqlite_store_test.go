package historydb

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/omnichat/omnichat/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NotNil(t, store)
	return store
}

func record(session, provider, prompt string, at time.Time) domain.TurnRecord {
	return domain.TurnRecord{
		SessionID: session,
		Timestamp: at,
		Provider:  provider,
		Model:     provider + "-model",
		Prompt:    prompt,
		Reply:     "reply to " + prompt,
		LatencyMS: 120,
	}
}

func TestSaveAndRecordsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(record("s1", "gemini", "first", base)))
	require.NoError(t, store.Save(record("s1", "gemini", "second", base.Add(time.Minute))))
	require.NoError(t, store.Save(record("s1", "openai", "third", base.Add(2*time.Minute))))

	records, err := store.Records(0, "")
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "third", records[0].Prompt)
	require.Equal(t, "first", records[2].Prompt)
	require.Equal(t, "openai", records[0].Provider)
	require.True(t, records[0].Timestamp.Equal(base.Add(2*time.Minute)))
}

func TestRecordsLimitAndSearch(t *testing.T) {
	store := newTestStore(t)
	base := time.Now().UTC().Truncate(time.Second)

	for i, prompt := range []string{"tell me about go", "weather today", "go concurrency"} {
		require.NoError(t, store.Save(record("s1", "gemini", prompt, base.Add(time.Duration(i)*time.Minute))))
	}

	limited, err := store.Records(2, "")
	require.NoError(t, err)
	require.Len(t, limited, 2)

	matched, err := store.Records(0, "go")
	require.NoError(t, err)
	require.Len(t, matched, 2)
	for _, rec := range matched {
		require.Contains(t, rec.Prompt+rec.Reply, "go")
	}
}

func TestClearRemovesEverything(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(record("s1", "claude", "hello", time.Now())))
	require.NoError(t, store.Clear())

	records, err := store.Records(0, "")
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestExportJSONWritesOneLinePerTurn(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(record("s1", "groq", "alpha", base)))
	require.NoError(t, store.Save(record("s1", "groq", "beta", base.Add(time.Minute))))

	dest := filepath.Join(t.TempDir(), "export.jsonl")
	require.NoError(t, store.ExportJSON(dest))

	file, err := os.Open(dest)
	require.NoError(t, err)
	defer file.Close()

	lines := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var rec domain.TurnRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		require.Equal(t, "groq", rec.Provider)
		lines++
	}
	require.NoError(t, scanner.Err())
	require.Equal(t, 2, lines)
}

func TestDegradedStoreIsNoOp(t *testing.T) {
	store := &SQLiteStore{path: "/nonexistent/history.db"}

	require.NoError(t, store.Save(record("s1", "gemini", "hello", time.Now())))
	records, err := store.Records(0, "")
	require.NoError(t, err)
	require.Nil(t, records)
	require.NoError(t, store.Clear())
}
