package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/creastudio/internal/profile"
	"github.com/hrygo/creastudio/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	p := &profile.Profile{Mode: "dev", JournalDSN: filepath.Join(t.TempDir(), "journal.db")}
	driver, err := NewDB(p)
	require.NoError(t, err)

	s := store.New(driver, p)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestNewDBRequiresDSN(t *testing.T) {
	_, err := NewDB(&profile.Profile{})
	require.Error(t, err)
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Migrate(ctx))

	ok, err := s.GetDriver().(*DB).IsInitialized(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestJournalRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at := time.Unix(1_700_000_000, 0)

	j := s.NewJournal()
	require.NoError(t, j.Record(ctx, "user", "Post about our new coffee blend", at))
	require.NoError(t, j.Record(ctx, "assistant", "Here is your post:", at.Add(time.Second)))
	require.NoError(t, j.Record(ctx, "user", "Generate a new version", at.Add(2*time.Second)))

	tr, err := s.GetTranscript(ctx, j.UID())
	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.Equal(t, "Post about our new coffee blend", tr.Title)
	assert.Equal(t, at.Unix(), tr.CreatedTs)
	assert.Equal(t, at.Add(2*time.Second).Unix(), tr.UpdatedTs)
	assert.EqualValues(t, 3, tr.TurnCount)

	turns, err := s.ListTranscriptTurns(ctx, &store.FindTranscriptTurn{TranscriptUID: j.UID()})
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, "user", turns[0].Role)
	assert.Equal(t, "assistant", turns[1].Role)
	assert.Less(t, turns[0].ID, turns[1].ID)

	limit := 2
	recent, err := s.ListTranscriptTurns(ctx, &store.FindTranscriptTurn{TranscriptUID: j.UID(), Limit: &limit})
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "Here is your post:", recent[0].Content)
	assert.Equal(t, "Generate a new version", recent[1].Content)
}

func TestListTranscriptsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	older := s.NewJournal()
	require.NoError(t, older.Record(ctx, "user", "first", time.Unix(100, 0)))
	newer := s.NewJournal()
	require.NoError(t, newer.Record(ctx, "user", "second", time.Unix(200, 0)))

	list, err := s.ListTranscripts(ctx, &store.FindTranscript{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.UID(), list[0].UID)
	assert.Equal(t, older.UID(), list[1].UID)

	limit := 1
	list, err = s.ListTranscripts(ctx, &store.FindTranscript{Limit: &limit})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDeleteTranscriptRemovesTurns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	j := s.NewJournal()
	require.NoError(t, j.Record(ctx, "user", "hello", time.Unix(100, 0)))
	require.NoError(t, s.DeleteTranscript(ctx, j.UID()))

	tr, err := s.GetTranscript(ctx, j.UID())
	require.NoError(t, err)
	assert.Nil(t, tr)

	turns, err := s.ListTranscriptTurns(ctx, &store.FindTranscriptTurn{TranscriptUID: j.UID()})
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestTurnRequiresTranscript(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateTranscriptTurn(context.Background(), &store.TranscriptTurn{
		TranscriptUID: "missing",
		Role:          "user",
		Content:       "x",
		CreatedTs:     1,
	})
	require.Error(t, err)
}

func TestRoleConstraint(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateTranscript(ctx, &store.Transcript{UID: "t1", Title: "t", CreatedTs: 1})
	require.NoError(t, err)

	_, err = s.CreateTranscriptTurn(ctx, &store.TranscriptTurn{TranscriptUID: "t1", Role: "system", Content: "x", CreatedTs: 1})
	require.Error(t, err)
}
