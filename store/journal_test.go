package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memDriver struct {
	transcripts []*Transcript
	turns       []*TranscriptTurn
	failCreate  bool
}

func (m *memDriver) GetDB() *sql.DB                    { return nil }
func (m *memDriver) Close() error                      { return nil }
func (m *memDriver) Migrate(ctx context.Context) error { return nil }

func (m *memDriver) CreateTranscript(_ context.Context, create *Transcript) (*Transcript, error) {
	if m.failCreate {
		return nil, errors.New("disk full")
	}
	m.transcripts = append(m.transcripts, create)
	return create, nil
}

func (m *memDriver) ListTranscripts(_ context.Context, find *FindTranscript) ([]*Transcript, error) {
	var out []*Transcript
	for _, t := range m.transcripts {
		if find.UID == nil || *find.UID == t.UID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memDriver) DeleteTranscript(context.Context, string) error { return nil }

func (m *memDriver) CreateTranscriptTurn(_ context.Context, create *TranscriptTurn) (*TranscriptTurn, error) {
	create.ID = int64(len(m.turns) + 1)
	m.turns = append(m.turns, create)
	return create, nil
}

func (m *memDriver) ListTranscriptTurns(context.Context, *FindTranscriptTurn) ([]*TranscriptTurn, error) {
	return m.turns, nil
}

func TestJournalCreatesTranscriptOnce(t *testing.T) {
	d := &memDriver{}
	s := New(d, nil)
	j := s.NewJournal()
	ctx := context.Background()

	require.NoError(t, j.Record(ctx, "user", "  launch   post\nfor spring ", time.Unix(10, 0)))
	require.NoError(t, j.Record(ctx, "assistant", "done", time.Unix(11, 0)))

	require.Len(t, d.transcripts, 1)
	assert.Equal(t, j.UID(), d.transcripts[0].UID)
	assert.Equal(t, "launch post for spring", d.transcripts[0].Title)
	require.Len(t, d.turns, 2)
	assert.Equal(t, j.UID(), d.turns[1].TranscriptUID)
}

func TestJournalUIDsAreUnique(t *testing.T) {
	s := New(&memDriver{}, nil)
	assert.NotEqual(t, s.NewJournal().UID(), s.NewJournal().UID())
}

func TestJournalCreateFailure(t *testing.T) {
	d := &memDriver{failCreate: true}
	j := New(d, nil).NewJournal()

	err := j.Record(context.Background(), "user", "hi", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, d.turns)
}

func TestTitleFrom(t *testing.T) {
	assert.Equal(t, "New Chat", titleFrom("   "))
	assert.Equal(t, "short", titleFrom("short"))

	long := titleFrom(strings.Repeat("a", 100))
	assert.Len(t, []rune(long), maxTitleLength)
	assert.True(t, strings.HasSuffix(long, "..."))
}
