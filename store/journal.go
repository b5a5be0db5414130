package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
)

const maxTitleLength = 60

// Journal appends chat turns to one transcript. The transcript row is created
// lazily on the first recorded turn and titled after it.
type Journal struct {
	store *Store
	uid   string

	mu      sync.Mutex
	created bool
}

// NewJournal starts a fresh transcript with a generated uid.
func (s *Store) NewJournal() *Journal {
	return &Journal{store: s, uid: shortuuid.New()}
}

// UID identifies the transcript this journal writes to.
func (j *Journal) UID() string {
	return j.uid
}

// Record stores one turn.
func (j *Journal) Record(ctx context.Context, role, content string, at time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.created {
		_, err := j.store.CreateTranscript(ctx, &Transcript{
			UID:       j.uid,
			Title:     titleFrom(content),
			CreatedTs: at.Unix(),
		})
		if err != nil {
			return errors.Wrapf(err, "failed to create transcript %s", j.uid)
		}
		j.created = true
	}

	_, err := j.store.CreateTranscriptTurn(ctx, &TranscriptTurn{
		TranscriptUID: j.uid,
		Role:          role,
		Content:       content,
		CreatedTs:     at.Unix(),
	})
	return errors.Wrap(err, "failed to record turn")
}

func titleFrom(content string) string {
	title := strings.Join(strings.Fields(content), " ")
	if r := []rune(title); len(r) > maxTitleLength {
		title = string(r[:maxTitleLength-3]) + "..."
	}
	if title == "" {
		return "New Chat"
	}
	return title
}
