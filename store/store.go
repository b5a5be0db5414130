package store

import (
	"context"
	"database/sql"

	"github.com/hrygo/creastudio/internal/profile"
)

// Driver is the persistence backend behind a Store.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	Migrate(ctx context.Context) error

	CreateTranscript(ctx context.Context, create *Transcript) (*Transcript, error)
	ListTranscripts(ctx context.Context, find *FindTranscript) ([]*Transcript, error)
	DeleteTranscript(ctx context.Context, uid string) error

	CreateTranscriptTurn(ctx context.Context, create *TranscriptTurn) (*TranscriptTurn, error)
	ListTranscriptTurns(ctx context.Context, find *FindTranscriptTurn) ([]*TranscriptTurn, error)
}

// Store provides access to the local chat journal.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) CreateTranscript(ctx context.Context, create *Transcript) (*Transcript, error) {
	return s.driver.CreateTranscript(ctx, create)
}

func (s *Store) ListTranscripts(ctx context.Context, find *FindTranscript) ([]*Transcript, error) {
	return s.driver.ListTranscripts(ctx, find)
}

func (s *Store) GetTranscript(ctx context.Context, uid string) (*Transcript, error) {
	list, err := s.driver.ListTranscripts(ctx, &FindTranscript{UID: &uid})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) DeleteTranscript(ctx context.Context, uid string) error {
	return s.driver.DeleteTranscript(ctx, uid)
}

func (s *Store) CreateTranscriptTurn(ctx context.Context, create *TranscriptTurn) (*TranscriptTurn, error) {
	return s.driver.CreateTranscriptTurn(ctx, create)
}

func (s *Store) ListTranscriptTurns(ctx context.Context, find *FindTranscriptTurn) ([]*TranscriptTurn, error) {
	return s.driver.ListTranscriptTurns(ctx, find)
}
