package store

// Transcript is one chat session in the journal.
type Transcript struct {
	UID       string
	Title     string
	CreatedTs int64
	UpdatedTs int64
	TurnCount int32 // populated by ListTranscripts
}

type FindTranscript struct {
	UID   *string
	Limit *int
}

// TranscriptTurn is a single user or assistant message.
type TranscriptTurn struct {
	ID            int64
	TranscriptUID string
	Role          string
	Content       string
	CreatedTs     int64
}

type FindTranscriptTurn struct {
	TranscriptUID string
	Limit         *int
}
