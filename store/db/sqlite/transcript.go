package sqlite

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/creastudio/store"
)

func (d *DB) CreateTranscript(ctx context.Context, create *store.Transcript) (*store.Transcript, error) {
	if create.UpdatedTs == 0 {
		create.UpdatedTs = create.CreatedTs
	}
	stmt := "INSERT INTO transcript (uid, title, created_ts, updated_ts) VALUES (?, ?, ?, ?)"
	if _, err := d.db.ExecContext(ctx, stmt, create.UID, create.Title, create.CreatedTs, create.UpdatedTs); err != nil {
		return nil, errors.Wrapf(err, "failed to insert transcript %s", create.UID)
	}
	return create, nil
}

func (d *DB) ListTranscripts(ctx context.Context, find *store.FindTranscript) ([]*store.Transcript, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.UID != nil {
		where, args = append(where, "t.uid = ?"), append(args, *find.UID)
	}

	query := `SELECT t.uid, t.title, t.created_ts, t.updated_ts, COUNT(tt.id)
		FROM transcript t
		LEFT JOIN transcript_turn tt ON tt.transcript_uid = t.uid
		WHERE ` + strings.Join(where, " AND ") + `
		GROUP BY t.uid
		ORDER BY t.updated_ts DESC, t.created_ts DESC`
	if find.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list transcripts")
	}
	defer rows.Close()

	list := []*store.Transcript{}
	for rows.Next() {
		t := &store.Transcript{}
		if err := rows.Scan(&t.UID, &t.Title, &t.CreatedTs, &t.UpdatedTs, &t.TurnCount); err != nil {
			return nil, errors.Wrap(err, "failed to scan transcript")
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate transcripts")
	}
	return list, nil
}

func (d *DB) DeleteTranscript(ctx context.Context, uid string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM transcript_turn WHERE transcript_uid = ?", uid); err != nil {
		return errors.Wrap(err, "failed to delete turns")
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM transcript WHERE uid = ?", uid); err != nil {
		return errors.Wrap(err, "failed to delete transcript")
	}
	return errors.Wrap(tx.Commit(), "failed to commit transaction")
}

// CreateTranscriptTurn appends a turn and bumps the transcript's updated_ts.
func (d *DB) CreateTranscriptTurn(ctx context.Context, create *store.TranscriptTurn) (*store.TranscriptTurn, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	stmt := "INSERT INTO transcript_turn (transcript_uid, role, content, created_ts) VALUES (?, ?, ?, ?) RETURNING id"
	if err := tx.QueryRowContext(ctx, stmt, create.TranscriptUID, create.Role, create.Content, create.CreatedTs).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to insert turn")
	}

	res, err := tx.ExecContext(ctx, "UPDATE transcript SET updated_ts = MAX(updated_ts, ?) WHERE uid = ?", create.CreatedTs, create.TranscriptUID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to touch transcript")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, errors.Errorf("transcript %s not found", create.TranscriptUID)
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}
	return create, nil
}

// ListTranscriptTurns returns turns oldest first. With a limit, the most
// recent turns are kept.
func (d *DB) ListTranscriptTurns(ctx context.Context, find *store.FindTranscriptTurn) ([]*store.TranscriptTurn, error) {
	query := "SELECT id, transcript_uid, role, content, created_ts FROM transcript_turn WHERE transcript_uid = ? ORDER BY id DESC"
	if find.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, find.TranscriptUID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list turns")
	}
	defer rows.Close()

	list := []*store.TranscriptTurn{}
	for rows.Next() {
		t := &store.TranscriptTurn{}
		if err := rows.Scan(&t.ID, &t.TranscriptUID, &t.Role, &t.Content, &t.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan turn")
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate turns")
	}

	slices.Reverse(list)
	return list, nil
}
