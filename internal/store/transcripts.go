package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// CreateTranscript inserts a transcript, optionally linked to a session.
func (s *Store) CreateTranscript(ctx context.Context, sessionID, content string) (*Transcript, error) {
	id := uuid.NewString()
	timestamp := nowTimestamp()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO transcripts (id, session_id, content, uploaded_at) VALUES (?, ?, ?, ?)`,
		id, nullableString(sessionID), s.compress(content), timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert transcript: %w", err)
	}
	return s.GetTranscript(ctx, id)
}

// GetTranscript fetches a transcript by identifier, returning nil when absent.
func (s *Store) GetTranscript(ctx context.Context, id string) (*Transcript, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, session_id, content, uploaded_at FROM transcripts WHERE id = ?`, id)
	transcript, err := s.scanTranscript(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}
	return transcript, nil
}

// LatestTranscriptForSession returns the most recently uploaded transcript for
// a session, or nil when none exists. Latest-wins is the documented behavior
// when a session has accumulated more than one upload.
func (s *Store) LatestTranscriptForSession(ctx context.Context, sessionID string) (*Transcript, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, session_id, content, uploaded_at FROM transcripts
         WHERE session_id = ? ORDER BY uploaded_at DESC LIMIT 1`,
		sessionID,
	)
	transcript, err := s.scanTranscript(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest transcript: %w", err)
	}
	return transcript, nil
}

// ListTranscripts returns transcripts, filtered by session when sessionID is
// non-empty, newest first.
func (s *Store) ListTranscripts(ctx context.Context, sessionID string) ([]*Transcript, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if sessionID == "" {
		rows, err = s.db.QueryContext(ctx, `SELECT id, session_id, content, uploaded_at FROM transcripts ORDER BY uploaded_at DESC`)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT id, session_id, content, uploaded_at FROM transcripts WHERE session_id = ? ORDER BY uploaded_at DESC`, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	defer rows.Close()

	var transcripts []*Transcript
	for rows.Next() {
		transcript, err := s.scanTranscript(rows)
		if err != nil {
			return nil, err
		}
		transcripts = append(transcripts, transcript)
	}
	return transcripts, rows.Err()
}

// DeleteTranscript removes a transcript by identifier.
func (s *Store) DeleteTranscript(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transcripts WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete transcript: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func (s *Store) scanTranscript(scanner interface{ Scan(dest ...any) error }) (*Transcript, error) {
	var (
		id          string
		sessionID   sql.NullString
		compressed  []byte
		uploadedRaw string
	)
	if err := scanner.Scan(&id, &sessionID, &compressed, &uploadedRaw); err != nil {
		return nil, err
	}
	content, err := s.decompress(compressed)
	if err != nil {
		return nil, err
	}
	transcript := &Transcript{
		ID:        id,
		SessionID: sessionID.String,
		Content:   content,
	}
	if uploaded, err := parseTimeString(uploadedRaw); err == nil {
		transcript.UploadedAt = uploaded
	}
	return transcript, nil
}
