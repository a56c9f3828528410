package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const questionColumns = "id, session_id, question_text, assigned_to, is_answered, created_at"

// CreateQuestion inserts a question against a session.
func (s *Store) CreateQuestion(ctx context.Context, sessionID, questionText, assignedTo string) (*Question, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO questions (id, session_id, question_text, assigned_to, is_answered, created_at)
         VALUES (?, ?, ?, ?, 0, ?)`,
		id, sessionID, questionText, assignedTo, nowTimestamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert question: %w", err)
	}
	return s.GetQuestion(ctx, id)
}

// GetQuestion fetches a question by identifier, returning nil when absent.
func (s *Store) GetQuestion(ctx context.Context, id string) (*Question, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = ?`, id)
	question, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	return question, nil
}

// ListQuestions returns all questions for a session in submission order.
func (s *Store) ListQuestions(ctx context.Context, sessionID string) ([]*Question, error) {
	return s.queryQuestions(ctx, `SELECT `+questionColumns+` FROM questions WHERE session_id = ? ORDER BY created_at`, sessionID)
}

// ListUnansweredQuestions returns the session's questions still awaiting an answer.
func (s *Store) ListUnansweredQuestions(ctx context.Context, sessionID string) ([]*Question, error) {
	return s.queryQuestions(ctx, `SELECT `+questionColumns+` FROM questions WHERE session_id = ? AND is_answered = 0 ORDER BY created_at`, sessionID)
}

func (s *Store) queryQuestions(ctx context.Context, query string, args ...any) ([]*Question, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var questions []*Question
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}
	return questions, rows.Err()
}

// CountQuestions returns the number of questions submitted to a session.
func (s *Store) CountQuestions(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM questions WHERE session_id = ?`, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return count, nil
}

// DeleteQuestion removes a question; its answer cascades.
func (s *Store) DeleteQuestion(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete question: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func scanQuestion(scanner interface{ Scan(dest ...any) error }) (*Question, error) {
	var (
		id         string
		sessionID  string
		text       string
		assignedTo string
		answered   int
		createdRaw string
	)
	if err := scanner.Scan(&id, &sessionID, &text, &assignedTo, &answered, &createdRaw); err != nil {
		return nil, err
	}
	question := &Question{
		ID:           id,
		SessionID:    sessionID,
		QuestionText: text,
		AssignedTo:   assignedTo,
		IsAnswered:   answered != 0,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		question.CreatedAt = created
	}
	return question, nil
}
