package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const answerColumns = "id, question_id, answer_text, confidence_score, created_at"

// CreateAnswers inserts a batch of answers and marks their questions answered
// inside one transaction. Either every answer lands or none do. Questions that
// already carry an answer have it replaced in the same transaction.
func (s *Store) CreateAnswers(ctx context.Context, inserts []AnswerInsert) ([]*Answer, error) {
	if len(inserts) == 0 {
		return nil, nil
	}
	created := make([]*Answer, 0, len(inserts))
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, insert := range inserts {
			answer, err := insertAnswerTx(ctx, tx, insert)
			if err != nil {
				return err
			}
			created = append(created, answer)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreateAnswer inserts a single answer and flips the question's flag in one
// transaction.
func (s *Store) CreateAnswer(ctx context.Context, insert AnswerInsert) (*Answer, error) {
	var created *Answer
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		answer, err := insertAnswerTx(ctx, tx, insert)
		if err != nil {
			return err
		}
		created = answer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func insertAnswerTx(ctx context.Context, tx *sql.Tx, insert AnswerInsert) (*Answer, error) {
	// Replace any previous answer so the UNIQUE(question_id) constraint holds.
	if _, err := tx.ExecContext(ctx, `DELETE FROM answers WHERE question_id = ?`, insert.QuestionID); err != nil {
		return nil, fmt.Errorf("delete previous answer: %w", err)
	}

	answer := &Answer{
		ID:              uuid.NewString(),
		QuestionID:      insert.QuestionID,
		AnswerText:      insert.AnswerText,
		ConfidenceScore: insert.ConfidenceScore,
	}
	timestamp := nowTimestamp()
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO answers (id, question_id, answer_text, confidence_score, created_at) VALUES (?, ?, ?, ?, ?)`,
		answer.ID, answer.QuestionID, answer.AnswerText, answer.ConfidenceScore, timestamp,
	); err != nil {
		return nil, fmt.Errorf("insert answer: %w", err)
	}

	res, err := tx.ExecContext(ctx, `UPDATE questions SET is_answered = 1 WHERE id = ?`, insert.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("mark question answered: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("question %s not found", insert.QuestionID)
	}

	if created, err := parseTimeString(timestamp); err == nil {
		answer.CreatedAt = created
	}
	return answer, nil
}

// GetAnswerByQuestion fetches the answer for a question, returning nil when absent.
func (s *Store) GetAnswerByQuestion(ctx context.Context, questionID string) (*Answer, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+answerColumns+` FROM answers WHERE question_id = ?`, questionID)
	answer, err := scanAnswer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get answer: %w", err)
	}
	return answer, nil
}

// ListSessionAnswers returns every answer belonging to a session's questions.
func (s *Store) ListSessionAnswers(ctx context.Context, sessionID string) ([]*Answer, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT a.id, a.question_id, a.answer_text, a.confidence_score, a.created_at
         FROM answers a JOIN questions q ON q.id = a.question_id
         WHERE q.session_id = ? ORDER BY q.created_at`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list session answers: %w", err)
	}
	defer rows.Close()

	var answers []*Answer
	for rows.Next() {
		answer, err := scanAnswer(rows)
		if err != nil {
			return nil, err
		}
		answers = append(answers, answer)
	}
	return answers, rows.Err()
}

// DeleteAnswerByQuestion removes a question's answer and resets its flag in
// one transaction.
func (s *Store) DeleteAnswerByQuestion(ctx context.Context, questionID string) (bool, error) {
	var deleted bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM answers WHERE question_id = ?`, questionID)
		if err != nil {
			return fmt.Errorf("delete answer: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		deleted = affected > 0
		if !deleted {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `UPDATE questions SET is_answered = 0 WHERE id = ?`, questionID); err != nil {
			return fmt.Errorf("reset question flag: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// DeleteAnswersForQuestions removes the answers for the supplied questions and
// resets their flags, all in one transaction. Used as the compensation for a
// failed ingestion after answers were persisted.
func (s *Store) DeleteAnswersForQuestions(ctx context.Context, questionIDs []string) error {
	if len(questionIDs) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, id := range questionIDs {
			if _, err := tx.ExecContext(ctx, `DELETE FROM answers WHERE question_id = ?`, id); err != nil {
				return fmt.Errorf("delete answer for %s: %w", id, err)
			}
			if _, err := tx.ExecContext(ctx, `UPDATE questions SET is_answered = 0 WHERE id = ?`, id); err != nil {
				return fmt.Errorf("reset flag for %s: %w", id, err)
			}
		}
		return nil
	})
}

func scanAnswer(scanner interface{ Scan(dest ...any) error }) (*Answer, error) {
	var (
		id         string
		questionID string
		text       string
		confidence float64
		createdRaw string
	)
	if err := scanner.Scan(&id, &questionID, &text, &confidence, &createdRaw); err != nil {
		return nil, err
	}
	answer := &Answer{
		ID:              id,
		QuestionID:      questionID,
		AnswerText:      text,
		ConfidenceScore: confidence,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		answer.CreatedAt = created
	}
	return answer, nil
}
