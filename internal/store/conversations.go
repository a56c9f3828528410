package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const conversationColumns = "id, company_id, customer_name, innovera_person, date, tag_ids, created_at"

// CreateConversation inserts a customer conversation referencing the supplied
// tag IDs.
func (s *Store) CreateConversation(ctx context.Context, companyID, customerName, innoveraPerson, date string, tagIDs []string) (*CustomerConversation, error) {
	if tagIDs == nil {
		tagIDs = []string{}
	}
	encoded, err := json.Marshal(tagIDs)
	if err != nil {
		return nil, fmt.Errorf("marshal tag ids: %w", err)
	}
	id := uuid.NewString()
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO customer_conversations (id, company_id, customer_name, innovera_person, date, tag_ids, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, companyID, customerName, innoveraPerson, date, string(encoded), nowTimestamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert conversation: %w", err)
	}
	return s.GetConversation(ctx, id)
}

// GetConversation fetches a conversation by identifier, returning nil when absent.
func (s *Store) GetConversation(ctx context.Context, id string) (*CustomerConversation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+conversationColumns+` FROM customer_conversations WHERE id = ?`, id)
	conversation, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return conversation, nil
}

// ListConversationsForCompany returns a company's conversations, newest date first.
func (s *Store) ListConversationsForCompany(ctx context.Context, companyID string) ([]*CustomerConversation, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+conversationColumns+` FROM customer_conversations WHERE company_id = ? ORDER BY date DESC`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []*CustomerConversation
	for rows.Next() {
		conversation, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, conversation)
	}
	return conversations, rows.Err()
}

// UpdateConversation rewrites a conversation's editable fields and tag set,
// returning the fresh row or nil when the conversation does not exist.
func (s *Store) UpdateConversation(ctx context.Context, id, customerName, innoveraPerson, date string, tagIDs []string) (*CustomerConversation, error) {
	if tagIDs == nil {
		tagIDs = []string{}
	}
	encoded, err := json.Marshal(tagIDs)
	if err != nil {
		return nil, fmt.Errorf("marshal tag ids: %w", err)
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE customer_conversations SET customer_name = ?, innovera_person = ?, date = ?, tag_ids = ? WHERE id = ?`,
		customerName, innoveraPerson, date, string(encoded), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update conversation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}
	return s.GetConversation(ctx, id)
}

// DeleteConversation removes a conversation; its transcript, notes, and
// summary cascade.
func (s *Store) DeleteConversation(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM customer_conversations WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete conversation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// CreateConversationTranscript inserts the 1:1 transcript child.
func (s *Store) CreateConversationTranscript(ctx context.Context, conversationID, content string) (*ConversationTranscript, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO conversation_transcripts (id, conversation_id, content) VALUES (?, ?, ?)`,
		id, conversationID, s.compress(content),
	)
	if err != nil {
		return nil, fmt.Errorf("insert conversation transcript: %w", err)
	}
	return &ConversationTranscript{ID: id, ConversationID: conversationID, Content: content}, nil
}

// GetConversationTranscript fetches the transcript child, returning nil when absent.
func (s *Store) GetConversationTranscript(ctx context.Context, conversationID string) (*ConversationTranscript, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, conversation_id, content FROM conversation_transcripts WHERE conversation_id = ?`, conversationID)
	var (
		id         string
		convID     string
		compressed []byte
	)
	err := row.Scan(&id, &convID, &compressed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation transcript: %w", err)
	}
	content, err := s.decompress(compressed)
	if err != nil {
		return nil, err
	}
	return &ConversationTranscript{ID: id, ConversationID: convID, Content: content}, nil
}

// CreateConversationNote inserts the 1:1 notes child.
func (s *Store) CreateConversationNote(ctx context.Context, conversationID, content string) (*ConversationNote, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO conversation_notes (id, conversation_id, content) VALUES (?, ?, ?)`,
		id, conversationID, content,
	)
	if err != nil {
		return nil, fmt.Errorf("insert conversation note: %w", err)
	}
	return &ConversationNote{ID: id, ConversationID: conversationID, Content: content}, nil
}

// UpsertConversationNote creates or replaces the conversation's notes.
func (s *Store) UpsertConversationNote(ctx context.Context, conversationID, content string) (*ConversationNote, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO conversation_notes (id, conversation_id, content) VALUES (?, ?, ?)
         ON CONFLICT(conversation_id) DO UPDATE SET content = excluded.content`,
		id, conversationID, content,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert conversation note: %w", err)
	}
	return s.GetConversationNote(ctx, conversationID)
}

// GetConversationNote fetches the notes child, returning nil when absent.
func (s *Store) GetConversationNote(ctx context.Context, conversationID string) (*ConversationNote, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, conversation_id, content FROM conversation_notes WHERE conversation_id = ?`, conversationID)
	var note ConversationNote
	err := row.Scan(&note.ID, &note.ConversationID, &note.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation note: %w", err)
	}
	return &note, nil
}

// UpsertConversationSummary creates or replaces the conversation's summary.
func (s *Store) UpsertConversationSummary(ctx context.Context, conversationID, content string) (*ConversationSummary, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO conversation_summaries (id, conversation_id, content) VALUES (?, ?, ?)
         ON CONFLICT(conversation_id) DO UPDATE SET content = excluded.content`,
		id, conversationID, content,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert conversation summary: %w", err)
	}
	return s.GetConversationSummary(ctx, conversationID)
}

// GetConversationSummary fetches the summary child, returning nil when absent.
func (s *Store) GetConversationSummary(ctx context.Context, conversationID string) (*ConversationSummary, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, conversation_id, content FROM conversation_summaries WHERE conversation_id = ?`, conversationID)
	var summary ConversationSummary
	err := row.Scan(&summary.ID, &summary.ConversationID, &summary.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation summary: %w", err)
	}
	return &summary, nil
}

// ListSummaryRecords returns every conversation summary joined with company
// and conversation metadata, newest date first. The ask-anything retrieval
// prompt is built from these.
func (s *Store) ListSummaryRecords(ctx context.Context) ([]*SummaryRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT co.company_name, cc.customer_name, cc.date, cs.content
         FROM conversation_summaries cs
         JOIN customer_conversations cc ON cc.id = cs.conversation_id
         JOIN companies co ON co.id = cc.company_id
         ORDER BY cc.date DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list summary records: %w", err)
	}
	defer rows.Close()

	var records []*SummaryRecord
	for rows.Next() {
		var record SummaryRecord
		if err := rows.Scan(&record.CompanyName, &record.CustomerName, &record.Date, &record.Content); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}

func scanConversation(scanner interface{ Scan(dest ...any) error }) (*CustomerConversation, error) {
	var (
		id         string
		companyID  string
		customer   string
		person     string
		date       string
		tagsRaw    string
		createdRaw string
	)
	if err := scanner.Scan(&id, &companyID, &customer, &person, &date, &tagsRaw, &createdRaw); err != nil {
		return nil, err
	}
	conversation := &CustomerConversation{
		ID:             id,
		CompanyID:      companyID,
		CustomerName:   customer,
		InnoveraPerson: person,
		Date:           date,
		TagIDs:         []string{},
	}
	if tagsRaw != "" {
		if err := json.Unmarshal([]byte(tagsRaw), &conversation.TagIDs); err != nil {
			return nil, fmt.Errorf("decode tag ids: %w", err)
		}
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		conversation.CreatedAt = created
	}
	return conversation, nil
}
