package store

import "time"

// SessionStatus tracks a session through its lifecycle.
type SessionStatus string

const (
	SessionActive            SessionStatus = "active"
	SessionWaitingTranscript SessionStatus = "waiting_transcript"
	SessionCompleted         SessionStatus = "completed"
)

// ValidSessionStatus reports whether the value is a known lifecycle state.
func ValidSessionStatus(status SessionStatus) bool {
	switch status {
	case SessionActive, SessionWaitingTranscript, SessionCompleted:
		return true
	}
	return false
}

// CompanyType classifies a client company.
type CompanyType string

const (
	CompanyVC        CompanyType = "vc"
	CompanyCorporate CompanyType = "corporate"
	CompanyOther     CompanyType = "other"
)

// ValidCompanyType reports whether the value is a known company type.
func ValidCompanyType(t CompanyType) bool {
	switch t {
	case CompanyVC, CompanyCorporate, CompanyOther:
		return true
	}
	return false
}

// Session is a recurring all-hands meeting cycle that collects questions.
type Session struct {
	ID        string        `json:"id"`
	MonthYear string        `json:"month_year"`
	Status    SessionStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Question is an anonymous question submitted against an active session.
type Question struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	QuestionText string    `json:"question_text"`
	AssignedTo   string    `json:"assigned_to"`
	IsAnswered   bool      `json:"is_answered"`
	CreatedAt    time.Time `json:"created_at"`
}

// Answer holds the extracted answer for a question, at most one per question.
type Answer struct {
	ID              string    `json:"id"`
	QuestionID      string    `json:"question_id"`
	AnswerText      string    `json:"answer_text"`
	ConfidenceScore float64   `json:"confidence_score"`
	CreatedAt       time.Time `json:"created_at"`
}

// AnswerInsert is the payload for creating an answer.
type AnswerInsert struct {
	QuestionID      string  `json:"question_id"`
	AnswerText      string  `json:"answer_text"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// Transcript is the raw meeting text, optionally linked to a session.
type Transcript struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id,omitempty"`
	Content    string    `json:"content"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Company is a client company tracked for customer conversations.
type Company struct {
	ID          string      `json:"id"`
	CompanyName string      `json:"company_name"`
	CompanyType CompanyType `json:"company_type"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Tag labels customer conversations; shared across all conversations.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CustomerConversation records one customer meeting for a company.
type CustomerConversation struct {
	ID             string    `json:"id"`
	CompanyID      string    `json:"company_id"`
	CustomerName   string    `json:"customer_name"`
	InnoveraPerson string    `json:"innovera_person"`
	Date           string    `json:"date"`
	TagIDs         []string  `json:"tag_ids"`
	CreatedAt      time.Time `json:"created_at"`
}

// ConversationTranscript is the 1:1 transcript child of a conversation.
type ConversationTranscript struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
}

// ConversationNote is the 1:1 free-form notes child of a conversation.
type ConversationNote struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
}

// ConversationSummary is the LLM-generated summary, created or replaced per
// conversation.
type ConversationSummary struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
}

// SummaryRecord joins a conversation summary with the metadata needed for
// retrieval prompts.
type SummaryRecord struct {
	CompanyName  string `json:"company_name"`
	CustomerName string `json:"customer_name"`
	Date         string `json:"date"`
	Content      string `json:"content"`
}
