// Package store persists sessions, questions, answers, transcripts, companies,
// tags, and customer conversations in SQLite. Answer creation and deletion
// always flip the owning question's is_answered flag inside the same
// transaction, so the flag and the answer row cannot diverge.
package store
