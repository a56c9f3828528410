// Package ingest orchestrates transcript upload for an all-hands session:
// store the transcript, generate answers for every open question, then mark
// the session completed. The three writes form a saga so a failure at any
// point leaves the session exactly as it was.
package ingest

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/hwetherall/innovera-ama/internal/answers"
	"github.com/hwetherall/innovera-ama/internal/saga"
	"github.com/hwetherall/innovera-ama/internal/services"
	"github.com/hwetherall/innovera-ama/internal/store"
)

// Ingestor runs the transcript-to-completed-session pipeline.
type Ingestor struct {
	store     *store.Store
	generator *answers.Generator
	logger    *slog.Logger
}

// NewIngestor builds an Ingestor.
func NewIngestor(st *store.Store, generator *answers.Generator, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Ingestor{
		store:     st,
		generator: generator,
		logger:    logger.With(slog.String("component", "ingest")),
	}
}

// Result reports what the pipeline produced.
type Result struct {
	Transcript *store.Transcript `json:"transcript"`
	Answers    []*store.Answer   `json:"answers"`
}

// CreateTranscriptAndAnswerSession stores the transcript, answers every open
// question, and completes the session. The session must be waiting for a
// transcript. On any failure the recorded steps are compensated newest-first
// and the session stays in waiting_transcript.
func (i *Ingestor) CreateTranscriptAndAnswerSession(ctx context.Context, sessionID, content string) (*Result, error) {
	if strings.TrimSpace(content) == "" {
		return nil, services.Wrap(services.ErrValidation, "ingest", "upload", "transcript content required", nil)
	}

	session, err := i.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, services.Wrap(nil, "ingest", "load session", "", err)
	}
	if session == nil {
		return nil, services.Wrap(services.ErrNotFound, "ingest", "load session", "session "+sessionID, nil)
	}
	if session.Status != store.SessionWaitingTranscript {
		return nil, services.Wrap(services.ErrStateConflict, "ingest", "upload",
			"session is "+string(session.Status)+", expected waiting_transcript", nil)
	}

	sg := saga.New(i.logger)

	transcript, err := i.store.CreateTranscript(ctx, sessionID, content)
	if err != nil {
		return nil, services.Wrap(nil, "ingest", "store transcript", "", err)
	}
	sg.Record("delete transcript", func(ctx context.Context) error {
		_, err := i.store.DeleteTranscript(ctx, transcript.ID)
		return err
	})

	generated, err := i.generator.AnswerSession(ctx, sessionID)
	if err != nil {
		return nil, sg.Compensate(ctx, err)
	}
	if len(generated) == 0 {
		err := services.Wrap(services.ErrStateConflict, "ingest", "generate answers", "session has no unanswered questions", nil)
		return nil, sg.Compensate(ctx, err)
	}
	questionIDs := make([]string, 0, len(generated))
	for _, answer := range generated {
		questionIDs = append(questionIDs, answer.QuestionID)
	}
	sg.Record("delete answers", func(ctx context.Context) error {
		return i.store.DeleteAnswersForQuestions(ctx, questionIDs)
	})

	if err := i.store.UpdateSessionStatus(ctx, sessionID, store.SessionCompleted); err != nil {
		wrapped := services.Wrap(nil, "ingest", "complete session", "", err)
		return nil, sg.Compensate(ctx, wrapped)
	}

	sg.Commit()
	i.logger.Info("session completed",
		slog.String("session_id", sessionID),
		slog.Int("answers", len(generated)))
	return &Result{Transcript: transcript, Answers: generated}, nil
}
