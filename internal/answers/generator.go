// Package answers turns a session's uploaded transcript into one extracted
// answer per unanswered question. Questions are processed in parallel, each
// under its own timeout; a single failure abandons the whole batch so the
// session is never left partially answered.
package answers

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/hwetherall/innovera-ama/internal/logging"
	"github.com/hwetherall/innovera-ama/internal/services"
	"github.com/hwetherall/innovera-ama/internal/services/openrouter"
	"github.com/hwetherall/innovera-ama/internal/store"
)

const defaultQuestionTimeout = 45 * time.Second

// Gateway is the slice of the LLM client the generator needs.
type Gateway interface {
	AnswerQuestion(ctx context.Context, questionText, assignedTo, transcript string) (openrouter.AnswerResult, error)
}

// Generator extracts answers for a session from its latest transcript.
type Generator struct {
	store           *store.Store
	gateway         Gateway
	logger          *slog.Logger
	questionTimeout time.Duration
}

// NewGenerator builds a Generator. A timeout of zero selects the default per
// question limit.
func NewGenerator(st *store.Store, gateway Gateway, logger *slog.Logger, questionTimeout time.Duration) *Generator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if questionTimeout <= 0 {
		questionTimeout = defaultQuestionTimeout
	}
	return &Generator{
		store:           st,
		gateway:         gateway,
		logger:          logger.With(slog.String("component", "answers")),
		questionTimeout: questionTimeout,
	}
}

type questionResult struct {
	index  int
	insert store.AnswerInsert
	err    error
}

// AnswerSession generates and persists answers for every unanswered question
// in the session, reading from the most recent transcript. All answers land
// in one transaction; any generation failure leaves the database untouched.
func (g *Generator) AnswerSession(ctx context.Context, sessionID string) ([]*store.Answer, error) {
	session, err := g.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, services.Wrap(nil, "answers", "load session", "", err)
	}
	if session == nil {
		return nil, services.Wrap(services.ErrNotFound, "answers", "load session", "session "+sessionID, nil)
	}

	questions, err := g.store.ListUnansweredQuestions(ctx, sessionID)
	if err != nil {
		return nil, services.Wrap(nil, "answers", "list questions", "", err)
	}
	if len(questions) == 0 {
		g.logger.Info("no unanswered questions", slog.String("session_id", sessionID))
		return nil, nil
	}

	transcript, err := g.store.LatestTranscriptForSession(ctx, sessionID)
	if err != nil {
		return nil, services.Wrap(nil, "answers", "load transcript", "", err)
	}
	if transcript == nil {
		return nil, services.Wrap(services.ErrNotFound, "answers", "load transcript", "no transcript uploaded for session "+sessionID, nil)
	}

	inserts, err := g.generateAll(ctx, questions, transcript.Content)
	if err != nil {
		return nil, err
	}

	created, err := g.store.CreateAnswers(ctx, inserts)
	if err != nil {
		return nil, services.Wrap(nil, "answers", "persist answers", "", err)
	}
	g.logger.Info("answered session",
		slog.String("session_id", sessionID),
		slog.Int("answers", len(created)))
	return created, nil
}

func (g *Generator) generateAll(ctx context.Context, questions []*store.Question, transcript string) ([]store.AnswerInsert, error) {
	groupCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan questionResult, len(questions))
	for i, question := range questions {
		go func(index int, q *store.Question) {
			results <- g.generateOne(groupCtx, index, q, transcript)
		}(i, question)
	}

	inserts := make([]store.AnswerInsert, len(questions))
	var firstErr error
	for range questions {
		result := <-results
		if result.err != nil {
			if firstErr == nil {
				firstErr = result.err
				cancel()
			}
			continue
		}
		inserts[result.index] = result.insert
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return inserts, nil
}

func (g *Generator) generateOne(ctx context.Context, index int, question *store.Question, transcript string) questionResult {
	callCtx, cancel := context.WithTimeout(ctx, g.questionTimeout)
	defer cancel()

	answer, err := g.gateway.AnswerQuestion(callCtx, question.QuestionText, question.AssignedTo, transcript)
	if err != nil {
		g.logger.Error("question generation failed",
			slog.String("question_id", question.ID),
			logging.Error(err))
		return questionResult{index: index, err: services.Wrap(services.ErrGateway, "answers", "generate", "question "+question.ID, err)}
	}
	return questionResult{
		index: index,
		insert: store.AnswerInsert{
			QuestionID:      question.ID,
			AnswerText:      answer.AnswerText,
			ConfidenceScore: answer.ConfidenceScore,
		},
	}
}
