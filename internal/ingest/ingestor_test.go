package ingest_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hwetherall/innovera-ama/internal/answers"
	"github.com/hwetherall/innovera-ama/internal/ingest"
	"github.com/hwetherall/innovera-ama/internal/services"
	"github.com/hwetherall/innovera-ama/internal/services/openrouter"
	"github.com/hwetherall/innovera-ama/internal/store"
	"github.com/hwetherall/innovera-ama/internal/testsupport"
)

type fakeGateway struct {
	failOn string
}

func (f *fakeGateway) AnswerQuestion(ctx context.Context, questionText, assignedTo, transcript string) (openrouter.AnswerResult, error) {
	if f.failOn != "" && strings.Contains(questionText, f.failOn) {
		return openrouter.AnswerResult{}, errors.New("upstream refused")
	}
	return openrouter.AnswerResult{AnswerText: "answer to " + questionText, ConfidenceScore: 0.85}, nil
}

func newIngestor(st *store.Store, gateway answers.Gateway) *ingest.Ingestor {
	generator := answers.NewGenerator(st, gateway, nil, time.Second)
	return ingest.NewIngestor(st, generator, nil)
}

func TestIngestCompletesSession(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	session, err := st.CreateSession(ctx, "August 2026", store.SessionWaitingTranscript)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	testsupport.NewQuestion(t, st, session.ID, "What is the plan?")
	testsupport.NewQuestion(t, st, session.ID, "Any hiring news?")

	ingestor := newIngestor(st, &fakeGateway{})
	result, err := ingestor.CreateTranscriptAndAnswerSession(ctx, session.ID, "the meeting transcript")
	if err != nil {
		t.Fatalf("ingestion failed: %v", err)
	}
	if len(result.Answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(result.Answers))
	}

	refreshed, err := st.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if refreshed.Status != store.SessionCompleted {
		t.Fatalf("expected completed session, got %s", refreshed.Status)
	}

	transcript, err := st.LatestTranscriptForSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("LatestTranscriptForSession failed: %v", err)
	}
	if transcript == nil || transcript.Content != "the meeting transcript" {
		t.Fatalf("unexpected transcript: %#v", transcript)
	}
}

func TestIngestRejectsActiveSession(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	session := testsupport.NewSession(t, st, "August 2026")
	testsupport.NewQuestion(t, st, session.ID, "Too early?")

	ingestor := newIngestor(st, &fakeGateway{})
	_, err := ingestor.CreateTranscriptAndAnswerSession(ctx, session.ID, "early transcript")
	if !errors.Is(err, services.ErrStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}

	transcripts, err := st.ListTranscripts(ctx, session.ID)
	if err != nil {
		t.Fatalf("ListTranscripts failed: %v", err)
	}
	if len(transcripts) != 0 {
		t.Fatalf("expected no transcripts stored, got %d", len(transcripts))
	}
}

func TestIngestRollsBackTranscriptOnGenerationFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	session, err := st.CreateSession(ctx, "August 2026", store.SessionWaitingTranscript)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	good := testsupport.NewQuestion(t, st, session.ID, "What went well?")
	testsupport.NewQuestion(t, st, session.ID, "FAILME budget question")

	ingestor := newIngestor(st, &fakeGateway{failOn: "FAILME"})
	_, err = ingestor.CreateTranscriptAndAnswerSession(ctx, session.ID, "the transcript")
	if err == nil {
		t.Fatal("expected ingestion failure")
	}
	if !errors.Is(err, services.ErrGateway) {
		t.Fatalf("expected gateway error, got %v", err)
	}

	transcripts, err := st.ListTranscripts(ctx, session.ID)
	if err != nil {
		t.Fatalf("ListTranscripts failed: %v", err)
	}
	if len(transcripts) != 0 {
		t.Fatalf("expected transcript rollback, found %d", len(transcripts))
	}

	answer, err := st.GetAnswerByQuestion(ctx, good.ID)
	if err != nil {
		t.Fatalf("GetAnswerByQuestion failed: %v", err)
	}
	if answer != nil {
		t.Fatalf("expected no answers persisted, got %#v", answer)
	}

	refreshed, err := st.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if refreshed.Status != store.SessionWaitingTranscript {
		t.Fatalf("expected session to stay waiting_transcript, got %s", refreshed.Status)
	}
}

func TestIngestFailsWithoutOpenQuestions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	session, err := st.CreateSession(ctx, "August 2026", store.SessionWaitingTranscript)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	ingestor := newIngestor(st, &fakeGateway{})
	_, err = ingestor.CreateTranscriptAndAnswerSession(ctx, session.ID, "transcript with nothing to answer")
	if !errors.Is(err, services.ErrStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}

	transcripts, err := st.ListTranscripts(ctx, session.ID)
	if err != nil {
		t.Fatalf("ListTranscripts failed: %v", err)
	}
	if len(transcripts) != 0 {
		t.Fatalf("expected transcript rollback, found %d", len(transcripts))
	}
}

func TestIngestRequiresContent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ingestor := newIngestor(st, &fakeGateway{})
	_, err := ingestor.CreateTranscriptAndAnswerSession(context.Background(), "any", "   ")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
