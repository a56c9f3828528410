package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hwetherall/innovera-ama/internal/answers"
	"github.com/hwetherall/innovera-ama/internal/askanything"
	"github.com/hwetherall/innovera-ama/internal/auth"
	"github.com/hwetherall/innovera-ama/internal/config"
	"github.com/hwetherall/innovera-ama/internal/conversations"
	"github.com/hwetherall/innovera-ama/internal/ingest"
	"github.com/hwetherall/innovera-ama/internal/server"
	"github.com/hwetherall/innovera-ama/internal/services/openrouter"
	"github.com/hwetherall/innovera-ama/internal/store"
	"github.com/hwetherall/innovera-ama/internal/tagging"
	"github.com/hwetherall/innovera-ama/internal/testsupport"
)

type fakeGateway struct{}

func (fakeGateway) AnswerQuestion(ctx context.Context, questionText, assignedTo, transcript string) (openrouter.AnswerResult, error) {
	return openrouter.AnswerResult{AnswerText: "answer to " + questionText, ConfidenceScore: 0.8}, nil
}

func (fakeGateway) SummarizeConversation(ctx context.Context, in openrouter.SummaryInput) (string, error) {
	return "- People\n\nSummary of the meeting.", nil
}

func (fakeGateway) AskAnything(ctx context.Context, question, resources string) (openrouter.AskResult, error) {
	return openrouter.AskResult{Answer: "From the summaries.", Sources: []string{"Acme > Conversation - 2026-08-12"}, Confidence: 0.7}, nil
}

type harness struct {
	t      *testing.T
	cfg    *config.Config
	store  *store.Store
	server *httptest.Server
	client *http.Client
}

func newHarness(t *testing.T, opts ...testsupport.ConfigOption) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	st := testsupport.MustOpenStore(t, cfg)

	gateway := fakeGateway{}
	generator := answers.NewGenerator(st, gateway, nil, time.Second)
	ingestor := ingest.NewIngestor(st, generator, nil)
	creator := conversations.NewCreator(st, tagging.NewReconciler(st, nil), gateway, nil)
	answerer := askanything.NewAnswerer(st, gateway, nil)
	var sessions auth.SessionStore
	if cfg.Auth.SessionStore == "database" {
		sessions = auth.NewDBStore(st, time.Hour)
	} else {
		sessions = auth.NewMemoryStore(time.Hour)
	}

	srv := server.New(cfg, st, sessions, ingestor, creator, answerer, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &harness{
		t:      t,
		cfg:    cfg,
		store:  st,
		server: ts,
		client: &http.Client{Jar: jar},
	}
}

func (h *harness) do(method, path string, body any) (*http.Response, []byte) {
	h.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			h.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, h.server.URL+path, reader)
	if err != nil {
		h.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.client.Do(req)
	if err != nil {
		h.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		h.t.Fatalf("read body: %v", err)
	}
	return resp, buf.Bytes()
}

func (h *harness) login() {
	h.t.Helper()
	resp, body := h.do(http.MethodPost, "/api/auth/login", map[string]string{"password": h.cfg.Auth.AdminPassword})
	if resp.StatusCode != http.StatusOK {
		h.t.Fatalf("login failed: %d %s", resp.StatusCode, body)
	}
}

func decodeInto(t *testing.T, data []byte, target any) {
	t.Helper()
	if err := json.Unmarshal(data, target); err != nil {
		t.Fatalf("decode response %s: %v", data, err)
	}
}

func TestLoginWithDatabaseSessions(t *testing.T) {
	h := newHarness(t, testsupport.WithSessionStore("database"))
	h.login()

	resp, body := h.do(http.MethodGet, "/api/auth/check", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("check failed: %d %s", resp.StatusCode, body)
	}
	var check struct {
		Authenticated bool `json:"authenticated"`
	}
	decodeInto(t, body, &check)
	if !check.Authenticated {
		t.Fatal("expected authenticated session from database store")
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	h := newHarness(t)
	resp, _ := h.do(http.MethodPost, "/api/auth/login", map[string]string{"password": "wrong"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuthCheckAndLogout(t *testing.T) {
	h := newHarness(t)
	h.login()

	resp, body := h.do(http.MethodGet, "/api/auth/check", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("check failed: %d", resp.StatusCode)
	}
	var check struct {
		Authenticated bool `json:"authenticated"`
	}
	decodeInto(t, body, &check)
	if !check.Authenticated {
		t.Fatal("expected authenticated after login")
	}

	if resp, _ := h.do(http.MethodPost, "/api/auth/logout", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("logout failed: %d", resp.StatusCode)
	}
	_, body = h.do(http.MethodGet, "/api/auth/check", nil)
	decodeInto(t, body, &check)
	if check.Authenticated {
		t.Fatal("expected unauthenticated after logout")
	}
}

func TestMutatingRoutesRequireAdmin(t *testing.T) {
	h := newHarness(t)
	resp, _ := h.do(http.MethodPost, "/api/sessions", map[string]string{"month_year": "August 2026"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", resp.StatusCode)
	}
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	h := newHarness(t)
	h.login()

	resp, body := h.do(http.MethodPost, "/api/sessions", map[string]string{"month_year": "August 2026"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session failed: %d %s", resp.StatusCode, body)
	}
	var session store.Session
	decodeInto(t, body, &session)

	// Anonymous question submission needs no cookie; use a bare client.
	bare := &http.Client{}
	questionBody, _ := json.Marshal(map[string]string{"question_text": "What is new?", "assigned_to": "Alex"})
	req, _ := http.NewRequest(http.MethodPost, h.server.URL+"/api/sessions/"+session.ID+"/questions", bytes.NewReader(questionBody))
	req.Header.Set("Content-Type", "application/json")
	qResp, err := bare.Do(req)
	if err != nil {
		t.Fatalf("submit question: %v", err)
	}
	qResp.Body.Close()
	if qResp.StatusCode != http.StatusCreated {
		t.Fatalf("submit question failed: %d", qResp.StatusCode)
	}

	resp, body = h.do(http.MethodPost, "/api/sessions/"+session.ID+"/close", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("close failed: %d %s", resp.StatusCode, body)
	}

	resp, body = h.do(http.MethodPost, "/api/transcripts", map[string]string{
		"session_id": session.ID,
		"content":    "the meeting transcript",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("ingest failed: %d %s", resp.StatusCode, body)
	}

	resp, body = h.do(http.MethodGet, "/api/sessions/"+session.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get session failed: %d", resp.StatusCode)
	}
	decodeInto(t, body, &session)
	if session.Status != store.SessionCompleted {
		t.Fatalf("expected completed session, got %s", session.Status)
	}

	resp, body = h.do(http.MethodGet, "/api/sessions/"+session.ID+"/answers", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list answers failed: %d", resp.StatusCode)
	}
	var listed struct {
		Answers []store.Answer `json:"answers"`
	}
	decodeInto(t, body, &listed)
	if len(listed.Answers) != 1 {
		t.Fatalf("expected 1 answer, got %d", len(listed.Answers))
	}
}

func TestCloseRejectsSessionWithoutQuestions(t *testing.T) {
	h := newHarness(t)
	h.login()

	_, body := h.do(http.MethodPost, "/api/sessions", map[string]string{"month_year": "August 2026"})
	var session store.Session
	decodeInto(t, body, &session)

	resp, _ := h.do(http.MethodPost, "/api/sessions/"+session.ID+"/close", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for empty session, got %d", resp.StatusCode)
	}
}

func TestTranscriptUploadRejectsActiveSession(t *testing.T) {
	h := newHarness(t)
	h.login()

	_, body := h.do(http.MethodPost, "/api/sessions", map[string]string{"month_year": "August 2026"})
	var session store.Session
	decodeInto(t, body, &session)

	resp, _ := h.do(http.MethodPost, "/api/transcripts", map[string]string{
		"session_id": session.ID,
		"content":    "too early",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for active session, got %d", resp.StatusCode)
	}
}

func TestCronMonthlySession(t *testing.T) {
	h := newHarness(t)

	call := func(key string) (*http.Response, []byte) {
		req, _ := http.NewRequest(http.MethodPost, h.server.URL+"/api/cron/monthly-session", bytes.NewReader(nil))
		if key != "" {
			req.Header.Set("x-api-key", key)
		}
		resp, err := h.client.Do(req)
		if err != nil {
			t.Fatalf("cron call: %v", err)
		}
		defer resp.Body.Close()
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return resp, buf.Bytes()
	}

	if resp, _ := call("wrong"); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad key, got %d", resp.StatusCode)
	}

	resp, body := call(h.cfg.Auth.CronAPIKey)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", resp.StatusCode, body)
	}
	var first struct {
		Created bool          `json:"created"`
		Session store.Session `json:"session"`
	}
	decodeInto(t, body, &first)
	if !first.Created || first.Session.MonthYear != time.Now().Format("January 2006") {
		t.Fatalf("unexpected cron result: %+v", first)
	}

	resp, body = call(h.cfg.Auth.CronAPIKey)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on repeat, got %d", resp.StatusCode)
	}
	var second struct {
		Created bool `json:"created"`
	}
	decodeInto(t, body, &second)
	if second.Created {
		t.Fatal("expected repeat call to reuse existing session")
	}
}

func TestConversationEndpoints(t *testing.T) {
	h := newHarness(t)
	h.login()

	resp, body := h.do(http.MethodPost, "/api/companies", map[string]string{
		"company_name": "Acme",
		"company_type": "vc",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create company failed: %d %s", resp.StatusCode, body)
	}
	var company store.Company
	decodeInto(t, body, &company)

	resp, body = h.do(http.MethodPost, fmt.Sprintf("/api/companies/%s/customer-conversations", company.ID), map[string]any{
		"customer_name":   "Pat",
		"innovera_person": "Sam",
		"date":            "2026-08-12",
		"tag_ids":         []string{"pending-feedback"},
		"transcript":      "the call transcript",
		"notes":           "follow up",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create conversation failed: %d %s", resp.StatusCode, body)
	}
	var created struct {
		Conversation store.CustomerConversation `json:"conversation"`
		Summary      string                     `json:"summary"`
	}
	decodeInto(t, body, &created)
	if created.Summary == "" {
		t.Fatal("expected generated summary")
	}

	resp, body = h.do(http.MethodGet, "/api/customer-conversations/"+created.Conversation.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get conversation failed: %d", resp.StatusCode)
	}
	var detail struct {
		Transcript *store.ConversationTranscript `json:"transcript"`
		Summary    *store.ConversationSummary    `json:"summary"`
	}
	decodeInto(t, body, &detail)
	if detail.Transcript == nil || detail.Transcript.Content != "the call transcript" {
		t.Fatalf("unexpected transcript detail: %#v", detail.Transcript)
	}
	if detail.Summary == nil {
		t.Fatal("expected summary in detail")
	}

	resp, _ = h.do(http.MethodDelete, "/api/customer-conversations/"+created.Conversation.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete conversation failed: %d", resp.StatusCode)
	}
}

func TestConversationEditOverHTTP(t *testing.T) {
	h := newHarness(t)
	h.login()

	_, body := h.do(http.MethodPost, "/api/companies", map[string]string{
		"company_name": "Acme",
		"company_type": "vc",
	})
	var company store.Company
	decodeInto(t, body, &company)

	_, body = h.do(http.MethodPost, fmt.Sprintf("/api/companies/%s/customer-conversations", company.ID), map[string]any{
		"customer_name":   "Pat",
		"innovera_person": "Sam",
		"date":            "2026-08-12",
		"transcript":      "the call transcript",
	})
	var created struct {
		Conversation store.CustomerConversation `json:"conversation"`
	}
	decodeInto(t, body, &created)

	resp, body := h.do(http.MethodPut, "/api/customer-conversations/"+created.Conversation.ID, map[string]any{
		"customer_name": "Patricia",
		"tag_ids":       []string{"pending-pricing"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("edit conversation failed: %d %s", resp.StatusCode, body)
	}
	var updated store.CustomerConversation
	decodeInto(t, body, &updated)
	if updated.CustomerName != "Patricia" {
		t.Fatalf("expected renamed customer, got %q", updated.CustomerName)
	}
	if updated.InnoveraPerson != "Sam" || updated.Date != "2026-08-12" {
		t.Fatalf("expected untouched fields preserved, got %#v", updated)
	}
	if len(updated.TagIDs) != 1 {
		t.Fatalf("expected one reconciled tag, got %v", updated.TagIDs)
	}
	tag, err := h.store.GetTag(context.Background(), updated.TagIDs[0])
	if err != nil || tag == nil || tag.Name != "Pricing" {
		t.Fatalf("expected minted Pricing tag, got %#v (err %v)", tag, err)
	}

	resp, _ = h.do(http.MethodPut, "/api/customer-conversations/missing", map[string]any{"customer_name": "X"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown conversation, got %d", resp.StatusCode)
	}
}

func TestConversationNotesEndpoint(t *testing.T) {
	h := newHarness(t)
	h.login()

	_, body := h.do(http.MethodPost, "/api/companies", map[string]string{
		"company_name": "Globex",
		"company_type": "corporate",
	})
	var company store.Company
	decodeInto(t, body, &company)

	_, body = h.do(http.MethodPost, fmt.Sprintf("/api/companies/%s/customer-conversations", company.ID), map[string]any{
		"customer_name":   "Robin",
		"innovera_person": "Sam",
		"date":            "2026-08-20",
		"transcript":      "the transcript",
		"notes":           "initial notes",
	})
	var created struct {
		Conversation store.CustomerConversation `json:"conversation"`
	}
	decodeInto(t, body, &created)

	path := "/api/customer-conversations/" + created.Conversation.ID + "/notes"
	resp, body := h.do(http.MethodGet, path, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get notes failed: %d %s", resp.StatusCode, body)
	}
	var note store.ConversationNote
	decodeInto(t, body, &note)
	if note.Content != "initial notes" {
		t.Fatalf("unexpected notes: %q", note.Content)
	}

	resp, body = h.do(http.MethodPut, path, map[string]string{"content": "revised notes"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update notes failed: %d %s", resp.StatusCode, body)
	}
	_, body = h.do(http.MethodGet, path, nil)
	decodeInto(t, body, &note)
	if note.Content != "revised notes" {
		t.Fatalf("expected revised notes, got %q", note.Content)
	}
}

func TestSessionExport(t *testing.T) {
	h := newHarness(t)
	h.login()

	_, body := h.do(http.MethodPost, "/api/sessions", map[string]string{"month_year": "August 2026"})
	var session store.Session
	decodeInto(t, body, &session)

	_, body = h.do(http.MethodPost, "/api/sessions/"+session.ID+"/questions", map[string]string{"question_text": "What shipped?"})
	var question store.Question
	decodeInto(t, body, &question)

	if resp, _ := h.do(http.MethodPost, "/api/sessions/"+session.ID+"/close", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("close failed: %d", resp.StatusCode)
	}
	if resp, _ := h.do(http.MethodPost, "/api/transcripts", map[string]string{
		"session_id": session.ID,
		"content":    "the transcript",
	}); resp.StatusCode != http.StatusCreated {
		t.Fatalf("ingest failed: %d", resp.StatusCode)
	}

	resp, body := h.do(http.MethodGet, "/api/sessions/"+session.ID+"/export", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export failed: %d %s", resp.StatusCode, body)
	}
	var export struct {
		Session   store.Session `json:"session"`
		Questions []struct {
			ID     string        `json:"id"`
			Answer *store.Answer `json:"answer"`
		} `json:"questions"`
	}
	decodeInto(t, body, &export)
	if export.Session.ID != session.ID {
		t.Fatalf("unexpected session in export: %#v", export.Session)
	}
	if len(export.Questions) != 1 || export.Questions[0].ID != question.ID {
		t.Fatalf("unexpected questions in export: %#v", export.Questions)
	}
	if export.Questions[0].Answer == nil || export.Questions[0].Answer.AnswerText == "" {
		t.Fatalf("expected answer embedded in export, got %#v", export.Questions[0].Answer)
	}

	resp, _ = h.do(http.MethodGet, "/api/sessions/missing/export", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session, got %d", resp.StatusCode)
	}
}

func TestAskAnythingEndpoint(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	company, err := h.store.CreateCompany(ctx, "Acme", store.CompanyVC)
	if err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}
	conversation, err := h.store.CreateConversation(ctx, company.ID, "Pat", "Sam", "2026-08-12", nil)
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	if _, err := h.store.UpsertConversationSummary(ctx, conversation.ID, "They want SSO."); err != nil {
		t.Fatalf("UpsertConversationSummary failed: %v", err)
	}

	resp, body := h.do(http.MethodPost, "/api/ai/ask-anything", map[string]string{"question": "What does Acme want?"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ask-anything failed: %d %s", resp.StatusCode, body)
	}
	var result openrouter.AskResult
	decodeInto(t, body, &result)
	if result.Answer == "" || len(result.Sources) == 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestManualAnswerFlow(t *testing.T) {
	h := newHarness(t)
	h.login()

	_, body := h.do(http.MethodPost, "/api/sessions", map[string]string{"month_year": "August 2026"})
	var session store.Session
	decodeInto(t, body, &session)

	_, body = h.do(http.MethodPost, "/api/sessions/"+session.ID+"/questions", map[string]string{"question_text": "Manual?"})
	var question store.Question
	decodeInto(t, body, &question)

	resp, body := h.do(http.MethodPost, "/api/questions/"+question.ID+"/answer", map[string]any{
		"answer_text":      "Answered by hand.",
		"confidence_score": 1.0,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("manual answer failed: %d %s", resp.StatusCode, body)
	}

	resp, body = h.do(http.MethodGet, "/api/questions/"+question.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get question failed: %d", resp.StatusCode)
	}
	decodeInto(t, body, &question)
	if !question.IsAnswered {
		t.Fatal("expected question flagged answered")
	}

	resp, _ = h.do(http.MethodDelete, "/api/questions/"+question.ID+"/answer", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete answer failed: %d", resp.StatusCode)
	}
	_, body = h.do(http.MethodGet, "/api/questions/"+question.ID, nil)
	decodeInto(t, body, &question)
	if question.IsAnswered {
		t.Fatal("expected flag reset after answer deletion")
	}
}
