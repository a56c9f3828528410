// Package askanything answers free-form questions over the accumulated
// knowledge base: all-hands transcripts and customer conversation summaries
// are rendered into one retrieval prompt and sent to the LLM in a single call.
package askanything

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/hwetherall/innovera-ama/internal/services"
	"github.com/hwetherall/innovera-ama/internal/services/openrouter"
	"github.com/hwetherall/innovera-ama/internal/store"
)

// Gateway is the slice of the LLM client the answerer needs.
type Gateway interface {
	AskAnything(ctx context.Context, question, resources string) (openrouter.AskResult, error)
}

// Answerer serves ask-anything queries.
type Answerer struct {
	store   *store.Store
	gateway Gateway
	logger  *slog.Logger
}

// NewAnswerer builds an Answerer.
func NewAnswerer(st *store.Store, gateway Gateway, logger *slog.Logger) *Answerer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Answerer{
		store:   st,
		gateway: gateway,
		logger:  logger.With(slog.String("component", "askanything")),
	}
}

// Ask renders every all-hands transcript and summarized conversation into the
// retrieval prompt and returns the model's answer with sources and confidence.
func (a *Answerer) Ask(ctx context.Context, question string) (openrouter.AskResult, error) {
	var empty openrouter.AskResult
	question = strings.TrimSpace(question)
	if question == "" {
		return empty, services.Wrap(services.ErrValidation, "askanything", "ask", "question required", nil)
	}

	resources, count, err := a.buildResources(ctx)
	if err != nil {
		return empty, err
	}
	if count == 0 {
		return empty, services.Wrap(services.ErrNotFound, "askanything", "ask", "no transcripts or conversation summaries available", nil)
	}

	result, err := a.gateway.AskAnything(ctx, question, resources)
	if err != nil {
		return empty, services.Wrap(services.ErrGateway, "askanything", "ask", "", err)
	}
	a.logger.Info("answered question",
		slog.Int("resources", count),
		slog.Float64("confidence", result.Confidence))
	return result, nil
}

// buildResources renders one <All-hands month> block per session transcript,
// then <CompanyName> blocks containing one <conversation - date> block per
// summarized conversation, newest first.
func (a *Answerer) buildResources(ctx context.Context) (string, int, error) {
	var builder strings.Builder
	count := 0

	sessions, err := a.store.ListSessions(ctx)
	if err != nil {
		return "", 0, services.Wrap(nil, "askanything", "load sessions", "", err)
	}
	for _, session := range sessions {
		transcript, err := a.store.LatestTranscriptForSession(ctx, session.ID)
		if err != nil {
			return "", 0, services.Wrap(nil, "askanything", "load transcript", "", err)
		}
		if transcript == nil {
			continue
		}
		fmt.Fprintf(&builder, "<All-hands %s>\n%s\n</All-hands %s>\n\n",
			session.MonthYear, transcript.Content, session.MonthYear)
		count++
	}

	companies, err := a.store.ListCompanies(ctx)
	if err != nil {
		return "", 0, services.Wrap(nil, "askanything", "load companies", "", err)
	}
	tags, err := a.store.ListTags(ctx)
	if err != nil {
		return "", 0, services.Wrap(nil, "askanything", "load tags", "", err)
	}
	tagNames := make(map[string]string, len(tags))
	for _, tag := range tags {
		tagNames[tag.ID] = tag.Name
	}

	for _, company := range companies {
		conversationsForCompany, err := a.store.ListConversationsForCompany(ctx, company.ID)
		if err != nil {
			return "", 0, services.Wrap(nil, "askanything", "load conversations", "", err)
		}

		var companyBlock strings.Builder
		for _, conversation := range conversationsForCompany {
			summary, err := a.store.GetConversationSummary(ctx, conversation.ID)
			if err != nil {
				return "", 0, services.Wrap(nil, "askanything", "load summary", "", err)
			}
			if summary == nil {
				continue
			}
			names := make([]string, 0, len(conversation.TagIDs))
			for _, id := range conversation.TagIDs {
				if name, ok := tagNames[id]; ok {
					names = append(names, name)
				}
			}
			fmt.Fprintf(&companyBlock, "<conversation - %s>\nTags: %s\nSummary:\n%s\n</conversation - %s>\n\n",
				conversation.Date, strings.Join(names, ", "), summary.Content, conversation.Date)
			count++
		}
		if companyBlock.Len() == 0 {
			continue
		}
		fmt.Fprintf(&builder, "<%s>\n%s</%s>\n\n", company.CompanyName, companyBlock.String(), company.CompanyName)
	}
	return builder.String(), count, nil
}
