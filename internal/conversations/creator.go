// Package conversations creates and edits customer conversation records: reconcile tag
// references, write the conversation with its transcript and notes children,
// then generate and store the meeting summary. The writes form a saga; an
// LLM failure late in the flow removes everything created before it,
// including tags that were minted for this conversation.
package conversations

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/hwetherall/innovera-ama/internal/saga"
	"github.com/hwetherall/innovera-ama/internal/services"
	"github.com/hwetherall/innovera-ama/internal/services/openrouter"
	"github.com/hwetherall/innovera-ama/internal/store"
	"github.com/hwetherall/innovera-ama/internal/tagging"
)

// Gateway is the slice of the LLM client the creator needs.
type Gateway interface {
	SummarizeConversation(ctx context.Context, in openrouter.SummaryInput) (string, error)
}

// Input carries everything needed to record one customer conversation.
type Input struct {
	CompanyID      string   `json:"company_id"`
	CustomerName   string   `json:"customer_name"`
	InnoveraPerson string   `json:"innovera_person"`
	Date           string   `json:"date"`
	TagRefs        []string `json:"tag_ids"`
	Transcript     string   `json:"transcript"`
	Notes          string   `json:"notes"`
}

// UpdateInput carries a partial edit. Nil fields keep their stored values;
// a nil TagRefs leaves the tag set alone, while an empty slice clears it.
type UpdateInput struct {
	CustomerName   *string  `json:"customer_name"`
	InnoveraPerson *string  `json:"innovera_person"`
	Date           *string  `json:"date"`
	TagRefs        []string `json:"tag_ids"`
}

// Output is the created conversation with its summary.
type Output struct {
	Conversation *store.CustomerConversation `json:"conversation"`
	Summary      string                      `json:"summary"`
}

// Creator runs the conversation creation saga.
type Creator struct {
	store      *store.Store
	reconciler *tagging.Reconciler
	gateway    Gateway
	logger     *slog.Logger
}

// NewCreator builds a Creator.
func NewCreator(st *store.Store, reconciler *tagging.Reconciler, gateway Gateway, logger *slog.Logger) *Creator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Creator{
		store:      st,
		reconciler: reconciler,
		gateway:    gateway,
		logger:     logger.With(slog.String("component", "conversations")),
	}
}

// Create validates the input, reconciles tags, writes the conversation and
// its children, and stores the generated summary. Any failure compensates
// completed steps newest-first.
func (c *Creator) Create(ctx context.Context, in Input) (*Output, error) {
	company, err := c.validate(ctx, &in)
	if err != nil {
		return nil, err
	}

	sg := saga.New(c.logger)

	reconciled, err := c.reconciler.Reconcile(ctx, in.TagRefs)
	if err != nil {
		return nil, err
	}
	for _, created := range reconciled.Created {
		tagID := created.ID
		sg.Record("delete tag "+created.Name, func(ctx context.Context) error {
			_, err := c.store.DeleteTag(ctx, tagID)
			return err
		})
	}

	tagNames, err := c.tagNames(ctx, reconciled.TagIDs)
	if err != nil {
		return nil, sg.Compensate(ctx, services.Wrap(nil, "conversations", "load tags", "", err))
	}

	conversation, err := c.store.CreateConversation(ctx, in.CompanyID, in.CustomerName, in.InnoveraPerson, in.Date, reconciled.TagIDs)
	if err != nil {
		return nil, sg.Compensate(ctx, services.Wrap(nil, "conversations", "create conversation", "", err))
	}
	// Children cascade with the conversation row, so one compensation covers
	// the transcript, notes, and summary writes below.
	sg.Record("delete conversation", func(ctx context.Context) error {
		_, err := c.store.DeleteConversation(ctx, conversation.ID)
		return err
	})

	if _, err := c.store.CreateConversationTranscript(ctx, conversation.ID, in.Transcript); err != nil {
		return nil, sg.Compensate(ctx, services.Wrap(nil, "conversations", "store transcript", "", err))
	}
	if strings.TrimSpace(in.Notes) != "" {
		if _, err := c.store.CreateConversationNote(ctx, conversation.ID, in.Notes); err != nil {
			return nil, sg.Compensate(ctx, services.Wrap(nil, "conversations", "store notes", "", err))
		}
	}

	summary, err := c.gateway.SummarizeConversation(ctx, openrouter.SummaryInput{
		CompanyName:    company.CompanyName,
		CustomerName:   in.CustomerName,
		InnoveraPerson: in.InnoveraPerson,
		Tags:           tagNames,
		Transcript:     in.Transcript,
		Notes:          in.Notes,
	})
	if err != nil {
		wrapped := services.Wrap(services.ErrGateway, "conversations", "generate summary", "", err)
		return nil, sg.Compensate(ctx, wrapped)
	}
	if _, err := c.store.UpsertConversationSummary(ctx, conversation.ID, summary); err != nil {
		return nil, sg.Compensate(ctx, services.Wrap(nil, "conversations", "store summary", "", err))
	}

	sg.Commit()
	c.logger.Info("created conversation",
		slog.String("conversation_id", conversation.ID),
		slog.String("company_id", in.CompanyID),
		slog.Int("tags", len(reconciled.TagIDs)))
	return &Output{Conversation: conversation, Summary: summary}, nil
}

// Update applies a partial edit to an existing conversation. Tag references
// run through the same reconciliation as creation, so pending entries mint
// tags here too; tags minted for a failed update are removed again.
func (c *Creator) Update(ctx context.Context, conversationID string, in UpdateInput) (*store.CustomerConversation, error) {
	conversation, err := c.store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, services.Wrap(nil, "conversations", "load conversation", "", err)
	}
	if conversation == nil {
		return nil, services.Wrap(services.ErrNotFound, "conversations", "update", "conversation "+conversationID, nil)
	}

	customerName := conversation.CustomerName
	if in.CustomerName != nil {
		if customerName = strings.TrimSpace(*in.CustomerName); customerName == "" {
			return nil, services.Wrap(services.ErrValidation, "conversations", "update", "customer name required", nil)
		}
	}
	innoveraPerson := conversation.InnoveraPerson
	if in.InnoveraPerson != nil {
		if innoveraPerson = strings.TrimSpace(*in.InnoveraPerson); innoveraPerson == "" {
			return nil, services.Wrap(services.ErrValidation, "conversations", "update", "innovera person required", nil)
		}
	}
	date := conversation.Date
	if in.Date != nil {
		if date = strings.TrimSpace(*in.Date); date == "" {
			return nil, services.Wrap(services.ErrValidation, "conversations", "update", "date required", nil)
		}
	}

	sg := saga.New(c.logger)

	tagIDs := conversation.TagIDs
	if in.TagRefs != nil {
		reconciled, err := c.reconciler.Reconcile(ctx, in.TagRefs)
		if err != nil {
			return nil, err
		}
		for _, created := range reconciled.Created {
			tagID := created.ID
			sg.Record("delete tag "+created.Name, func(ctx context.Context) error {
				_, err := c.store.DeleteTag(ctx, tagID)
				return err
			})
		}
		tagIDs = reconciled.TagIDs
	}

	updated, err := c.store.UpdateConversation(ctx, conversationID, customerName, innoveraPerson, date, tagIDs)
	if err != nil {
		return nil, sg.Compensate(ctx, services.Wrap(nil, "conversations", "update conversation", "", err))
	}
	if updated == nil {
		return nil, sg.Compensate(ctx, services.Wrap(services.ErrNotFound, "conversations", "update", "conversation "+conversationID, nil))
	}

	sg.Commit()
	c.logger.Info("updated conversation",
		slog.String("conversation_id", conversationID),
		slog.Int("tags", len(tagIDs)))
	return updated, nil
}

func (c *Creator) validate(ctx context.Context, in *Input) (*store.Company, error) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.InnoveraPerson = strings.TrimSpace(in.InnoveraPerson)
	in.Date = strings.TrimSpace(in.Date)
	switch {
	case strings.TrimSpace(in.CompanyID) == "":
		return nil, services.Wrap(services.ErrValidation, "conversations", "create", "company id required", nil)
	case in.CustomerName == "":
		return nil, services.Wrap(services.ErrValidation, "conversations", "create", "customer name required", nil)
	case in.InnoveraPerson == "":
		return nil, services.Wrap(services.ErrValidation, "conversations", "create", "innovera person required", nil)
	case in.Date == "":
		return nil, services.Wrap(services.ErrValidation, "conversations", "create", "date required", nil)
	case strings.TrimSpace(in.Transcript) == "":
		return nil, services.Wrap(services.ErrValidation, "conversations", "create", "transcript content required", nil)
	}

	company, err := c.store.GetCompany(ctx, in.CompanyID)
	if err != nil {
		return nil, services.Wrap(nil, "conversations", "load company", "", err)
	}
	if company == nil {
		return nil, services.Wrap(services.ErrNotFound, "conversations", "load company", "company "+in.CompanyID, nil)
	}
	return company, nil
}

func (c *Creator) tagNames(ctx context.Context, tagIDs []string) (string, error) {
	names := make([]string, 0, len(tagIDs))
	for _, id := range tagIDs {
		tag, err := c.store.GetTag(ctx, id)
		if err != nil {
			return "", err
		}
		if tag != nil {
			names = append(names, tag.Name)
		}
	}
	return strings.Join(names, ", "), nil
}
