package openrouter

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// AnswerResult is the extracted answer for a single question.
type AnswerResult struct {
	AnswerText      string  `json:"answer_text"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// SummaryInput carries the meeting context for conversation summarization.
type SummaryInput struct {
	CompanyName    string
	CustomerName   string
	InnoveraPerson string
	Tags           string
	Transcript     string
	Notes          string
}

// AskResult is the model's answer over the conversation summaries.
type AskResult struct {
	Answer     string   `json:"answer"`
	Sources    []string `json:"sources"`
	Confidence float64  `json:"confidence"`
}

// AnswerQuestion extracts the answer to one question from a meeting transcript.
func (c *Client) AnswerQuestion(ctx context.Context, questionText, assignedTo, transcript string) (AnswerResult, error) {
	var empty AnswerResult
	questionText = strings.TrimSpace(questionText)
	if questionText == "" {
		return empty, errors.New("openrouter answer: question required")
	}
	if strings.TrimSpace(transcript) == "" {
		return empty, errors.New("openrouter answer: transcript required")
	}
	content, err := c.CompleteJSON(ctx, answerPrompt(questionText, assignedTo, transcript))
	if err != nil {
		return empty, err
	}
	var parsed AnswerResult
	if err := DecodeResponse(content, &parsed); err != nil {
		return empty, fmt.Errorf("openrouter answer: parse payload: %w", err)
	}
	parsed.AnswerText = strings.TrimSpace(parsed.AnswerText)
	if parsed.AnswerText == "" {
		return empty, errors.New("openrouter answer: empty answer text")
	}
	parsed.ConfidenceScore = clampConfidence(parsed.ConfidenceScore)
	return parsed, nil
}

// SummarizeConversation produces the stored summary for a customer meeting.
// The people list is prepended to the summary body.
func (c *Client) SummarizeConversation(ctx context.Context, in SummaryInput) (string, error) {
	if strings.TrimSpace(in.Transcript) == "" {
		return "", errors.New("openrouter summary: transcript required")
	}
	content, err := c.CompleteJSON(ctx, summaryPrompt(in))
	if err != nil {
		return "", err
	}
	var parsed struct {
		Summary string `json:"summary"`
		People  string `json:"people"`
	}
	if err := DecodeResponse(content, &parsed); err != nil {
		return "", fmt.Errorf("openrouter summary: parse payload: %w", err)
	}
	if strings.TrimSpace(parsed.Summary) == "" {
		return "", errors.New("openrouter summary: empty summary")
	}
	return parsed.People + "\n\n" + parsed.Summary, nil
}

// AskAnything answers a free-form question over the supplied conversation
// resources block.
func (c *Client) AskAnything(ctx context.Context, question, resources string) (AskResult, error) {
	var empty AskResult
	question = strings.TrimSpace(question)
	if question == "" {
		return empty, errors.New("openrouter ask: question required")
	}
	content, err := c.CompleteJSON(ctx, askAnythingPrompt(question, resources))
	if err != nil {
		return empty, err
	}
	var parsed AskResult
	if err := DecodeResponse(content, &parsed); err != nil {
		return empty, fmt.Errorf("openrouter ask: parse payload: %w", err)
	}
	parsed.Answer = strings.TrimSpace(parsed.Answer)
	if parsed.Answer == "" {
		return empty, errors.New("openrouter ask: empty answer")
	}
	if parsed.Sources == nil {
		parsed.Sources = []string{}
	}
	parsed.Confidence = clampConfidence(parsed.Confidence)
	return parsed, nil
}

func clampConfidence(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
