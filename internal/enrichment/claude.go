package enrichment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultModel is the Claude model used when none is configured.
const DefaultModel = "claude-haiku-4-5"

// defaultTimeout bounds a single summary generation call.
const defaultTimeout = 30 * time.Second

// maxSummaryTokens caps the response size; summaries are one sentence.
const maxSummaryTokens = 256

const summaryPrompt = `Provide a concise, one-sentence summary of the following news article.

Title: %q
Description: %q

One-sentence summary:`

// ClaudeSummarizer generates article summaries with the Anthropic API.
type ClaudeSummarizer struct {
	client  anthropic.Client
	model   anthropic.Model
	timeout time.Duration
}

// NewClaudeSummarizer creates a summarizer. Empty model or non-positive
// timeout fall back to the defaults.
func NewClaudeSummarizer(apiKey, model string, timeout time.Duration) *ClaudeSummarizer {
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &ClaudeSummarizer{
		client:  anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:   anthropic.Model(model),
		timeout: timeout,
	}
}

// Summarize generates a one-sentence summary for the article.
func (s *ClaudeSummarizer) Summarize(ctx context.Context, title, description string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	msg, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: maxSummaryTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(
				fmt.Sprintf(summaryPrompt, title, description),
			)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("summarize %q: %w", title, err)
	}

	summary := strings.TrimSpace(messageText(msg))
	if summary == "" {
		return "", fmt.Errorf("summarize %q: empty response", title)
	}
	return summary, nil
}

// messageText concatenates the text blocks of a response message.
func messageText(msg *anthropic.Message) string {
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}
