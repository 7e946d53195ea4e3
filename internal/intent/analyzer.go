// Package intent maps free-text news queries to a structured intent
// descriptor using the Anthropic API. The trending path never goes through
// this package; it exists for the unified query endpoint.
package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/jonesrussell/contextual-news/internal/domain"
)

// ErrInvalidAnalysis is returned when the model response cannot be parsed
// into a usable query analysis. The request cannot proceed without one.
var ErrInvalidAnalysis = errors.New("query analyzer returned an invalid structure")

// DefaultModel is the Claude model used when none is configured.
const DefaultModel = "claude-haiku-4-5"

const defaultTimeout = 30 * time.Second

const maxAnalysisTokens = 512

const analyzePrompt = `You are an expert system that analyzes a user's news query. Understand the
intent and extract key information.

Respond ONLY with a valid JSON object of this shape, no explanatory text:
{"intent": "...", "entities": ["..."], "category": "...", "source": "...", "location": "..."}

Rules for determining the intent:
- "nearby": the query contains words like "near", "around", "close to", or a specific location.
- "source": a specific news publication is named (e.g. "Reuters", "New York Times").
- "category": a general news topic is mentioned (e.g. "Technology", "Sports").
- "score": the user asks for "top", "most relevant", or "important" news.
- "search": the default when specific keywords are the main focus.

User query:
%q`

// Analyzer maps a free-text query to a structured analysis.
type Analyzer interface {
	Analyze(ctx context.Context, query string) (domain.QueryAnalysis, error)
}

// ClaudeAnalyzer implements Analyzer with the Anthropic API.
type ClaudeAnalyzer struct {
	client  anthropic.Client
	model   anthropic.Model
	timeout time.Duration
}

// NewClaudeAnalyzer creates an analyzer. Empty model or non-positive
// timeout fall back to the defaults.
func NewClaudeAnalyzer(apiKey, model string, timeout time.Duration) *ClaudeAnalyzer {
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &ClaudeAnalyzer{
		client:  anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:   anthropic.Model(model),
		timeout: timeout,
	}
}

// Analyze classifies the query. A transport failure or an unparseable
// response is a request-level failure; callers cannot dispatch without a
// valid intent.
func (a *ClaudeAnalyzer) Analyze(ctx context.Context, query string) (domain.QueryAnalysis, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: maxAnalysisTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(
				fmt.Sprintf(analyzePrompt, query),
			)),
		},
	})
	if err != nil {
		return domain.QueryAnalysis{}, fmt.Errorf("analyze query: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return parseAnalysis(sb.String())
}

// parseAnalysis extracts a QueryAnalysis from raw model output, tolerating
// markdown code fences around the JSON object.
func parseAnalysis(text string) (domain.QueryAnalysis, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var analysis domain.QueryAnalysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		return domain.QueryAnalysis{}, fmt.Errorf("%w: %v", ErrInvalidAnalysis, err)
	}
	if analysis.Intent == "" {
		return domain.QueryAnalysis{}, fmt.Errorf("%w: missing intent", ErrInvalidAnalysis)
	}
	return analysis, nil
}
