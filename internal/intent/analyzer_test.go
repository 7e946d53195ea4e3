package intent

import (
	"errors"
	"testing"

	"github.com/jonesrussell/contextual-news/internal/domain"
)

func TestParseAnalysis_PlainJSON(t *testing.T) {
	got, err := parseAnalysis(`{"intent": "category", "entities": ["AI"], "category": "Technology"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Intent != domain.IntentCategory || got.Category != "Technology" {
		t.Fatalf("unexpected analysis: %+v", got)
	}
	if len(got.Entities) != 1 || got.Entities[0] != "AI" {
		t.Fatalf("unexpected entities: %v", got.Entities)
	}
}

func TestParseAnalysis_CodeFenced(t *testing.T) {
	raw := "```json\n{\"intent\": \"nearby\", \"location\": \"Toronto\"}\n```"

	got, err := parseAnalysis(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Intent != domain.IntentNearby || got.Location != "Toronto" {
		t.Fatalf("unexpected analysis: %+v", got)
	}
}

func TestParseAnalysis_NotJSON(t *testing.T) {
	_, err := parseAnalysis("I think the user wants sports news.")
	if !errors.Is(err, ErrInvalidAnalysis) {
		t.Fatalf("expected ErrInvalidAnalysis, got %v", err)
	}
}

func TestParseAnalysis_MissingIntent(t *testing.T) {
	_, err := parseAnalysis(`{"entities": ["Elon Musk"]}`)
	if !errors.Is(err, ErrInvalidAnalysis) {
		t.Fatalf("expected ErrInvalidAnalysis for missing intent, got %v", err)
	}
}
