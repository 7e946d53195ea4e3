// Package domain holds the core data types shared across the
// contextual-news service.
package domain

import "time"

// Article is a single news article as stored by the article table.
// Articles are immutable once loaded; the bulk loader replaces the whole
// table atomically.
type Article struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	URL             string    `json:"url"`
	PublicationDate time.Time `json:"publication_date"`
	SourceName      string    `json:"source_name"`
	Category        []string  `json:"category"`
	RelevanceScore  float64   `json:"relevance_score"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
}

// EnrichedArticle is an article carrying a generated summary, as returned
// by the API. Fallback marks summaries that could not be generated and were
// replaced with a placeholder.
type EnrichedArticle struct {
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	URL             string    `json:"url"`
	PublicationDate time.Time `json:"publication_date"`
	SourceName      string    `json:"source_name"`
	Category        []string  `json:"category"`
	RelevanceScore  float64   `json:"relevance_score"`
	Summary         string    `json:"summary"`
	Fallback        bool      `json:"-"`
}
