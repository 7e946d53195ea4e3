package domain

// Intent values produced by the query analyzer.
const (
	IntentNearby   = "nearby"
	IntentCategory = "category"
	IntentSource   = "source"
	IntentScore    = "score"
	IntentSearch   = "search"
)

// QueryAnalysis is the structured interpretation of a free-text news query.
type QueryAnalysis struct {
	Intent   string   `json:"intent"`
	Entities []string `json:"entities"`
	Category string   `json:"category,omitempty"`
	Source   string   `json:"source,omitempty"`
	Location string   `json:"location,omitempty"`
}
