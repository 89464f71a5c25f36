package types

// SearchMode switches between persona-only discovery and filtered search.
type SearchMode string

const (
	SearchModeSurprise SearchMode = "surprise"
	SearchModeFilter   SearchMode = "filter_search"
)

func (m SearchMode) Valid() bool {
	return m == SearchModeSurprise || m == SearchModeFilter
}

// DurationBucket is the coarse trip length used for scoring.
type DurationBucket string

const (
	DurationUnknown DurationBucket = ""
	DurationShort   DurationBucket = "short"
	DurationLong    DurationBucket = "long"
)

// SynthesizedQuery is the retrieval input built from a profile.
type SynthesizedQuery struct {
	TextQuery string        `json:"text_query"`
	Filters   SearchFilters `json:"filters"`
	Mode      SearchMode    `json:"mode"`
}

// ScoredDestination carries the four sub-scores next to the blended score.
type ScoredDestination struct {
	Destination        Destination `json:"destination"`
	SemanticSimilarity float64     `json:"semantic_similarity"`
	ActivityScore      float64     `json:"activity_score"`
	BudgetScore        float64     `json:"budget_score"`
	DurationScore      float64     `json:"duration_score"`
	CombinedScore      float64     `json:"combined_score"`
	MonthAvgTemp       *float64    `json:"month_avg_temp,omitempty"`
}

// RecommendationRequest is the input of a single ranking run.
type RecommendationRequest struct {
	Mode     SearchMode     `json:"mode"`
	Filters  SearchFilters  `json:"filters"`
	Query    string         `json:"query,omitempty"`
	Override string         `json:"override,omitempty"`
	Duration DurationBucket `json:"duration,omitempty"`
	Month    string         `json:"month,omitempty"`
	Limit    int            `json:"limit,omitempty"`
}

type RecommendationResponse struct {
	Query           string              `json:"query"`
	Mode            SearchMode          `json:"mode"`
	Recommendations []ScoredDestination `json:"recommendations"`
}
