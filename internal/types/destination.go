package types

import (
	"fmt"
	"strings"
)

// BudgetLevel is the cost tier of a destination.
type BudgetLevel string

const (
	BudgetLevelBudget   BudgetLevel = "Budget"
	BudgetLevelMidRange BudgetLevel = "Mid-Range"
	BudgetLevelLuxury   BudgetLevel = "Luxury"
)

// ParseBudgetLevel accepts the canonical names case-insensitively, plus "mid range".
func ParseBudgetLevel(s string) (BudgetLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "budget":
		return BudgetLevelBudget, true
	case "mid-range", "mid range", "midrange", "mid_range":
		return BudgetLevelMidRange, true
	case "luxury":
		return BudgetLevelLuxury, true
	}
	return "", false
}

// Rank mirrors BudgetStyle.Rank so tiers can be compared across the two enums.
func (b BudgetLevel) Rank() int {
	switch b {
	case BudgetLevelBudget:
		return 0
	case BudgetLevelMidRange:
		return 1
	case BudgetLevelLuxury:
		return 2
	default:
		return -1
	}
}

// Feature names one of the nine 0-100 destination scores.
type Feature string

const (
	FeatureCulture   Feature = "culture"
	FeatureAdventure Feature = "adventure"
	FeatureNature    Feature = "nature"
	FeatureBeaches   Feature = "beaches"
	FeatureNightlife Feature = "nightlife"
	FeatureCuisine   Feature = "cuisine"
	FeatureWellness  Feature = "wellness"
	FeatureUrban     Feature = "urban"
	FeatureSeclusion Feature = "seclusion"
)

var AllFeatures = []Feature{
	FeatureCulture, FeatureAdventure, FeatureNature, FeatureBeaches, FeatureNightlife,
	FeatureCuisine, FeatureWellness, FeatureUrban, FeatureSeclusion,
}

type FeatureScores struct {
	Culture   int `json:"culture"`
	Adventure int `json:"adventure"`
	Nature    int `json:"nature"`
	Beaches   int `json:"beaches"`
	Nightlife int `json:"nightlife"`
	Cuisine   int `json:"cuisine"`
	Wellness  int `json:"wellness"`
	Urban     int `json:"urban"`
	Seclusion int `json:"seclusion"`
}

// Get returns the score for f and false when f is not a known feature.
func (s FeatureScores) Get(f Feature) (int, bool) {
	switch f {
	case FeatureCulture:
		return s.Culture, true
	case FeatureAdventure:
		return s.Adventure, true
	case FeatureNature:
		return s.Nature, true
	case FeatureBeaches:
		return s.Beaches, true
	case FeatureNightlife:
		return s.Nightlife, true
	case FeatureCuisine:
		return s.Cuisine, true
	case FeatureWellness:
		return s.Wellness, true
	case FeatureUrban:
		return s.Urban, true
	case FeatureSeclusion:
		return s.Seclusion, true
	}
	return 0, false
}

// Destination is a single record of the corpus. Embedding is computed once at
// ingest and never modified afterwards.
type Destination struct {
	ID               string             `json:"id"`
	City             string             `json:"city"`
	Country          string             `json:"country"`
	Region           string             `json:"region"`
	ShortDescription string             `json:"short_description"`
	Embedding        []float32          `json:"-"`
	Scores           FeatureScores      `json:"scores"`
	BudgetLevel      BudgetLevel        `json:"budget_level"`
	IdealDurations   string             `json:"ideal_durations"`
	Latitude         float64            `json:"latitude"`
	Longitude        float64            `json:"longitude"`
	AvgTempMonthly   map[string]float64 `json:"avg_temp_monthly,omitempty"`
}

// Validate checks a record read from the store. dimension <= 0 skips the embedding check.
func (d *Destination) Validate(dimension int) error {
	if d.ID == "" {
		return fmt.Errorf("%w: missing id", ErrMalformedDestination)
	}
	if d.City == "" {
		return fmt.Errorf("%w: destination %s has no city", ErrMalformedDestination, d.ID)
	}
	if d.BudgetLevel.Rank() < 0 {
		return fmt.Errorf("%w: destination %s has unknown budget level %q", ErrMalformedDestination, d.ID, d.BudgetLevel)
	}
	for _, f := range AllFeatures {
		v, _ := d.Scores.Get(f)
		if v < 0 || v > 100 {
			return fmt.Errorf("%w: destination %s %s score %d outside [0,100]", ErrMalformedDestination, d.ID, f, v)
		}
	}
	if dimension > 0 && len(d.Embedding) != dimension {
		return fmt.Errorf("%w: destination %s has %d dimensions, corpus uses %d",
			ErrDimensionMismatch, d.ID, len(d.Embedding), dimension)
	}
	return nil
}

// DisplayName is "City, Country".
func (d *Destination) DisplayName() string {
	if d.Country == "" {
		return d.City
	}
	return d.City + ", " + d.Country
}

// AvgTempFor returns the average temperature for a month name such as "may".
func (d *Destination) AvgTempFor(month string) (float64, bool) {
	if month == "" || d.AvgTempMonthly == nil {
		return 0, false
	}
	for k, v := range d.AvgTempMonthly {
		if strings.EqualFold(k, month) || strings.EqualFold(k, month[:min(3, len(month))]) {
			return v, true
		}
	}
	return 0, false
}

// SearchFilters are the structured pre-filters applied before vector ranking.
type SearchFilters struct {
	Region      string      `json:"region,omitempty"`
	Country     string      `json:"country,omitempty"`
	City        string      `json:"city,omitempty"`
	BudgetLevel BudgetLevel `json:"budget_level,omitempty"`
	SearchText  string      `json:"search_text,omitempty"`
}

// IsEmpty ignores SearchText, which feeds the query rather than the filter.
func (f SearchFilters) IsEmpty() bool {
	return f.Region == "" && f.Country == "" && f.City == "" && f.BudgetLevel == ""
}

// SearchHit is one vector-store match.
type SearchHit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}
