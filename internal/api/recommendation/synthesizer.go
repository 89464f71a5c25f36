package recommendation

import (
	"strings"

	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

// DefaultQuery is used when neither the request nor the persona contributes any text.
const DefaultQuery = "travel destinations"

var travelerTypeKeywords = map[types.TravelerType]string{
	types.TravelerCulturalExplorer: "museums historic sites local culture",
	types.TravelerAdventureSeeker:  "adventure outdoor thrills",
	types.TravelerLuxuryTraveler:   "luxury resorts fine dining",
	types.TravelerSocialButterfly:  "vibrant nightlife social scene",
	types.TravelerNatureLover:      "nature national parks scenic landscapes",
	types.TravelerBudgetBackpacker: "affordable backpacker friendly street food",
	types.TravelerWellnessGuru:     "wellness spa yoga retreats",
	types.TravelerFoodie:           "food scene local cuisine markets",
	types.TravelerSoloWanderer:     "safe walkable solo travel",
	types.TravelerFamilyVacationer: "family friendly attractions",
}

var activityKeywords = map[types.Activity]string{
	types.ActivityBeach:           "beaches",
	types.ActivityHikingTrekking:  "hiking trails",
	types.ActivityArtsCulture:     "art galleries",
	types.ActivityShopping:        "shopping",
	types.ActivityFoodWine:        "food and wine",
	types.ActivityNightlife:       "nightlife",
	types.ActivityHistoricalSites: "historical sites",
	types.ActivityWildlifeNature:  "wildlife",
	types.ActivityAdventureSports: "adventure sports",
	types.ActivityPhotography:     "photogenic views",
	types.ActivityWellness:        "wellness",
	types.ActivityFestivalsEvents: "festivals",
}

var budgetKeywords = map[types.BudgetStyle]string{
	types.BudgetConscious: "budget",
	types.BudgetMidRange:  "mid-range",
	types.BudgetLuxury:    "luxury",
}

// Synthesize builds the retrieval query. An explicit query replaces the
// synthesized text. Otherwise the parts are joined in a fixed order:
// override text, search text, traveler-type phrases, activity phrases and
// the budget keyword. Surprise mode never carries structured filters.
func Synthesize(profile *types.TravelerProfile, req types.RecommendationRequest) types.SynthesizedQuery {
	mode := req.Mode
	if !mode.Valid() {
		mode = types.SearchModeSurprise
	}

	q := types.SynthesizedQuery{Mode: mode}
	if mode == types.SearchModeFilter {
		q.Filters = req.Filters
		q.Filters.SearchText = ""
	}

	if text := strings.TrimSpace(req.Query); text != "" {
		q.TextQuery = text
		return q
	}

	var parts []string
	if text := strings.TrimSpace(req.Override); text != "" {
		parts = append(parts, text)
	}
	if text := strings.TrimSpace(req.Filters.SearchText); text != "" {
		parts = append(parts, text)
	}
	parts = append(parts, personaPhrases(profile)...)

	q.TextQuery = strings.Join(parts, " ")
	if q.TextQuery == "" {
		q.TextQuery = DefaultQuery
	}
	return q
}

func personaPhrases(profile *types.TravelerProfile) []string {
	if profile == nil {
		return nil
	}
	var parts []string
	for _, t := range profile.TravelerTypes {
		if kw, ok := travelerTypeKeywords[t]; ok {
			parts = append(parts, kw)
		}
	}
	for _, a := range profile.ActivityPreferences {
		if kw, ok := activityKeywords[a]; ok {
			parts = append(parts, kw)
		}
	}
	if kw, ok := budgetKeywords[profile.BudgetStyle]; ok {
		parts = append(parts, kw)
	}
	return parts
}
