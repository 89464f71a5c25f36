package recommendation

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

// Weights blend the four sub-scores. Normalize scales them to sum to 1 so the
// combined score stays in [0,1].
type Weights struct {
	Semantic float64
	Activity float64
	Budget   float64
	Duration float64
}

var DefaultWeights = Weights{Semantic: 0.5, Activity: 0.3, Budget: 0.15, Duration: 0.05}

func (w Weights) Normalize() (Weights, error) {
	if w.Semantic < 0 || w.Activity < 0 || w.Budget < 0 || w.Duration < 0 {
		return Weights{}, fmt.Errorf("weights must be non-negative: %+v", w)
	}
	sum := w.Semantic + w.Activity + w.Budget + w.Duration
	if sum <= 0 {
		return Weights{}, fmt.Errorf("weights must not all be zero")
	}
	return Weights{
		Semantic: w.Semantic / sum,
		Activity: w.Activity / sum,
		Budget:   w.Budget / sum,
		Duration: w.Duration / sum,
	}, nil
}

// Combine applies the weights. With normalised weights and sub-scores in
// [0,1] the result is in [0,1] and non-decreasing in every sub-score.
func (w Weights) Combine(semantic, activity, budget, duration float64) float64 {
	return w.Semantic*semantic + w.Activity*activity + w.Budget*budget + w.Duration*duration
}

// CosineSimilarity returns the cosine of a and b clamped to [0,1]. Vectors of
// different length or zero norm score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return math.Max(0, math.Min(1, sim))
}

var travelerTypeFeatures = map[types.TravelerType][]types.Feature{
	types.TravelerCulturalExplorer: {types.FeatureCulture},
	types.TravelerAdventureSeeker:  {types.FeatureAdventure},
	types.TravelerLuxuryTraveler:   {types.FeatureWellness, types.FeatureUrban},
	types.TravelerSocialButterfly:  {types.FeatureNightlife, types.FeatureUrban},
	types.TravelerNatureLover:      {types.FeatureNature},
	types.TravelerBudgetBackpacker: {types.FeatureAdventure, types.FeatureNightlife},
	types.TravelerWellnessGuru:     {types.FeatureWellness, types.FeatureSeclusion},
	types.TravelerFoodie:           {types.FeatureCuisine},
	types.TravelerSoloWanderer:     {types.FeatureCulture, types.FeatureUrban},
	types.TravelerFamilyVacationer: {types.FeatureBeaches, types.FeatureNature},
}

var activityFeatures = map[types.Activity][]types.Feature{
	types.ActivityBeach:           {types.FeatureBeaches},
	types.ActivityHikingTrekking:  {types.FeatureNature, types.FeatureAdventure},
	types.ActivityArtsCulture:     {types.FeatureCulture},
	types.ActivityShopping:        {types.FeatureUrban},
	types.ActivityFoodWine:        {types.FeatureCuisine},
	types.ActivityNightlife:       {types.FeatureNightlife},
	types.ActivityHistoricalSites: {types.FeatureCulture},
	types.ActivityWildlifeNature:  {types.FeatureNature, types.FeatureSeclusion},
	types.ActivityAdventureSports: {types.FeatureAdventure},
	types.ActivityPhotography:     {types.FeatureNature, types.FeatureCulture},
	types.ActivityWellness:        {types.FeatureWellness},
	types.ActivityFestivalsEvents: {types.FeatureNightlife, types.FeatureCulture},
}

// ActivityScore averages the destination feature scores mapped from every
// traveler type and activity of the profile. No mapped feature scores 0.
func ActivityScore(profile *types.TravelerProfile, scores types.FeatureScores) float64 {
	if profile == nil {
		return 0
	}
	var sum float64
	var n int
	add := func(features []types.Feature) {
		for _, f := range features {
			if v, ok := scores.Get(f); ok {
				sum += float64(clampInt(v, 0, 100)) / 100
				n++
			}
		}
	}
	for _, t := range profile.TravelerTypes {
		add(travelerTypeFeatures[t])
	}
	for _, a := range profile.ActivityPreferences {
		add(activityFeatures[a])
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// budgetCompatibility is indexed by [BudgetStyle.Rank()][BudgetLevel.Rank()].
var budgetCompatibility = [3][3]float64{
	//            Budget  Mid-Range  Luxury
	/* budget */ {1.0, 0.6, 0.2},
	/* mid    */ {0.7, 1.0, 0.6},
	/* luxury */ {0.2, 0.6, 1.0},
}

const unknownBudgetScore = 0.5

// BudgetScore looks up the static compatibility table. An unknown tier on
// either side scores 0.5.
func BudgetScore(style types.BudgetStyle, level types.BudgetLevel) float64 {
	u, d := style.Rank(), level.Rank()
	if u < 0 || d < 0 {
		return unknownBudgetScore
	}
	return budgetCompatibility[u][d]
}

var (
	hintDaysRe  = regexp.MustCompile(`(\d+)\s*(?:-|to|–)?\s*(\d+)?\s*days?`)
	hintWeeksRe = regexp.MustCompile(`(\d+)\s*(?:-|to|–)?\s*(\d+)?\s*weeks?`)
)

// hintBuckets reads the free-form ideal-duration hint of a destination and
// reports which trip-length buckets it supports.
func hintBuckets(hint string) (short, long bool) {
	h := strings.ToLower(hint)
	for _, m := range hintDaysRe.FindAllStringSubmatch(h, -1) {
		lo, _ := strconv.Atoi(m[1])
		hi := lo
		if m[2] != "" {
			hi, _ = strconv.Atoi(m[2])
		}
		if lo <= 4 {
			short = true
		}
		if hi >= 5 {
			long = true
		}
	}
	if hintWeeksRe.MatchString(h) {
		long = true
	}
	for _, tok := range strings.FieldsFunc(h, func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	}) {
		switch tok {
		case "weekend", "weekends", "short", "quick", "getaway", "day":
			short = true
		case "week", "weeks", "long", "extended", "fortnight", "month":
			long = true
		}
	}
	return short, long
}

// DurationScore is 1.0 when the requested bucket matches the destination hint
// and 0.5 in every other case, including missing information.
func DurationScore(bucket types.DurationBucket, hint string) float64 {
	if bucket == types.DurationUnknown || strings.TrimSpace(hint) == "" {
		return 0.5
	}
	short, long := hintBuckets(hint)
	if (bucket == types.DurationShort && short) || (bucket == types.DurationLong && long) {
		return 1.0
	}
	return 0.5
}

// Score computes all sub-scores of one destination for the query embedding.
func Score(w Weights, queryEmbedding []float32, profile *types.TravelerProfile, d types.Destination, bucket types.DurationBucket) types.ScoredDestination {
	var style types.BudgetStyle
	if profile != nil {
		style = profile.BudgetStyle
	}
	sd := types.ScoredDestination{
		Destination:        d,
		SemanticSimilarity: CosineSimilarity(queryEmbedding, d.Embedding),
		ActivityScore:      ActivityScore(profile, d.Scores),
		BudgetScore:        BudgetScore(style, d.BudgetLevel),
		DurationScore:      DurationScore(bucket, d.IdealDurations),
	}
	sd.CombinedScore = w.Combine(sd.SemanticSimilarity, sd.ActivityScore, sd.BudgetScore, sd.DurationScore)
	return sd
}

// Rank sorts by combined score descending with ties broken by id ascending
// and keeps at most n entries. n <= 0 keeps everything.
func Rank(scored []types.ScoredDestination, n int) []types.ScoredDestination {
	out := make([]types.ScoredDestination, len(scored))
	copy(out, scored)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CombinedScore != out[j].CombinedScore {
			return out[i].CombinedScore > out[j].CombinedScore
		}
		return out[i].Destination.ID < out[j].Destination.ID
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
