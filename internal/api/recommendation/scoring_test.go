package recommendation

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), "negative similarity clamps to 0")
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 0}))
}

func TestBudgetScore(t *testing.T) {
	assert.Equal(t, 1.0, BudgetScore(types.BudgetConscious, types.BudgetLevelBudget))
	assert.Equal(t, 1.0, BudgetScore(types.BudgetLuxury, types.BudgetLevelLuxury))
	assert.Less(t, BudgetScore(types.BudgetLuxury, types.BudgetLevelBudget), BudgetScore(types.BudgetLuxury, types.BudgetLevelLuxury))
	assert.Less(t, BudgetScore(types.BudgetLuxury, types.BudgetLevelBudget), BudgetScore(types.BudgetLuxury, types.BudgetLevelMidRange))
	assert.Equal(t, 0.5, BudgetScore("", types.BudgetLevelBudget))

	styles := []types.BudgetStyle{types.BudgetConscious, types.BudgetMidRange, types.BudgetLuxury}
	levels := []types.BudgetLevel{types.BudgetLevelBudget, types.BudgetLevelMidRange, types.BudgetLevelLuxury}
	for i, s := range styles {
		for j, l := range levels {
			v := BudgetScore(s, l)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
			if i == j {
				assert.Equal(t, 1.0, v)
			} else {
				assert.Less(t, v, 1.0)
			}
		}
	}
}

func TestActivityScore(t *testing.T) {
	scores := types.FeatureScores{Cuisine: 90, Culture: 70}

	t.Run("averages mapped features", func(t *testing.T) {
		p := &types.TravelerProfile{
			TravelerTypes:       []types.TravelerType{types.TravelerFoodie},
			ActivityPreferences: []types.Activity{types.ActivityArtsCulture},
		}
		assert.InDelta(t, 0.8, ActivityScore(p, scores), 1e-9)
	})

	t.Run("no tags scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, ActivityScore(&types.TravelerProfile{}, scores))
		assert.Equal(t, 0.0, ActivityScore(nil, scores))
	})
}

func TestDurationScore(t *testing.T) {
	cases := []struct {
		bucket types.DurationBucket
		hint   string
		want   float64
	}{
		{types.DurationShort, "Weekend getaway", 1.0},
		{types.DurationShort, "2-4 days", 1.0},
		{types.DurationLong, "1-2 weeks", 1.0},
		{types.DurationLong, "3-5 days", 1.0},
		{types.DurationShort, "One week", 0.5},
		{types.DurationLong, "weekend", 0.5},
		{types.DurationUnknown, "1 week", 0.5},
		{types.DurationShort, "", 0.5},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DurationScore(c.bucket, c.hint), "%s / %q", c.bucket, c.hint)
	}
}

func TestWeights(t *testing.T) {
	w, err := Weights{Semantic: 5, Activity: 3, Budget: 1.5, Duration: 0.5}.Normalize()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, w.Semantic, 1e-9)
	assert.InDelta(t, 1.0, w.Semantic+w.Activity+w.Budget+w.Duration, 1e-9)

	_, err = Weights{Semantic: -1, Activity: 1}.Normalize()
	assert.Error(t, err)
	_, err = Weights{}.Normalize()
	assert.Error(t, err)
}

func TestCombinedScoreBoundsAndMonotonicity(t *testing.T) {
	w, err := DefaultWeights.Normalize()
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		s := [4]float64{rng.Float64(), rng.Float64(), rng.Float64(), rng.Float64()}
		base := w.Combine(s[0], s[1], s[2], s[3])
		require.GreaterOrEqual(t, base, 0.0)
		require.LessOrEqual(t, base, 1.0)

		for k := 0; k < 4; k++ {
			bumped := s
			bumped[k] = s[k] + (1-s[k])*rng.Float64()
			require.GreaterOrEqual(t, w.Combine(bumped[0], bumped[1], bumped[2], bumped[3]), base)
		}
	}

	assert.InDelta(t, 1.0, w.Combine(1, 1, 1, 1), 1e-9)
	assert.Equal(t, 0.0, w.Combine(0, 0, 0, 0))
}

func TestRank(t *testing.T) {
	mk := func(id string, score float64) types.ScoredDestination {
		return types.ScoredDestination{Destination: types.Destination{ID: id}, CombinedScore: score}
	}

	t.Run("ties break by id ascending", func(t *testing.T) {
		ranked := Rank([]types.ScoredDestination{mk("zanzibar", 0.7), mk("athens", 0.7), mk("bali", 0.9)}, 5)
		require.Len(t, ranked, 3)
		assert.Equal(t, []string{"bali", "athens", "zanzibar"},
			[]string{ranked[0].Destination.ID, ranked[1].Destination.ID, ranked[2].Destination.ID})
	})

	t.Run("truncates to n and tolerates fewer", func(t *testing.T) {
		in := []types.ScoredDestination{mk("a", 0.1), mk("b", 0.2), mk("c", 0.3)}
		assert.Len(t, Rank(in, 2), 2)
		assert.Len(t, Rank(in, 10), 3)
		assert.Equal(t, "a", in[0].Destination.ID, "input is not reordered")
	})
}

func TestScoreIsDeterministic(t *testing.T) {
	w, _ := DefaultWeights.Normalize()
	p := &types.TravelerProfile{
		TravelerTypes: []types.TravelerType{types.TravelerFoodie},
		BudgetStyle:   types.BudgetMidRange,
	}
	d := types.Destination{
		ID: "lisbon", Embedding: []float32{0.3, 0.1, 0.9},
		Scores:         types.FeatureScores{Cuisine: 88},
		BudgetLevel:    types.BudgetLevelMidRange,
		IdealDurations: "3-5 days",
	}
	q := []float32{0.2, 0.2, 0.8}

	first := Score(w, q, p, d, types.DurationShort)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(w, q, p, d, types.DurationShort))
	}
	assert.InDelta(t, 0.88, first.ActivityScore, 1e-9)
	assert.Equal(t, 1.0, first.BudgetScore)
	assert.Equal(t, 1.0, first.DurationScore)
}
