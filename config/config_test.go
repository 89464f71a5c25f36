package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfigEmbedded(t *testing.T) {
	cfg, err := InitConfig()
	require.NoError(t, err)

	w := cfg.Recommendation.Weights
	assert.InDelta(t, 0.5, w.Semantic, 1e-9)
	assert.InDelta(t, 0.3, w.Activity, 1e-9)
	assert.InDelta(t, 0.15, w.Budget, 1e-9)
	assert.InDelta(t, 0.05, w.Duration, 1e-9)
	assert.Equal(t, 5, cfg.Recommendation.TopN)
	assert.Equal(t, 7, cfg.Conversation.MaxItineraryDays)
	assert.Equal(t, 768, cfg.Embedding.Dimension)
}

func TestConfigValidate(t *testing.T) {
	base := func() Config {
		var c Config
		c.Recommendation.Weights.Semantic = 1
		c.Conversation.Store = "redis"
		c.Embedding.Provider = "openai"
		c.Embedding.Dimension = 1536
		return c
	}

	c := base()
	assert.NoError(t, c.Validate())

	c = base()
	c.Recommendation.Weights.Budget = -0.1
	assert.Error(t, c.Validate())

	c = base()
	c.Recommendation.Weights.Semantic = 0
	assert.Error(t, c.Validate())

	c = base()
	c.Conversation.Store = "memory"
	assert.Error(t, c.Validate())
}
