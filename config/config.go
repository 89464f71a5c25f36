package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"`
	Dotenv string `mapstructure:"dotenv"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
		Redis struct {
			Addr     string `mapstructure:"addr"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"repositories"`
	Observability struct {
		ServiceName string `mapstructure:"serviceName"`
		MetricsPort string `mapstructure:"metricsPort"`
	} `mapstructure:"observability"`
	Auth struct {
		JWTSecret string `mapstructure:"jwtSecret"`
		Issuer    string `mapstructure:"issuer"`
	} `mapstructure:"auth"`
	LLM struct {
		APIKey  string        `mapstructure:"apiKey"`
		Model   string        `mapstructure:"model"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"llm"`
	Embedding struct {
		Provider     string        `mapstructure:"provider"`
		Model        string        `mapstructure:"model"`
		Dimension    int           `mapstructure:"dimension"`
		OpenAIAPIKey string        `mapstructure:"openaiApiKey"`
		CacheTTL     time.Duration `mapstructure:"cacheTTL"`
		Timeout      time.Duration `mapstructure:"timeout"`
	} `mapstructure:"embedding"`
	Recommendation struct {
		Weights struct {
			Semantic float64 `mapstructure:"semantic"`
			Activity float64 `mapstructure:"activity"`
			Budget   float64 `mapstructure:"budget"`
			Duration float64 `mapstructure:"duration"`
		} `mapstructure:"weights"`
		TopN          int           `mapstructure:"topN"`
		CandidatePool int           `mapstructure:"candidatePool"`
		StoreTimeout  time.Duration `mapstructure:"storeTimeout"`
		Concurrency   int           `mapstructure:"concurrency"`
	} `mapstructure:"recommendation"`
	Conversation struct {
		Store            string        `mapstructure:"store"`
		TTL              time.Duration `mapstructure:"ttl"`
		MaxItineraryDays int           `mapstructure:"maxItineraryDays"`
	} `mapstructure:"conversation"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// secrets: GOOGLE_GEMINI_API_KEY, OPENAI_API_KEY, JWT_SECRET_KEY, POSTGRES_PASSWORD
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("llm.apiKey", "GOOGLE_GEMINI_API_KEY")
	_ = v.BindEnv("embedding.openaiApiKey", "OPENAI_API_KEY")
	_ = v.BindEnv("auth.jwtSecret", "JWT_SECRET_KEY")
	_ = v.BindEnv("repositories.postgres.password", "POSTGRES_PASSWORD")
	_ = v.BindEnv("repositories.redis.addr", "REDIS_ADDR")

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err = config.Validate(); err != nil {
		return Config{}, err
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	w := c.Recommendation.Weights
	if w.Semantic < 0 || w.Activity < 0 || w.Budget < 0 || w.Duration < 0 {
		return fmt.Errorf("recommendation weights must be non-negative")
	}
	if w.Semantic+w.Activity+w.Budget+w.Duration <= 0 {
		return fmt.Errorf("recommendation weights must not all be zero")
	}
	switch c.Conversation.Store {
	case "postgres", "redis":
	default:
		return fmt.Errorf("conversation.store must be postgres or redis, got %q", c.Conversation.Store)
	}
	switch c.Embedding.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("embedding.provider must be gemini or openai, got %q", c.Embedding.Provider)
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding.dimension must be positive")
	}
	return nil
}
