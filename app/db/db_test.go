package database

import (
	"io"
	"log/slog"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/somya-cb/ai-travel-assistant/config"
)

func TestNewDatabaseConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("builds a postgresql url", func(t *testing.T) {
		var cfg config.Config
		cfg.Repositories.Postgres.Host = "db"
		cfg.Repositories.Postgres.Port = "5432"
		cfg.Repositories.Postgres.Username = "travel"
		cfg.Repositories.Postgres.Password = "p@ss"
		cfg.Repositories.Postgres.DB = "travel_assistant"
		cfg.Repositories.Postgres.MAXCONWAITINGTIME = 10

		dbCfg, err := NewDatabaseConfig(&cfg, logger)
		require.NoError(t, err)

		u, err := url.Parse(dbCfg.ConnectionURL)
		require.NoError(t, err)
		assert.Equal(t, "postgresql", u.Scheme)
		assert.Equal(t, "db:5432", u.Host)
		assert.Equal(t, "/travel_assistant", u.Path)
		pw, _ := u.User.Password()
		assert.Equal(t, "p@ss", pw)
		assert.Equal(t, "disable", u.Query().Get("sslmode"))
		assert.Equal(t, "10", u.Query().Get("connect_timeout"))
	})

	t.Run("missing host", func(t *testing.T) {
		_, err := NewDatabaseConfig(&config.Config{}, logger)
		assert.Error(t, err)
	})
}

func TestRunMigrationsRejectsBadScheme(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := RunMigrations("mysql://root@localhost/db", logger)
	assert.Error(t, err)
}

func TestMigrationsAreEmbedded(t *testing.T) {
	entries, err := migrationFS.ReadDir("migrations")
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}
