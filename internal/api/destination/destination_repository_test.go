package destination

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

var destinationRowColumns = []string{
	"id", "city", "country", "region", "short_description", "budget_level", "ideal_durations",
	"latitude", "longitude",
	"culture_score", "adventure_score", "nature_score", "beaches_score", "nightlife_score",
	"cuisine_score", "wellness_score", "urban_score", "seclusion_score",
	"avg_temp_monthly", "embedding",
}

func lisbonRow(rows *pgxmock.Rows, embedding []float32) *pgxmock.Rows {
	return rows.AddRow(
		"lisbon", "Lisbon", "Portugal", "Europe", "Hilly coastal capital", "Mid-Range", "Short trip, One week",
		38.72, -9.14,
		85, 40, 50, 70, 75,
		90, 45, 80, 20,
		[]byte(`{"may": 21.5, "jan": 14.8}`), embedding,
	)
}

func newMockRepo(t *testing.T, dimension int) (pgxmock.PgxPoolIface, *RepositoryImpl) {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool, NewRepository(pool, dimension, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRepositorySearch(t *testing.T) {
	ctx := context.Background()

	t.Run("applies filters and limit", func(t *testing.T) {
		pool, repo := newMockRepo(t, 3)
		pool.ExpectQuery(`FROM destinations\s+WHERE embedding IS NOT NULL AND vector_dims\(embedding\) = \$2 AND lower\(region\) = \$3 AND lower\(budget_level\) = \$4 ORDER BY embedding <=> \$1::vector LIMIT \$5`).
			WithArgs(pgxmock.AnyArg(), 3, "europe", "luxury", 10).
			WillReturnRows(pgxmock.NewRows([]string{"id", "similarity_score"}).
				AddRow("paris", 0.91).
				AddRow("rome", 0.87))

		hits, err := repo.Search(ctx, []float32{0.1, 0.2, 0.3},
			types.SearchFilters{Region: "Europe", BudgetLevel: types.BudgetLevelLuxury}, 10)
		require.NoError(t, err)
		assert.Equal(t, []types.SearchHit{{ID: "paris", Score: 0.91}, {ID: "rome", Score: 0.87}}, hits)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("no filters", func(t *testing.T) {
		pool, repo := newMockRepo(t, 3)
		pool.ExpectQuery(`vector_dims\(embedding\) = \$2 ORDER BY embedding <=> \$1::vector LIMIT \$3`).
			WithArgs(pgxmock.AnyArg(), 3, 5).
			WillReturnRows(pgxmock.NewRows([]string{"id", "similarity_score"}))

		hits, err := repo.Search(ctx, []float32{1, 0, 0}, types.SearchFilters{}, 5)
		require.NoError(t, err)
		assert.Empty(t, hits)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("query dimension mismatch never reaches the store", func(t *testing.T) {
		pool, repo := newMockRepo(t, 3)
		_, err := repo.Search(ctx, []float32{1, 0}, types.SearchFilters{}, 5)
		assert.ErrorIs(t, err, types.ErrDimensionMismatch)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("store failure is a retrieval error", func(t *testing.T) {
		pool, repo := newMockRepo(t, 3)
		pool.ExpectQuery(`FROM destinations`).WillReturnError(errors.New("connection reset"))

		_, err := repo.Search(ctx, []float32{1, 0, 0}, types.SearchFilters{}, 5)
		assert.ErrorIs(t, err, types.ErrRetrieval)
	})
}

func TestRepositoryGet(t *testing.T) {
	ctx := context.Background()

	t.Run("loads a valid record", func(t *testing.T) {
		pool, repo := newMockRepo(t, 3)
		pool.ExpectQuery(`FROM destinations WHERE id = \$1`).
			WithArgs("lisbon").
			WillReturnRows(lisbonRow(pgxmock.NewRows(destinationRowColumns), []float32{0.1, 0.2, 0.3}))

		d, err := repo.Get(ctx, "lisbon")
		require.NoError(t, err)
		assert.Equal(t, "Lisbon", d.City)
		assert.Equal(t, types.BudgetLevelMidRange, d.BudgetLevel)
		assert.Equal(t, 90, d.Scores.Cuisine)
		assert.InDelta(t, 21.5, d.AvgTempMonthly["may"], 1e-9)
		assert.Len(t, d.Embedding, 3)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("missing row maps to not found", func(t *testing.T) {
		pool, repo := newMockRepo(t, 3)
		pool.ExpectQuery(`FROM destinations WHERE id = \$1`).
			WithArgs("atlantis").
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.Get(ctx, "atlantis")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("stored embedding with wrong dimension is rejected", func(t *testing.T) {
		pool, repo := newMockRepo(t, 3)
		pool.ExpectQuery(`FROM destinations WHERE id = \$1`).
			WithArgs("lisbon").
			WillReturnRows(lisbonRow(pgxmock.NewRows(destinationRowColumns), []float32{0.1, 0.2}))

		_, err := repo.Get(ctx, "lisbon")
		assert.ErrorIs(t, err, types.ErrDimensionMismatch)
	})
}

func TestRepositoryFindByCity(t *testing.T) {
	pool, repo := newMockRepo(t, 3)
	pool.ExpectQuery(`WHERE lower\(city\) = lower\(\$1\)`).
		WithArgs("lisbon").
		WillReturnRows(lisbonRow(pgxmock.NewRows(destinationRowColumns), []float32{0.1, 0.2, 0.3}))

	d, err := repo.FindByCity(context.Background(), "lisbon")
	require.NoError(t, err)
	assert.Equal(t, "Portugal", d.Country)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestRepositoryUpdateEmbedding(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a vector once", func(t *testing.T) {
		pool, repo := newMockRepo(t, 3)
		pool.ExpectExec(`UPDATE destinations`).
			WithArgs(pgxmock.AnyArg(), "lisbon").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.UpdateEmbedding(ctx, "lisbon", []float32{1, 2, 3}))
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("already embedded", func(t *testing.T) {
		pool, repo := newMockRepo(t, 3)
		pool.ExpectExec(`UPDATE destinations`).
			WithArgs(pgxmock.AnyArg(), "lisbon").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, repo.UpdateEmbedding(ctx, "lisbon", []float32{1, 2, 3}), types.ErrNotFound)
	})

	t.Run("wrong dimension", func(t *testing.T) {
		_, repo := newMockRepo(t, 3)
		assert.ErrorIs(t, repo.UpdateEmbedding(ctx, "lisbon", []float32{1}), types.ErrDimensionMismatch)
	})
}

func TestRepositoryListWithoutEmbeddings(t *testing.T) {
	pool, repo := newMockRepo(t, 0)
	pool.ExpectQuery(`WHERE embedding IS NULL ORDER BY id LIMIT \$1`).
		WithArgs(20).
		WillReturnRows(lisbonRow(pgxmock.NewRows(destinationRowColumns), nil))

	out, err := repo.ListWithoutEmbeddings(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "lisbon", out[0].ID)
	assert.Nil(t, out[0].Embedding)
}
