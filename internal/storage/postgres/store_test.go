package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"arbScope/internal/model"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container test skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("arbscope"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	store, err := NewStore(ctx, dsn, "test")
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, store.Migrate(ctx))
	return store
}

func TestStorePublishAndSequence(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	pair := model.TokenPair{Base: "WETH", Quote: "USDC"}
	cycle := model.ScanCycle{
		ID:        uuid.NewString(),
		Sequence:  3,
		StartedAt: time.Now().UTC().Add(-2 * time.Second),
		EndedAt:   time.Now().UTC(),
		Block:     190000000,
	}
	cycle.QuotesAttempted = 9
	cycle.QuotesSucceeded = 7
	cycle.Opportunities = []model.TradePlan{{
		ID:          uuid.NewString(),
		Kind:        model.PlanDirect,
		Direct:      &model.DirectCandidate{Pair: pair, Spread: decimal.RequireFromString("0.0033")},
		BorrowToken: "USDC",
		Notional:    decimal.NewFromInt(20000),
		NotionalUSD: decimal.NewFromInt(20000),
		GrossProfit: decimal.NewFromInt(66),
		NetProfit:   decimal.NewFromInt(55),
		Profitable:  true,
	}}

	require.NoError(t, store.Publish(ctx, cycle))
	require.NoError(t, store.Publish(ctx, cycle), "republishing is a no-op")

	var plans int
	var net string
	row := store.pool.QueryRow(ctx, `SELECT count(*), max(net_profit)::text FROM trade_plans WHERE cycle_id=$1`, cycle.ID)
	require.NoError(t, row.Scan(&plans, &net))
	assert.Equal(t, 1, plans)
	assert.Equal(t, "55", net)

	_, ok, err := store.LoadSequence(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SaveSequence(ctx, 3))
	require.NoError(t, store.SaveSequence(ctx, 4))
	seq, ok, err := store.LoadSequence(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(4), seq)
}
