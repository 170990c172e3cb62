package sink_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"arbScope/internal/model"
	"arbScope/internal/sink"
	"arbScope/internal/sink/sinktest"
)

func sampleCycle(withPlan bool) model.ScanCycle {
	cycle := model.ScanCycle{
		ID:        "c-1",
		Sequence:  7,
		StartedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		EndedAt:   time.Date(2024, 3, 1, 12, 0, 2, 0, time.UTC),
	}
	cycle.QuotesAttempted = 9
	cycle.QuotesSucceeded = 6
	if withPlan {
		pair := model.TokenPair{Base: "WETH", Quote: "USDC"}
		cycle.Opportunities = []model.TradePlan{{
			ID:          "p-1",
			Kind:        model.PlanDirect,
			Direct:      &model.DirectCandidate{Pair: pair, Buy: model.Quote{Venue: "a", FeeTier: 500}, Sell: model.Quote{Venue: "b", FeeTier: 3000}},
			BorrowToken: "USDC",
			Notional:    decimal.NewFromInt(20000),
			NotionalUSD: decimal.NewFromInt(20000),
			NetProfit:   decimal.RequireFromString("55.5"),
			Profitable:  true,
		}}
	}
	return cycle
}

func TestJSONLSinkAppendsCycles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "cycles.jsonl")
	s := sink.NewJSONLSink(path, false)

	require.NoError(t, s.Publish(context.Background(), sampleCycle(true)))
	require.NoError(t, s.Publish(context.Background(), sampleCycle(false)))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var lines []map[string]interface{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var row map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &row))
		lines = append(lines, row)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, lines, 2)
	assert.Equal(t, "c-1", lines[0]["id"])
	assert.EqualValues(t, 6, lines[0]["quotes_succeeded"])
	plans := lines[0]["opportunities"].([]interface{})
	assert.Equal(t, "55.5", plans[0].(map[string]interface{})["net_profit"])
}

func TestJSONLSinkOpportunitiesOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cycles.jsonl")
	s := sink.NewJSONLSink(path, true)

	require.NoError(t, s.Publish(context.Background(), sampleCycle(false)))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestMultiCombinesErrors(t *testing.T) {
	errA := errors.New("a down")
	errB := errors.New("b down")
	a := &sinktest.Recorder{Err: errA}
	ok := &sinktest.Recorder{}
	b := &sinktest.Recorder{Err: errB}

	m := sink.NewMulti(a, nil, ok, b)
	assert.Equal(t, 3, m.Len())

	err := m.Publish(context.Background(), sampleCycle(false))
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Len(t, ok.Cycles(), 1, "a failing sink does not stop the others")
}

func TestLogSinkWritesOneLinePerOpportunity(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := sink.NewLogSink(zap.New(core))

	require.NoError(t, s.Publish(context.Background(), sampleCycle(true)))
	require.NoError(t, s.Publish(context.Background(), sampleCycle(false)))

	entries := logs.FilterMessage("opportunity").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "WETH/USDC a/500->b/3000", fields["route"])
	assert.Equal(t, "55.5", fields["net_usd"])
}
