package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"arbScope/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS scan_cycles (
	id                    UUID PRIMARY KEY,
	sequence              BIGINT NOT NULL,
	started_at            TIMESTAMPTZ NOT NULL,
	ended_at              TIMESTAMPTZ NOT NULL,
	block_number          BIGINT,
	pairs_attempted       INT NOT NULL,
	pairs_succeeded       INT NOT NULL,
	quotes_attempted      INT NOT NULL,
	quotes_succeeded      INT NOT NULL,
	quotes_failed         INT NOT NULL,
	quotes_void           INT NOT NULL,
	quotes_thin           INT NOT NULL,
	deadline_exceeded     BOOLEAN NOT NULL,
	direct_candidates     INT NOT NULL,
	triangular_candidates INT NOT NULL,
	opportunities         INT NOT NULL,
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS trade_plans (
	cycle_id       UUID NOT NULL REFERENCES scan_cycles (id) ON DELETE CASCADE,
	plan_id        UUID NOT NULL,
	kind           TEXT NOT NULL,
	route          TEXT NOT NULL,
	borrow_token   TEXT NOT NULL,
	notional       NUMERIC NOT NULL,
	notional_usd   NUMERIC NOT NULL,
	gross_profit   NUMERIC NOT NULL,
	flash_loan_fee NUMERIC NOT NULL,
	gas_cost       NUMERIC NOT NULL,
	net_profit     NUMERIC NOT NULL,
	candidate      JSONB NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (cycle_id, plan_id)
);

CREATE TABLE IF NOT EXISTS scanner_state (
	name          TEXT PRIMARY KEY,
	last_sequence BIGINT NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Store persists sealed scan cycles and their opportunities. It never stores
// raw quotes.
type Store struct {
	pool *pgxpool.Pool
	name string
}

// NewStore connects to dsn. name keys the scheduler state row.
func NewStore(ctx context.Context, dsn, name string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	if name == "" {
		name = "default"
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool, name: name}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the tables when they are missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) Name() string {
	return "postgres"
}

// Publish inserts the cycle row and one row per opportunity in a single batch.
func (s *Store) Publish(ctx context.Context, cycle model.ScanCycle) error {
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO scan_cycles (
			id, sequence, started_at, ended_at, block_number,
			pairs_attempted, pairs_succeeded, quotes_attempted, quotes_succeeded,
			quotes_failed, quotes_void, quotes_thin, deadline_exceeded,
			direct_candidates, triangular_candidates, opportunities
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		ON CONFLICT (id) DO NOTHING
	`,
		cycle.ID,
		int64(cycle.Sequence),
		cycle.StartedAt,
		cycle.EndedAt,
		nullableBlock(cycle.Block),
		cycle.PairsAttempted,
		cycle.PairsSucceeded,
		cycle.QuotesAttempted,
		cycle.QuotesSucceeded,
		cycle.QuotesFailed,
		cycle.QuotesVoid,
		cycle.QuotesThin,
		cycle.DeadlineExceeded,
		cycle.DirectCandidates,
		cycle.TriangularCandidates,
		len(cycle.Opportunities),
	)

	for _, plan := range cycle.Opportunities {
		candidate, err := candidateJSON(plan)
		if err != nil {
			return err
		}
		batch.Queue(`
			INSERT INTO trade_plans (
				cycle_id, plan_id, kind, route, borrow_token, notional, notional_usd,
				gross_profit, flash_loan_fee, gas_cost, net_profit, candidate
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
			ON CONFLICT (cycle_id, plan_id) DO NOTHING
		`,
			cycle.ID,
			plan.ID,
			string(plan.Kind),
			plan.Label(),
			plan.BorrowToken,
			plan.Notional.String(),
			plan.NotionalUSD.String(),
			plan.GrossProfit.String(),
			plan.FlashLoanFee.String(),
			plan.GasCost.String(),
			plan.NetProfit.String(),
			candidate,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert scan cycle %s: %w", cycle.ID, err)
		}
	}
	return nil
}

// LoadSequence returns the last sealed cycle sequence.
func (s *Store) LoadSequence(ctx context.Context) (uint64, bool, error) {
	var seq int64
	row := s.pool.QueryRow(ctx, `SELECT last_sequence FROM scanner_state WHERE name=$1`, s.name)
	if err := row.Scan(&seq); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(seq), true, nil
}

// SaveSequence upserts the last sealed cycle sequence.
func (s *Store) SaveSequence(ctx context.Context, seq uint64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO scanner_state (name, last_sequence, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_sequence = EXCLUDED.last_sequence, updated_at = now()
	`, s.name, int64(seq))
	return err
}

func nullableBlock(block uint64) *int64 {
	if block == 0 {
		return nil
	}
	v := int64(block)
	return &v
}

func candidateJSON(plan model.TradePlan) (string, error) {
	var v interface{}
	switch {
	case plan.Direct != nil:
		v = plan.Direct
	case plan.Triangular != nil:
		v = plan.Triangular
	default:
		return "{}", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal candidate %s: %w", plan.ID, err)
	}
	return string(data), nil
}
