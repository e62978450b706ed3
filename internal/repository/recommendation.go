package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/sepa/internal/contracts"
)

// schema is applied by EnsureSchema; one row per ticker per trading date
const schema = `
	CREATE SCHEMA IF NOT EXISTS sepa;

	CREATE TABLE IF NOT EXISTS sepa.recommendations (
		ticker        TEXT             NOT NULL,
		as_of         DATE             NOT NULL,
		current_price DOUBLE PRECISION NOT NULL,
		total_score   DOUBLE PRECISION NOT NULL,
		tier          TEXT             NOT NULL,
		buy_ready     BOOLEAN          NOT NULL,
		entry_timing  TEXT             NOT NULL,
		risk_reward   DOUBLE PRECISION NOT NULL,
		payload       JSONB            NOT NULL,
		strategy_hash TEXT             NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
		PRIMARY KEY (ticker, as_of)
	);

	CREATE INDEX IF NOT EXISTS recommendations_as_of_idx
		ON sepa.recommendations (as_of, buy_ready, total_score DESC);
`

const upsertQuery = `
	INSERT INTO sepa.recommendations (
		ticker, as_of, current_price, total_score, tier,
		buy_ready, entry_timing, risk_reward, payload, strategy_hash
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (ticker, as_of) DO UPDATE SET
		current_price = EXCLUDED.current_price,
		total_score = EXCLUDED.total_score,
		tier = EXCLUDED.tier,
		buy_ready = EXCLUDED.buy_ready,
		entry_timing = EXCLUDED.entry_timing,
		risk_reward = EXCLUDED.risk_reward,
		payload = EXCLUDED.payload,
		strategy_hash = EXCLUDED.strategy_hash,
		created_at = NOW()
`

// RecommendationRepository stores evaluations in PostgreSQL
// ⭐ SSOT: 평가 결과 저장/조회는 여기서만
//
// Summary columns are denormalized for filtering; the full Recommendation
// lives in payload.
type RecommendationRepository struct {
	pool         *pgxpool.Pool
	strategyHash string
}

var _ contracts.RecommendationRepository = (*RecommendationRepository)(nil)

// NewRecommendationRepository creates a repository; strategyHash tags every row
func NewRecommendationRepository(pool *pgxpool.Pool, strategyHash string) *RecommendationRepository {
	return &RecommendationRepository{pool: pool, strategyHash: strategyHash}
}

// EnsureSchema creates the schema and table if missing
func (r *RecommendationRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Save upserts one recommendation
func (r *RecommendationRepository) Save(ctx context.Context, rec *contracts.Recommendation) error {
	args, err := r.rowArgs(rec)
	if err != nil {
		return err
	}

	if _, err := r.pool.Exec(ctx, upsertQuery, args...); err != nil {
		return fmt.Errorf("save recommendation %s: %w", rec.Ticker, err)
	}
	return nil
}

// SaveBatch upserts all recommendations in one transaction
func (r *RecommendationRepository) SaveBatch(ctx context.Context, recs []*contracts.Recommendation) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, rec := range recs {
		args, err := r.rowArgs(rec)
		if err != nil {
			return err
		}
		batch.Queue(upsertQuery, args...)
	}

	results := tx.SendBatch(ctx, batch)
	for _, rec := range recs {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("save recommendation %s: %w", rec.Ticker, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetLatest returns the most recent recommendation for ticker
func (r *RecommendationRepository) GetLatest(ctx context.Context, ticker string) (*contracts.Recommendation, error) {
	query := `
		SELECT payload
		FROM sepa.recommendations
		WHERE ticker = $1
		ORDER BY as_of DESC
		LIMIT 1
	`

	var payload []byte
	err := r.pool.QueryRow(ctx, query, normalizeTicker(ticker)).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("recommendation %s: %w", ticker, contracts.ErrNoData)
	}
	if err != nil {
		return nil, fmt.Errorf("query latest recommendation: %w", err)
	}

	return decodePayload(payload)
}

// ListByDate returns all recommendations of one trading date, buy-ready first
func (r *RecommendationRepository) ListByDate(ctx context.Context, date time.Time) ([]*contracts.Recommendation, error) {
	query := `
		SELECT payload
		FROM sepa.recommendations
		WHERE as_of = $1
		ORDER BY buy_ready DESC, total_score DESC, ticker
	`

	rows, err := r.pool.Query(ctx, query, tradingDate(date))
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	defer rows.Close()

	var recs []*contracts.Recommendation
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		rec, err := decodePayload(payload)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recommendations: %w", err)
	}

	return recs, nil
}

// rowArgs maps a recommendation onto upsertQuery's parameters
func (r *RecommendationRepository) rowArgs(rec *contracts.Recommendation) ([]interface{}, error) {
	if rec == nil || rec.Ticker == "" {
		return nil, fmt.Errorf("recommendation without ticker")
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal recommendation %s: %w", rec.Ticker, err)
	}

	return []interface{}{
		normalizeTicker(rec.Ticker),
		tradingDate(rec.AsOf),
		rec.CurrentPrice,
		rec.Fundamentals.TotalScore,
		rec.Fundamentals.Tier,
		rec.BuyReady,
		string(rec.Plan.EntryTiming),
		rec.Plan.RiskRewardRatio,
		payload,
		r.strategyHash,
	}, nil
}

func decodePayload(payload []byte) (*contracts.Recommendation, error) {
	var rec contracts.Recommendation
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal recommendation: %w", err)
	}
	return &rec, nil
}

// tradingDate truncates to the calendar date in UTC
func tradingDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
