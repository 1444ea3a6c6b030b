package repository

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
)

// Execer is satisfied by *sql.DB and *clickhouse.Client.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ForecastSchema returns the DDL for the forecasts table.
func ForecastSchema(database, table string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
    id String,
    created_at DateTime64(3, 'UTC'),
    asset_type LowCardinality(String),
    asset_name String,
    ticker LowCardinality(String),
    interest_rate Float64,
    inflation_rate Float64,
    forecast_years UInt16,
    close Float64,
    moving_average Float64,
    volatility Float64,
    price_change Float64,
    current_price Float64,
    base_prediction Float64,
    predicted_price Float64,
    growth_applied String,
    model String
) ENGINE = MergeTree
PARTITION BY toYYYYMM(created_at)
ORDER BY (ticker, created_at)`, database, table),
	}
}

// CHForecastStore appends forecast records to a ClickHouse table.
type CHForecastStore struct {
	db    Execer
	table string
}

// NewCHForecastStore writes into table, which may be qualified as db.table.
func NewCHForecastStore(db Execer, table string) *CHForecastStore {
	return &CHForecastStore{db: db, table: table}
}

func (s *CHForecastStore) Record(ctx context.Context, r *models.ForecastRecord) error {
	q := fmt.Sprintf(`INSERT INTO %s (id, created_at, asset_type, asset_name, ticker,
    interest_rate, inflation_rate, forecast_years, close, moving_average, volatility,
    price_change, current_price, base_prediction, predicted_price, growth_applied, model)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	_, err := s.db.ExecContext(ctx, q,
		r.ID,
		r.CreatedAt,
		r.AssetType,
		r.AssetName,
		r.Ticker,
		r.InterestRate,
		r.InflationRate,
		uint16(r.Years),
		r.Features.Close,
		r.Features.MovingAverage,
		r.Features.Volatility,
		r.Features.PriceChange,
		r.CurrentPrice,
		r.BasePredicted,
		r.Predicted,
		r.GrowthApplied,
		r.Model,
	)
	if err != nil {
		return fmt.Errorf("insert forecast: %w", err)
	}
	return nil
}

func (s *CHForecastStore) Name() string { return "clickhouse" }

// Close closes the underlying pool if it is closable.
func (s *CHForecastStore) Close() error {
	if c, ok := s.db.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

var _ domrepo.ForecastSink = (*CHForecastStore)(nil)
