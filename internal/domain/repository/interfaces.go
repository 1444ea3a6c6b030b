package repository

import (
	"context"
	"errors"

	"FinCast/internal/domain/models"
)

// ErrNoData reports that the market data source returned no usable observations.
var ErrNoData = errors.New("no data found")

// HistorySource fetches chronologically ordered monthly closes for a ticker.
type HistorySource interface {
	Fetch(ctx context.Context, ticker string) ([]models.PricePoint, error)
}

// ForecastSink receives a record for every successful forecast.
type ForecastSink interface {
	Record(ctx context.Context, rec *models.ForecastRecord) error
	Name() string
	Close() error
}

type Metrics interface {
	RecordForecast(assetType, outcome string)
	RecordSinkWrite(sink string, ok bool)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
