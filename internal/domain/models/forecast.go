package models

import "time"

// FeatureNames is the column order the regression model was fitted on.
var FeatureNames = [4]string{"Close", "30D_MA", "Volatility", "Price Change"}

// PricePoint is one monthly observation.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
}

// ForecastRequest is the body of POST /api/forecast.
// Rates are pointers so that an absent field is distinguishable from zero.
type ForecastRequest struct {
	AssetType     string   `json:"asset_type"`
	AssetName     string   `json:"asset_name"`
	InterestRate  *float64 `json:"interest_rate" validate:"required"`
	InflationRate *float64 `json:"inflation_rate" validate:"required"`
	ForecastYears *int     `json:"forecast_years" default:"5" validate:"required,gte=1"`
}

// Years returns the horizon, 5 when unset.
func (r *ForecastRequest) Years() int {
	if r.ForecastYears == nil {
		return 5
	}
	return *r.ForecastYears
}

// FeatureVector holds the model inputs for the latest period.
type FeatureVector struct {
	Close         float64 `json:"close"`
	MovingAverage float64 `json:"moving_average"`
	Volatility    float64 `json:"volatility"`
	PriceChange   float64 `json:"price_change"`
}

// Values returns the features in FeatureNames order.
func (f FeatureVector) Values() [4]float64 {
	return [4]float64{f.Close, f.MovingAverage, f.Volatility, f.PriceChange}
}

// Map returns the features keyed by model column name.
func (f FeatureVector) Map() map[string]float64 {
	v := f.Values()
	m := make(map[string]float64, len(v))
	for i, name := range FeatureNames {
		m[name] = v[i]
	}
	return m
}

// Adjustment is the output of the growth and real-rate correction.
type Adjustment struct {
	GrowthApplied float64
	Adjusted      float64
	GrowthPercent string
}

// ForecastResult is the pipeline output before rendering.
type ForecastResult struct {
	AssetType     string
	AssetName     string
	Ticker        string
	CurrentPrice  float64
	BasePredicted float64
	Predicted     float64
	GrowthApplied string
	InterestRate  float64
	InflationRate float64
	Years         int
	Features      FeatureVector
}

// ForecastRecord is what the sink receives after a successful forecast.
type ForecastRecord struct {
	ID            string        `json:"id"`
	AssetType     string        `json:"asset_type"`
	AssetName     string        `json:"asset_name"`
	Ticker        string        `json:"ticker"`
	InterestRate  float64       `json:"interest_rate"`
	InflationRate float64       `json:"inflation_rate"`
	Years         int           `json:"forecast_years"`
	Features      FeatureVector `json:"features"`
	CurrentPrice  float64       `json:"current_price"`
	BasePredicted float64       `json:"base_prediction"`
	Predicted     float64       `json:"predicted_price"`
	GrowthApplied string        `json:"growth_applied"`
	Model         string        `json:"model"`
	CreatedAt     time.Time     `json:"created_at"`
}

// NewForecastRecord builds the sink record for r.
func NewForecastRecord(id, model string, r *ForecastResult, at time.Time) *ForecastRecord {
	return &ForecastRecord{
		ID:            id,
		AssetType:     r.AssetType,
		AssetName:     r.AssetName,
		Ticker:        r.Ticker,
		InterestRate:  r.InterestRate,
		InflationRate: r.InflationRate,
		Years:         r.Years,
		Features:      r.Features,
		CurrentPrice:  r.CurrentPrice,
		BasePredicted: r.BasePredicted,
		Predicted:     r.Predicted,
		GrowthApplied: r.GrowthApplied,
		Model:         model,
		CreatedAt:     at.UTC(),
	}
}
