// Package catalog holds the fixed set of forecastable assets and their growth assumptions.
package catalog

import "sort"

// DefaultGrowthFactor applies to categories missing from the growth table.
const DefaultGrowthFactor = 1.05

// Asset is one catalog entry.
type Asset struct {
	Type   string  `json:"asset_type"`
	Name   string  `json:"asset_name"`
	Ticker string  `json:"ticker"`
	Growth float64 `json:"growth_factor"`
}

// names maps category to ticker to display name.
var names = map[string]map[string]string{
	"Stock": {
		"AAPL": "Apple",
		"MSFT": "Microsoft",
	},
	"Cryptocurrency": {
		"BTC-USD": "Bitcoin",
		"ETH-USD": "Ethereum",
	},
	"Commodity": {
		"GC=F": "Gold",
		"CL=F": "Oil",
	},
	"Bond": {
		"^TNX": "Treasury Bond",
		"LQD":  "Corporate Bond",
	},
	"Real Estate": {
		"VNQ": "REIT",
	},
}

var growth = map[string]float64{
	"Stock":          1.084,
	"Cryptocurrency": 1.15,
	"Commodity":      1.055,
	"Bond":           1.03,
	"Real Estate":    1.07,
}

// Lookup resolves (type, ticker) to an asset. Matching is exact and case-sensitive.
func Lookup(assetType, ticker string) (Asset, bool) {
	byTicker, ok := names[assetType]
	if !ok {
		return Asset{}, false
	}
	name, ok := byTicker[ticker]
	if !ok {
		return Asset{}, false
	}
	return Asset{Type: assetType, Name: name, Ticker: ticker, Growth: GrowthFactor(assetType)}, true
}

// GrowthFactor returns the annual growth multiplier for a category.
func GrowthFactor(assetType string) float64 {
	if g, ok := growth[assetType]; ok {
		return g
	}
	return DefaultGrowthFactor
}

// Types lists the categories in sorted order.
func Types() []string {
	out := make([]string, 0, len(names))
	for t := range names {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// List returns every asset sorted by type then ticker.
func List() []Asset {
	var out []Asset
	for _, t := range Types() {
		syms := make([]string, 0, len(names[t]))
		for sym := range names[t] {
			syms = append(syms, sym)
		}
		sort.Strings(syms)
		for _, sym := range syms {
			a, _ := Lookup(t, sym)
			out = append(out, a)
		}
	}
	return out
}
