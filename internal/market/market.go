package market

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNoData means the provider answered but had no quote for the ticker.
// Callers must treat it (and any other lookup error) as "hold", never as a
// sell trigger.
var ErrNoData = errors.New("no price data available")

// PriceSource supplies the most recent closing price for a ticker.
//
// Interfaces define *behavior*: any struct with this method satisfies it,
// which lets tests substitute a deterministic source and lets the provider be
// swapped without touching the rule engine.
type PriceSource interface {
	LatestClose(ticker string) (decimal.Decimal, error)
}
