package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding represents a single ticker position in the portfolio.
type Holding struct {
	Ticker    string          // The stock symbol (e.g., "ABEO")
	Shares    decimal.Decimal // Number of shares held; always > 0 while the holding exists
	StopLoss  decimal.Decimal // Price at or below which the position is liquidated in full
	BuyPrice  decimal.Decimal // Weighted average price paid per share
	CostBasis decimal.Decimal // Total amount paid for the position: Shares * BuyPrice, rounded to cents
}

// PortfolioState is the full session state: every holding plus the uninvested
// cash balance. Cash is a single scalar here; the CSV wire format repeats it
// per row, but that redundancy stops at the storage layer.
type PortfolioState struct {
	Holdings []Holding
	Cash     decimal.Decimal
}

// Find returns the index of the holding for ticker, or false if not held.
func (s PortfolioState) Find(ticker string) (int, bool) {
	for i, h := range s.Holdings {
		if h.Ticker == ticker {
			return i, true
		}
	}
	return 0, false
}

// TotalCostBasis sums the cost basis across all holdings.
func (s PortfolioState) TotalCostBasis() decimal.Decimal {
	total := decimal.Zero
	for _, h := range s.Holdings {
		total = total.Add(h.CostBasis)
	}
	return total
}

// Sell reasons recorded in the trade log.
const (
	ReasonStopLoss   = "stop-loss triggered"
	ReasonManualSell = "manual sell"
)

// SellRecord is one append-only trade log entry for an executed sell.
type SellRecord struct {
	ID         string          // Unique record ID
	Timestamp  time.Time       // When the sell was applied
	Ticker     string          // Symbol sold
	Shares     decimal.Decimal // Quantity sold
	SalePrice  decimal.Decimal // Execution price per share
	BuyPrice   decimal.Decimal // Average price originally paid, the cost reference
	ProfitLoss decimal.Decimal // (SalePrice - BuyPrice) * Shares
	Reason     string          // ReasonStopLoss or ReasonManualSell
	Note       string          // Optional operator note, audit context only
}
