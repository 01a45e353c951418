// Package engine holds the trade-evaluation and state-mutation logic: the
// stop-loss rule pass over the portfolio and the manual buy/sell handlers.
package engine

import (
	"errors"
	"fmt"
	"log"
	"slices"

	"github.com/shopspring/decimal"

	"folio_tracker/internal/ledger"
	"folio_tracker/internal/market"
	"folio_tracker/internal/models"
)

// Rejection errors for manual trades. A rejected trade leaves the portfolio
// and cash exactly as they were.
var (
	ErrBadQuantity      = errors.New("shares and price must be positive")
	ErrInsufficientCash = errors.New("insufficient cash")
	ErrUnknownTicker    = errors.New("ticker not held in portfolio")
	ErrOversell         = errors.New("cannot sell more shares than held")
)

// Engine applies the stop-loss rule and manual trades to a portfolio state.
// Both collaborators are injected: prices for quote lookups, trades for the
// audit log of executed sells.
type Engine struct {
	prices market.PriceSource
	trades ledger.TradeLog
}

func New(prices market.PriceSource, trades ledger.TradeLog) *Engine {
	return &Engine{prices: prices, trades: trades}
}

// Evaluate runs the stop-loss check over every holding, in portfolio order,
// and returns the updated state.
//
// Per holding: a failed or empty quote means hold (a missing price is never a
// sell trigger); a price at or below the stop-loss sells the position in
// full, credits cash with price*shares and logs the sell; anything else
// leaves the holding untouched. Holdings are independent, so order only
// affects the sequence of log records.
func (e *Engine) Evaluate(state models.PortfolioState) models.PortfolioState {
	out := models.PortfolioState{Cash: state.Cash}

	for _, h := range state.Holdings {
		price, err := e.prices.LatestClose(h.Ticker)
		if err != nil {
			log.Printf("[%s] No price data, holding: %v", h.Ticker, err)
			out.Holdings = append(out.Holdings, h)
			continue
		}

		if price.LessThanOrEqual(h.StopLoss) {
			proceeds := price.Mul(h.Shares)
			out.Cash = out.Cash.Add(proceeds)
			log.Printf("[%s] Stop loss triggered: price $%s <= stop $%s, sold %s shares for $%s",
				h.Ticker, price.StringFixed(2), h.StopLoss.StringFixed(2), h.Shares, proceeds.StringFixed(2))
			e.logSell(models.SellRecord{
				Ticker:     h.Ticker,
				Shares:     h.Shares,
				SalePrice:  price,
				BuyPrice:   h.BuyPrice,
				ProfitLoss: price.Sub(h.BuyPrice).Mul(h.Shares),
				Reason:     models.ReasonStopLoss,
			})
			continue
		}

		log.Printf("[%s] Holding: price $%s > stop $%s", h.Ticker, price.StringFixed(2), h.StopLoss.StringFixed(2))
		out.Holdings = append(out.Holdings, h)
	}

	return out
}

// Buy applies a manual purchase and returns the updated state.
//
// A first purchase creates the holding at the given price and stop-loss. A
// repeat purchase merges into the existing holding: the average buy price is
// recomputed from total cost over total shares (never by incremental
// averaging, which drifts across many small buys), the cost basis is
// recomputed from that average, and the supplied stop-loss replaces the old
// one. The latest manual stop-loss instruction wins.
func (e *Engine) Buy(state models.PortfolioState, ticker string, shares, price, stopLoss decimal.Decimal) (models.PortfolioState, error) {
	if !shares.IsPositive() || !price.IsPositive() {
		return state, ErrBadQuantity
	}
	cost := price.Mul(shares)
	if cost.GreaterThan(state.Cash) {
		return state, fmt.Errorf("%w: need $%s, have $%s", ErrInsufficientCash, cost.StringFixed(2), state.Cash.StringFixed(2))
	}

	if i, ok := state.Find(ticker); ok {
		h := state.Holdings[i]
		newShares := h.Shares.Add(shares)
		avg := h.CostBasis.Add(cost).Div(newShares)
		state.Holdings = slices.Clone(state.Holdings)
		state.Holdings[i] = models.Holding{
			Ticker:    h.Ticker,
			Shares:    newShares,
			StopLoss:  stopLoss,
			BuyPrice:  avg,
			CostBasis: newShares.Mul(avg).Round(2),
		}
	} else {
		state.Holdings = append(state.Holdings, models.Holding{
			Ticker:    ticker,
			Shares:    shares,
			StopLoss:  stopLoss,
			BuyPrice:  price,
			CostBasis: cost.Round(2),
		})
	}

	state.Cash = state.Cash.Sub(cost)
	log.Printf("[%s] Bought %s shares at $%s, cash now $%s", ticker, shares, price.StringFixed(2), state.Cash.StringFixed(2))
	return state, nil
}

// Sell applies a manual partial or full sell and returns the updated state.
//
// A full sell removes the holding; a partial sell decrements shares and
// recomputes the cost basis from the unchanged average buy price. Only a
// repurchase moves the average. The sell is logged with the realized P/L
// relative to that average; note is free-text audit context and may be empty.
func (e *Engine) Sell(state models.PortfolioState, ticker string, shares, price decimal.Decimal, note string) (models.PortfolioState, error) {
	if !shares.IsPositive() || !price.IsPositive() {
		return state, ErrBadQuantity
	}
	i, ok := state.Find(ticker)
	if !ok {
		return state, fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}
	h := state.Holdings[i]
	if shares.GreaterThan(h.Shares) {
		return state, fmt.Errorf("%w: tried to sell %s of %s held", ErrOversell, shares, h.Shares)
	}

	if shares.Equal(h.Shares) {
		state.Holdings = slices.Delete(slices.Clone(state.Holdings), i, i+1)
	} else {
		remaining := h.Shares.Sub(shares)
		state.Holdings = slices.Clone(state.Holdings)
		state.Holdings[i] = models.Holding{
			Ticker:    h.Ticker,
			Shares:    remaining,
			StopLoss:  h.StopLoss,
			BuyPrice:  h.BuyPrice,
			CostBasis: remaining.Mul(h.BuyPrice).Round(2),
		}
	}

	proceeds := price.Mul(shares)
	state.Cash = state.Cash.Add(proceeds)
	log.Printf("[%s] Sold %s shares at $%s, cash now $%s", ticker, shares, price.StringFixed(2), state.Cash.StringFixed(2))

	e.logSell(models.SellRecord{
		Ticker:     ticker,
		Shares:     shares,
		SalePrice:  price,
		BuyPrice:   h.BuyPrice,
		ProfitLoss: price.Sub(h.BuyPrice).Mul(shares),
		Reason:     models.ReasonManualSell,
		Note:       note,
	})
	return state, nil
}

// logSell appends the record to the trade log. A failed write is reported but
// does not undo the trade: the portfolio file, not the audit log, is the
// source of truth.
func (e *Engine) logSell(rec models.SellRecord) {
	if e.trades == nil {
		return
	}
	if err := e.trades.Append(rec); err != nil {
		log.Printf("WARNING: trade log write failed for %s (trade stands): %v", rec.Ticker, err)
	}
}
