// Package storage reads and writes the portfolio-and-cash snapshot as a CSV
// file. The on-disk schema matches the historical tracker files: one row per
// holding with the scalar cash balance repeated on every row.
package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"folio_tracker/internal/models"
)

// Required columns on load and save. Header order is not significant and
// extra columns are ignored.
var requiredColumns = []string{"ticker", "shares", "stop_loss", "buy_price", "cost_basis", "cash"}

var (
	// ErrMissingColumn means the state file header lacks a required column.
	ErrMissingColumn = errors.New("state file missing required column")
	// ErrCashMismatch means the redundant per-row cash values disagree,
	// which can only happen to a corrupted or hand-edited file.
	ErrCashMismatch = errors.New("cash values disagree across state file rows")
)

// Load reads the portfolio state from path.
//
// A missing file is not an error: it returns an empty portfolio with the
// startingCash bootstrap balance. A present but malformed file (missing
// column, unparseable number, disagreeing cash) is a hard error; no value is
// silently coerced.
func Load(path string, startingCash decimal.Decimal) (models.PortfolioState, error) {
	var state models.PortfolioState

	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("State file %s missing, starting fresh with $%s cash", path, startingCash.StringFixed(2))
		return models.PortfolioState{Cash: startingCash}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return state, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		// A zero-byte file carries no cash value at all; treat it like a
		// missing file rather than failing the session.
		log.Printf("State file %s is empty, starting fresh with $%s cash", path, startingCash.StringFixed(2))
		return models.PortfolioState{Cash: startingCash}, nil
	}
	if err != nil {
		return state, fmt.Errorf("reading state file header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return state, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}

	cashSeen := false
	for row := 1; ; row++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.PortfolioState{}, fmt.Errorf("reading state file row %d: %w", row, err)
		}

		h := models.Holding{Ticker: strings.TrimSpace(rec[col["ticker"]])}
		if h.Shares, err = parseField(rec, col, "shares", row); err != nil {
			return models.PortfolioState{}, err
		}
		if h.StopLoss, err = parseField(rec, col, "stop_loss", row); err != nil {
			return models.PortfolioState{}, err
		}
		if h.BuyPrice, err = parseField(rec, col, "buy_price", row); err != nil {
			return models.PortfolioState{}, err
		}
		if h.CostBasis, err = parseField(rec, col, "cost_basis", row); err != nil {
			return models.PortfolioState{}, err
		}

		cash, err := parseField(rec, col, "cash", row)
		if err != nil {
			return models.PortfolioState{}, err
		}
		if !cashSeen {
			state.Cash = cash
			cashSeen = true
		} else if !cash.Equal(state.Cash) {
			return models.PortfolioState{}, fmt.Errorf("%w: %s vs %s (row %d)", ErrCashMismatch, state.Cash, cash, row)
		}

		state.Holdings = append(state.Holdings, h)
	}

	if !cashSeen {
		// Header-only file: the row-replicated format has nowhere to carry
		// cash without holdings, so bootstrap applies here too.
		state.Cash = startingCash
	}

	return state, nil
}

func parseField(rec []string, col map[string]int, name string, row int) (decimal.Decimal, error) {
	raw := strings.TrimSpace(rec[col[name]])
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("state file row %d: bad %s value %q: %w", row, name, raw, err)
	}
	return d, nil
}

// Save writes the full portfolio state to path using an atomic write pattern:
// write to a temporary file, sync, then rename over the destination. A crash
// mid-save never leaves a half-written file as the only copy.
//
// Cash is repeated on every row to match the Load contract. An empty portfolio
// produces a header-only file, which Load bootstraps again.
func Save(state models.PortfolioState, path string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(requiredColumns); err != nil {
		return fmt.Errorf("writing state file header: %w", err)
	}
	for _, h := range state.Holdings {
		rec := []string{
			h.Ticker,
			h.Shares.String(),
			h.StopLoss.String(),
			h.BuyPrice.String(),
			h.CostBasis.String(),
			state.Cash.String(),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("writing state file row for %s: %w", h.Ticker, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing state file: %w", err)
	}

	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing temp state file: %w", err)
	}
	// Close explicitly before renaming (essential on Windows).
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp state file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing state file: %w", err)
	}
	return nil
}
