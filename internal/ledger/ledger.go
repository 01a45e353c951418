// Package ledger appends executed sells to an audit log.
package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"folio_tracker/internal/models"
)

// TradeLog records executed sells. Implementations are append-only and
// ordered; records are never mutated or deleted.
type TradeLog interface {
	Append(rec models.SellRecord) error
}

var logHeader = []string{"id", "timestamp", "ticker", "shares", "sale_price", "buy_price", "profit_loss", "reason", "note"}

// CSVLog is a TradeLog backed by an append-only CSV file. The header is
// written once, when the file is first created.
type CSVLog struct {
	Path string
}

// Ensure CSVLog implements the interface
var _ TradeLog = (*CSVLog)(nil)

// NewCSVLog returns a trade log writing to path. The file is created lazily
// on the first append.
func NewCSVLog(path string) *CSVLog {
	return &CSVLog{Path: path}
}

// Append writes one sell record to the end of the log file.
// Missing ID and timestamp fields are filled in here so callers only describe
// the trade itself.
func (l *CSVLog) Append(rec models.SellRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	writeHeader := false
	if _, err := os.Stat(l.Path); os.IsNotExist(err) {
		writeHeader = true
	}

	// Open the file in append mode, creating it if it doesn't exist.
	f, err := os.OpenFile(l.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening trade log %q: %w", l.Path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(logHeader); err != nil {
			return fmt.Errorf("writing trade log header: %w", err)
		}
	}
	row := []string{
		rec.ID,
		rec.Timestamp.Format(time.RFC3339),
		rec.Ticker,
		rec.Shares.String(),
		rec.SalePrice.String(),
		rec.BuyPrice.String(),
		rec.ProfitLoss.String(),
		rec.Reason,
		rec.Note,
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("writing trade log record: %w", err)
	}
	w.Flush()
	return w.Error()
}
