// Package alpaca implements the market.PriceSource interface on top of the
// Alpaca market data API.
package alpaca

import (
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"

	"folio_tracker/internal/market"
)

// Provider fetches closing prices from Alpaca.
type Provider struct {
	mdClient *marketdata.Client
}

// Ensure Provider implements the interface
var _ market.PriceSource = (*Provider)(nil)

// NewProvider returns an Alpaca-backed price source. The client reads
// APCA_API_KEY_ID / APCA_API_SECRET_KEY from the environment.
func NewProvider() *Provider {
	return &Provider{
		mdClient: marketdata.NewClient(marketdata.ClientOpts{}),
	}
}

// LatestClose returns the close of the most recent daily bar.
// Looking back a few days covers weekends and market holidays.
func (p *Provider) LatestClose(ticker string) (decimal.Decimal, error) {
	start := time.Now().AddDate(0, 0, -5)
	bars, err := p.mdClient.GetBars(ticker, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
	})
	if err != nil {
		return decimal.Zero, err
	}
	if len(bars) == 0 {
		return decimal.Zero, market.ErrNoData
	}
	return decimal.NewFromFloat(bars[len(bars)-1].Close), nil
}
