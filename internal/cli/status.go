package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/subcommands"

	"folio_tracker/internal/config"
	"folio_tracker/internal/market"
	"folio_tracker/internal/market/alpaca"
)

type statusCmd struct {
	cfg *config.Config

	live bool

	// prices overrides the Alpaca provider, for tests.
	prices market.PriceSource
}

func (*statusCmd) Name() string     { return "status" }
func (*statusCmd) Synopsis() string { return "print the portfolio table and cash balance" }
func (*statusCmd) Usage() string {
	return `status [-live]

  Prints every holding with its stop-loss, average buy price and cost basis.
  With -live, also fetches current prices and shows unrealized P/L; tickers
  without an available quote show n/a.
`
}

func (c *statusCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.live, "live", false, "Fetch live prices and show unrealized P/L")
}

func (c *statusCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	state, err := loadState(c.cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading portfolio: %v\n", err)
		return subcommands.ExitFailure
	}

	prices := c.prices
	if c.live && prices == nil {
		prices = alpaca.NewProvider()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	header := "TICKER\tSHARES\tSTOP\tBUY PRICE\tCOST BASIS"
	if prices != nil {
		header += "\tPRICE\tUNREAL P/L"
	}
	fmt.Fprintln(w, header)

	for _, h := range state.Holdings {
		row := fmt.Sprintf("%s\t%s\t%s\t%s\t%s",
			h.Ticker, h.Shares, h.StopLoss.StringFixed(2), h.BuyPrice.StringFixed(2), h.CostBasis.StringFixed(2))
		if prices != nil {
			price, err := prices.LatestClose(h.Ticker)
			if err != nil {
				row += "\tn/a\tn/a"
			} else {
				pl := price.Sub(h.BuyPrice).Mul(h.Shares)
				row += fmt.Sprintf("\t%s\t%s", price.StringFixed(2), pl.StringFixed(2))
			}
		}
		fmt.Fprintln(w, row)
	}
	w.Flush()

	if len(state.Holdings) == 0 {
		fmt.Println(strings.Repeat("-", 20))
		fmt.Println("No open positions")
	}
	fmt.Printf("Cash: $%s | Total cost basis: $%s\n", state.Cash.StringFixed(2), state.TotalCostBasis().StringFixed(2))
	return subcommands.ExitSuccess
}
