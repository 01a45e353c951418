package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"folio_tracker/internal/config"
	"folio_tracker/internal/engine"
	"folio_tracker/internal/ledger"
	"folio_tracker/internal/market"
	"folio_tracker/internal/market/alpaca"
	"folio_tracker/internal/models"
	"folio_tracker/internal/notifications"
	"folio_tracker/internal/storage"
)

type processCmd struct {
	cfg *config.Config

	// prices overrides the Alpaca provider, for tests.
	prices market.PriceSource
}

func (*processCmd) Name() string     { return "process" }
func (*processCmd) Synopsis() string { return "evaluate stop-loss rules against current prices" }
func (*processCmd) Usage() string {
	return `process

  Loads the portfolio, checks every holding's latest close against its
  stop-loss, sells triggered positions in full and saves the updated state.
  Holdings without an available price are kept unchanged.
`
}

func (*processCmd) SetFlags(f *flag.FlagSet) {}

func (c *processCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	state, err := loadState(c.cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading portfolio: %v\n", err)
		return subcommands.ExitFailure
	}

	prices := c.prices
	if prices == nil {
		prices = alpaca.NewProvider()
	}
	eng := engine.New(prices, ledger.NewCSVLog(c.cfg.TradeLogFile))

	updated := eng.Evaluate(state)

	if err := storage.Save(updated, c.cfg.StateFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving portfolio: %v\n", err)
		return subcommands.ExitFailure
	}

	summary := processSummary(state, updated)
	fmt.Println(summary)
	notifications.Notify(summary)
	return subcommands.ExitSuccess
}

func processSummary(before, after models.PortfolioState) string {
	var sb strings.Builder
	sold := len(before.Holdings) - len(after.Holdings)
	sb.WriteString("*PORTFOLIO CHECK COMPLETE*\n")
	sb.WriteString(fmt.Sprintf("Positions: %d -> %d (%d sold by stop-loss)\n", len(before.Holdings), len(after.Holdings), sold))
	sb.WriteString(fmt.Sprintf("Cash: $%s -> $%s", before.Cash.StringFixed(2), after.Cash.StringFixed(2)))
	return sb.String()
}
