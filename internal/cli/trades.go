package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"folio_tracker/internal/config"
	"folio_tracker/internal/engine"
	"folio_tracker/internal/ledger"
	"folio_tracker/internal/storage"
)

type buyCmd struct {
	cfg *config.Config

	ticker   string
	quantity string
	price    string
	stopLoss string
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "record a manual purchase" }
func (*buyCmd) Usage() string {
	return `buy -t <ticker> -q <shares> -p <price> -s <stop_loss>

  Debits price*shares from cash and creates or enlarges the position. A repeat
  purchase recomputes the weighted average buy price and replaces the stop-loss
  with the new value.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "t", "", "Ticker symbol")
	f.StringVar(&c.quantity, "q", "", "Number of shares (may be fractional)")
	f.StringVar(&c.price, "p", "", "Price per share")
	f.StringVar(&c.stopLoss, "s", "", "Stop-loss threshold price")
}

func (c *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ticker == "" || c.quantity == "" || c.price == "" || c.stopLoss == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	ticker := strings.ToUpper(c.ticker)

	qty, err1 := decimal.NewFromString(c.quantity)
	price, err2 := decimal.NewFromString(c.price)
	stop, err3 := decimal.NewFromString(c.stopLoss)
	if err1 != nil || err2 != nil || err3 != nil {
		fmt.Fprintln(os.Stderr, "Error: invalid number format")
		return subcommands.ExitUsageError
	}

	state, err := loadState(c.cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading portfolio: %v\n", err)
		return subcommands.ExitFailure
	}

	eng := engine.New(nil, ledger.NewCSVLog(c.cfg.TradeLogFile))
	updated, err := eng.Buy(state, ticker, qty, price, stop)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Buy rejected: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := storage.Save(updated, c.cfg.StateFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving portfolio: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Bought %s %s at $%s, cash now $%s\n", qty, ticker, price.StringFixed(2), updated.Cash.StringFixed(2))
	return subcommands.ExitSuccess
}

type sellCmd struct {
	cfg   *config.Config
	input io.Reader // interactive note prompt source, os.Stdin in production

	ticker   string
	quantity string
	price    string
	note     string
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record a manual partial or full sell" }
func (*sellCmd) Usage() string {
	return `sell -t <ticker> -q <shares> -p <price> [-m <note>]

  Credits price*shares to cash, shrinks or removes the position and appends
  the realized P/L to the trade log. Without -m, an optional note is prompted
  for interactively; leaving it empty never blocks the trade.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "t", "", "Ticker symbol")
	f.StringVar(&c.quantity, "q", "", "Number of shares to sell")
	f.StringVar(&c.price, "p", "", "Sale price per share")
	f.StringVar(&c.note, "m", "", "Optional note recorded in the trade log")
}

func (c *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ticker == "" || c.quantity == "" || c.price == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	ticker := strings.ToUpper(c.ticker)

	qty, err1 := decimal.NewFromString(c.quantity)
	price, err2 := decimal.NewFromString(c.price)
	if err1 != nil || err2 != nil {
		fmt.Fprintln(os.Stderr, "Error: invalid number format")
		return subcommands.ExitUsageError
	}

	state, err := loadState(c.cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading portfolio: %v\n", err)
		return subcommands.ExitFailure
	}

	note := c.note
	if note == "" {
		note = c.promptNote()
	}

	eng := engine.New(nil, ledger.NewCSVLog(c.cfg.TradeLogFile))
	updated, err := eng.Sell(state, ticker, qty, price, note)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sell rejected: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := storage.Save(updated, c.cfg.StateFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving portfolio: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Sold %s %s at $%s, cash now $%s\n", qty, ticker, price.StringFixed(2), updated.Cash.StringFixed(2))
	return subcommands.ExitSuccess
}

// promptNote asks for a free-text note on the interactive console. The note
// is audit context only; an empty line or read failure just means no note.
func (c *sellCmd) promptNote() string {
	if c.input == nil {
		return ""
	}
	fmt.Print("Note for this sell (optional, enter to skip): ")
	line, _ := bufio.NewReader(c.input).ReadString('\n')
	return strings.TrimSpace(line)
}
