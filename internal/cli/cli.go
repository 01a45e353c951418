// Package cli implements the command line application for the tracker.
//
// Every command brackets a session with the state store: load the snapshot,
// apply its operation, save the snapshot. The tool assumes it is the only
// writer of the state file for the duration of a run.
package cli

import (
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"folio_tracker/internal/config"
	"folio_tracker/internal/models"
	"folio_tracker/internal/storage"
)

// Register adds every tracker command to the commander.
func Register(c *subcommands.Commander, cfg *config.Config) {
	c.Register(&processCmd{cfg: cfg}, "portfolio")
	c.Register(&statusCmd{cfg: cfg}, "portfolio")
	c.Register(&buyCmd{cfg: cfg}, "trades")
	c.Register(&sellCmd{cfg: cfg, input: os.Stdin}, "trades")
}

func loadState(cfg *config.Config) (models.PortfolioState, error) {
	return storage.Load(cfg.StateFile, decimal.NewFromFloat(cfg.StartingCash))
}
