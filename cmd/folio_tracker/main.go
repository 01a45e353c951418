package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"folio_tracker/internal/cli"
	"folio_tracker/internal/config"
	"folio_tracker/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogFile, cfg.MaxLogSizeMB, cfg.MaxLogBackups)

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cli.Register(commander, cfg)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
