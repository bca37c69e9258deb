package config

import (
	"flag"
	"os"

	"github.com/DukeMobileTech/basis-data-export/internal/flagx"
)

// runFlags are the flags that select what this invocation does. Their
// absence switches the exporter into interactive mode.
var runFlags = []string{"-s", "-e", "-f", "-add-account", "-history"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-s string        start date (YYYY-MM-DD, default: yesterday)
//	-e string        end date (YYYY-MM-DD, default: today)
//	-f string        output format, csv or json (default from Config)
//	-add-account     prompt for a new account and append it to the store
//	-history int     print the most recent N export runs and exit
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], runFlags)
	cfg.Interactive = len(args) == 0

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.StartDate, "s", cfg.StartDate, "start date (YYYY-MM-DD)")
	fs.StringVar(&cfg.EndDate, "e", cfg.EndDate, "end date (YYYY-MM-DD)")
	fs.StringVar(&cfg.Format, "f", cfg.DefaultFormat, "output format (csv or json)")
	fs.BoolVar(&cfg.AddAccount, "add-account", false, "add an account to the credentials store")
	fs.IntVar(&cfg.History, "history", 0, "print the N most recent export runs")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
