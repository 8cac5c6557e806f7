package config

import (
	"flag"
	"os"
	"time"

	"github.com/recipebox/recipebox/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the auth service (default from Config)
//	-s string   site base URL for e-mail confirmation links
//	-d string   PostgreSQL DSN
//	-i int      reconcile interval in seconds
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-d", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.AuthBaseURL, "a", cfg.AuthBaseURL, "base URL of the auth service")
	fs.StringVar(&cfg.SiteBaseURL, "s", cfg.SiteBaseURL, "site base URL for confirmation links")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "PostgreSQL DSN")
	reconcileInterval := fs.Int("i", int(cfg.ReconcileInterval.Seconds()), "reconcile interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.ReconcileInterval = time.Duration(*reconcileInterval) * time.Second
}
