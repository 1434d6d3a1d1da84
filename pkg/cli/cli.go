// Package cli provides the command-line interface for checkout-runner.
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to config.yaml (default: ./config.yaml if present)",
	},
	&cli.StringFlag{
		Name:    "base-url",
		Usage:   "Storefront base URL",
		EnvVars: []string{"CHECKOUT_BASE_URL"},
	},
	&cli.StringFlag{
		Name:    "driver",
		Aliases: []string{"d"},
		Usage:   "Browser driver (playwright, selenium, mock)",
		EnvVars: []string{"CHECKOUT_DRIVER"},
	},
	&cli.StringFlag{
		Name:    "browser",
		Aliases: []string{"b"},
		Usage:   "Browser to drive (chromium, chrome, firefox)",
		EnvVars: []string{"CHECKOUT_BROWSER"},
	},
	&cli.BoolFlag{
		Name:  "headed",
		Usage: "Run with a visible browser window",
	},
	&cli.StringFlag{
		Name:    "selenium-url",
		Usage:   "Remote WebDriver endpoint (selenium driver only)",
		EnvVars: []string{"CHECKOUT_SELENIUM_URL"},
	},
	&cli.IntFlag{
		Name:    "timeout-ms",
		Usage:   "Budget for each condition wait in milliseconds",
		EnvVars: []string{"CHECKOUT_TIMEOUT_MS"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"CHECKOUT_VERBOSE"},
	},
	&cli.BoolFlag{
		Name:  "no-ansi",
		Usage: "Disable ANSI colors",
	},
}

// Execute runs the CLI.
func Execute() {
	app := &cli.App{
		Name:    "checkout-runner",
		Usage:   "Storefront checkout flows, end to end",
		Version: Version,
		Description: `Checkout Runner drives a real browser through storefront checkout
flows and writes JSON and HTML reports for every run.

Examples:
  checkout-runner run
  checkout-runner run checkout invalid-login
  checkout-runner --driver selenium run checkout
  checkout-runner inspect https://www.saucedemo.com
  checkout-runner install`,
		Flags: GlobalFlags,
		Before: func(c *cli.Context) error {
			if c.Bool("no-ansi") {
				color.NoColor = true
			}
			return nil
		},
		Commands: []*cli.Command{
			runCommand,
			inspectCommand,
			installCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
