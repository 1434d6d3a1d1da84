package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/storelab-dev/checkout-runner/pkg/config"
	playwrightdriver "github.com/storelab-dev/checkout-runner/pkg/driver/playwright"
)

var installCommand = &cli.Command{
	Name:  "install",
	Usage: "Download the playwright node driver and browser bundle",
	Description: `Fetches the playwright driver and the selected browser into the
runner home so later runs start without network access.

Examples:
  checkout-runner install
  checkout-runner --browser firefox install`,
	Action: runInstall,
}

func runInstall(c *cli.Context) error {
	browser := c.String("browser")
	if browser == "" {
		browser = "chromium"
	}
	dir := config.GetBrowsersDir()

	fmt.Printf("%s Installing %s into %s\n", cyan("⏳"), browser, dir)
	if err := playwrightdriver.Install(dir, browser); err != nil {
		return fmt.Errorf("install failed: %w", err)
	}
	printSetupSuccess("%s installed", browser)
	return nil
}
