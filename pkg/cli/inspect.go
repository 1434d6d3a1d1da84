package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
)

// inspectTextLines caps page text output unless --full-text is set.
const inspectTextLines = 40

var inspectCommand = &cli.Command{
	Name:      "inspect",
	Usage:     "Open a page and dump its URL, title, text and a screenshot",
	ArgsUsage: "[url]",
	Description: `Opens the given URL (or the configured base URL) in the selected
driver and prints what the flows would see. Useful for checking locators
and storefront state before a run.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "screenshot",
			Usage: "Where to write the screenshot",
			Value: "inspect.png",
		},
		&cli.BoolFlag{
			Name:  "full-text",
			Usage: "Print the whole page text instead of the first lines",
		},
	},
	Action: runInspect,
}

func runInspect(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	target := c.Args().First()
	if target == "" {
		target = cfg.BaseURL
	}

	drv, err := driverFactory(cfg)()
	if err != nil {
		return fmt.Errorf("failed to start driver: %w", err)
	}
	defer func() {
		if qerr := drv.Quit(); qerr != nil {
			fmt.Fprintf(os.Stderr, "Warning: driver quit: %v\n", qerr)
		}
	}()

	if err := drv.Open(target); err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}

	url, err := drv.URL()
	if err != nil {
		return err
	}
	title, err := drv.Title()
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", bold("URL:"), url)
	fmt.Printf("%s %s\n", bold("Title:"), title)

	text, err := drv.PageText()
	if err != nil {
		return err
	}
	lines := strings.Split(text, "\n")
	shown := lines
	if !c.Bool("full-text") && len(lines) > inspectTextLines {
		shown = lines[:inspectTextLines]
	}
	fmt.Println()
	for _, line := range shown {
		fmt.Println(line)
	}
	if len(shown) < len(lines) {
		fmt.Println(gray(fmt.Sprintf("… %d more line(s), use --full-text for the rest", len(lines)-len(shown))))
	}

	shot, err := drv.Screenshot()
	if err != nil {
		return fmt.Errorf("failed to take screenshot: %w", err)
	}
	path := c.String("screenshot")
	if err := os.WriteFile(path, shot, 0o644); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	fmt.Printf("\nScreenshot saved: %s\n", path)
	return nil
}
