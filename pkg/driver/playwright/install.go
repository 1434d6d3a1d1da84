package playwright

import (
	"fmt"
	"strings"

	pw "github.com/playwright-community/playwright-go"
)

// Install downloads the node driver and the requested browser bundle
// into driverDir. Safe to run repeatedly; existing downloads are kept.
func Install(driverDir, browser string) error {
	name := strings.ToLower(browser)
	switch name {
	case "", "chrome":
		name = "chromium"
	case "chromium", "firefox", "webkit":
	default:
		return fmt.Errorf("unknown browser %q (want chromium, firefox, or webkit)", browser)
	}

	opts := &pw.RunOptions{
		Browsers: []string{name},
	}
	if driverDir != "" {
		opts.DriverDirectory = driverDir
	}
	if err := pw.Install(opts); err != nil {
		return fmt.Errorf("install %s: %w", name, err)
	}
	return nil
}
