// Package playwright implements core.Driver on the playwright-community
// bindings. The bindings download and manage their own browser bundles,
// so no external WebDriver server is involved.
package playwright

import (
	"fmt"
	"strings"
	"sync"
	"time"

	pw "github.com/playwright-community/playwright-go"

	"github.com/storelab-dev/checkout-runner/pkg/core"
	"github.com/storelab-dev/checkout-runner/pkg/locator"
	"github.com/storelab-dev/checkout-runner/pkg/logger"
)

// Options configures the browser launch.
type Options struct {
	// Browser is one of chromium, firefox, webkit. Empty means chromium.
	Browser  string
	Headless bool
	// Timeout is the default per-operation budget handed to the page
	Timeout time.Duration
	// SlowMo throttles every protocol call, for watching runs locally
	SlowMo time.Duration
	// DriverDir overrides where the bindings keep their node driver
	DriverDir      string
	ViewportWidth  int
	ViewportHeight int
}

// Driver implements core.Driver using a playwright-managed browser.
type Driver struct {
	opts    Options
	pw      *pw.Playwright
	browser pw.Browser
	context pw.BrowserContext
	page    pw.Page

	mu     sync.Mutex
	closed bool
}

// chromiumArgs mirrors the hardening a checkout run needs: no password
// manager bubbles, no leak detection interstitial, no automation banner.
func chromiumArgs() []string {
	return []string{
		"--disable-blink-features=AutomationControlled",
		"--disable-extensions",
		"--disable-popup-blocking",
		"--disable-infobars",
		"--disable-notifications",
		"--disable-save-password-bubble",
		"--disable-features=PasswordLeakDetection,PasswordManagerOnboarding",
	}
}

// New launches a browser and opens a fresh page.
func New(opts Options) (*Driver, error) {
	if opts.ViewportWidth == 0 {
		opts.ViewportWidth = 1280
	}
	if opts.ViewportHeight == 0 {
		opts.ViewportHeight = 800
	}

	// Driver process chatter goes to the run log, not the terminal.
	runOpts := &pw.RunOptions{
		Stdout: logger.GetWriter(),
		Stderr: logger.GetWriter(),
	}
	if opts.DriverDir != "" {
		runOpts.DriverDirectory = opts.DriverDir
	}
	p, err := pw.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	bt, launchOpts, err := browserType(p, opts)
	if err != nil {
		p.Stop()
		return nil, err
	}

	browser, err := bt.Launch(launchOpts)
	if err != nil {
		p.Stop()
		return nil, fmt.Errorf("launch %s: %w", bt.Name(), err)
	}

	context, err := browser.NewContext(pw.BrowserNewContextOptions{
		Viewport: &pw.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
	})
	if err != nil {
		browser.Close()
		p.Stop()
		return nil, fmt.Errorf("create browser context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		p.Stop()
		return nil, fmt.Errorf("create page: %w", err)
	}

	if opts.Timeout > 0 {
		page.SetDefaultTimeout(float64(opts.Timeout.Milliseconds()))
	}

	// JS dialogs would otherwise park the page forever.
	page.OnDialog(func(dialog pw.Dialog) {
		logger.Debug("dismissing %s dialog: %s", dialog.Type(), dialog.Message())
		dialog.Dismiss()
	})

	return &Driver{
		opts:    opts,
		pw:      p,
		browser: browser,
		context: context,
		page:    page,
	}, nil
}

func browserType(p *pw.Playwright, opts Options) (pw.BrowserType, pw.BrowserTypeLaunchOptions, error) {
	launchOpts := pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(opts.Headless),
	}
	if opts.SlowMo > 0 {
		launchOpts.SlowMo = pw.Float(float64(opts.SlowMo.Milliseconds()))
	}

	switch strings.ToLower(opts.Browser) {
	case "", "chromium", "chrome":
		launchOpts.Args = chromiumArgs()
		return p.Chromium, launchOpts, nil
	case "firefox":
		return p.Firefox, launchOpts, nil
	case "webkit":
		return p.WebKit, launchOpts, nil
	default:
		return nil, launchOpts, fmt.Errorf("unknown browser %q (want chromium, firefox, or webkit)", opts.Browser)
	}
}

// Open navigates the page to the given address.
func (d *Driver) Open(url string) error {
	if _, err := d.page.Goto(url); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}

// Find resolves a locator to the first matching element. An element
// that is not in the DOM yet is reported as not found, which the wait
// primitive treats as "keep polling".
func (d *Driver) Find(loc locator.Locator) (core.Element, error) {
	sel, err := selector(loc)
	if err != nil {
		return nil, err
	}
	matches := d.page.Locator(sel)
	n, err := matches.Count()
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", loc.Describe(), err)
	}
	if n == 0 {
		return nil, core.ErrElementNotFound.WithMessage(loc.Describe() + " matched nothing")
	}
	return &element{loc: matches.First()}, nil
}

// selector converts a registry locator into playwright selector syntax.
func selector(loc locator.Locator) (string, error) {
	switch loc.Strategy {
	case locator.ByID:
		return "#" + loc.Expression, nil
	case locator.ByCSS:
		return loc.Expression, nil
	case locator.ByText:
		return "text=" + loc.Expression, nil
	default:
		return "", core.ErrInvalidConfig.
			WithMessage(fmt.Sprintf("unsupported locator strategy %q", loc.Strategy))
	}
}

// URL returns the page's current address.
func (d *Driver) URL() (string, error) {
	return d.page.URL(), nil
}

// Title returns the page's document title.
func (d *Driver) Title() (string, error) {
	return d.page.Title()
}

// PageText returns the rendered text of the document body.
func (d *Driver) PageText() (string, error) {
	return d.page.TextContent("body")
}

// Screenshot captures the current viewport as PNG bytes.
func (d *Driver) Screenshot() ([]byte, error) {
	return d.page.Screenshot()
}

// DismissDialog is satisfied by the OnDialog hook, which throws JS
// dialogs away as they appear, and by the launch flags, which keep
// Chrome's own bubbles from showing at all.
func (d *Driver) DismissDialog() error {
	return nil
}

// SetTimeout adjusts the page's default per-operation budget.
func (d *Driver) SetTimeout(t time.Duration) {
	d.page.SetDefaultTimeout(float64(t.Milliseconds()))
}

// Info describes the launched browser.
func (d *Driver) Info() *core.DriverInfo {
	name := d.opts.Browser
	if name == "" {
		name = "chromium"
	}
	return &core.DriverInfo{
		Name:           "playwright",
		Browser:        name,
		BrowserVersion: d.browser.Version(),
		Headless:       d.opts.Headless,
		ViewportWidth:  d.opts.ViewportWidth,
		ViewportHeight: d.opts.ViewportHeight,
	}
}

// Quit tears the page, context, browser, and driver process down.
func (d *Driver) Quit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	var firstErr error
	if err := d.page.Close(); err != nil {
		firstErr = err
	}
	if err := d.context.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := d.browser.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := d.pw.Stop(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// element wraps a resolved playwright locator.
type element struct {
	loc pw.Locator
}

func (e *element) Click() error {
	return e.loc.Click()
}

func (e *element) Type(text string) error {
	return e.loc.Fill(text)
}

func (e *element) Clear() error {
	return e.loc.Clear()
}

func (e *element) Text() (string, error) {
	return e.loc.TextContent()
}

func (e *element) Visible() (bool, error) {
	return e.loc.IsVisible()
}

func (e *element) Enabled() (bool, error) {
	return e.loc.IsEnabled()
}
