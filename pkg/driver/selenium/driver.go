// Package selenium implements core.Driver against a remote WebDriver
// server (Selenium Grid or a bare chromedriver/geckodriver endpoint).
package selenium

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"

	"github.com/storelab-dev/checkout-runner/pkg/core"
	"github.com/storelab-dev/checkout-runner/pkg/locator"
	"github.com/storelab-dev/checkout-runner/pkg/logger"
)

// Options configures the remote session.
type Options struct {
	// RemoteURL is the WebDriver endpoint, e.g. http://localhost:4444/wd/hub
	RemoteURL string
	// Browser is one of chrome or firefox. Empty means chrome.
	Browser  string
	Headless bool
	// Timeout bounds page loads; element polling stays with the waiter
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
}

// Driver implements core.Driver over a tebeka/selenium remote session.
type Driver struct {
	opts Options
	wd   selenium.WebDriver

	mu     sync.Mutex
	closed bool
}

// chromePrefs keeps Chrome's credential machinery out of the checkout
// flow: no save-password bubble, no leak-detection interstitial, no
// notification prompts.
func chromePrefs() map[string]interface{} {
	return map[string]interface{}{
		"credentials_enable_service":                            false,
		"profile.password_manager_enabled":                      false,
		"profile.password_manager_leak_detection":               false,
		"profile.default_content_setting_values.notifications":  2,
	}
}

func chromeArgs(headless bool) []string {
	args := []string{
		"--disable-blink-features=AutomationControlled",
		"--disable-extensions",
		"--disable-popup-blocking",
		"--disable-infobars",
		"--disable-save-password-bubble",
	}
	if headless {
		args = append(args, "--headless=new")
	}
	return args
}

// New opens a session on the remote WebDriver server.
func New(opts Options) (*Driver, error) {
	if opts.ViewportWidth == 0 {
		opts.ViewportWidth = 1280
	}
	if opts.ViewportHeight == 0 {
		opts.ViewportHeight = 800
	}

	browser := strings.ToLower(opts.Browser)
	if browser == "" || browser == "chromium" {
		browser = "chrome"
	}

	caps := selenium.Capabilities{"browserName": browser}
	switch browser {
	case "chrome":
		caps.AddChrome(chrome.Capabilities{
			Args:  chromeArgs(opts.Headless),
			Prefs: chromePrefs(),
			W3C:   true,
		})
	case "firefox":
		ff := firefox.Capabilities{}
		if opts.Headless {
			ff.Args = []string{"-headless"}
		}
		caps.AddFirefox(ff)
	default:
		return nil, fmt.Errorf("unknown browser %q (want chrome or firefox)", opts.Browser)
	}

	wd, err := selenium.NewRemote(caps, opts.RemoteURL)
	if err != nil {
		return nil, fmt.Errorf("connect to webdriver at %s: %w", opts.RemoteURL, err)
	}

	// The waiter owns all polling; implicit waits would hide the real
	// element timing from it.
	if err := wd.SetImplicitWaitTimeout(0); err != nil {
		wd.Quit()
		return nil, fmt.Errorf("disable implicit wait: %w", err)
	}
	if opts.Timeout > 0 {
		if err := wd.SetPageLoadTimeout(opts.Timeout); err != nil {
			wd.Quit()
			return nil, fmt.Errorf("set page load timeout: %w", err)
		}
	}
	if err := wd.ResizeWindow("", opts.ViewportWidth, opts.ViewportHeight); err != nil {
		logger.Warn("resize window failed: %v", err)
	}

	return &Driver{opts: opts, wd: wd}, nil
}

// Open navigates the session to the given address.
func (d *Driver) Open(url string) error {
	if err := d.wd.Get(url); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}

// Find resolves a locator to the first matching element. No implicit
// wait is in play, so a missing element returns immediately and the
// waiter keeps polling.
func (d *Driver) Find(loc locator.Locator) (core.Element, error) {
	by, value, err := strategy(loc)
	if err != nil {
		return nil, err
	}
	el, err := d.wd.FindElement(by, value)
	if err != nil {
		return nil, core.ErrElementNotFound.
			WithMessage(loc.Describe() + " matched nothing").
			WithCause(err)
	}
	return &element{el: el}, nil
}

// strategy converts a registry locator into WebDriver locator syntax.
func strategy(loc locator.Locator) (by, value string, err error) {
	switch loc.Strategy {
	case locator.ByID:
		return selenium.ByID, loc.Expression, nil
	case locator.ByCSS:
		return selenium.ByCSSSelector, loc.Expression, nil
	case locator.ByText:
		return selenium.ByXPATH, fmt.Sprintf("//*[normalize-space(text())='%s']", loc.Expression), nil
	default:
		return "", "", core.ErrInvalidConfig.
			WithMessage(fmt.Sprintf("unsupported locator strategy %q", loc.Strategy))
	}
}

// URL returns the session's current address.
func (d *Driver) URL() (string, error) {
	return d.wd.CurrentURL()
}

// Title returns the current document title.
func (d *Driver) Title() (string, error) {
	return d.wd.Title()
}

// PageText returns the rendered text of the document body.
func (d *Driver) PageText() (string, error) {
	body, err := d.wd.FindElement(selenium.ByTagName, "body")
	if err != nil {
		return "", fmt.Errorf("find body: %w", err)
	}
	return body.Text()
}

// Screenshot captures the current viewport as PNG bytes.
func (d *Driver) Screenshot() ([]byte, error) {
	return d.wd.Screenshot()
}

// DismissDialog throws away a pending alert if one is up. No alert is
// not an error; Chrome's own bubbles are already disabled by the
// session preferences.
func (d *Driver) DismissDialog() error {
	if err := d.wd.DismissAlert(); err != nil {
		logger.Debug("no dialog to dismiss: %v", err)
	}
	return nil
}

// SetTimeout adjusts the page load budget. Element polling stays with
// the waiter, so the implicit wait is left at zero.
func (d *Driver) SetTimeout(t time.Duration) {
	if err := d.wd.SetPageLoadTimeout(t); err != nil {
		logger.Warn("set page load timeout failed: %v", err)
	}
}

// Info describes the remote session.
func (d *Driver) Info() *core.DriverInfo {
	browser := strings.ToLower(d.opts.Browser)
	if browser == "" || browser == "chromium" {
		browser = "chrome"
	}
	return &core.DriverInfo{
		Name:           "selenium",
		Browser:        browser,
		Headless:       d.opts.Headless,
		ViewportWidth:  d.opts.ViewportWidth,
		ViewportHeight: d.opts.ViewportHeight,
	}
}

// Quit ends the remote session.
func (d *Driver) Quit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.wd.Quit()
}

// element wraps a resolved WebDriver element.
type element struct {
	el selenium.WebElement
}

func (e *element) Click() error {
	return e.el.Click()
}

func (e *element) Type(text string) error {
	if err := e.el.Clear(); err != nil {
		return err
	}
	return e.el.SendKeys(text)
}

func (e *element) Clear() error {
	return e.el.Clear()
}

func (e *element) Text() (string, error) {
	return e.el.Text()
}

func (e *element) Visible() (bool, error) {
	return e.el.IsDisplayed()
}

func (e *element) Enabled() (bool, error) {
	return e.el.IsEnabled()
}
