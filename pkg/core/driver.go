package core

import (
	"time"

	"github.com/storelab-dev/checkout-runner/pkg/locator"
)

// Driver owns a single live browser session and executes primitive
// page operations against it. Implementations: playwright, selenium, mock.
// Flow logic, waiting, and verification live above this interface;
// a Driver only answers what the page looks like right now.
type Driver interface {
	// Open navigates the session to the given URL
	Open(url string) error

	// Find resolves a locator to an element on the current page.
	// Returns ErrElementNotFound when nothing matches.
	Find(loc locator.Locator) (Element, error)

	// URL returns the current page URL
	URL() (string, error)

	// Title returns the current page title
	Title() (string, error)

	// PageText returns the visible text of the current page body
	PageText() (string, error)

	// Screenshot captures the current viewport as PNG
	Screenshot() ([]byte, error)

	// DismissDialog closes a native browser dialog if one is open.
	// Returns nil when no dialog was present.
	DismissDialog() error

	// SetTimeout sets the per-operation timeout for driver calls
	SetTimeout(d time.Duration)

	// Info returns browser and driver details
	Info() *DriverInfo

	// Quit ends the browser session and releases its resources.
	// Implementations must tolerate repeated calls.
	Quit() error
}

// Element is a handle to an element located on the current page.
// Handles are not stable across navigations; re-find after the page changes.
type Element interface {
	// Click performs a single click on the element
	Click() error

	// Type replaces the element's value with the given text
	Type(text string) error

	// Clear empties the element's value
	Clear() error

	// Text returns the element's visible text content
	Text() (string, error)

	// Visible reports whether the element is rendered and displayed
	Visible() (bool, error)

	// Enabled reports whether the element accepts interaction
	Enabled() (bool, error)
}

// DriverInfo contains browser and driver details for reporting
type DriverInfo struct {
	Name           string `json:"name"`                     // playwright, selenium, mock
	Browser        string `json:"browser"`                  // chromium, chrome, firefox
	BrowserVersion string `json:"browserVersion,omitempty"` // e.g., "131.0.6778.33"
	Headless       bool   `json:"headless"`
	ViewportWidth  int    `json:"viewportWidth,omitempty"`
	ViewportHeight int    `json:"viewportHeight,omitempty"`
}
