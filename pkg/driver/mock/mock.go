// Package mock provides an in-memory storefront driver for testing
// without a real browser. It models the demo shop as a small state
// machine: login, inventory, cart, the two checkout steps, and the
// confirmation page, addressed by the same selectors the page modules
// use.
package mock

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/storelab-dev/checkout-runner/pkg/core"
	"github.com/storelab-dev/checkout-runner/pkg/locator"
)

const (
	pageLogin            = "login"
	pageInventory        = "inventory"
	pageCart             = "cart"
	pageCheckoutInfo     = "checkout_info"
	pageCheckoutOverview = "checkout_overview"
	pageCheckoutComplete = "checkout_complete"
)

const rejectedCredentials = "Epic sadface: Username and password do not match any user in this service"

// Config configures mock driver behavior.
type Config struct {
	// FailOnInteraction makes the Nth click or type fail (1-indexed). 0 = never fail.
	FailOnInteraction int
	// FailOpen makes Open return a navigation error
	FailOpen bool
	// RenderDelay keeps elements invisible for a window after each navigation
	RenderDelay time.Duration
	// Username and Password are the accepted credentials
	Username string
	Password string
	// LeakDialog raises the credential dialog after a successful sign-in;
	// while it is up, element lookups are blocked the way a native
	// dialog blocks the page
	LeakDialog bool
	// Products lists the inventory; the first entry is the one the add
	// button puts in the cart
	Products []string
}

// Driver is an in-memory implementation of core.Driver.
type Driver struct {
	Config Config

	mu           sync.Mutex
	opened       bool
	quit         bool
	quits        int
	baseURL      string
	currentURL   string
	pageName     string
	enteredAt    time.Time
	cartCount    int
	cartItem     string
	errorBanner  string
	form         map[string]string
	interactions int
	dialogOpen   bool
	timeout      time.Duration
}

// New creates a new mock driver.
func New(cfg Config) *Driver {
	if cfg.Username == "" {
		cfg.Username = "standard_user"
	}
	if cfg.Password == "" {
		cfg.Password = "secret_sauce"
	}
	if len(cfg.Products) == 0 {
		cfg.Products = []string{"Sauce Labs Backpack", "Sauce Labs Bike Light", "Sauce Labs Bolt T-Shirt"}
	}
	return &Driver{
		Config: cfg,
		form:   make(map[string]string),
	}
}

// Open loads the storefront root and lands on the login page.
func (d *Driver) Open(url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.quit {
		return core.ErrSessionClosed
	}
	if d.Config.FailOpen {
		return fmt.Errorf("mock navigation refused: %s", url)
	}
	d.opened = true
	d.baseURL = strings.TrimRight(url, "/")
	d.currentURL = url
	d.enterPage(pageLogin)
	return nil
}

// Find resolves a locator against the current page.
func (d *Driver) Find(loc locator.Locator) (core.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.quit {
		return nil, core.ErrSessionClosed
	}
	if !d.opened {
		return nil, core.ErrElementNotFound.WithMessage("no page open")
	}
	if d.dialogOpen {
		return nil, core.ErrElementNotFound.WithMessage("page blocked by native dialog")
	}
	if !d.present(loc.Expression) {
		return nil, core.ErrElementNotFound.
			WithMessage(loc.Describe() + " not on " + d.pageName + " page")
	}
	return &element{d: d, page: d.pageName, expr: loc.Expression}, nil
}

// URL returns the current page address.
func (d *Driver) URL() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.quit {
		return "", core.ErrSessionClosed
	}
	return d.currentURL, nil
}

// Title returns the storefront title.
func (d *Driver) Title() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.quit {
		return "", core.ErrSessionClosed
	}
	return "Swag Labs", nil
}

// PageText returns a plain-text rendering of the current page.
func (d *Driver) PageText() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.quit {
		return "", core.ErrSessionClosed
	}
	var b strings.Builder
	b.WriteString("Swag Labs\n")
	switch d.pageName {
	case pageLogin:
		b.WriteString("Username\nPassword\nLogin\n")
		if d.errorBanner != "" {
			b.WriteString(d.errorBanner + "\n")
		}
	case pageInventory:
		b.WriteString("Products\n")
		for _, p := range d.Config.Products {
			b.WriteString(p + "\n")
		}
	case pageCart:
		b.WriteString("Your Cart\n")
		if d.cartCount > 0 {
			b.WriteString(d.cartItem + "\n")
		}
	case pageCheckoutInfo:
		b.WriteString("Checkout: Your Information\n")
		if d.errorBanner != "" {
			b.WriteString(d.errorBanner + "\n")
		}
	case pageCheckoutOverview:
		b.WriteString("Checkout: Overview\n" + d.cartItem + "\nTotal: $32.39\n")
	case pageCheckoutComplete:
		b.WriteString("Checkout: Complete!\nThank you for your order!\n")
	}
	return b.String(), nil
}

// Screenshot returns a minimal valid PNG (1x1 transparent pixel).
func (d *Driver) Screenshot() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.quit {
		return nil, core.ErrSessionClosed
	}
	return []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, // PNG signature
		0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52, // IHDR chunk
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
		0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41,
		0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
		0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
		0x42, 0x60, 0x82,
	}, nil
}

// DismissDialog closes the credential dialog if one is up.
func (d *Driver) DismissDialog() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.quit {
		return core.ErrSessionClosed
	}
	d.dialogOpen = false
	return nil
}

// SetTimeout records the per-operation budget. The mock answers
// immediately, so the value only shows up in Info-style assertions.
func (d *Driver) SetTimeout(t time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.timeout = t
}

// Info returns mock browser info.
func (d *Driver) Info() *core.DriverInfo {
	return &core.DriverInfo{
		Name:           "mock",
		Browser:        "mock",
		BrowserVersion: "1.0",
		Headless:       true,
		ViewportWidth:  1280,
		ViewportHeight: 800,
	}
}

// Quit tears the session down. Further calls keep counting but stay nil
// so release paths can be probed for double quits.
func (d *Driver) Quit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.quit = true
	d.quits++
	return nil
}

// Quits reports how many times Quit has been called.
func (d *Driver) Quits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.quits
}

// Page reports the page the driver is currently on.
func (d *Driver) Page() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pageName
}

// DialogShowing reports whether the credential dialog is up.
func (d *Driver) DialogShowing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dialogOpen
}

func (d *Driver) enterPage(name string) {
	d.pageName = name
	d.enteredAt = time.Now()
	d.errorBanner = ""
}

func (d *Driver) navigate(name, path string) {
	d.enterPage(name)
	d.currentURL = d.baseURL + path
}

func (d *Driver) rendered() bool {
	return time.Since(d.enteredAt) >= d.Config.RenderDelay
}

// present reports whether the selector resolves on the current page.
func (d *Driver) present(expr string) bool {
	switch d.pageName {
	case pageLogin:
		switch expr {
		case "user-name", "password", "login-button":
			return true
		case "h3[data-test='error']":
			return d.errorBanner != ""
		}
	case pageInventory:
		switch expr {
		case ".inventory_list",
			".inventory_item:first-of-type .inventory_item_name",
			".inventory_item:first-of-type button.btn_inventory",
			".shopping_cart_link":
			return true
		case ".shopping_cart_badge":
			return d.cartCount > 0
		}
	case pageCart:
		switch expr {
		case ".cart_list", "checkout":
			return true
		case ".cart_item .inventory_item_name", ".cart_item .cart_quantity":
			return d.cartCount > 0
		case ".shopping_cart_badge":
			return d.cartCount > 0
		}
	case pageCheckoutInfo:
		switch expr {
		case "first-name", "last-name", "postal-code", "continue":
			return true
		case "h3[data-test='error']":
			return d.errorBanner != ""
		}
	case pageCheckoutOverview:
		switch expr {
		case ".cart_item .inventory_item_name", ".summary_total_label", "finish":
			return true
		}
	case pageCheckoutComplete:
		switch expr {
		case ".complete-header", "back-to-products":
			return true
		}
	}
	return false
}

// interact counts a click or type and applies injected failures.
func (d *Driver) interact(verb, expr string) error {
	d.interactions++
	if d.Config.FailOnInteraction > 0 && d.interactions == d.Config.FailOnInteraction {
		return fmt.Errorf("injected failure on interaction %d (%s %s)", d.interactions, verb, expr)
	}
	return nil
}

// element is a handle into the driver's state machine. Handles go
// stale when the driver navigates away from the page they were found
// on.
type element struct {
	d    *Driver
	page string
	expr string
}

func (e *element) stale() bool {
	return e.d.pageName != e.page
}

// Click performs the page transition the selector stands for.
func (e *element) Click() error {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if e.d.quit {
		return core.ErrSessionClosed
	}
	if e.stale() {
		return fmt.Errorf("stale element: %s", e.expr)
	}
	if err := e.d.interact("click", e.expr); err != nil {
		return err
	}
	switch e.expr {
	case "login-button":
		e.d.submitLogin()
	case ".inventory_item:first-of-type button.btn_inventory":
		e.d.cartCount++
		e.d.cartItem = e.d.Config.Products[0]
	case ".shopping_cart_link":
		e.d.navigate(pageCart, "/cart.html")
	case "checkout":
		e.d.navigate(pageCheckoutInfo, "/checkout-step-one.html")
	case "continue":
		e.d.submitCustomerInfo()
	case "finish":
		e.d.navigate(pageCheckoutComplete, "/checkout-complete.html")
		e.d.cartCount = 0
	case "back-to-products":
		e.d.navigate(pageInventory, "/inventory.html")
	}
	return nil
}

// Type stores the value for the form field the selector stands for.
func (e *element) Type(text string) error {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if e.d.quit {
		return core.ErrSessionClosed
	}
	if e.stale() {
		return fmt.Errorf("stale element: %s", e.expr)
	}
	if err := e.d.interact("type", e.expr); err != nil {
		return err
	}
	e.d.form[e.expr] = text
	return nil
}

// Clear empties the form field the selector stands for.
func (e *element) Clear() error {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if e.d.quit {
		return core.ErrSessionClosed
	}
	if e.stale() {
		return fmt.Errorf("stale element: %s", e.expr)
	}
	delete(e.d.form, e.expr)
	return nil
}

// Text returns the element's rendered text.
func (e *element) Text() (string, error) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if e.d.quit {
		return "", core.ErrSessionClosed
	}
	if e.stale() {
		return "", fmt.Errorf("stale element: %s", e.expr)
	}
	switch e.expr {
	case "h3[data-test='error']":
		return e.d.errorBanner, nil
	case ".inventory_item:first-of-type .inventory_item_name":
		return e.d.Config.Products[0], nil
	case ".shopping_cart_badge":
		return strconv.Itoa(e.d.cartCount), nil
	case ".cart_item .inventory_item_name":
		return e.d.cartItem, nil
	case ".cart_item .cart_quantity":
		return strconv.Itoa(e.d.cartCount), nil
	case ".summary_total_label":
		return "Total: $32.39", nil
	case ".complete-header":
		return "Thank you for your order!", nil
	case "login-button":
		return "Login", nil
	}
	return "", nil
}

// Visible reports whether the element has rendered yet.
func (e *element) Visible() (bool, error) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if e.d.quit {
		return false, core.ErrSessionClosed
	}
	if e.stale() {
		return false, nil
	}
	return e.d.rendered(), nil
}

// Enabled mirrors Visible; the storefront never greys its controls out.
func (e *element) Enabled() (bool, error) {
	return e.Visible()
}

func (d *Driver) submitLogin() {
	user := d.form["user-name"]
	pass := d.form["password"]
	if user == d.Config.Username && pass == d.Config.Password {
		d.navigate(pageInventory, "/inventory.html")
		if d.Config.LeakDialog {
			d.dialogOpen = true
		}
		return
	}
	d.errorBanner = rejectedCredentials
}

func (d *Driver) submitCustomerInfo() {
	switch {
	case d.form["first-name"] == "":
		d.errorBanner = "Error: First Name is required"
	case d.form["last-name"] == "":
		d.errorBanner = "Error: Last Name is required"
	case d.form["postal-code"] == "":
		d.errorBanner = "Error: Postal Code is required"
	default:
		d.navigate(pageCheckoutOverview, "/checkout-step-two.html")
	}
}
