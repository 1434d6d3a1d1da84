package pages

import (
	"strconv"
	"time"

	"github.com/storelab-dev/checkout-runner/pkg/core"
	"github.com/storelab-dev/checkout-runner/pkg/locator"
	"github.com/storelab-dev/checkout-runner/pkg/wait"
)

var inventoryLocators = func() *locator.Registry {
	r := locator.NewRegistry("inventory")
	r.Register("inventory_list", locator.ByCSS, ".inventory_list")
	r.Register("first_item_name", locator.ByCSS, ".inventory_item:first-of-type .inventory_item_name")
	r.Register("first_add_button", locator.ByCSS, ".inventory_item:first-of-type button.btn_inventory")
	r.Register("cart_badge", locator.ByCSS, ".shopping_cart_badge")
	r.Register("cart_link", locator.ByCSS, ".shopping_cart_link")
	return r
}()

// Inventory drives the product listing page.
type Inventory struct {
	page
}

// NewInventory builds the inventory module over the session's driver.
func NewInventory(drv core.Driver, w *wait.Waiter, timeout time.Duration) *Inventory {
	return &Inventory{page{drv: drv, w: w, timeout: timeout, name: "inventory", reg: inventoryLocators}}
}

// VerifyLoaded blocks until the product list renders on the inventory path.
func (p *Inventory) VerifyLoaded() error {
	return p.verifyLoaded("inventory_list", "/inventory.html")
}

// FirstProductName returns the display name of the first listed product.
func (p *Inventory) FirstProductName() (string, error) {
	return p.text("first_item_name")
}

// AddFirstToCart clicks the first product's add button and confirms the
// cart badge appears.
func (p *Inventory) AddFirstToCart() error {
	if err := p.click("first_add_button"); err != nil {
		return err
	}
	badge, err := p.reg.Get("cart_badge")
	if err != nil {
		return err
	}
	return p.await(wait.ElementVisible(badge))
}

// CartBadgeCount reads the numeric badge on the cart icon.
func (p *Inventory) CartBadgeCount() (int, error) {
	s, err := p.text("cart_badge")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, core.NewVerificationFailed("numeric cart badge", s).WithCause(err)
	}
	return n, nil
}

// VerifyCartBadge asserts the badge shows the expected item count.
func (p *Inventory) VerifyCartBadge(expected int) error {
	observed, err := p.CartBadgeCount()
	if err != nil {
		return err
	}
	if observed != expected {
		return core.NewVerificationFailed(expected, observed)
	}
	return nil
}

// OpenCart clicks through to the cart page.
func (p *Inventory) OpenCart() error {
	return p.click("cart_link")
}
