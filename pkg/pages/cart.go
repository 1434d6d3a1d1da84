package pages

import (
	"strconv"
	"time"

	"github.com/storelab-dev/checkout-runner/pkg/core"
	"github.com/storelab-dev/checkout-runner/pkg/locator"
	"github.com/storelab-dev/checkout-runner/pkg/wait"
)

var cartLocators = func() *locator.Registry {
	r := locator.NewRegistry("cart")
	r.Register("cart_list", locator.ByCSS, ".cart_list")
	r.Register("item_name", locator.ByCSS, ".cart_item .inventory_item_name")
	r.Register("item_quantity", locator.ByCSS, ".cart_item .cart_quantity")
	r.Register("checkout_button", locator.ByID, "checkout")
	return r
}()

// Cart drives the shopping cart page. The flows put exactly one product
// in the cart, so the item accessors address the single row.
type Cart struct {
	page
}

// NewCart builds the cart module over the session's driver.
func NewCart(drv core.Driver, w *wait.Waiter, timeout time.Duration) *Cart {
	return &Cart{page{drv: drv, w: w, timeout: timeout, name: "cart", reg: cartLocators}}
}

// VerifyLoaded blocks until the cart list renders on the cart path.
func (p *Cart) VerifyLoaded() error {
	return p.verifyLoaded("cart_list", "/cart.html")
}

// ItemName returns the display name of the carted product.
func (p *Cart) ItemName() (string, error) {
	return p.text("item_name")
}

// VerifyItem asserts the cart holds the expected product.
func (p *Cart) VerifyItem(expected string) error {
	observed, err := p.ItemName()
	if err != nil {
		return err
	}
	if observed != expected {
		return core.NewVerificationFailed(expected, observed)
	}
	return nil
}

// VerifyQuantity asserts the carted row carries the expected quantity.
func (p *Cart) VerifyQuantity(expected int) error {
	s, err := p.text("item_quantity")
	if err != nil {
		return err
	}
	observed, err := strconv.Atoi(s)
	if err != nil {
		return core.NewVerificationFailed("numeric quantity", s).WithCause(err)
	}
	if observed != expected {
		return core.NewVerificationFailed(expected, observed)
	}
	return nil
}

// Checkout clicks the checkout button.
func (p *Cart) Checkout() error {
	return p.click("checkout_button")
}
