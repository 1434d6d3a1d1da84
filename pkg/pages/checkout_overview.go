package pages

import (
	"time"

	"github.com/storelab-dev/checkout-runner/pkg/core"
	"github.com/storelab-dev/checkout-runner/pkg/locator"
	"github.com/storelab-dev/checkout-runner/pkg/wait"
)

var checkoutOverviewLocators = func() *locator.Registry {
	r := locator.NewRegistry("checkout_overview")
	r.Register("item_name", locator.ByCSS, ".cart_item .inventory_item_name")
	r.Register("summary_total", locator.ByCSS, ".summary_total_label")
	r.Register("finish_button", locator.ByID, "finish")
	return r
}()

// CheckoutOverview drives the order review step.
type CheckoutOverview struct {
	page
}

// NewCheckoutOverview builds the review-step module over the session's driver.
func NewCheckoutOverview(drv core.Driver, w *wait.Waiter, timeout time.Duration) *CheckoutOverview {
	return &CheckoutOverview{page{drv: drv, w: w, timeout: timeout, name: "checkout_overview", reg: checkoutOverviewLocators}}
}

// VerifyLoaded blocks until the finish button renders on step two.
func (p *CheckoutOverview) VerifyLoaded() error {
	return p.verifyLoaded("finish_button", "/checkout-step-two.html")
}

// ItemName returns the display name of the product under review.
func (p *CheckoutOverview) ItemName() (string, error) {
	return p.text("item_name")
}

// VerifyItem asserts the order lists the expected product.
func (p *CheckoutOverview) VerifyItem(expected string) error {
	observed, err := p.ItemName()
	if err != nil {
		return err
	}
	if observed != expected {
		return core.NewVerificationFailed(expected, observed)
	}
	return nil
}

// TotalLabel returns the order total line, e.g. "Total: $32.39".
func (p *CheckoutOverview) TotalLabel() (string, error) {
	return p.text("summary_total")
}

// Finish places the order.
func (p *CheckoutOverview) Finish() error {
	return p.click("finish_button")
}
