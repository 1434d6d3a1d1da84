package pages

import (
	"strings"
	"time"

	"github.com/storelab-dev/checkout-runner/pkg/core"
	"github.com/storelab-dev/checkout-runner/pkg/locator"
	"github.com/storelab-dev/checkout-runner/pkg/wait"
)

var checkoutCompleteLocators = func() *locator.Registry {
	r := locator.NewRegistry("checkout_complete")
	r.Register("confirmation_header", locator.ByCSS, ".complete-header")
	r.Register("back_button", locator.ByID, "back-to-products")
	return r
}()

// CheckoutComplete drives the order confirmation page.
type CheckoutComplete struct {
	page
}

// NewCheckoutComplete builds the confirmation module over the session's driver.
func NewCheckoutComplete(drv core.Driver, w *wait.Waiter, timeout time.Duration) *CheckoutComplete {
	return &CheckoutComplete{page{drv: drv, w: w, timeout: timeout, name: "checkout_complete", reg: checkoutCompleteLocators}}
}

// VerifyLoaded blocks until the confirmation header renders.
func (p *CheckoutComplete) VerifyLoaded() error {
	return p.verifyLoaded("confirmation_header", "/checkout-complete.html")
}

// ConfirmationText returns the confirmation header text.
func (p *CheckoutComplete) ConfirmationText() (string, error) {
	return p.text("confirmation_header")
}

// VerifyConfirmation asserts the header carries the expected phrase.
func (p *CheckoutComplete) VerifyConfirmation(phrase string) error {
	observed, err := p.ConfirmationText()
	if err != nil {
		return err
	}
	if !strings.Contains(observed, phrase) {
		return core.NewVerificationFailed(phrase, observed)
	}
	return nil
}

// BackToProducts clicks back to the inventory page. Callers confirm the
// landing with Inventory.VerifyLoaded.
func (p *CheckoutComplete) BackToProducts() error {
	return p.click("back_button")
}
