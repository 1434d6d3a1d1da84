package pages

import (
	"time"

	"github.com/storelab-dev/checkout-runner/pkg/core"
	"github.com/storelab-dev/checkout-runner/pkg/locator"
	"github.com/storelab-dev/checkout-runner/pkg/wait"
)

var checkoutInfoLocators = func() *locator.Registry {
	r := locator.NewRegistry("checkout_info")
	r.Register("first_name_field", locator.ByID, "first-name")
	r.Register("last_name_field", locator.ByID, "last-name")
	r.Register("postal_code_field", locator.ByID, "postal-code")
	r.Register("continue_button", locator.ByID, "continue")
	r.Register("error_banner", locator.ByCSS, "h3[data-test='error']")
	return r
}()

// CheckoutInfo drives the customer information step.
type CheckoutInfo struct {
	page
}

// NewCheckoutInfo builds the information-step module over the session's driver.
func NewCheckoutInfo(drv core.Driver, w *wait.Waiter, timeout time.Duration) *CheckoutInfo {
	return &CheckoutInfo{page{drv: drv, w: w, timeout: timeout, name: "checkout_info", reg: checkoutInfoLocators}}
}

// VerifyLoaded blocks until the first-name field renders on step one.
func (p *CheckoutInfo) VerifyLoaded() error {
	return p.verifyLoaded("first_name_field", "/checkout-step-one.html")
}

// EnterFirstName types the customer's first name.
func (p *CheckoutInfo) EnterFirstName(firstName string) error {
	return p.fill("first_name_field", firstName)
}

// EnterLastName types the customer's last name.
func (p *CheckoutInfo) EnterLastName(lastName string) error {
	return p.fill("last_name_field", lastName)
}

// EnterPostalCode types the customer's postal code.
func (p *CheckoutInfo) EnterPostalCode(postalCode string) error {
	return p.fill("postal_code_field", postalCode)
}

// Fill enters all three customer fields.
func (p *CheckoutInfo) Fill(firstName, lastName, postalCode string) error {
	if err := p.EnterFirstName(firstName); err != nil {
		return err
	}
	if err := p.EnterLastName(lastName); err != nil {
		return err
	}
	return p.EnterPostalCode(postalCode)
}

// Continue clicks through to the order overview.
func (p *CheckoutInfo) Continue() error {
	return p.click("continue_button")
}

// ErrorBannerText waits for the validation banner and returns its text.
func (p *CheckoutInfo) ErrorBannerText() (string, error) {
	return p.text("error_banner")
}
