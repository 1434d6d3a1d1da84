package pages

import (
	"strings"
	"time"

	"github.com/storelab-dev/checkout-runner/pkg/core"
	"github.com/storelab-dev/checkout-runner/pkg/locator"
	"github.com/storelab-dev/checkout-runner/pkg/wait"
)

var loginLocators = func() *locator.Registry {
	r := locator.NewRegistry("login")
	r.Register("username_field", locator.ByID, "user-name")
	r.Register("password_field", locator.ByID, "password")
	r.Register("login_button", locator.ByID, "login-button")
	r.Register("error_banner", locator.ByCSS, "h3[data-test='error']")
	return r
}()

// Login drives the storefront sign-in form.
type Login struct {
	page
}

// NewLogin builds the login module over the session's driver.
func NewLogin(drv core.Driver, w *wait.Waiter, timeout time.Duration) *Login {
	return &Login{page{drv: drv, w: w, timeout: timeout, name: "login", reg: loginLocators}}
}

// Open navigates to the storefront root and waits for the form.
func (p *Login) Open(baseURL string) error {
	if err := p.drv.Open(baseURL); err != nil {
		return core.ErrNavigationFailed.
			WithMessage("open " + baseURL + " failed").
			WithCause(err)
	}
	return p.VerifyLoaded()
}

// VerifyLoaded blocks until the login button is visible.
func (p *Login) VerifyLoaded() error {
	loc, err := p.reg.Get("login_button")
	if err != nil {
		return err
	}
	return p.await(wait.ElementVisible(loc))
}

// EnterUsername types the account name into the username field.
func (p *Login) EnterUsername(username string) error {
	return p.fill("username_field", username)
}

// EnterPassword types the secret into the password field.
func (p *Login) EnterPassword(password string) error {
	return p.fill("password_field", password)
}

// Submit clicks the login button.
func (p *Login) Submit() error {
	return p.click("login_button")
}

// SignIn fills both credential fields and submits the form.
func (p *Login) SignIn(username, password string) error {
	if err := p.EnterUsername(username); err != nil {
		return err
	}
	if err := p.EnterPassword(password); err != nil {
		return err
	}
	return p.Submit()
}

// DismissLeakWarning closes the browser's credential popup if one is
// showing. Chrome raises it outside the DOM, so there is no element to
// wait on; callers must follow up with a condition wait on the page
// they expect next.
func (p *Login) DismissLeakWarning() error {
	if err := p.drv.DismissDialog(); err != nil {
		return core.ErrInteractionFailed.
			WithMessage("dismiss credential dialog failed").
			WithCause(err)
	}
	p.w.DialogSettle()
	return nil
}

// VerifySignedIn waits for the post-login redirect. When the redirect
// never happens it inspects the error banner so a rejected credential
// surfaces as a verification failure rather than a bare timeout.
func (p *Login) VerifySignedIn() error {
	err := p.await(wait.URLContains("/inventory.html"))
	if err == nil {
		return nil
	}
	if banner, bErr := p.bannerNow(); bErr == nil && banner != "" {
		return core.NewVerificationFailed("signed-in inventory page", banner)
	}
	return err
}

// ErrorBannerText waits for the rejection banner and returns its text.
func (p *Login) ErrorBannerText() (string, error) {
	return p.text("error_banner")
}

// VerifyRejected waits for the rejection banner and checks it carries
// the expected notice. Used by flows where the rejection itself is the
// outcome under test.
func (p *Login) VerifyRejected(notice string) error {
	banner, err := p.ErrorBannerText()
	if err != nil {
		return err
	}
	if !strings.Contains(banner, notice) {
		return core.NewVerificationFailed(notice, banner)
	}
	return nil
}

// bannerNow probes the banner once, without waiting.
func (p *Login) bannerNow() (string, error) {
	loc, err := p.reg.Get("error_banner")
	if err != nil {
		return "", err
	}
	el, err := p.drv.Find(loc)
	if err != nil {
		return "", err
	}
	visible, err := el.Visible()
	if err != nil || !visible {
		return "", err
	}
	return el.Text()
}
