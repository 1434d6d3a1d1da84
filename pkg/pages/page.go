// Package pages holds one module per storefront page. Every verb
// follows the same choreography: wait for the page to be ready, perform
// a single DOM interaction, then confirm the expected effect. Pages
// never compose each other; flows sequence them in the executor.
package pages

import (
	"context"
	"strings"
	"time"

	"github.com/storelab-dev/checkout-runner/pkg/core"
	"github.com/storelab-dev/checkout-runner/pkg/locator"
	"github.com/storelab-dev/checkout-runner/pkg/wait"
)

// Page is the capability shared by every page module.
type Page interface {
	// Name returns the page's registry name
	Name() string

	// VerifyLoaded blocks until the page's landmark element is visible
	// and the URL matches the page's path
	VerifyLoaded() error
}

// page carries what every module needs: the session's driver, its
// waiter, the per-wait budget, and the module's own locator registry.
type page struct {
	drv     core.Driver
	w       *wait.Waiter
	timeout time.Duration
	name    string
	reg     *locator.Registry
}

// Name returns the page's registry name.
func (p *page) Name() string {
	return p.name
}

func (p *page) await(cond wait.Condition) error {
	return p.w.Await(context.Background(), cond, p.timeout)
}

// click waits until the element accepts interaction, then clicks it.
func (p *page) click(name string) error {
	loc, err := p.reg.Get(name)
	if err != nil {
		return err
	}
	if err := p.await(wait.ElementEnabled(loc)); err != nil {
		return err
	}
	el, err := p.drv.Find(loc)
	if err != nil {
		return err
	}
	if err := el.Click(); err != nil {
		return core.ErrInteractionFailed.
			WithMessage("click " + loc.Describe() + " failed").
			WithCause(err)
	}
	return nil
}

// fill waits until the field is visible, then replaces its value.
func (p *page) fill(name, value string) error {
	loc, err := p.reg.Get(name)
	if err != nil {
		return err
	}
	if err := p.await(wait.ElementVisible(loc)); err != nil {
		return err
	}
	el, err := p.drv.Find(loc)
	if err != nil {
		return err
	}
	if err := el.Type(value); err != nil {
		return core.ErrInteractionFailed.
			WithMessage("type into " + loc.Describe() + " failed").
			WithCause(err)
	}
	return nil
}

// text waits until the element is visible and returns its trimmed text.
func (p *page) text(name string) (string, error) {
	loc, err := p.reg.Get(name)
	if err != nil {
		return "", err
	}
	if err := p.await(wait.ElementVisible(loc)); err != nil {
		return "", err
	}
	el, err := p.drv.Find(loc)
	if err != nil {
		return "", err
	}
	s, err := el.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// verifyLoaded is the shared landmark-and-path check.
func (p *page) verifyLoaded(landmark, urlFragment string) error {
	loc, err := p.reg.Get(landmark)
	if err != nil {
		return err
	}
	if err := p.await(wait.ElementVisible(loc)); err != nil {
		return err
	}
	return p.await(wait.URLContains(urlFragment))
}
