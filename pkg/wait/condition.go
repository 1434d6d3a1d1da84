// Package wait implements condition polling against a live browser session.
package wait

import (
	"fmt"
	"strings"

	"github.com/storelab-dev/checkout-runner/pkg/core"
	"github.com/storelab-dev/checkout-runner/pkg/locator"
)

// Condition is an observable page predicate. Probe reports whether the
// condition holds right now; a probe error means "not yet" (the page
// may still be settling) and the last one is attached to the timeout
// error if the condition never becomes true.
type Condition struct {
	Description string
	Probe       func(drv core.Driver) (bool, error)
}

// ElementVisible is true once the element exists and is displayed.
func ElementVisible(loc locator.Locator) Condition {
	return Condition{
		Description: fmt.Sprintf("element %s visible", loc.Describe()),
		Probe: func(drv core.Driver) (bool, error) {
			el, err := drv.Find(loc)
			if err != nil {
				return false, err
			}
			return el.Visible()
		},
	}
}

// ElementEnabled is true once the element exists and accepts interaction.
func ElementEnabled(loc locator.Locator) Condition {
	return Condition{
		Description: fmt.Sprintf("element %s enabled", loc.Describe()),
		Probe: func(drv core.Driver) (bool, error) {
			el, err := drv.Find(loc)
			if err != nil {
				return false, err
			}
			return el.Enabled()
		},
	}
}

// ElementNotVisible is true once the element is absent or hidden.
func ElementNotVisible(loc locator.Locator) Condition {
	return Condition{
		Description: fmt.Sprintf("element %s not visible", loc.Describe()),
		Probe: func(drv core.Driver) (bool, error) {
			el, err := drv.Find(loc)
			if err != nil {
				// Absent counts as not visible
				return true, nil
			}
			visible, err := el.Visible()
			if err != nil {
				return false, err
			}
			return !visible, nil
		},
	}
}

// URLContains is true once the current URL contains the fragment.
func URLContains(fragment string) Condition {
	return Condition{
		Description: fmt.Sprintf("url contains %s", fragment),
		Probe: func(drv core.Driver) (bool, error) {
			url, err := drv.URL()
			if err != nil {
				return false, err
			}
			return strings.Contains(url, fragment), nil
		},
	}
}

// TextEquals is true once the element's visible text equals expected.
// Leading and trailing whitespace on the observed text is ignored.
func TextEquals(loc locator.Locator, expected string) Condition {
	return Condition{
		Description: fmt.Sprintf("element %s text equals %q", loc.Describe(), expected),
		Probe: func(drv core.Driver) (bool, error) {
			el, err := drv.Find(loc)
			if err != nil {
				return false, err
			}
			text, err := el.Text()
			if err != nil {
				return false, err
			}
			return strings.TrimSpace(text) == expected, nil
		},
	}
}
