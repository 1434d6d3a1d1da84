package executor

import (
	"time"

	"github.com/storelab-dev/checkout-runner/pkg/config"
	"github.com/storelab-dev/checkout-runner/pkg/core"
	"github.com/storelab-dev/checkout-runner/pkg/pages"
	"github.com/storelab-dev/checkout-runner/pkg/wait"
)

// Pages bundles one instance of every page module bound to a session.
type Pages struct {
	Login     *pages.Login
	Inventory *pages.Inventory
	Cart      *pages.Cart
	Info      *pages.CheckoutInfo
	Overview  *pages.CheckoutOverview
	Complete  *pages.CheckoutComplete
}

// NewPages binds the page modules to a driver and waiter.
func NewPages(drv core.Driver, w *wait.Waiter, timeout time.Duration) *Pages {
	return &Pages{
		Login:     pages.NewLogin(drv, w, timeout),
		Inventory: pages.NewInventory(drv, w, timeout),
		Cart:      pages.NewCart(drv, w, timeout),
		Info:      pages.NewCheckoutInfo(drv, w, timeout),
		Overview:  pages.NewCheckoutOverview(drv, w, timeout),
		Complete:  pages.NewCheckoutComplete(drv, w, timeout),
	}
}

// Bindings hands a transition everything it runs against: the page
// modules bound to a live session, the raw driver for diagnostics, and
// the run configuration for credentials and checkout data.
type Bindings struct {
	Driver core.Driver
	Pages  *Pages
	Config *config.Config
}

// Transition is one edge of the flow state machine. Run performs the
// page verbs for the edge; it commits (the flow advances to To) only
// when Run returns nil. The first error sends the flow to Failed.
type Transition struct {
	Name string
	From core.FlowState
	To   core.FlowState
	Run  func(b *Bindings, fc *core.FlowContext) error
}

// Flow is a named, runnable storefront scenario: an ordered list of
// transitions walking the state machine from NotStarted toward a goal
// state. Flows are static data; all session state lives in Bindings
// and the FlowContext.
type Flow struct {
	Name        string
	Description string

	// Validation requirements, checked before any session starts.
	RequiresCredentials bool
	RequiresCustomer    bool

	Transitions []Transition
}

// FinalState returns the state the flow reaches when every transition
// commits.
func (f Flow) FinalState() core.FlowState {
	if len(f.Transitions) == 0 {
		return core.StateNotStarted
	}
	return f.Transitions[len(f.Transitions)-1].To
}
