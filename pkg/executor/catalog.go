package executor

import (
	"fmt"

	"github.com/storelab-dev/checkout-runner/pkg/core"
)

// confirmationNotice is the phrase the storefront shows once an order
// goes through.
const confirmationNotice = "Thank you for your order"

// rejectionNotice is the banner the storefront shows for credentials it
// does not know.
const rejectionNotice = "Epic sadface: Username and password do not match any user in this service"

// wrongPassword is the deliberately bad secret the invalid-login flow
// submits.
const wrongPassword = "wrong_password"

// Catalog returns every flow the runner knows, in execution order.
// The checkout flow is the canonical full walk of the state machine;
// the others are prefixes and variants built from the same transitions.
func Catalog() []Flow {
	return []Flow{
		CheckoutFlow(),
		LoginFlow(),
		InvalidLoginFlow(),
		AddToCartFlow(),
	}
}

// FlowsByName resolves the requested names against the catalog,
// preserving the requested order. An empty request selects the whole
// catalog.
func FlowsByName(names []string) ([]Flow, error) {
	catalog := Catalog()
	if len(names) == 0 {
		return catalog, nil
	}

	byName := make(map[string]Flow, len(catalog))
	for _, f := range catalog {
		byName[f.Name] = f
	}

	flows := make([]Flow, 0, len(names))
	for _, name := range names {
		f, ok := byName[name]
		if !ok {
			return nil, core.ErrInvalidConfig.
				WithMessage(fmt.Sprintf("unknown flow %q", name))
		}
		flows = append(flows, f)
	}
	return flows, nil
}

// CheckoutFlow walks the full state machine: sign in, put the first
// product in the cart, verify the cart, enter checkout information,
// review the order, and finish. The product name read on the inventory
// page is carried in the flow context and asserted again in the cart
// and on the order review page.
func CheckoutFlow() Flow {
	return Flow{
		Name:                "checkout",
		Description:         "sign in, buy the first product, complete checkout",
		RequiresCredentials: true,
		RequiresCustomer:    true,
		Transitions: []Transition{
			logInTransition(),
			selectProductTransition(),
			verifyCartTransition(),
			{
				Name: "enter_checkout_info",
				From: core.StateCartVerified,
				To:   core.StateCheckoutInfoEntered,
				Run: func(b *Bindings, fc *core.FlowContext) error {
					if err := b.Pages.Cart.Checkout(); err != nil {
						return err
					}
					if err := b.Pages.Info.VerifyLoaded(); err != nil {
						return err
					}
					customer := b.Config.Customer
					if err := b.Pages.Info.Fill(customer.FirstName, customer.LastName, customer.PostalCode); err != nil {
						return err
					}
					return b.Pages.Info.Continue()
				},
			},
			{
				Name: "review_order",
				From: core.StateCheckoutInfoEntered,
				To:   core.StateOrderReviewed,
				Run: func(b *Bindings, fc *core.FlowContext) error {
					if err := b.Pages.Overview.VerifyLoaded(); err != nil {
						return err
					}
					product, err := fc.String(core.KeyProductName)
					if err != nil {
						return err
					}
					return b.Pages.Overview.VerifyItem(product)
				},
			},
			{
				Name: "complete_order",
				From: core.StateOrderReviewed,
				To:   core.StateCompleted,
				Run: func(b *Bindings, fc *core.FlowContext) error {
					if err := b.Pages.Overview.Finish(); err != nil {
						return err
					}
					if err := b.Pages.Complete.VerifyLoaded(); err != nil {
						return err
					}
					return b.Pages.Complete.VerifyConfirmation(confirmationNotice)
				},
			},
		},
	}
}

// LoginFlow signs in and stops once the inventory page is up.
func LoginFlow() Flow {
	return Flow{
		Name:                "login",
		Description:         "sign in and land on the inventory page",
		RequiresCredentials: true,
		Transitions: []Transition{
			logInTransition(),
		},
	}
}

// InvalidLoginFlow submits a known-bad password and passes when the
// storefront shows the rejection banner. The rejection is the outcome
// under test, so the flow completes on seeing it.
func InvalidLoginFlow() Flow {
	return Flow{
		Name:                "invalid-login",
		Description:         "submit a bad password and expect the rejection banner",
		RequiresCredentials: true,
		Transitions: []Transition{
			{
				Name: "reject_login",
				From: core.StateNotStarted,
				To:   core.StateCompleted,
				Run: func(b *Bindings, fc *core.FlowContext) error {
					if err := b.Pages.Login.Open(b.Config.BaseURL); err != nil {
						return err
					}
					if err := b.Pages.Login.SignIn(b.Config.Credentials.Username, wrongPassword); err != nil {
						return err
					}
					return b.Pages.Login.VerifyRejected(rejectionNotice)
				},
			},
		},
	}
}

// AddToCartFlow signs in, adds the first product, and verifies the
// cart holds exactly that product.
func AddToCartFlow() Flow {
	return Flow{
		Name:                "add-to-cart",
		Description:         "sign in, add the first product, verify the cart",
		RequiresCredentials: true,
		Transitions: []Transition{
			logInTransition(),
			selectProductTransition(),
			verifyCartTransition(),
		},
	}
}

// logInTransition opens the storefront, signs in, clears the browser's
// credential popup, and confirms the inventory page rendered.
func logInTransition() Transition {
	return Transition{
		Name: "log_in",
		From: core.StateNotStarted,
		To:   core.StateLoggedIn,
		Run: func(b *Bindings, fc *core.FlowContext) error {
			if err := b.Pages.Login.Open(b.Config.BaseURL); err != nil {
				return err
			}
			creds := b.Config.Credentials
			if err := b.Pages.Login.SignIn(creds.Username, creds.Password); err != nil {
				return err
			}
			if err := b.Pages.Login.DismissLeakWarning(); err != nil {
				return err
			}
			if err := b.Pages.Login.VerifySignedIn(); err != nil {
				return err
			}
			return b.Pages.Inventory.VerifyLoaded()
		},
	}
}

// selectProductTransition reads the first product's name, stores it in
// the flow context, and adds the product to the cart.
func selectProductTransition() Transition {
	return Transition{
		Name: "select_product",
		From: core.StateLoggedIn,
		To:   core.StateProductSelected,
		Run: func(b *Bindings, fc *core.FlowContext) error {
			product, err := b.Pages.Inventory.FirstProductName()
			if err != nil {
				return err
			}
			if err := fc.Set(core.KeyProductName, product); err != nil {
				return err
			}
			return b.Pages.Inventory.AddFirstToCart()
		},
	}
}

// verifyCartTransition opens the cart and checks it holds exactly the
// product captured at selection time, quantity one.
func verifyCartTransition() Transition {
	return Transition{
		Name: "verify_cart",
		From: core.StateProductSelected,
		To:   core.StateCartVerified,
		Run: func(b *Bindings, fc *core.FlowContext) error {
			if err := b.Pages.Inventory.VerifyCartBadge(1); err != nil {
				return err
			}
			if err := b.Pages.Inventory.OpenCart(); err != nil {
				return err
			}
			if err := b.Pages.Cart.VerifyLoaded(); err != nil {
				return err
			}
			product, err := fc.String(core.KeyProductName)
			if err != nil {
				return err
			}
			if err := b.Pages.Cart.VerifyItem(product); err != nil {
				return err
			}
			return b.Pages.Cart.VerifyQuantity(1)
		},
	}
}
