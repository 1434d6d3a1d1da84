package pages

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/storelab-dev/checkout-runner/pkg/core"
	"github.com/storelab-dev/checkout-runner/pkg/driver/mock"
	"github.com/storelab-dev/checkout-runner/pkg/wait"
)

// atCheckoutInfo drives a storefront to the customer information step.
func atCheckoutInfo(t *testing.T) (*mock.Driver, *wait.Waiter, *CheckoutInfo) {
	t.Helper()
	drv, w, cart := cartWithBackpack(t)
	require.NoError(t, cart.Checkout())
	info := NewCheckoutInfo(drv, w, testTimeout)
	require.NoError(t, info.VerifyLoaded())
	return drv, w, info
}

// atOverview continues from the information step to the order review.
func atOverview(t *testing.T) (*mock.Driver, *wait.Waiter, *CheckoutOverview) {
	t.Helper()
	drv, w, info := atCheckoutInfo(t)
	require.NoError(t, info.Fill("John", "Doe", "12345"))
	require.NoError(t, info.Continue())
	overview := NewCheckoutOverview(drv, w, testTimeout)
	require.NoError(t, overview.VerifyLoaded())
	return drv, w, overview
}

func TestCheckoutInfo_FillAndContinue(t *testing.T) {
	drv, _, info := atCheckoutInfo(t)

	require.NoError(t, info.Fill("John", "Doe", "12345"))
	require.NoError(t, info.Continue())
	require.Equal(t, "checkout_overview", drv.Page())
}

func TestCheckoutInfo_MissingFirstNameStaysPut(t *testing.T) {
	drv, _, info := atCheckoutInfo(t)

	require.NoError(t, info.Fill("", "Doe", "12345"))
	require.NoError(t, info.Continue())
	require.Equal(t, "checkout_info", drv.Page())
}

func TestCheckoutInfo_MissingFieldShowsBanner(t *testing.T) {
	_, _, info := atCheckoutInfo(t)

	require.NoError(t, info.Fill("John", "", "12345"))
	require.NoError(t, info.Continue())

	banner, err := info.ErrorBannerText()
	require.NoError(t, err)
	require.Equal(t, "Error: Last Name is required", banner)
}

func TestCheckoutOverview_VerifyItem(t *testing.T) {
	_, _, overview := atOverview(t)

	name, err := overview.ItemName()
	require.NoError(t, err)
	require.Equal(t, "Sauce Labs Backpack", name)

	require.NoError(t, overview.VerifyItem("Sauce Labs Backpack"))

	err = overview.VerifyItem("Sauce Labs Fleece Jacket")
	require.ErrorIs(t, err, core.ErrVerificationFailed)
}

func TestCheckoutOverview_TotalLabel(t *testing.T) {
	_, _, overview := atOverview(t)

	total, err := overview.TotalLabel()
	require.NoError(t, err)
	require.Contains(t, total, "Total:")
}

func TestCheckoutComplete_Confirmation(t *testing.T) {
	drv, w, overview := atOverview(t)

	require.NoError(t, overview.Finish())

	complete := NewCheckoutComplete(drv, w, testTimeout)
	require.NoError(t, complete.VerifyLoaded())

	text, err := complete.ConfirmationText()
	require.NoError(t, err)
	require.Equal(t, "Thank you for your order!", text)

	require.NoError(t, complete.VerifyConfirmation("Thank you for your order"))

	err = complete.VerifyConfirmation("Your order is delayed")
	require.ErrorIs(t, err, core.ErrVerificationFailed)
}

func TestCheckoutComplete_BackToProducts(t *testing.T) {
	drv, w, overview := atOverview(t)

	require.NoError(t, overview.Finish())
	complete := NewCheckoutComplete(drv, w, testTimeout)
	require.NoError(t, complete.VerifyLoaded())

	require.NoError(t, complete.BackToProducts())

	inventory := NewInventory(drv, w, testTimeout)
	require.NoError(t, inventory.VerifyLoaded())
}
