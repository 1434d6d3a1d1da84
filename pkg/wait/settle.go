package wait

import "time"

// DialogSettleDelay is how long a native browser dialog is given to
// finish opening or closing before the next condition wait begins.
const DialogSettleDelay = 300 * time.Millisecond

// DialogSettle pauses once for a native (non-DOM) browser dialog, such
// as Chrome's compromised-password popup after login. Native dialogs
// never appear in the DOM, so there is no page state to poll while one
// is opening or closing. This is the only fixed delay in the runner;
// every call site must follow it with a condition-based wait on real
// page state.
func (w *Waiter) DialogSettle() {
	time.Sleep(DialogSettleDelay)
}
