package core

// FlowState identifies how far a storefront flow has progressed.
// Flows advance strictly forward through these states; Failed is
// reachable from any non-terminal state and ends the flow.
type FlowState int

const (
	StateNotStarted FlowState = iota
	StateLoggedIn
	StateProductSelected
	StateCartVerified
	StateCheckoutInfoEntered
	StateOrderReviewed
	StateCompleted
	StateFailed
)

// String returns the string representation of FlowState
func (s FlowState) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateLoggedIn:
		return "logged_in"
	case StateProductSelected:
		return "product_selected"
	case StateCartVerified:
		return "cart_verified"
	case StateCheckoutInfoEntered:
		return "checkout_info_entered"
	case StateOrderReviewed:
		return "order_reviewed"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal returns true if no further transitions can leave the state
func (s FlowState) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}
