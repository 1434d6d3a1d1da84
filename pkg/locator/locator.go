// Package locator defines named element lookups for storefront pages.
package locator

// Strategy identifies how a locator expression is evaluated on the page.
type Strategy string

const (
	ByID   Strategy = "id"   // Element id attribute
	ByCSS  Strategy = "css"  // CSS selector
	ByText Strategy = "text" // Exact visible text
)

// Locator names one element on one page and how to find it.
// Pure data structure - drivers decide how to evaluate it.
type Locator struct {
	Name       string   // Logical name within the page registry
	Strategy   Strategy // How Expression is interpreted
	Expression string   // id value, CSS selector, or exact text
}

// IsEmpty returns true if no lookup expression is set.
func (l Locator) IsEmpty() bool {
	return l.Expression == ""
}

// Describe returns a human-readable description.
func (l Locator) Describe() string {
	switch l.Strategy {
	case ByID:
		return "#" + l.Expression
	case ByText:
		return "text:" + l.Expression
	default:
		return "css:" + l.Expression
	}
}
