package core

import "fmt"

// Well-known FlowContext keys
const (
	// KeyProductName holds the product name captured when the product
	// was selected. Later steps assert against this value instead of
	// re-reading the page.
	KeyProductName = "product_name"
)

// FlowContext carries values captured during one flow run between steps.
// It is scoped to a single flow and is not safe for concurrent use;
// a flow executes as a single sequential goroutine.
type FlowContext struct {
	values map[string]interface{}
}

// NewFlowContext returns an empty context for one flow run
func NewFlowContext() *FlowContext {
	return &FlowContext{values: make(map[string]interface{})}
}

// Set stores a value under the given key. Overwriting an existing key
// with a value of a different dynamic type is rejected; silently
// changing a key's type mid-flow hides step bugs.
func (c *FlowContext) Set(key string, value interface{}) error {
	if old, ok := c.values[key]; ok {
		if fmt.Sprintf("%T", old) != fmt.Sprintf("%T", value) {
			return NewFlowError(ErrCategoryConfig, "context_type_change",
				fmt.Sprintf("context key %q changed type from %T to %T", key, old, value))
		}
	}
	c.values[key] = value
	return nil
}

// Get returns the value stored under key and whether it was present
func (c *FlowContext) Get(key string) (interface{}, bool) {
	v, ok := c.values[key]
	return v, ok
}

// String returns the string stored under key. Missing keys and
// non-string values are errors; callers rely on what an earlier
// step captured, so absence means a wiring bug.
func (c *FlowContext) String(key string) (string, error) {
	v, ok := c.values[key]
	if !ok {
		return "", NewFlowError(ErrCategoryConfig, "context_key_missing",
			fmt.Sprintf("context key %q was never set", key))
	}
	s, ok := v.(string)
	if !ok {
		return "", NewFlowError(ErrCategoryConfig, "context_type_change",
			fmt.Sprintf("context key %q holds %T, not string", key, v))
	}
	return s, nil
}

// Len returns the number of stored keys
func (c *FlowContext) Len() int {
	return len(c.values)
}
