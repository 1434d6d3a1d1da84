package locator

import "fmt"

// UnknownError indicates a lookup of a name that was never registered
// for the page. This is a programming defect, not a runtime condition;
// callers fail the flow immediately.
type UnknownError struct {
	Page string
	Name string
}

// Error implements the error interface
func (e *UnknownError) Error() string {
	return fmt.Sprintf("page %q has no locator named %q", e.Page, e.Name)
}

// Registry holds the named locators of a single page.
// Registries are built at package init and read-only afterwards;
// lookups are pure and side-effect free.
type Registry struct {
	page     string
	locators map[string]Locator
}

// NewRegistry creates an empty registry for the named page.
func NewRegistry(page string) *Registry {
	return &Registry{
		page:     page,
		locators: make(map[string]Locator),
	}
}

// Register adds a named locator. Registering the same name twice on one
// page, or an empty expression, panics; both are defects that must
// surface at init, not at lookup time.
func (r *Registry) Register(name string, strategy Strategy, expression string) {
	if _, exists := r.locators[name]; exists {
		panic(fmt.Sprintf("locator %q registered twice on page %q", name, r.page))
	}
	loc := Locator{
		Name:       name,
		Strategy:   strategy,
		Expression: expression,
	}
	if loc.IsEmpty() {
		panic(fmt.Sprintf("locator %q on page %q has no expression", name, r.page))
	}
	r.locators[name] = loc
}

// Get returns the locator registered under name.
func (r *Registry) Get(name string) (Locator, error) {
	loc, ok := r.locators[name]
	if !ok {
		return Locator{}, &UnknownError{Page: r.page, Name: name}
	}
	return loc, nil
}

// Page returns the page this registry belongs to.
func (r *Registry) Page() string {
	return r.page
}

// Names returns the registered locator names, for diagnostics.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.locators))
	for name := range r.locators {
		names = append(names, name)
	}
	return names
}
