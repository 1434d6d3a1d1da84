// Package validator checks a run request before any browser session
// starts. It verifies the configuration is structurally sound, resolves
// requested flow names against the catalog, and confirms every selected
// flow has the config sections it needs.
package validator

import (
	"fmt"
	"strings"

	"github.com/storelab-dev/checkout-runner/pkg/config"
	"github.com/storelab-dev/checkout-runner/pkg/executor"
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Result contains the validation result.
type Result struct {
	// Flows is the list of resolved flows in execution order.
	Flows []executor.Flow
	// Errors contains all validation errors found.
	Errors []error
}

// IsValid returns true if there are no validation errors.
func (r *Result) IsValid() bool {
	return len(r.Errors) == 0
}

// Validator validates run requests.
type Validator struct {
	catalog []executor.Flow
}

// New creates a new Validator backed by the built-in flow catalog.
func New() *Validator {
	return &Validator{catalog: executor.Catalog()}
}

// Validate resolves the requested flow names and checks the configuration
// against them. An empty name list selects the whole catalog. All problems
// are collected, not just the first one.
func (v *Validator) Validate(cfg *config.Config, names []string) *Result {
	result := &Result{}

	if err := cfg.Validate(); err != nil {
		result.Errors = append(result.Errors, &ValidationError{
			Field:   "config",
			Message: err.Error(),
		})
	}

	if len(names) == 0 {
		result.Flows = append(result.Flows, v.catalog...)
	} else {
		for _, name := range names {
			f, ok := v.lookup(name)
			if !ok {
				result.Errors = append(result.Errors, &ValidationError{
					Field:   "flows",
					Message: fmt.Sprintf("unknown flow %q (known: %s)", name, strings.Join(v.names(), ", ")),
				})
				continue
			}
			result.Flows = append(result.Flows, f)
		}
	}

	v.checkRequirements(cfg, result)
	return result
}

func (v *Validator) lookup(name string) (executor.Flow, bool) {
	for _, f := range v.catalog {
		if f.Name == name {
			return f, true
		}
	}
	return executor.Flow{}, false
}

func (v *Validator) names() []string {
	names := make([]string, len(v.catalog))
	for i, f := range v.catalog {
		names[i] = f.Name
	}
	return names
}

// checkRequirements confirms the config carries every section the selected
// flows declare they need. A requirement shared by several flows is
// reported once, naming all of them.
func (v *Validator) checkRequirements(cfg *config.Config, result *Result) {
	var needCreds, needCustomer []string
	for _, f := range result.Flows {
		if f.RequiresCredentials {
			needCreds = append(needCreds, f.Name)
		}
		if f.RequiresCustomer {
			needCustomer = append(needCustomer, f.Name)
		}
	}

	if len(needCreds) > 0 {
		if cfg.Credentials.Username == "" || cfg.Credentials.Password == "" {
			result.Errors = append(result.Errors, &ValidationError{
				Field: "credentials",
				Message: fmt.Sprintf("username and password are required by flows: %s",
					strings.Join(needCreds, ", ")),
			})
		}
	}

	if len(needCustomer) > 0 {
		c := cfg.Customer
		if c.FirstName == "" || c.LastName == "" || c.PostalCode == "" {
			result.Errors = append(result.Errors, &ValidationError{
				Field: "customer",
				Message: fmt.Sprintf("firstName, lastName and postalCode are required by flows: %s",
					strings.Join(needCustomer, ", ")),
			})
		}
	}
}
