// Package validation wraps go-playground/validator for configuration
// structs and collects field-level failures into a single error.
//
//	type Config struct {
//	    BaseURL string `validate:"required,url"`
//	}
//
//	if err := validation.Validate(cfg); err != nil { ... }
package validation
