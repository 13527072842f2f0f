// Package validation checks configuration structs against their
// `validate` struct tags using go-playground/validator.
//
//	type Client struct {
//	    BaseURL string `mapstructure:"base_url" validate:"required,url"`
//	}
//	if err := validation.Validate(cfg); err != nil {
//	    // err is *validation.Error listing every failing field
//	}
package validation
