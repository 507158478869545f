package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// isCurrencyCode validates an ISO 4217 style alphabetic code: exactly three
// uppercase ASCII letters.
func isCurrencyCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if len(code) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}

// init attaches domain-specific rules to gin's binding validator so DTO tags
// can reference them anywhere the package is linked in, tests included.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// Registration only fails for an empty tag name.
		_ = v.RegisterValidation("currencycode", isCurrencyCode)
	}
}
