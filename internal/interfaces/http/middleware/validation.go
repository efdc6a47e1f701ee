package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/tableside/backend/internal/domain/billing"
)

// SetupValidator configures the request validator with custom tags
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Use JSON tag names for field names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	// Expose decimal fields as float64 so numeric tags (gte, lte) apply to them
	v.RegisterCustomTypeFunc(decimalToFloat, decimal.Decimal{})

	_ = v.RegisterValidation("tipmode", validTipMode)
}

func decimalToFloat(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

// validTipMode accepts the tip modes the billing domain understands
func validTipMode(fl validator.FieldLevel) bool {
	switch billing.TipMode(fl.Field().String()) {
	case billing.TipNone, billing.TipPreset, billing.TipCustom:
		return true
	}
	return false
}
