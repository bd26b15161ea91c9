package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.String()
			}
			return nil
		}, decimal.Decimal{})
		mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		mustRegister(v, "barcode_type", func(fl validator.FieldLevel) bool {
			return BarcodeType(fl.Field().String()).Valid()
		})
		mustRegister(v, "category", func(fl validator.FieldLevel) bool {
			return Category(fl.Field().String()).Valid()
		})
		mustRegister(v, "decimal_range", validateDecimalRange)
		mustRegister(v, "decimal_scale", validateDecimalScale)
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("catalog: register %s: %v", tag, err))
	}
}

// decimal_range=<min> <max>, inclusive on both ends.
func validateDecimalRange(fl validator.FieldLevel) bool {
	value, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	bounds := strings.Fields(fl.Param())
	if len(bounds) != 2 {
		return false
	}
	lo, errLo := decimal.NewFromString(bounds[0])
	hi, errHi := decimal.NewFromString(bounds[1])
	if errLo != nil || errHi != nil {
		return false
	}
	return value.GreaterThanOrEqual(lo) && value.LessThanOrEqual(hi)
}

// decimal_scale=<n> rejects values with more than n fractional digits.
func validateDecimalScale(fl validator.FieldLevel) bool {
	value, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	var places int32
	if _, err := fmt.Sscan(fl.Param(), &places); err != nil {
		return false
	}
	return value.Equal(value.Truncate(places))
}

// ValidateProduct checks p field by field and returns the first violation
// as a *ValidationError. It performs no I/O.
func ValidateProduct(p Product) error {
	return firstViolation(structValidator().Struct(p))
}

// ValidateBarcode checks b field by field and returns the first violation
// as a *ValidationError. It performs no I/O.
func ValidateBarcode(b Barcode) error {
	return firstViolation(structValidator().Struct(b))
}

func firstViolation(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Reason: err.Error()}
	}
	fe := fieldErrs[0]
	return &ValidationError{Field: fe.Field(), Reason: reason(fe)}
}

var fieldLabels = map[string]string{
	"Product.Name":         "El nombre del producto",
	"Product.Brand":        "La marca",
	"Product.Category":     "La categoría",
	"Product.Price":        "El precio",
	"Product.Weight":       "El peso",
	"Product.Stock":        "El stock",
	"Barcode.Type":         "El tipo de código de barras",
	"Barcode.Value":        "El valor del código de barras",
	"Barcode.AssignedDate": "La fecha de asignación",
	"Barcode.Observations": "Las observaciones",
}

func reason(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.StructNamespace()]
	if !ok {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required", "notblank":
		return label + " no puede estar vacío."
	case "max":
		return fmt.Sprintf("%s no puede tener más de %s caracteres.", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s no puede ser negativo.", label)
	case "lte":
		return fmt.Sprintf("%s no puede ser mayor a %s.", label, fe.Param())
	case "barcode_type":
		return fmt.Sprintf("%s %q no es válido (EAN13, EAN8 o UPC).", label, fe.Value())
	case "category":
		return fmt.Sprintf("%s %q no es válida.", label, fe.Value())
	case "decimal_range":
		bounds := strings.Fields(fe.Param())
		if len(bounds) == 2 {
			return fmt.Sprintf("%s debe estar entre %s y %s.", label, bounds[0], bounds[1])
		}
	case "decimal_scale":
		return fmt.Sprintf("%s admite como máximo %s decimales.", label, fe.Param())
	}
	return fmt.Sprintf("%s no es válido (%s).", label, fe.Tag())
}
