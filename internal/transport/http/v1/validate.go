package http

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/yasserh/Gestiongarrage/internal/model"
)

var (
	telephoneRe = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	vinRe       = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Violations are reported against the JSON field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			if d.IsZero() {
				return ""
			}
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("telephone", func(fl validator.FieldLevel) bool {
		return telephoneRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("vin", func(fl validator.FieldLevel) bool {
		return vinRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("fueltype", func(fl validator.FieldLevel) bool {
		return model.FuelType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("accessorytype", func(fl validator.FieldLevel) bool {
		return model.AccessoryType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("dayofweek", func(fl validator.FieldLevel) bool {
		return model.DayOfWeek(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("openinghours", func(fl validator.FieldLevel) bool {
		_, err := model.ParseOpeningHours(fl.Field().String())
		return err == nil
	})

	return v
}

// validateRequest runs struct validation and aggregates every violation
// into "field: message" strings, never short-circuiting on the first one.
func validateRequest(req any) []string {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fmt.Sprintf("%s: %s", fieldName(fe), frenchMessage(fe)))
	}
	return details
}

func fieldName(fe validator.FieldError) string {
	// Namespace looks like "GarageRequest.openingHours[MONDAY]"; drop the
	// struct prefix.
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func frenchMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "ne doit pas être vide"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("doit contenir au moins %s caractères", fe.Param())
		}
		return fmt.Sprintf("doit être supérieur ou égal à %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("doit contenir au plus %s caractères", fe.Param())
		}
		return fmt.Sprintf("doit être inférieur ou égal à %s", fe.Param())
	case "email":
		return "doit être une adresse email valide"
	case "telephone":
		return "doit correspondre au format ^\\+?[0-9]{10,15}$"
	case "vin":
		return "doit contenir 17 caractères parmi [A-HJ-NPR-Z0-9]"
	case "fueltype":
		return "doit être l'un de ESSENCE, DIESEL, ELECTRIQUE, HYBRIDE, GPL"
	case "accessorytype":
		return "doit être l'un de INTERIEUR, EXTERIEUR, ELECTRONIQUE, SECURITE, CONFORT"
	case "dayofweek":
		return "doit être un jour de la semaine valide"
	case "openinghours":
		return "doit suivre le format HH:MM-HH:MM, plages séparées par des virgules"
	default:
		return fmt.Sprintf("ne satisfait pas la contrainte %q", fe.Tag())
	}
}

// validatePrice enforces the accessory price shape: strictly positive, at
// most 10 integer digits and 2 decimals.
func validatePrice(price decimal.Decimal) []string {
	var details []string

	if !price.IsPositive() {
		details = append(details, "price: doit être strictement positif")
	}
	if price.Exponent() < -2 {
		details = append(details, "price: au plus 2 décimales")
	}
	if integerDigits(price) > 10 {
		details = append(details, "price: au plus 10 chiffres avant la virgule")
	}

	return details
}

func integerDigits(d decimal.Decimal) int {
	s := d.Abs().Truncate(0).String()
	if s == "0" {
		return 0
	}
	return len(s)
}
