package customvalidator

import (
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var enums = map[string][]string{
	"equipment_status":   {"active", "maintenance", "inactive", "preparing_liquidation", "pending_liquidation", "disposed"},
	"maintenance_status": {"scheduled", "in_progress", "completed", "cancelled"},
	"incident_status":    {"reported", "investigating", "resolved", "closed"},
	"severity":           {"low", "medium", "high", "critical"},
	"priority":           {"low", "medium", "high", "critical"},
	"schedule_scope":     {"equipment", "type", "branch"},
}

// RegisterCustomValidations регистрирует все правила портала в переданном валидаторе.
func RegisterCustomValidations(v *validator.Validate) error {
	for tag, allowed := range enums {
		if err := v.RegisterValidation(tag, oneOfFunc(allowed)); err != nil {
			return err
		}
	}
	if err := v.RegisterValidation("trimmed_min", trimmedMin); err != nil {
		return err
	}
	return nil
}

func oneOfFunc(allowed []string) validator.Func {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return func(fl validator.FieldLevel) bool {
		value, ok := stringValue(fl.Field())
		if !ok {
			return true
		}
		_, found := set[value]
		return found
	}
}

// trimmedMin: длина строки без пробелов по краям не меньше параметра (в символах).
func trimmedMin(fl validator.FieldLevel) bool {
	value, ok := stringValue(fl.Field())
	if !ok {
		return false
	}
	min := 0
	for _, r := range fl.Param() {
		if r < '0' || r > '9' {
			return false
		}
		min = min*10 + int(r-'0')
	}
	return utf8.RuneCountInString(strings.TrimSpace(value)) >= min
}

// stringValue: nil-указатель считается "не задан" (ok=false).
func stringValue(field reflect.Value) (string, bool) {
	switch field.Kind() {
	case reflect.String:
		return field.String(), true
	case reflect.Ptr:
		if field.IsNil() {
			return "", false
		}
		return stringValue(field.Elem())
	}
	return "", false
}
