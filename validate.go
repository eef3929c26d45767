package payglocal

import (
	"fmt"
	"strings"
)

// ruleSet declares the pre-flight checks for one operation. Each facade
// method builds its own ruleSet at call time; nothing is persisted.
type ruleSet struct {
	// required lists dotted field paths that must resolve to a non-null
	// value, e.g. "paymentData.totalAmount".
	required []string

	// operation restricts one field to an enumerated set of values.
	operation *enumRule

	// conditionals are applied only when their trigger field resolves to
	// the trigger value.
	conditionals []conditionalRule

	// anyOf requires at least one of the listed paths to be present.
	anyOf []string

	// boolLiteral requires a field to be a bool with an exact value.
	boolLiteral *boolRule

	// schema enables the full structural check against paycollectSchema.
	schema bool
}

type enumRule struct {
	field   string
	allowed []string
}

type conditionalRule struct {
	triggerField string
	triggerValue string
	thenRequired []string
	thenAbsent   []string
}

type boolRule struct {
	field string
	want  bool
}

// validatePayload runs the rule set against the payload, short-circuiting
// on the first failure. It never mutates the payload.
func validatePayload(payload map[string]any, rules ruleSet) error {
	if payload == nil {
		return &ValidationError{Code: ValidationMissingField, Field: "payload"}
	}

	for _, path := range rules.required {
		if _, ok := lookupPath(payload, path); !ok {
			return &ValidationError{Code: ValidationMissingField, Field: path}
		}
	}

	if rules.operation != nil {
		v, _ := lookupPath(payload, rules.operation.field)
		if !containsString(rules.operation.allowed, stringValue(v)) {
			return &ValidationError{
				Code:     ValidationInvalidOperation,
				Field:    rules.operation.field,
				Expected: strings.Join(rules.operation.allowed, ", "),
				Actual:   stringValue(v),
			}
		}
	}

	for _, cond := range rules.conditionals {
		v, ok := lookupPath(payload, cond.triggerField)
		if !ok || stringValue(v) != cond.triggerValue {
			continue
		}
		for _, path := range cond.thenRequired {
			if _, ok := lookupPath(payload, path); !ok {
				return &ValidationError{Code: ValidationMissingField, Field: path}
			}
		}
		for _, path := range cond.thenAbsent {
			if _, ok := lookupPath(payload, path); ok {
				return &ValidationError{
					Code:     ValidationInvalidValue,
					Field:    path,
					Expected: fmt.Sprintf("absent when %s is %q", cond.triggerField, cond.triggerValue),
					Actual:   "present",
				}
			}
		}
	}

	if len(rules.anyOf) > 0 {
		found := false
		for _, path := range rules.anyOf {
			if _, ok := lookupPath(payload, path); ok {
				found = true
				break
			}
		}
		if !found {
			return &ValidationError{
				Code:  ValidationMissingField,
				Field: strings.Join(rules.anyOf, " or "),
			}
		}
	}

	if rules.boolLiteral != nil {
		v, ok := lookupPath(payload, rules.boolLiteral.field)
		if !ok {
			return &ValidationError{Code: ValidationMissingField, Field: rules.boolLiteral.field}
		}
		b, isBool := v.(bool)
		if !isBool || b != rules.boolLiteral.want {
			return &ValidationError{
				Code:     ValidationInvalidValue,
				Field:    rules.boolLiteral.field,
				Expected: fmt.Sprintf("%v", rules.boolLiteral.want),
				Actual:   fmt.Sprintf("%v", v),
			}
		}
	}

	if rules.schema {
		if err := validateSchema(payload); err != nil {
			return err
		}
	}

	return nil
}

// lookupPath resolves a dotted path through nested JSON objects.
// A missing segment or an explicit JSON null both count as absent.
func lookupPath(payload map[string]any, path string) (any, bool) {
	var current any = payload
	for _, segment := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[segment]
		if !ok || v == nil {
			return nil, false
		}
		current = v
	}
	return current, true
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func stringValue(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
