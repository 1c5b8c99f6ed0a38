package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation rule patterns
var (
	// Email validation pattern, matched case-insensitively
	EmailPattern = `(?i)^\S+@\S+$`

	// Digits only, used for phone numbers
	DigitsPattern = `^[0-9]+$`
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email  *regexp.Regexp
	Digits *regexp.Regexp
}{
	Email:  regexp.MustCompile(EmailPattern),
	Digits: regexp.MustCompile(DigitsPattern),
}

// Lookup reads the live value of another field. Conditional rules use it to
// decide whether they apply.
type Lookup func(field string) string

// Rule checks one value. An empty return means the value passed.
type Rule interface {
	Check(value string, lookup Lookup) string
}

// RuleFunc adapts a function to Rule
type RuleFunc func(value string, lookup Lookup) string

func (f RuleFunc) Check(value string, lookup Lookup) string { return f(value, lookup) }

// Required fails on blank values
func Required(message string) Rule {
	return RuleFunc(func(value string, _ Lookup) string {
		if strings.TrimSpace(value) == "" {
			return message
		}
		return ""
	})
}

// RequiredIf fails on blank values while cond holds
func RequiredIf(cond func(Lookup) bool, message string) Rule {
	return RuleFunc(func(value string, lookup Lookup) string {
		if lookup == nil || !cond(lookup) {
			return ""
		}
		if strings.TrimSpace(value) == "" {
			return message
		}
		return ""
	})
}

// FieldEquals is a RequiredIf condition on another field's value
func FieldEquals(field, want string) func(Lookup) bool {
	return func(lookup Lookup) bool { return lookup(field) == want }
}

// FieldNotEquals is a RequiredIf condition on another field's value
func FieldNotEquals(field, want string) func(Lookup) bool {
	return func(lookup Lookup) bool { return lookup(field) != want }
}

// MinLength counts characters, not bytes
func MinLength(min int, message string) Rule {
	return RuleFunc(func(value string, _ Lookup) string {
		if value != "" && utf8.RuneCountInString(value) < min {
			return message
		}
		return ""
	})
}

// MaxLength counts characters, not bytes
func MaxLength(max int, message string) Rule {
	return RuleFunc(func(value string, _ Lookup) string {
		if value != "" && utf8.RuneCountInString(value) > max {
			return message
		}
		return ""
	})
}

// Pattern fails when a non-empty value does not match re
func Pattern(re *regexp.Regexp, message string) Rule {
	return RuleFunc(func(value string, _ Lookup) string {
		if value != "" && !re.MatchString(value) {
			return message
		}
		return ""
	})
}

// OneOf restricts a non-empty value to a closed set
func OneOf(label string, allowed []string) Rule {
	message := fmt.Sprintf("%s must be one of: %s", label, strings.Join(allowed, ", "))
	return RuleFunc(func(value string, _ Lookup) string {
		if value == "" {
			return ""
		}
		for _, a := range allowed {
			if a == value {
				return ""
			}
		}
		return message
	})
}

// FieldRules is the ordered rule list of one field
type FieldRules []Rule

// Validate returns the first failing rule's message, or "" when valid
func (rs FieldRules) Validate(value string, lookup Lookup) string {
	for _, r := range rs {
		if msg := r.Check(value, lookup); msg != "" {
			return msg
		}
	}
	return ""
}

// Result is the outcome of validating one field
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// Evaluate wraps Validate into a Result
func (rs FieldRules) Evaluate(value string, lookup Lookup) Result {
	msg := rs.Validate(value, lookup)
	return Result{Valid: msg == "", Message: msg}
}
