// Package inputval provides form input validation using waffle/pantry/validate.
//
// Define an input struct with validate tags, populate it from form values,
// and call Validate to get visitor-friendly messages.
//
//	type ContactInput struct {
//	    Name  string `json:"name" validate:"required,max=200" label:"Name"`
//	    Email string `json:"email" validate:"required,email" label:"Email"`
//	    Phone string `json:"phone" validate:"phone" label:"Phone"`
//	}
//
//	if res := inputval.Validate(input); res.HasErrors() {
//	    renderWithError(w, r, res.First())
//	    return
//	}
package inputval

import (
	"net/mail"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/dalemusser/ecorecycle/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/validate"
)

// Result holds validation results with user-friendly messages.
type Result struct {
	Errors []FieldError
}

// FieldError represents a validation error for a single field.
type FieldError struct {
	Field   string
	Label   string
	Message string
}

// HasErrors returns true if there are any validation errors.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// First returns the first error message, or empty string if no errors.
func (r *Result) First() string {
	if len(r.Errors) > 0 {
		return r.Errors[0].Message
	}
	return ""
}

var (
	customValidator *validate.Validator
	validatorOnce   sync.Once
)

// stringRule adapts a string predicate to a rule func. Empty values pass;
// presence is the job of "required".
func stringRule(fn func(string) bool) func(any) bool {
	return func(value any) bool {
		s, ok := value.(string)
		if !ok {
			return false
		}
		if strings.TrimSpace(s) == "" {
			return true
		}
		return fn(s)
	}
}

func getValidator() *validate.Validator {
	validatorOnce.Do(func() {
		customValidator = validate.New(validate.WithStopOnFirstError())
		customValidator.RegisterRuleFunc("phone", stringRule(IsValidPhone), "phone")
		customValidator.RegisterRuleFunc("amount", stringRule(IsValidAmount), "amount")
		customValidator.RegisterRuleFunc("subject", stringRule(models.IsValidContactSubject), "subject")
		customValidator.RegisterRuleFunc("httpurl", stringRule(IsValidHTTPURL), "httpurl")
	})
	return customValidator
}

// Validate validates a struct and returns a Result with user-friendly errors.
// Field names come from json tags and labels from label tags.
//
// Rules from pantry/validate: required, email, oneof, min, max, timezone.
// Rules registered here:
//   - phone: 7 to 15 digits, optionally with + ( ) - . and spaces
//   - amount: a positive amount with at most two decimals
//   - subject: one of the contact form subjects
//   - httpurl: an http:// or https:// URL
func Validate(s any) *Result {
	result := &Result{}

	err := getValidator().Struct(s)
	if err == nil {
		return result
	}

	labels := getFieldLabels(s)

	if errs, ok := err.(validate.Errors); ok {
		for _, e := range errs {
			label := labels[e.Field]
			if label == "" {
				label = e.Field
			}
			result.Errors = append(result.Errors, FieldError{
				Field:   e.Field,
				Label:   label,
				Message: formatMessage(label, e.Rule, e.Param),
			})
		}
	}

	return result
}

// getFieldLabels extracts the "label" tag from struct fields, keyed by
// json name when present.
func getFieldLabels(s any) map[string]string {
	labels := make(map[string]string)

	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return labels
	}

	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		fieldName := field.Name
		if jsonTag := field.Tag.Get("json"); jsonTag != "" {
			parts := strings.Split(jsonTag, ",")
			if parts[0] != "" && parts[0] != "-" {
				fieldName = parts[0]
			}
		}

		if label := field.Tag.Get("label"); label != "" {
			labels[fieldName] = label
		}
	}

	return labels
}

func formatMessage(label, rule, param string) string {
	switch rule {
	case "required":
		return label + " is required."
	case "email":
		return "A valid email address is required."
	case "oneof", "enum":
		return label + " must be one of: " + strings.ReplaceAll(param, " ", ", ") + "."
	case "min":
		return label + " must be at least " + param + " characters."
	case "max":
		return label + " must be at most " + param + " characters."
	case "phone":
		return "Please enter a valid phone number."
	case "amount":
		return "Please enter a valid amount."
	case "subject":
		return "Please choose a subject."
	case "httpurl":
		return label + " must be a valid URL starting with http:// or https://."
	default:
		return label + " is invalid."
	}
}

// IsValidEmail checks if the given string is a bare RFC 5322 address.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	// ParseAddress accepts "Name <email>"; only the bare address is allowed.
	return addr.Address == email
}

var phoneChars = regexp.MustCompile(`^\+?[0-9 ()\-.]+$`)

// IsValidPhone accepts 7 to 15 digits with common separators.
func IsValidPhone(s string) bool {
	s = strings.TrimSpace(s)
	if !phoneChars.MatchString(s) {
		return false
	}
	digits := 0
	for _, c := range s {
		if c >= '0' && c <= '9' {
			digits++
		}
	}
	return digits >= 7 && digits <= 15
}

var amountPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]{1,2})?$`)

// IsValidAmount accepts a positive amount with at most two decimals.
func IsValidAmount(s string) bool {
	s = strings.TrimSpace(s)
	if !amountPattern.MatchString(s) {
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && f > 0
}

// IsValidHTTPURL checks if the given string is a valid http:// or https:// URL.
func IsValidHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
