// Package validate checks a citizen report form before anything leaves the
// service.
package validate

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"nrw-report-service/internal/model"
)

// Field names used as ErrorMap keys.
const (
	FieldFullName    = "fullName"
	FieldPhone       = "phone"
	FieldEmail       = "email"
	FieldDescription = "description"
	FieldLocation    = "location"
	FieldIssueType   = "issueType"
)

// Error codes.
const (
	CodeRequired = "required"
	CodeFormat   = "format"
	CodeTooShort = "too_short"
	CodeMissing  = "missing"
	CodeInvalid  = "invalid"
)

// MinDescriptionLength is the shortest accepted description, in characters.
const MinDescriptionLength = 20

var (
	phoneRx = regexp.MustCompile(`^[\d+\-\s()]{10,}$`)
	emailRx = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// FieldError is the single error reported for a field.
type FieldError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorMap holds at most one error per failing field.
type ErrorMap map[string]FieldError

// Valid reports whether no field failed.
func (m ErrorMap) Valid() bool {
	return len(m) == 0
}

// Validate applies the form rules and returns the failing fields. It has no
// side effects.
func Validate(form model.ReportFormData) ErrorMap {
	errs := ErrorMap{}

	if strings.TrimSpace(form.FullName) == "" {
		errs[FieldFullName] = FieldError{Code: CodeRequired, Message: "Full name is required"}
	}

	if strings.TrimSpace(form.Phone) == "" {
		errs[FieldPhone] = FieldError{Code: CodeRequired, Message: "Phone number is required"}
	} else if !phoneRx.MatchString(form.Phone) {
		errs[FieldPhone] = FieldError{Code: CodeFormat, Message: "Enter a valid phone number"}
	}

	if strings.TrimSpace(form.Email) == "" {
		errs[FieldEmail] = FieldError{Code: CodeRequired, Message: "Email is required"}
	} else if !emailRx.MatchString(form.Email) {
		errs[FieldEmail] = FieldError{Code: CodeFormat, Message: "Enter a valid email address"}
	}

	if strings.TrimSpace(form.Description) == "" {
		errs[FieldDescription] = FieldError{Code: CodeRequired, Message: "Description is required"}
	} else if utf8.RuneCountInString(form.Description) < MinDescriptionLength {
		errs[FieldDescription] = FieldError{Code: CodeTooShort, Message: "Please provide more details (at least 20 characters)"}
	}

	if form.Latitude == nil || form.Longitude == nil {
		errs[FieldLocation] = FieldError{Code: CodeMissing, Message: "Location is required"}
	} else if !inRange(*form.Latitude, 90) || !inRange(*form.Longitude, 180) {
		errs[FieldLocation] = FieldError{Code: CodeInvalid, Message: "Location is invalid, please capture it again"}
	}

	if !form.IssueType.Valid() {
		errs[FieldIssueType] = FieldError{Code: CodeInvalid, Message: "Select a valid issue type"}
	}

	return errs
}

func inRange(v, limit float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= -limit && v <= limit
}
