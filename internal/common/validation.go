package common

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Rule checks one string input and returns a problem description, or "" when
// the value is acceptable.
type Rule func(value string) string

// FieldError names the request field a rule rejected.
type FieldError struct {
	Field   string
	Value   string
	Problem string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %q %s", e.Field, e.Value, e.Problem)
}

// Checks collects rule failures across the fields of a single request.
type Checks struct {
	failed []FieldError
}

func NewChecks() *Checks { return &Checks{} }

// Check runs rules against value in order and records the first failure only,
// so a blank field is not also reported as malformed.
func (c *Checks) Check(field, value string, rules ...Rule) *Checks {
	for _, rule := range rules {
		if problem := rule(value); problem != "" {
			c.failed = append(c.failed, FieldError{Field: field, Value: value, Problem: problem})
			break
		}
	}
	return c
}

func (c *Checks) Failures() []FieldError { return c.failed }

func (c *Checks) summary() string {
	parts := make([]string, len(c.failed))
	for i, f := range c.failed {
		parts[i] = f.Error()
	}
	return strings.Join(parts, "; ")
}

// Err reports the failures as a VALIDATION_ERROR wrapping ErrValidation.
func (c *Checks) Err() error {
	if len(c.failed) == 0 {
		return nil
	}
	return NewAppError("VALIDATION_ERROR", c.summary(), ErrValidation)
}

// Status reports the failures as a gRPC InvalidArgument status.
func (c *Checks) Status() error {
	if len(c.failed) == 0 {
		return nil
	}
	return InvalidArgumentError(c.summary())
}

func NotBlank(value string) string {
	if strings.TrimSpace(value) == "" {
		return "is required"
	}
	return ""
}

func MaxRunes(n int) Rule {
	return func(value string) string {
		if utf8.RuneCountInString(value) > n {
			return fmt.Sprintf("exceeds %d characters", n)
		}
		return ""
	}
}

func IsUUID(value string) string {
	if _, err := uuid.Parse(value); err != nil {
		return "is not a UUID"
	}
	return ""
}

// IsDate accepts "" or a calendar date such as 2024-02-29.
func IsDate(value string) string {
	if value == "" {
		return ""
	}
	if _, err := time.Parse(time.DateOnly, value); err != nil {
		return "is not a YYYY-MM-DD date"
	}
	return ""
}

func OneOf(allowed ...string) Rule {
	return func(value string) string {
		for _, a := range allowed {
			if value == a {
				return ""
			}
		}
		return "must be one of " + strings.Join(allowed, ", ")
	}
}
