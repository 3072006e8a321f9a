package tokenizer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument is returned when a public operation gets a value it can't use.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidRule is wrapped by every RuleValidationError.
	ErrInvalidRule = errors.New("invalid tokenizer rule")
)

// RuleValidationError lists every problem found while building a Rule.
type RuleValidationError struct {
	Type     TokenType
	Pattern  string
	Problems []string
}

func (e *RuleValidationError) Error() string {
	return fmt.Sprintf("token rule (%s) for '%s' is not valid:\n%s", e.Pattern, e.Type, strings.Join(e.Problems, "\n"))
}

func (e *RuleValidationError) Unwrap() error {
	return ErrInvalidRule
}
