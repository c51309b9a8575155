package classifier

import (
	"fmt"

	"github.com/ardanlabs/fptrgen/parser"
)

// DuplicateFieldError reports two symbols that map to the same struct field.
type DuplicateFieldError struct {
	Field  string
	First  string
	Second string
	Pos    parser.Position
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("%d:%d: field %q of %s collides with %s",
		e.Pos.Line, e.Pos.Column, e.Field, e.Second, e.First)
}

// InvalidFieldError reports a stripped name that is not a usable C identifier.
type InvalidFieldError struct {
	Symbol string
	Field  string
	Pos    parser.Position
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("%d:%d: %s strips to invalid field name %q",
		e.Pos.Line, e.Pos.Column, e.Symbol, e.Field)
}
