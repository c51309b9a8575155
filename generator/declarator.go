package generator

import (
	"fmt"
	"strings"

	"github.com/ardanlabs/fptrgen/parser"
)

// UnsupportedDeclaratorError is returned when a declaration cannot be turned
// into a function-pointer field.
type UnsupportedDeclaratorError struct {
	Name   string
	Pos    parser.Position
	Reason string
}

func (e *UnsupportedDeclaratorError) Error() string {
	return fmt.Sprintf("%d:%d: cannot rewrite %s: %s", e.Pos.Line, e.Pos.Column, e.Name, e.Reason)
}

// Field is a function-pointer struct member split into its return type
// column and the pointer declarator.
type Field struct {
	ReturnType string
	Name       string
	Params     string

	// Spliced holds the whole member when the return type could not be
	// modelled structurally, e.g. "int (*(*getfn)(void))(int)".
	Spliced string
}

func (f Field) Declarator() string {
	if f.Spliced != "" {
		return f.Spliced
	}
	return "(*" + f.Name + ")" + f.Params
}

func (f Field) String() string {
	if f.Spliced != "" {
		return f.ReturnType + " " + f.Spliced
	}
	return f.ReturnType + " " + f.Declarator()
}

// Rewrite turns a function declaration "ReturnType name(params)" into the
// member "ReturnType (*name)(params)". Pointer markers of the return type are
// moved as a unit next to the return type token, one space on each side:
// "char **name(int)" becomes "char ** (*name)(int)".
func Rewrite(d parser.Declaration) (Field, error) {
	if d.Kind != parser.KindFunction {
		return Field{}, unsupported(d, fmt.Sprintf("%s is not a function", d.Kind))
	}
	if d.Name == "" {
		return Field{}, unsupported(d, "empty field name")
	}

	if d.ReturnType.Name == "" {
		return Field{}, unsupported(d, "anonymous return type")
	}

	if d.ReturnType.Complex {
		return splice(d)
	}

	return Field{
		ReturnType: d.ReturnType.String(),
		Name:       d.Name,
		Params:     d.ParamList(),
	}, nil
}

// splice replaces the identifier inside the original declarator with
// "(*name)". The identifier is located by the offset the parser recorded,
// and must be followed by the parameter list's opening parenthesis.
func splice(d parser.Declaration) (Field, error) {
	decl := d.Declarator
	at := d.NameOffset
	if decl == "" || at < 0 || at >= len(decl) {
		return Field{}, unsupported(d, "no declarator anchor")
	}

	end := identEnd(decl, at)
	if end == at || !strings.HasSuffix(decl[at:end], d.Name) {
		return Field{}, unsupported(d, "no identifier at anchor")
	}
	rest := strings.TrimLeft(decl[end:], " ")
	if !strings.HasPrefix(rest, "(") {
		return Field{}, unsupported(d, "identifier is not followed by a parameter list")
	}

	return Field{
		ReturnType: d.ReturnType.Base(),
		Name:       d.Name,
		Spliced:    decl[:at] + "(*" + d.Name + ")" + rest,
	}, nil
}

// identEnd returns the end of the identifier starting at i, or i if there
// is none.
func identEnd(s string, i int) int {
	j := i
	for j < len(s) {
		ch := s[j]
		isLetter := ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
		if !isLetter && !(j > i && ch >= '0' && ch <= '9') {
			break
		}
		j++
	}
	return j
}

func unsupported(d parser.Declaration, reason string) error {
	return &UnsupportedDeclaratorError{Name: d.Name, Pos: d.Pos, Reason: reason}
}
