package parser

import (
	"slices"
	"strings"
)

type Kind int

const (
	KindFunction Kind = iota
	KindStruct
	KindTypedef
	KindEnum
	KindVariable
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindStruct:
		return "struct"
	case KindTypedef:
		return "typedef"
	case KindEnum:
		return "enum"
	case KindVariable:
		return "variable"
	}
	return "unknown"
}

// Pointer is one level of indirection and the qualifiers written after its '*'.
type Pointer struct {
	Qualifiers []string
}

type CType struct {
	Name       string
	Tag        string
	IsConst    bool
	IsUnsigned bool
	Pointers   []Pointer

	// Qualifiers lists the qualifiers of the base type in source order,
	// e.g. "volatile" or "_Atomic".
	Qualifiers []string

	// Complex is set when the declarator derives arrays or functions from
	// the type, e.g. a function returning a function pointer.
	Complex bool
}

func (ct CType) IsPointer() bool {
	return len(ct.Pointers) > 0
}

func (ct CType) PointerDepth() int {
	return len(ct.Pointers)
}

// Base renders the type without pointer markers: "const char", "struct ImFont".
func (ct CType) Base() string {
	var parts []string
	if ct.IsConst && !slices.Contains(ct.Qualifiers, "const") {
		parts = append(parts, "const")
	}
	parts = append(parts, ct.Qualifiers...)
	if ct.Tag != "" {
		parts = append(parts, ct.Tag)
	}
	parts = append(parts, ct.Name)

	return strings.Join(parts, " ")
}

// Stars renders the pointer markers as a unit: "*", "**", "* const *".
func (ct CType) Stars() string {
	var b strings.Builder
	for i, p := range ct.Pointers {
		if i > 0 && len(ct.Pointers[i-1].Qualifiers) > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('*')
		for _, q := range p.Qualifiers {
			b.WriteByte(' ')
			b.WriteString(q)
		}
	}

	return b.String()
}

func (ct CType) String() string {
	if !ct.IsPointer() {
		return ct.Base()
	}
	return ct.Base() + " " + ct.Stars()
}

type Param struct {
	Name string
	Type CType
	Text string
}

type Position struct {
	Line   int
	Column int
}

// Declaration is one top-level declaration of the translation unit. For
// functions ReturnType is the return type, for typedefs and variables it is
// the declared type.
type Declaration struct {
	Kind         Kind
	Name         string
	StorageClass string
	ReturnType   CType
	Params       []Param
	IsVariadic   bool
	IsOpaque     bool
	Declarator   string
	NameOffset   int
	Pos          Position
}

// ParamList renders the parameter list including parentheses.
func (d Declaration) ParamList() string {
	texts := make([]string, 0, len(d.Params)+1)
	for _, p := range d.Params {
		texts = append(texts, p.Text)
	}
	if d.IsVariadic {
		texts = append(texts, "...")
	}

	return "(" + strings.Join(texts, ", ") + ")"
}

type Header struct {
	Declarations []Declaration
}

func (h *Header) Functions() []Declaration {
	return h.filter(KindFunction)
}

func (h *Header) Structs() []Declaration {
	return h.filter(KindStruct)
}

func (h *Header) TypeDefs() []Declaration {
	return h.filter(KindTypedef)
}

func (h *Header) Enums() []Declaration {
	return h.filter(KindEnum)
}

func (h *Header) filter(kind Kind) []Declaration {
	var out []Declaration
	for _, d := range h.Declarations {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}
