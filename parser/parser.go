package parser

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
)

var multiSpaceRe = regexp.MustCompile(`\s+`)

const snippetLen = 40

var declaratorTypes = map[string]bool{
	"identifier":                        true,
	"type_identifier":                   true,
	"primitive_type":                    true,
	"pointer_declarator":                true,
	"function_declarator":               true,
	"array_declarator":                  true,
	"parenthesized_declarator":          true,
	"attributed_declarator":             true,
	"init_declarator":                   true,
	"abstract_pointer_declarator":       true,
	"abstract_function_declarator":      true,
	"abstract_array_declarator":         true,
	"abstract_parenthesized_declarator": true,
}

// ParseFile reads and parses a preprocessed translation unit from disk.
func ParseFile(ctx context.Context, path string) (*Header, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return Parse(ctx, content)
}

// Parse parses a preprocessed translation unit and returns its top-level
// declarations in source order.
func Parse(ctx context.Context, content []byte) (*Header, error) {
	p := sitter.NewParser()
	p.SetLanguage(c.GetLanguage())

	tree, err := p.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parsing translation unit: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxError(root, content)
	}

	w := walker{src: content, header: &Header{}}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		if err := w.topLevel(root.NamedChild(i)); err != nil {
			return nil, err
		}
	}

	return w.header, nil
}

type walker struct {
	src    []byte
	header *Header
}

func (w *walker) topLevel(n *sitter.Node) error {
	switch n.Type() {
	case "comment":
		return nil
	case "declaration", "function_definition":
		return w.declaration(n)
	case "type_definition":
		return w.typeDefinition(n)
	case "struct_specifier", "union_specifier", "enum_specifier":
		w.tagged(n, true)
		return nil
	}

	return w.errorAt(n, "unsupported top-level node")
}

// declaration handles both prototypes and definitions. Each declarator
// yields its own Declaration.
func (w *walker) declaration(n *sitter.Node) error {
	spec := w.specifiers(n)
	if spec.typeNode != nil {
		w.tagged(spec.typeNode, false)
	}

	declarators := w.declarators(n, spec.typeNode)
	if len(declarators) == 0 {
		return w.errorAt(n, "declaration without declarator")
	}

	for _, dn := range declarators {
		d, err := w.declarator(dn, spec)
		if err != nil {
			return err
		}
		d.StorageClass = spec.storage
		d.Pos = position(n)
		w.header.Declarations = append(w.header.Declarations, d)
	}

	return nil
}

func (w *walker) typeDefinition(n *sitter.Node) error {
	spec := w.specifiers(n)
	if spec.typeNode != nil {
		w.tagged(spec.typeNode, true)
	}

	declarators := w.declarators(n, spec.typeNode)
	if len(declarators) == 0 {
		return w.errorAt(n, "typedef without name")
	}

	for _, dn := range declarators {
		d, err := w.declarator(dn, spec)
		if err != nil {
			return err
		}
		d.Kind = KindTypedef
		d.Params = nil
		d.IsVariadic = false
		d.Pos = position(n)
		w.header.Declarations = append(w.header.Declarations, d)
	}

	return nil
}

// tagged records a struct, union or enum specifier that carries a name.
// Bodiless references are only recorded when standalone or typedef'd.
func (w *walker) tagged(n *sitter.Node, allowOpaque bool) {
	var kind Kind
	switch n.Type() {
	case "struct_specifier", "union_specifier":
		kind = KindStruct
	case "enum_specifier":
		kind = KindEnum
	default:
		return
	}

	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	body := n.ChildByFieldName("body")
	if body == nil && !allowOpaque {
		return
	}

	w.header.Declarations = append(w.header.Declarations, Declaration{
		Kind: kind,
		Name: name.Content(w.src),
		ReturnType: CType{
			Name: name.Content(w.src),
			Tag:  strings.TrimSuffix(n.Type(), "_specifier"),
		},
		IsOpaque: body == nil,
		Pos:      position(n),
	})
}

type specifiers struct {
	typeNode *sitter.Node
	ctype    CType
	storage  string
}

func (w *walker) specifiers(n *sitter.Node) specifiers {
	var s specifiers
	s.typeNode = n.ChildByFieldName("type")
	if s.typeNode != nil {
		s.ctype = w.baseType(s.typeNode)
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "type_qualifier":
			q := child.Content(w.src)
			if q == "const" {
				s.ctype.IsConst = true
			}
			if !slices.Contains(s.ctype.Qualifiers, q) {
				s.ctype.Qualifiers = append(s.ctype.Qualifiers, q)
			}
		case "storage_class_specifier":
			if s.storage != "" {
				s.storage += " "
			}
			s.storage += child.Content(w.src)
		}
	}

	return s
}

func (w *walker) baseType(n *sitter.Node) CType {
	switch n.Type() {
	case "struct_specifier", "union_specifier", "enum_specifier":
		ct := CType{Tag: strings.TrimSuffix(n.Type(), "_specifier")}
		if name := n.ChildByFieldName("name"); name != nil {
			ct.Name = name.Content(w.src)
		}
		return ct
	case "sized_type_specifier":
		text := collapse(n.Content(w.src))
		return CType{
			Name:       text,
			IsUnsigned: strings.Contains(text, "unsigned"),
		}
	}

	return CType{Name: collapse(n.Content(w.src))}
}

// declarators returns the named declarator children of n, skipping the
// type specifier, which can share a node type with a typedef name.
func (w *walker) declarators(n, typeNode *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if !declaratorTypes[child.Type()] {
			continue
		}
		if typeNode != nil && child.StartByte() == typeNode.StartByte() {
			continue
		}
		out = append(out, child)
	}
	return out
}

type derivation struct {
	kind string
	node *sitter.Node
}

type unwrapped struct {
	ident  *sitter.Node
	derivs []derivation
}

// unwrap descends a (possibly abstract) declarator, recording derivations
// from the outermost inward. ident is nil for abstract declarators.
func (w *walker) unwrap(n *sitter.Node) (unwrapped, error) {
	var u unwrapped
	for n != nil {
		switch n.Type() {
		case "identifier", "type_identifier", "primitive_type", "field_identifier":
			u.ident = n
			return u, nil
		case "pointer_declarator", "abstract_pointer_declarator":
			u.derivs = append(u.derivs, derivation{kind: "pointer", node: n})
			n = n.ChildByFieldName("declarator")
		case "function_declarator", "abstract_function_declarator":
			u.derivs = append(u.derivs, derivation{kind: "function", node: n})
			n = n.ChildByFieldName("declarator")
		case "array_declarator", "abstract_array_declarator":
			u.derivs = append(u.derivs, derivation{kind: "array", node: n})
			n = n.ChildByFieldName("declarator")
		case "init_declarator":
			n = n.ChildByFieldName("declarator")
		case "parenthesized_declarator", "abstract_parenthesized_declarator", "attributed_declarator":
			n = innerDeclarator(n)
		default:
			return u, w.errorAt(n, "unsupported declarator")
		}
	}

	return u, nil
}

func innerDeclarator(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if declaratorTypes[child.Type()] {
			return child
		}
	}
	return nil
}

func (w *walker) declarator(n *sitter.Node, spec specifiers) (Declaration, error) {
	u, err := w.unwrap(n)
	if err != nil {
		return Declaration{}, err
	}
	if u.ident == nil {
		return Declaration{}, w.errorAt(n, "declarator without identifier")
	}

	d := Declaration{
		Kind:       KindVariable,
		Name:       u.ident.Content(w.src),
		ReturnType: spec.ctype,
	}

	typeDerivs := u.derivs
	if last := len(u.derivs) - 1; last >= 0 && u.derivs[last].kind == "function" {
		d.Kind = KindFunction
		typeDerivs = u.derivs[:last]

		params, variadic, err := w.params(u.derivs[last].node)
		if err != nil {
			return Declaration{}, err
		}
		d.Params = params
		d.IsVariadic = variadic

		target := n
		if n.Type() == "init_declarator" {
			target = n.ChildByFieldName("declarator")
		}
		d.Declarator, d.NameOffset = w.spliceable(target, u.ident)
	}

	w.applyDerivations(&d.ReturnType, typeDerivs)

	return d, nil
}

// applyDerivations adds pointer levels to ct. Once anything other than a
// pointer shows up, the type can no longer be described as base plus stars.
func (w *walker) applyDerivations(ct *CType, derivs []derivation) {
	for _, dv := range derivs {
		if dv.kind != "pointer" {
			ct.Complex = true
			continue
		}
		var p Pointer
		for i := 0; i < int(dv.node.NamedChildCount()); i++ {
			child := dv.node.NamedChild(i)
			if child.Type() == "type_qualifier" {
				p.Qualifiers = append(p.Qualifiers, child.Content(w.src))
			}
		}
		ct.Pointers = append(ct.Pointers, p)
	}
}

func (w *walker) params(fn *sitter.Node) ([]Param, bool, error) {
	list := fn.ChildByFieldName("parameters")
	if list == nil {
		return nil, false, w.errorAt(fn, "function declarator without parameter list")
	}

	var params []Param
	variadic := false
	for i := 0; i < int(list.NamedChildCount()); i++ {
		child := list.NamedChild(i)
		switch child.Type() {
		case "comment":
			continue
		case "variadic_parameter":
			variadic = true
			continue
		case "parameter_declaration":
		default:
			return nil, false, w.errorAt(child, "unsupported parameter")
		}

		spec := w.specifiers(child)
		p := Param{
			Type: spec.ctype,
			Text: collapse(child.Content(w.src)),
		}
		if dn := child.ChildByFieldName("declarator"); dn != nil {
			u, err := w.unwrap(dn)
			if err != nil {
				return nil, false, err
			}
			if u.ident != nil {
				p.Name = u.ident.Content(w.src)
			}
			w.applyDerivations(&p.Type, u.derivs)
		}
		params = append(params, p)
	}

	// A bare "..." can also surface as an anonymous token.
	if !variadic {
		for i := 0; i < int(list.ChildCount()); i++ {
			if list.Child(i).Type() == "..." {
				variadic = true
			}
		}
	}

	return params, variadic, nil
}

// spliceable returns the whitespace-collapsed declarator text and the byte
// offset of the identifier within it.
func (w *walker) spliceable(decl, ident *sitter.Node) (string, int) {
	left := collapse(string(w.src[decl.StartByte():ident.StartByte()]))
	right := collapse(string(w.src[ident.EndByte():decl.EndByte()]))

	return left + ident.Content(w.src) + right, len(left)
}

func (w *walker) errorAt(n *sitter.Node, reason string) error {
	return &ParseError{
		Pos:     position(n),
		Node:    n.Type(),
		Snippet: snippet(n.Content(w.src)),
		Reason:  reason,
	}
}

func syntaxError(root *sitter.Node, src []byte) error {
	bad := firstError(root)
	if bad == nil {
		bad = root
	}

	reason := "syntax error"
	if bad.IsMissing() {
		reason = fmt.Sprintf("missing %q", bad.Type())
	}

	return &ParseError{
		Pos:     position(bad),
		Snippet: snippet(bad.Content(src)),
		Reason:  reason,
	}
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if bad := firstError(n.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}

func position(n *sitter.Node) Position {
	pt := n.StartPoint()
	return Position{Line: int(pt.Row) + 1, Column: int(pt.Column) + 1}
}

func collapse(s string) string {
	return multiSpaceRe.ReplaceAllString(s, " ")
}

func snippet(s string) string {
	s = strings.TrimSpace(collapse(s))
	if r := []rune(s); len(r) > snippetLen {
		s = string(r[:snippetLen]) + "..."
	}
	return s
}
