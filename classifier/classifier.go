// Package classifier selects the declarations that become binding fields
// and files type declarations by prefix.
package classifier

import (
	"regexp"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ardanlabs/fptrgen/parser"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Group selects functions by name prefix. Method groups usually keep the
// prefix so methods of different types stay distinct.
type Group struct {
	Prefix      string
	StripPrefix bool
	Comment     string
}

type Options struct {
	Groups             []Group
	ExcludeReturnTypes []string
	ExcludeTypes       []string
	TypePrefixes       []string

	// ByValueOnly limits ExcludeReturnTypes to functions returning the
	// type by value; pointer returns are kept.
	ByValueOnly bool

	Logger zerolog.Logger
}

type BindingEntry struct {
	Decl           parser.Declaration
	OriginalSymbol string
	Comment        string
	Group          int
}

// Field is the struct field name, the prefix already stripped if configured.
func (e BindingEntry) Field() string {
	return e.Decl.Name
}

type Result struct {
	Entries  []BindingEntry
	Structs  []parser.Declaration
	Typedefs []parser.Declaration
	Enums    []parser.Declaration
}

type Classifier struct {
	opts         Options
	excludedRet  map[string]bool
	excludedType map[string]bool
}

func New(opts Options) *Classifier {
	c := Classifier{
		opts:         opts,
		excludedRet:  make(map[string]bool, len(opts.ExcludeReturnTypes)),
		excludedType: make(map[string]bool, len(opts.ExcludeTypes)),
	}
	for _, name := range opts.ExcludeReturnTypes {
		c.excludedRet[name] = true
	}
	for _, name := range opts.ExcludeTypes {
		c.excludedType[name] = true
	}

	return &c
}

// Classify walks decls once per group and returns the binding entries in
// group order, then first-seen order. It fails on the first field name
// collision; no partial result is returned.
func (c *Classifier) Classify(decls []parser.Declaration) (*Result, error) {
	var res Result

	claimed := make(map[int]bool)
	for gi, g := range c.opts.Groups {
		entries, err := c.collect(gi, g, decls, claimed)
		if err != nil {
			return nil, err
		}
		res.Entries = append(res.Entries, entries...)
	}

	if err := checkDuplicates(res.Entries); err != nil {
		return nil, err
	}

	c.collectTypes(&res, decls)

	return &res, nil
}

func (c *Classifier) collect(gi int, g Group, decls []parser.Declaration, claimed map[int]bool) ([]BindingEntry, error) {
	log := c.opts.Logger.With().Str("group", g.Prefix).Logger()

	var entries []BindingEntry
	comment := g.Comment
	for i, d := range decls {
		if d.Kind != parser.KindFunction || claimed[i] {
			continue
		}
		if !strings.HasPrefix(d.Name, g.Prefix) {
			continue
		}
		if c.excludedReturn(d.ReturnType) {
			log.Debug().Str("symbol", d.Name).Str("return", d.ReturnType.String()).Msg("skipping excluded return type")
			continue
		}

		claimed[i] = true

		entry := BindingEntry{
			Decl:           d,
			OriginalSymbol: d.Name,
			Comment:        comment,
			Group:          gi,
		}
		comment = ""

		if g.StripPrefix {
			entry.Decl.Name = d.Name[len(g.Prefix):]
			if !identRe.MatchString(entry.Decl.Name) {
				return nil, &InvalidFieldError{Symbol: d.Name, Field: entry.Decl.Name, Pos: d.Pos}
			}
		}

		log.Debug().Str("symbol", entry.OriginalSymbol).Str("field", entry.Field()).Msg("selected")
		entries = append(entries, entry)
	}

	return entries, nil
}

func (c *Classifier) excludedReturn(ct parser.CType) bool {
	if !c.excludedRet[ct.Name] {
		return false
	}
	return !c.opts.ByValueOnly || !ct.IsPointer()
}

func checkDuplicates(entries []BindingEntry) error {
	seen := make(map[string]BindingEntry, len(entries))
	for _, e := range entries {
		if first, ok := seen[e.Field()]; ok {
			return &DuplicateFieldError{
				Field:  e.Field(),
				First:  first.OriginalSymbol,
				Second: e.OriginalSymbol,
				Pos:    e.Decl.Pos,
			}
		}
		seen[e.Field()] = e
	}
	return nil
}

// collectTypes files struct, typedef and enum declarations whose name has
// one of the type prefixes. A struct first seen opaque is replaced by its
// later definition.
func (c *Classifier) collectTypes(res *Result, decls []parser.Declaration) {
	if len(c.opts.TypePrefixes) == 0 {
		return
	}

	index := make(map[parser.Kind]map[string]int)
	for _, d := range decls {
		if !c.typeSelected(d) {
			continue
		}

		var list *[]parser.Declaration
		switch d.Kind {
		case parser.KindStruct:
			list = &res.Structs
		case parser.KindTypedef:
			list = &res.Typedefs
		case parser.KindEnum:
			list = &res.Enums
		default:
			continue
		}

		seen := index[d.Kind]
		if seen == nil {
			seen = make(map[string]int)
			index[d.Kind] = seen
		}
		if at, ok := seen[d.Name]; ok {
			if (*list)[at].IsOpaque && !d.IsOpaque {
				(*list)[at] = d
			}
			continue
		}
		seen[d.Name] = len(*list)
		*list = append(*list, d)
	}
}

func (c *Classifier) typeSelected(d parser.Declaration) bool {
	if c.excludedType[d.Name] {
		return false
	}
	return slices.ContainsFunc(c.opts.TypePrefixes, func(p string) bool {
		return strings.HasPrefix(d.Name, p)
	})
}
