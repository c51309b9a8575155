package generator

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/ardanlabs/fptrgen/classifier"
)

// ErrNoEntries is returned when there is nothing to bind; an empty struct
// is not valid C.
var ErrNoEntries = errors.New("no declarations selected")

const (
	DefaultStructName   = "rizz_api_imgui"
	DefaultInstanceName = "the__imgui"
	DefaultIndent       = "    "
	DefaultAlign        = 14
)

var structTmpl = template.Must(template.New("struct").Parse(`typedef struct {{.Name}}
{
{{.Body}}
} {{.Name}};
`))

var tableTmpl = template.Must(template.New("table").Parse(`{{.Name}} {{.Instance}} = {
{{.Body}}
};
`))

type Options struct {
	StructName   string
	InstanceName string
	Indent       string

	// Align pads the return type column; zero disables padding.
	Align int
}

func DefaultOptions() Options {
	return Options{
		StructName:   DefaultStructName,
		InstanceName: DefaultInstanceName,
		Indent:       DefaultIndent,
		Align:        DefaultAlign,
	}
}

type Generator struct {
	opts    Options
	entries []classifier.BindingEntry
}

func New(opts Options, entries []classifier.BindingEntry) *Generator {
	return &Generator{
		opts:    opts,
		entries: entries,
	}
}

// Output holds the two generated blocks. Both list the entries in the same
// order so they can be checked against each other line by line.
type Output struct {
	Struct string
	Table  string
}

func (o *Output) Bytes() []byte {
	return []byte(o.Struct + "\n" + o.Table)
}

func (g *Generator) Generate() (*Output, error) {
	if len(g.entries) == 0 {
		return nil, ErrNoEntries
	}

	structCode, err := g.generateStruct()
	if err != nil {
		return nil, fmt.Errorf("generating struct: %w", err)
	}

	tableCode, err := g.generateTable()
	if err != nil {
		return nil, fmt.Errorf("generating table: %w", err)
	}

	return &Output{Struct: structCode, Table: tableCode}, nil
}

func (g *Generator) generateStruct() (string, error) {
	var lines []string
	for _, e := range g.entries {
		field, err := Rewrite(e.Decl)
		if err != nil {
			return "", fmt.Errorf("%s: %w", e.OriginalSymbol, err)
		}

		if e.Comment != "" {
			lines = append(lines, g.opts.Indent+"// "+e.Comment)
		}
		lines = append(lines, fmt.Sprintf("%s%-*s %s;", g.opts.Indent, g.opts.Align, field.ReturnType, field.Declarator()))
	}

	return render(structTmpl, map[string]string{
		"Name": g.opts.StructName,
		"Body": strings.Join(lines, "\n"),
	})
}

func (g *Generator) generateTable() (string, error) {
	lines := make([]string, 0, len(g.entries))
	for _, e := range g.entries {
		lines = append(lines, fmt.Sprintf("%s.%s = %s", g.opts.Indent, e.Field(), e.OriginalSymbol))
	}

	return render(tableTmpl, map[string]string{
		"Name":     g.opts.StructName,
		"Instance": g.opts.InstanceName,
		"Body":     strings.Join(lines, ",\n"),
	})
}

func render(t *template.Template, data map[string]string) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
