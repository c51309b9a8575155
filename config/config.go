// Package config loads the generator configuration: prefix groups,
// exclusion lists and output naming.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ardanlabs/fptrgen/classifier"
	"github.com/ardanlabs/fptrgen/generator"
)

//go:embed default.yaml
var defaultYAML []byte

var cIdentRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Group struct {
	Prefix      string `yaml:"prefix" validate:"required,c_ident"`
	StripPrefix bool   `yaml:"strip_prefix"`
	Comment     string `yaml:"comment"`
}

type Config struct {
	StructName         string   `yaml:"struct_name" validate:"required,c_ident"`
	InstanceName       string   `yaml:"instance_name" validate:"required,c_ident"`
	Indent             string   `yaml:"indent"`
	Align              int      `yaml:"align" validate:"gte=0,lte=80"`
	Groups             []Group  `yaml:"groups" validate:"required,min=1,dive"`
	ExcludeReturnTypes []string `yaml:"exclude_return_types" validate:"dive,required"`
	ExcludeTypes       []string `yaml:"exclude_types" validate:"dive,required"`
	TypePrefixes       []string `yaml:"type_prefixes" validate:"dive,required"`
	ByValueOnly        bool     `yaml:"by_value_only"`
}

// Default returns the embedded configuration for the cimgui bindings.
func Default() (*Config, error) {
	return Decode(bytes.NewReader(defaultYAML))
}

// Load reads a configuration file. An empty path yields the default.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Decode parses and validates a YAML configuration. Unknown keys are errors.
func Decode(r io.Reader) (*Config, error) {
	cfg := Config{
		Indent: generator.DefaultIndent,
		Align:  generator.DefaultAlign,
	}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("c_ident", func(fl validator.FieldLevel) bool {
		return cIdentRe.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}

	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	seen := make(map[string]bool, len(c.Groups))
	for _, g := range c.Groups {
		if seen[g.Prefix] {
			return fmt.Errorf("invalid config: duplicate group prefix %q", g.Prefix)
		}
		seen[g.Prefix] = true
	}

	return nil
}

func (c *Config) ClassifierOptions() classifier.Options {
	groups := make([]classifier.Group, 0, len(c.Groups))
	for _, g := range c.Groups {
		groups = append(groups, classifier.Group{
			Prefix:      g.Prefix,
			StripPrefix: g.StripPrefix,
			Comment:     g.Comment,
		})
	}

	return classifier.Options{
		Groups:             groups,
		ExcludeReturnTypes: c.ExcludeReturnTypes,
		ExcludeTypes:       c.ExcludeTypes,
		TypePrefixes:       c.TypePrefixes,
		ByValueOnly:        c.ByValueOnly,
	}
}

func (c *Config) GeneratorOptions() generator.Options {
	return generator.Options{
		StructName:   c.StructName,
		InstanceName: c.InstanceName,
		Indent:       c.Indent,
		Align:        c.Align,
	}
}
