package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "rizz_api_imgui", cfg.StructName)
	assert.Equal(t, "the__imgui", cfg.InstanceName)
	assert.Equal(t, "    ", cfg.Indent)
	assert.Equal(t, 14, cfg.Align)
	require.Len(t, cfg.Groups, 9)
	assert.Equal(t, Group{Prefix: "ig", StripPrefix: true}, cfg.Groups[0])
	assert.Equal(t, Group{Prefix: "ImGuiIO_", Comment: "ImGuiIO"}, cfg.Groups[1])
	assert.Contains(t, cfg.ExcludeReturnTypes, "ImVec2")
	assert.Contains(t, cfg.ExcludeTypes, "ImColor_Simple")
	assert.False(t, cfg.ByValueOnly)

	opts := cfg.ClassifierOptions()
	assert.Len(t, opts.Groups, 9)
	assert.True(t, opts.Groups[0].StripPrefix)
	assert.Equal(t, []string{"Im"}, opts.TypePrefixes)

	gen := cfg.GeneratorOptions()
	assert.Equal(t, "rizz_api_imgui", gen.StructName)
	assert.Equal(t, 14, gen.Align)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		wantErr  string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name: "minimal with defaults",
			yaml: `
struct_name: my_api
instance_name: the_api
groups:
  - prefix: sx_
    strip_prefix: true
`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "    ", cfg.Indent)
				assert.Equal(t, 14, cfg.Align)
				assert.Equal(t, "sx_", cfg.Groups[0].Prefix)
			},
		},
		{
			name: "unknown key",
			yaml: `
struct_name: my_api
instance_name: the_api
prefixes: [sx_]
groups:
  - prefix: sx_
`,
			wantErr: "prefixes",
		},
		{
			name: "no groups",
			yaml: `
struct_name: my_api
instance_name: the_api
`,
			wantErr: "Groups",
		},
		{
			name: "empty prefix",
			yaml: `
struct_name: my_api
instance_name: the_api
groups:
  - comment: nothing
`,
			wantErr: "Prefix",
		},
		{
			name: "struct name not an identifier",
			yaml: `
struct_name: my-api
instance_name: the_api
groups:
  - prefix: sx_
`,
			wantErr: "StructName",
		},
		{
			name: "duplicate prefix",
			yaml: `
struct_name: my_api
instance_name: the_api
groups:
  - prefix: sx_
  - prefix: sx_
    comment: again
`,
			wantErr: "duplicate group prefix",
		},
		{
			name: "negative alignment",
			yaml: `
struct_name: my_api
instance_name: the_api
align: -1
groups:
  - prefix: sx_
`,
			wantErr: "Align",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Decode(strings.NewReader(tt.yaml))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fptrgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
struct_name: rizz_api_sx
instance_name: the__sx
by_value_only: true
groups:
  - prefix: sx_
    strip_prefix: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "rizz_api_sx", cfg.StructName)
	assert.True(t, cfg.ClassifierOptions().ByValueOnly)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "rizz_api_imgui", cfg.StructName)
}
