package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "../testdata/cimgui.i"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--log-level", "error"))

	err := cmd.Execute()
	return stdout.String(), err
}

func TestGenerate_Golden(t *testing.T) {
	want, err := os.ReadFile("../testdata/imgui_api.golden")
	require.NoError(t, err)

	got, err := run(t, "generate", sample)
	require.NoError(t, err)
	assert.Equal(t, string(want), got)

	again, err := run(t, "generate", sample)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestGenerate_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imgui-defs.h")

	stdout, err := run(t, "generate", sample, path, "--struct-name", "api", "--instance-name", "the_api")
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "typedef struct api\n{\n")
	assert.Contains(t, string(data), "api the_api = {\n")
	assert.Contains(t, string(data), "    .Begin = igBegin,\n")
}

func TestGenerate_FailureKeepsOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "dup.i")
	require.NoError(t, os.WriteFile(input, []byte("void igEnd(void);\nvoid ImGuiIO_End(void);\n"), 0o644))

	config := filepath.Join(dir, "dup.yaml")
	require.NoError(t, os.WriteFile(config, []byte(`
struct_name: api
instance_name: the_api
groups:
  - prefix: ig
    strip_prefix: true
  - prefix: ImGuiIO_
    strip_prefix: true
`), 0o644))

	output := filepath.Join(dir, "out.h")
	require.NoError(t, os.WriteFile(output, []byte("previous\n"), 0o644))

	_, err := run(t, "generate", input, output, "--config", config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `field "End"`)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "previous\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestGenerate_ParseError(t *testing.T) {
	input := filepath.Join(t.TempDir(), "broken.i")
	require.NoError(t, os.WriteFile(input, []byte("void igEnd(void;\n"), 0o644))

	stdout, err := run(t, "generate", input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing")
	assert.Empty(t, stdout)
}

func TestGenerate_QualifiedAndAnonymousReturns(t *testing.T) {
	dir := t.TempDir()

	qualified := filepath.Join(dir, "qualified.i")
	require.NoError(t, os.WriteFile(qualified, []byte("volatile int* igGetCounter(void);\n"), 0o644))

	out, err := run(t, "generate", qualified)
	require.NoError(t, err)
	assert.Contains(t, out, "    volatile int * (*GetCounter)(void);\n")

	anonymous := filepath.Join(dir, "anonymous.i")
	require.NoError(t, os.WriteFile(anonymous, []byte("void igEnd(void);\nstruct { int x; } igAnon(void);\n"), 0o644))

	out, err = run(t, "generate", anonymous)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anonymous return type")
	assert.Empty(t, out)
}

func TestList(t *testing.T) {
	out, err := run(t, "list", sample, "--types")
	require.NoError(t, err)

	assert.Contains(t, out, "Begin")
	assert.Contains(t, out, "igBegin")
	assert.Contains(t, out, "ImDrawList_AddLine")
	assert.NotContains(t, out, "igGetWindowPos ")
	assert.Contains(t, out, "struct   ImGuiIO\n")
	assert.Contains(t, out, "struct   ImDrawList (opaque)\n")
	assert.Contains(t, out, "enum     ImGuiWindowFlags_\n")
	assert.NotContains(t, out, "ImVec2\n")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "fptrgen version")
}
