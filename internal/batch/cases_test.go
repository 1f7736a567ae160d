package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadCasesSingleAndList(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), `name: avg
code: |
  def avg(xs):
      return sum(xs) / len(xs)
error: |
  ZeroDivisionError: division by zero
`)
	writeFile(t, filepath.Join(dir, "nested", "deep", "b.yml"), `cases:
  - name: first
    code: "x = int('a')"
    error: "ValueError: invalid literal for int() with base 10: 'a'"
  - code: "d = {}\nd['k']"
    error: "KeyError: 'k'"
`)
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	cases, err := LoadCases(filepath.Join(dir, "**", "*.{yaml,yml}"))
	require.NoError(t, err)
	require.Len(t, cases, 3)

	assert.Equal(t, "avg", cases[0].Name)
	assert.Contains(t, cases[0].Code, "return sum(xs) / len(xs)")
	assert.Equal(t, "ZeroDivisionError: division by zero\n", cases[0].Traceback)
	assert.Equal(t, filepath.Join(dir, "a.yaml"), cases[0].Source)

	assert.Equal(t, "first", cases[1].Name)
	assert.Equal(t, "b#2", cases[2].Name)
	assert.Equal(t, "KeyError: 'k'", cases[2].Traceback)
}

func TestLoadCasesNameFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "type-error.yaml")
	writeFile(t, path, "code: x + 1\nerror: \"NameError: name 'x' is not defined\"\n")

	cases, err := LoadCases(path)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, "type-error", cases[0].Name)
}

func TestLoadCasesDeduplicates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.yaml")
	writeFile(t, path, "code: x\nerror: \"E: e\"\n")

	cases, err := LoadCases(path, filepath.Join(dir, "*.yaml"))
	require.NoError(t, err)
	assert.Len(t, cases, 1)
}

func TestLoadCasesErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCases(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadCases(filepath.Join(dir, "*.yaml"))
	assert.ErrorIs(t, err, ErrNoCases)

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "code: [unclosed\n")
	_, err = LoadCases(bad)
	assert.Error(t, err)
}
