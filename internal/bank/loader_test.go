package bank

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func authoredDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "bank.yaml", `
mode: full
title: Full Assessment
version: "2024.1"
items:
  - id: q1
    stem: I plan before I act.
  - id: q2
    stem: I act before I plan.
    options: ["never", "sometimes", "always"]
`)
	writeFile(t, dir, "weights.json", `{
		"q1": {"A": {"Te": 1}},
		"q2": {"A": {"Se": 1}, "B": {"Ni": 1}}
	}`)
	writeFile(t, dir, "types.yaml", `
dominant:
  te: ESTJ
`)
	return dir
}

func TestLoadDir_FullPackage(t *testing.T) {
	pack, err := LoadDir(authoredDir(t))
	require.NoError(t, err)

	assert.Equal(t, "full", pack.Bank.Mode)
	assert.Equal(t, "Full Assessment", pack.Bank.Title)
	assert.Equal(t, "2024.1", pack.Bank.Version)
	require.Len(t, pack.Bank.Items, 2)
	assert.Equal(t, "q1", pack.Bank.Items[0].ID)
	assert.Equal(t, []string{"never", "sometimes", "always"}, pack.Bank.Items[1].Options)
	assert.Equal(t, []string{"q1", "q2"}, pack.Bank.ItemIDs())

	require.NotNil(t, pack.Weights, "weights stay raw for the engine")
	require.NotNil(t, pack.Types)
	assert.Nil(t, pack.Funcs, "absent optional block stays nil")
}

func TestLoadDir_Envelope(t *testing.T) {
	pack, err := LoadDir(authoredDir(t))
	require.NoError(t, err)

	env := pack.Envelope("", 1234)
	assert.Equal(t, "2024.1", env.Version, "empty version falls back to the bank's")
	assert.Equal(t, int64(1234), env.TS)
	assert.Contains(t, env.Weights, "full")
	assert.NotNil(t, env.Mapping.Types)

	env = pack.Envelope("override", 1)
	assert.Equal(t, "override", env.Version)
}

func TestLoadDir_MissingRequiredFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadDir(dir)
	require.Error(t, err, "bank file is required")

	writeFile(t, dir, "bank.yaml", "mode: m\ntitle: T\nitems: [{id: q1, stem: s}]\n")
	_, err = LoadDir(dir)
	require.Error(t, err, "weights file is required")

	writeFile(t, dir, "weights.yaml", "q1: [1]\n")
	_, err = LoadDir(dir)
	assert.NoError(t, err)
}

func TestLoadDir_Validation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"no mode", "title: T\nitems: [{id: q1, stem: s}]\n"},
		{"no items", "mode: m\ntitle: T\n"},
		{"blank item id", "mode: m\ntitle: T\nitems: [{id: \"\", stem: s}]\n"},
		{"duplicate item id", "mode: m\ntitle: T\nitems: [{id: q1, stem: a}, {id: q1, stem: b}]\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "bank.yaml", tc.yaml)
			writeFile(t, dir, "weights.yaml", "q1: [1]\n")
			_, err := LoadDir(dir)
			assert.Error(t, err)
		})
	}
}

func TestLoadDir_JSONBank(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bank.json", `{"mode":"quick","title":"Quick","items":[{"id":"q1","stem":"s"}]}`)
	writeFile(t, dir, "weights.json", `{"q1": [1]}`)

	pack, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "quick", pack.Bank.Mode)
}
