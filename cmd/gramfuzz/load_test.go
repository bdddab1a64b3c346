package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testGrammar = `
category "word"
def "w" [
  string(min=3, max=6, charset=alpha)
]
`

func writeGrammarFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grammar.gram")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadRegistryParsesAndCompiles(t *testing.T) {
	path := writeGrammarFile(t, testGrammar)

	reg, src, err := loadRegistry(path)
	require.NoError(t, err)
	require.Equal(t, "word", src.Category)
	require.ElementsMatch(t, []string{"w"}, reg.Names("word"))
}

func TestLoadRegistryMissingFile(t *testing.T) {
	_, _, err := loadRegistry(filepath.Join(t.TempDir(), "does-not-exist.gram"))
	require.Error(t, err)
}

func TestLoadRegistryBadSyntax(t *testing.T) {
	path := writeGrammarFile(t, `category "c" def [ broken`)
	_, _, err := loadRegistry(path)
	require.Error(t, err)
}

func TestDiffNamesReportsOnlyRemoved(t *testing.T) {
	before := []string{"a", "b", "c"}
	after := []string{"a", "c"}
	require.ElementsMatch(t, []string{"b"}, diffNames(before, after))
	require.Empty(t, diffNames(after, after))
}
