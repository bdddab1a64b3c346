package dsl_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mseclab/gramfuzz/dsl"
	"github.com/mseclab/gramfuzz/gram"
)

const sampleGrammar = `
category "json_value" group "json"
top_category

def "string" [
  quote raw '"' { string(min=0, max=5, charset=alpha) }
]
def "number" [
  int(min=-100, max=100)
]
def "value" [
  ref "string" | ref "number"
]
`

func TestParseAndCompile(t *testing.T) {
	src, err := dsl.Parse(strings.NewReader(sampleGrammar))
	require.NoError(t, err)
	require.Equal(t, "json_value", src.Category)
	require.NotNil(t, src.Group)
	require.Equal(t, "json", *src.Group)
	require.True(t, src.TopCat)
	require.Len(t, src.Defs, 3)

	reg := gram.NewRegistry()
	require.NoError(t, dsl.Compile(reg, src))

	topCat, ok := reg.GroupTopCat("json")
	require.True(t, ok)
	require.Equal(t, "json_value", topCat)

	out, err := reg.Generate(context.Background(), gram.WithSeed(1), gram.WithCount(20), gram.WithGroup("json"))
	require.NoError(t, err)
	require.Len(t, out, 20)
}

func TestRefDefaultsToEnclosingCategory(t *testing.T) {
	src, err := dsl.Parse(strings.NewReader(`
category "c"
def "leaf" [ "L" ]
def "mid" [ ref "leaf" ]
`))
	require.NoError(t, err)

	reg := gram.NewRegistry()
	require.NoError(t, dsl.Compile(reg, src))

	out, err := reg.Generate(context.Background(), gram.WithSeed(1), gram.WithCount(3), gram.WithCategory("c"), gram.WithPreferred("mid"), gram.WithPreferredRatio(1))
	require.NoError(t, err)
	for _, s := range out {
		require.Contains(t, []string{"L"}, s)
	}
}

func TestNoPruneFlagSurvivesPruning(t *testing.T) {
	src, err := dsl.Parse(strings.NewReader(`
category "c"
def "a" no_prune [ ref "b" ]
def "b" no_prune [ ref "a" ]
`))
	require.NoError(t, err)

	reg := gram.NewRegistry()
	require.NoError(t, dsl.Compile(reg, src))
	reg.Preprocess()
	require.ElementsMatch(t, []string{"a", "b"}, reg.Names("c"))
}
