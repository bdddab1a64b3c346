package gram_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mseclab/gramfuzz/gram"
)

func TestGetRefWildcardPicksAnyLiveName(t *testing.T) {
	reg := gram.NewRegistry()
	gram.NewDef(reg, "c", "a", false, "", gram.Lit("A"))
	gram.NewDef(reg, "c", "b", false, "", gram.Lit("B"))

	rnd := gram.NewRand(1)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		def, err := reg.GetRef(rnd, "c", "*")
		require.NoError(t, err)
		seen[def.Name] = true
	}
	require.Len(t, seen, 2)
}

func TestGetRefCategoryMissing(t *testing.T) {
	reg := gram.NewRegistry()
	_, err := reg.GetRef(gram.NewRand(1), "nope", "x")
	require.ErrorIs(t, err, gram.ErrCategoryMissing)
}

func TestGetRefNameMissing(t *testing.T) {
	reg := gram.NewRegistry()
	gram.NewDef(reg, "c", "a", false, "", gram.Lit("A"))
	_, err := reg.GetRef(gram.NewRand(1), "c", "missing")
	require.ErrorIs(t, err, gram.ErrNameMissing)
}

func TestRefFailsafeSubstitutesOnMissingName(t *testing.T) {
	reg := gram.NewRegistry()
	gram.NewDef(reg, "c", "s", false, "", gram.To("c", "missing").WithFailsafe("fallback"))

	out, err := reg.Generate(context.Background(), gram.WithSeed(1), gram.WithCount(1), gram.WithCategory("c"))
	require.NoError(t, err)
	require.Equal(t, "fallback", out[0])
}

func TestGetGroupKeysExpandsGroupMembership(t *testing.T) {
	reg := gram.NewRegistry()
	gram.NewDef(reg, "c", "a", false, "json", gram.Lit("A"))
	gram.NewDef(reg, "c", "b", false, "json", gram.Lit("B"))
	gram.NewDef(reg, "c", "other", false, "xml", gram.Lit("O"))

	keys := reg.GetGroupKeys("c", []string{"json"})
	require.ElementsMatch(t, []string{"a", "b"}, keys)

	direct := reg.GetGroupKeys("c", []string{"other"})
	require.Equal(t, []string{"other"}, direct)
}

func TestGenerateRequiresExactlyOneOfCategoryOrGroup(t *testing.T) {
	reg := gram.NewRegistry()
	gram.NewDef(reg, "c", "a", false, "", gram.Lit("A"))

	_, err := reg.Generate(context.Background(), gram.WithCount(1))
	require.Error(t, err)

	_, err = reg.Generate(context.Background(), gram.WithCount(1), gram.WithCategory("c"), gram.WithGroup("g"))
	require.Error(t, err)
}

func TestGenerateByGroupUsesTopCategory(t *testing.T) {
	reg := gram.NewRegistry()
	gram.NewDef(reg, "c", "a", false, "g", gram.Lit("A"))
	reg.SetGroupTopCat("g", "c")

	out, err := reg.Generate(context.Background(), gram.WithSeed(1), gram.WithCount(3), gram.WithGroup("g"))
	require.NoError(t, err)
	for _, s := range out {
		require.Equal(t, "A", s)
	}
}
