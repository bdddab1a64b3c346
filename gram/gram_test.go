package gram_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mseclab/gramfuzz/gram"
)

// scenario 1: a leaf-only grammar with a single-valued range always builds
// that value ([5, 6) has exactly one member).
func TestLeafOnlyRange(t *testing.T) {
	reg := gram.NewRegistry()
	gram.NewDef(reg, "c", "n", false, "", gram.NewIntGen(5, 6, false))

	out, err := reg.Generate(context.Background(), gram.WithSeed(42), gram.WithCount(3), gram.WithCategory("c"))
	require.NoError(t, err)
	require.Len(t, out, 3)
	for _, s := range out {
		require.Equal(t, "5", s)
	}
}

// scenario 2: over many samples, a three-way uniform Or lands within a
// generous band of 1/3 each.
func TestUniformAlternation(t *testing.T) {
	reg := gram.NewRegistry()
	gram.NewDef(reg, "c", "x", false, "", gram.Alt("a", "b", "c"))

	out, err := reg.Generate(context.Background(), gram.WithSeed(42), gram.WithCount(1000), gram.WithCategory("c"))
	require.NoError(t, err)

	counts := map[string]int{}
	for _, s := range out {
		counts[s]++
	}
	require.Len(t, counts, 3)
	for _, branch := range []string{"a", "b", "c"} {
		require.InDelta(t, 1000.0/3.0, float64(counts[branch]), 80)
	}
}

// scenario 3: Quote wraps its built inner value verbatim in raw mode.
func TestQuoteWrapping(t *testing.T) {
	reg := gram.NewRegistry()
	gram.NewDef(reg, "c", "q", false, "", gram.Wrap(gram.QuoteRaw, '"', gram.Lit("hi")))

	out, err := reg.Generate(context.Background(), gram.WithSeed(42), gram.WithCount(5), gram.WithCategory("c"))
	require.NoError(t, err)
	for _, s := range out {
		require.Equal(t, `"hi"`, s)
		require.Len(t, s, 4)
		require.Equal(t, byte('"'), s[0])
		require.Equal(t, byte('"'), s[len(s)-1])
	}
}

// scenario 4: a self-referential Or forced into shortest mode by a low
// max_recursion always terminates in a run of "0"s.
func TestRecursionCapForcesTermination(t *testing.T) {
	reg := gram.NewRegistry()
	gram.NewDef(reg, "c", "e", false, "", gram.Alt(gram.To("c", "e"), gram.Lit("0")))

	out, err := reg.Generate(context.Background(), gram.WithSeed(42), gram.WithCount(50),
		gram.WithCategory("c"), gram.WithMaxRecursion(3))
	require.NoError(t, err)

	zeros := regexp.MustCompile(`^0+$`)
	for _, s := range out {
		require.Regexp(t, zeros, s)
	}
}

// scenario 5: a pair of rules that only ever reference each other, with no
// leaf escape, are pruned to nothing and Generate reports EmptyCategory.
func TestUnreachablePruning(t *testing.T) {
	reg := gram.NewRegistry()
	gram.NewDef(reg, "c", "a", false, "", gram.To("c", "b"))
	gram.NewDef(reg, "c", "b", false, "", gram.To("c", "a"))

	reg.Preprocess()
	require.Empty(t, reg.Names("c"))

	_, err := reg.Generate(context.Background(), gram.WithSeed(42), gram.WithCount(1), gram.WithCategory("c"))
	require.ErrorIs(t, err, gram.ErrEmptyCategory)
}

// scenario 6: an Opt with skip_prob=1.0 always raises skip-subtree, so the
// enclosing And's output never includes it.
func TestOptSkipInvariance(t *testing.T) {
	reg := gram.NewRegistry()
	gram.NewDef(reg, "c", "s", false, "", "[", gram.Maybe(1.0, gram.Lit("X")), "]")

	out, err := reg.Generate(context.Background(), gram.WithSeed(42), gram.WithCount(10), gram.WithCategory("c"))
	require.NoError(t, err)
	for _, s := range out {
		require.Equal(t, "[]", s)
	}
}

// invariant 1: identical seed and arguments on disjoint registries produce
// identical output sequences.
func TestDeterminism(t *testing.T) {
	build := func() *gram.Registry {
		reg := gram.NewRegistry()
		gram.NewDef(reg, "c", "x", false, "", gram.Alt("a", "b", "c"), gram.NewIntGen(0, 100, true))
		return reg
	}

	first, err := build().Generate(context.Background(), gram.WithSeed(7), gram.WithCount(200), gram.WithCategory("c"))
	require.NoError(t, err)

	second, err := build().Generate(context.Background(), gram.WithSeed(7), gram.WithCount(200), gram.WithCategory("c"))
	require.NoError(t, err)

	require.Equal(t, first, second)
}

// a no_prune rule with no other path to it survives analysis even though
// it would otherwise be pruned as unreachable.
func TestNoPruneSurvivesAnalysis(t *testing.T) {
	reg := gram.NewRegistry()
	gram.NewDef(reg, "c", "a", true, "", gram.To("c", "b"))
	gram.NewDef(reg, "c", "b", true, "", gram.To("c", "a"))

	reg.Preprocess()
	require.ElementsMatch(t, []string{"a", "b"}, reg.Names("c"))
}
