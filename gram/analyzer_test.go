package gram_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mseclab/gramfuzz/gram"
)

func TestPreprocessIsIdempotent(t *testing.T) {
	reg := gram.NewRegistry()
	gram.NewDef(reg, "c", "leaf", false, "", gram.Lit("L"))
	gram.NewDef(reg, "c", "mid", false, "", gram.To("c", "leaf"))

	reg.Preprocess()
	first := reg.Names("c")
	reg.Preprocess()
	second := reg.Names("c")
	require.Equal(t, first, second)
}

func TestPreprocessPrunesOnlyUnreachableRules(t *testing.T) {
	reg := gram.NewRegistry()
	gram.NewDef(reg, "c", "leaf", false, "", gram.Lit("L"))
	gram.NewDef(reg, "c", "reachable", false, "", gram.To("c", "leaf"))
	gram.NewDef(reg, "c", "cycleA", false, "", gram.To("c", "cycleB"))
	gram.NewDef(reg, "c", "cycleB", false, "", gram.To("c", "cycleA"))

	reg.Preprocess()
	require.ElementsMatch(t, []string{"leaf", "reachable"}, reg.Names("c"))
}

func TestChainedReferencesToALeafAllSurviveAnalysis(t *testing.T) {
	reg := gram.NewRegistry()
	gram.NewDef(reg, "c", "leaf", false, "", gram.Lit("L"))
	gram.NewDef(reg, "c", "viaLeaf", false, "", gram.To("c", "leaf"))
	gram.NewDef(reg, "c", "viaViaLeaf", false, "", gram.To("c", "viaLeaf"))

	reg.Preprocess()
	require.ElementsMatch(t, []string{"leaf", "viaLeaf", "viaViaLeaf"}, reg.Names("c"))
}
