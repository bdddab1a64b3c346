package gram_test

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mseclab/gramfuzz/gram"
)

func TestIntGenRespectsRange(t *testing.T) {
	reg := gram.NewRegistry()
	gram.NewDef(reg, "c", "n", false, "", gram.NewIntGen(10, 20, false))

	out, err := reg.Generate(context.Background(), gram.WithSeed(1), gram.WithCount(200), gram.WithCategory("c"))
	require.NoError(t, err)
	for _, v := range out {
		n, err := strconv.ParseInt(v, 10, 64)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, int64(10))
		require.Less(t, n, int64(20))
	}
}

func TestIntGenSignedMayNegate(t *testing.T) {
	reg := gram.NewRegistry()
	gram.NewDef(reg, "c", "n", false, "", gram.NewIntGen(1, 100, true))

	out, err := reg.Generate(context.Background(), gram.WithSeed(1), gram.WithCount(500), gram.WithCategory("c"))
	require.NoError(t, err)

	sawNegative := false
	for _, v := range out {
		n, err := strconv.ParseInt(v, 10, 64)
		require.NoError(t, err)
		if n < 0 {
			sawNegative = true
			break
		}
	}
	require.True(t, sawNegative, "expected at least one negated sample over 500 tries")
}

func TestStringGenLengthAndCharset(t *testing.T) {
	reg := gram.NewRegistry()
	gram.NewDef(reg, "c", "s", false, "", gram.NewStringGen(3, 8, gram.CharsetAlphaLower))

	out, err := reg.Generate(context.Background(), gram.WithSeed(1), gram.WithCount(200), gram.WithCategory("c"))
	require.NoError(t, err)
	for _, v := range out {
		require.GreaterOrEqual(t, len(v), 3)
		require.LessOrEqual(t, len(v), 8)
		for _, c := range v {
			require.True(t, strings.ContainsRune(gram.CharsetAlphaLower, c))
		}
	}
}

func TestIntGenMinEqualsMaxIsConstant(t *testing.T) {
	reg := gram.NewRegistry()
	gram.NewDef(reg, "c", "n", false, "", gram.NewIntGen(42, 42, false))

	out, err := reg.Generate(context.Background(), gram.WithSeed(1), gram.WithCount(10), gram.WithCategory("c"))
	require.NoError(t, err)
	for _, v := range out {
		require.Equal(t, "42", v)
	}
}

func TestCodeEscapeQuoting(t *testing.T) {
	reg := gram.NewRegistry()
	gram.NewDef(reg, "c", "q", false, "", gram.Wrap(gram.QuoteCode, '"', gram.Lit("a\"b\\c\n")))

	out, err := reg.Generate(context.Background(), gram.WithSeed(1), gram.WithCount(1), gram.WithCategory("c"))
	require.NoError(t, err)
	require.Equal(t, `"a\"b\\c\n"`, out[0])
}

func TestHTMLJSEscapeWrapsAndEscapes(t *testing.T) {
	reg := gram.NewRegistry()
	gram.NewDef(reg, "c", "q", false, "", gram.Wrap(gram.QuoteHTMLJS, 0, gram.Lit("<b>")))

	out, err := reg.Generate(context.Background(), gram.WithSeed(1), gram.WithCount(1), gram.WithCategory("c"))
	require.NoError(t, err)
	require.Equal(t, `'\x3cb\x3e'`, out[0])
}
