package gram

import (
	"strings"
)

// And concatenates its children's built output with Separator in between
// (default empty). A child raising errSkipSubtree is dropped; a child
// raising errFlushPrereqs promotes the so-far-built prefix per the
// scope-stack rules (see BuildContext.promoteFlush) and continues.
type And struct {
	Children  []any
	Separator string
	rolling   bool
}

// Concat constructs an And field over children, joined by sep.
func Concat(sep string, children ...any) *And {
	return &And{Children: children, Separator: sep}
}

func (a *And) Build(ctx *BuildContext) (string, error) {
	return buildAndLike(ctx, a.Children, a.Separator)
}

// buildAndLike implements the shared And/Def concatenation semantics,
// including SkipSubtree and FlushPrereqs handling.
func buildAndLike(ctx *BuildContext, children []any, sep string) (string, error) {
	var parts []string
	for _, c := range children {
		v, err := buildChild(ctx, c)
		if err == errSkipSubtree {
			continue
		}
		if err == errFlushPrereqs {
			ctx.promoteFlush(strings.Join(parts, sep))
			parts = nil
			continue
		}
		if err != nil {
			return "", err
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, sep), nil
}

// Join expands First 1..=Max times (1 when shortest), joined with
// Separator. If Max is zero (unset), it behaves like And over Children.
type Join struct {
	First     any
	Children  []any
	Separator string
	Max       int // 0 means "unset": behave like And(Children...)
}

// JoinAll constructs a Join that behaves like And(children...) joined by sep.
func JoinAll(sep string, children ...any) *Join {
	return &Join{Children: children, Separator: sep}
}

// Repeat constructs a Join that repeats first 1..=max times.
func Repeat(first any, max int, sep string) *Join {
	return &Join{First: first, Max: max, Separator: sep}
}

func (j *Join) Build(ctx *BuildContext) (string, error) {
	if j.Max == 0 {
		return buildAndLike(ctx, j.Children, j.Separator)
	}

	reps := 1
	if !ctx.Shortest {
		reps = int(ctx.Rand.Int(1, int64(j.Max)+1))
	}

	var parts []string
	for i := 0; i < reps; i++ {
		v, err := buildChild(ctx, j.First)
		if err == errSkipSubtree {
			continue
		}
		if err != nil {
			return "", err
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, j.Separator), nil
}

// Or chooses one alternative uniformly, or — when ctx.Shortest and
// ShortestBranches has been populated by the analyzer — uniformly among
// ShortestBranches instead.
type Or struct {
	Alternatives     []any
	ShortestBranches []any
	rolling          bool
}

// Alt constructs an Or field over the given alternatives.
func Alt(alternatives ...any) *Or {
	return &Or{Alternatives: alternatives}
}

func (o *Or) Build(ctx *BuildContext) (string, error) {
	pool := o.Alternatives
	if ctx.Shortest && o.ShortestBranches != nil {
		pool = o.ShortestBranches
	}
	chosen := Choice(ctx.Rand, pool)
	return buildChild(ctx, chosen)
}

// Opt raises errSkipSubtree with probability SkipProb (default 0.5) or
// whenever shortest is requested; otherwise behaves like And.
type Opt struct {
	Children []any
	SkipProb float64
}

// ShortestIsNothing is always true for Opt; see the analyzer's depth rules.
func (o *Opt) ShortestIsNothing() bool { return true }

// Maybe constructs an Opt field with the given skip probability (0 means use
// the default of 0.5).
func Maybe(skipProb float64, children ...any) *Opt {
	if skipProb == 0 {
		skipProb = 0.5
	}
	return &Opt{Children: children, SkipProb: skipProb}
}

func (o *Opt) Build(ctx *BuildContext) (string, error) {
	if ctx.Shortest || ctx.Rand.Maybe(o.SkipProb) {
		return "", errSkipSubtree
	}
	return buildAndLike(ctx, o.Children, "")
}

// QuoteMode selects how Quote wraps its built inner value.
type QuoteMode int

const (
	// QuoteRaw wraps inner in QuoteChar on both sides, verbatim.
	QuoteRaw QuoteMode = iota
	// QuoteCode backslash-escapes inner the way a language string literal
	// would (control characters, backslashes, the quote character itself).
	QuoteCode
	// QuoteHTMLJS single-quote-wraps inner and hex-escapes every byte
	// outside the safe ASCII printable range, plus '<' and '>'.
	QuoteHTMLJS
)

// Quote builds its children like And, then wraps the result per Mode.
type Quote struct {
	Children  []any
	Mode      QuoteMode
	QuoteChar byte
}

// Wrap constructs a Quote field with the given mode. quoteChar (default '"')
// is used by QuoteRaw and QuoteCode; QuoteHTMLJS always uses single quotes.
func Wrap(mode QuoteMode, quoteChar byte, children ...any) *Quote {
	if quoteChar == 0 {
		quoteChar = '"'
	}
	return &Quote{Children: children, Mode: mode, QuoteChar: quoteChar}
}

func (q *Quote) Build(ctx *BuildContext) (string, error) {
	inner, err := buildAndLike(ctx, q.Children, "")
	if err != nil {
		return "", err
	}
	switch q.Mode {
	case QuoteCode:
		return codeEscape(inner, q.QuoteChar), nil
	case QuoteHTMLJS:
		return htmlJSEscape(inner), nil
	default:
		return string(q.QuoteChar) + inner + string(q.QuoteChar), nil
	}
}

// codeEscape backslash-escapes control characters, backslashes, and the
// quote character, the way a language string literal would.
func codeEscape(s string, quoteChar byte) string {
	var b strings.Builder
	b.WriteByte(quoteChar)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == quoteChar || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20 || c == 0x7f:
			b.WriteString(`\x`)
			b.WriteString(hexByte(c))
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(quoteChar)
	return b.String()
}

// htmlJSEscape single-quote-wraps s, hex-escaping every byte outside the
// safe ASCII printable range and additionally '<'/'>'.
func htmlJSEscape(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '<' || c == '>' || c < 0x20 || c > 0x7e {
			b.WriteString(`\x`)
			b.WriteString(hexByte(c))
			continue
		}
		b.WriteByte(c)
	}
	b.WriteByte('\'')
	return b.String()
}

func hexByte(c byte) string {
	const hexDigits = "0123456789abcdef"
	return string([]byte{hexDigits[c>>4], hexDigits[c&0xf]})
}

// Plus is sugar for Join(And(child), max=maxReps): one or more repetitions.
func Plus(child any, maxReps int) *Join {
	if maxReps <= 0 {
		maxReps = 10
	}
	return &Join{First: child, Max: maxReps}
}

// Star is sugar for Plus, additionally behaving like Opt: it may produce
// nothing, and is treated as shortest_is_nothing in the analyzer.
type Star struct {
	inner *Join
}

// Many constructs a Star field: zero or more repetitions of child.
func Many(child any, maxReps int) *Star {
	return &Star{inner: Plus(child, maxReps)}
}

// ShortestIsNothing is always true for Star; see the analyzer's depth rules.
func (s *Star) ShortestIsNothing() bool { return true }

func (s *Star) Build(ctx *BuildContext) (string, error) {
	if ctx.Shortest {
		return "", errSkipSubtree
	}
	if !ctx.Rand.MaybeDefault() {
		return "", errSkipSubtree
	}
	return s.inner.Build(ctx)
}

// ----------------------------------------------------------------------
// Operator sugar: left-fold "rolling" combinators for building up a chain
// of And/Or nodes one value at a time. These are pure convenience
// constructors; explicit And()/Alt() calls are always equivalent.
// ----------------------------------------------------------------------

// Seq folds left into an And: if left is already a rolling And, right is
// appended to it in place; otherwise a new rolling And wraps both.
func Seq(left, right any) *And {
	if a, ok := left.(*And); ok && a.rolling {
		a.Children = append(a.Children, right)
		return a
	}
	return &And{Children: []any{left, right}, rolling: true}
}

// Either folds left into an Or: if left is already a rolling Or, right is
// appended to it in place; otherwise a new rolling Or wraps both.
func Either(left, right any) *Or {
	if o, ok := left.(*Or); ok && o.rolling {
		o.Alternatives = append(o.Alternatives, right)
		return o
	}
	return &Or{Alternatives: []any{left, right}, rolling: true}
}
