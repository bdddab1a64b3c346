package gram

import (
	"fmt"
	"strconv"
)

func formatLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// Literal is a constant value, built verbatim. It accepts any of string,
// int, int64, float64, bool, or nil.
type Literal struct {
	Value any
}

// Lit constructs a Literal field.
func Lit(value any) *Literal { return &Literal{Value: value} }

func (l *Literal) Build(ctx *BuildContext) (string, error) {
	return formatLiteral(l.Value), nil
}

// OddsEntry is one (probability, band) pair of a weighted odds distribution.
// Band is either a single value (int64/float64) or a [lo, hi) pair. Ranges
// carry their own kind explicitly (IntRange) rather than inferring it from
// Value, since a range band never has a co-located Value to inspect.
type OddsEntry struct {
	Probability float64
	Value       any        // single value, used when HasRange == false
	Range       [2]float64 // used when HasRange; see BandIntRange/BandFloatRange
	HasRange    bool
	IntRange    bool // only meaningful when HasRange
}

// Band returns a single-value entry.
func Band(prob float64, value any) OddsEntry {
	return OddsEntry{Probability: prob, Value: value}
}

// BandIntRange returns a weighted [lo, hi) integer range entry.
func BandIntRange(prob float64, lo, hi int64) OddsEntry {
	return OddsEntry{Probability: prob, Range: [2]float64{float64(lo), float64(hi)}, HasRange: true, IntRange: true}
}

// BandFloatRange returns a weighted [lo, hi) float range entry.
func BandFloatRange(prob float64, lo, hi float64) OddsEntry {
	return OddsEntry{Probability: prob, Range: [2]float64{lo, hi}, HasRange: true}
}

// DefaultIntOdds is biased toward small values, zero, and the neighborhoods
// of common integer-overflow boundaries (0x80, 0x100, 0x10000, 0x80000000,
// 0x100000000).
var DefaultIntOdds = []OddsEntry{
	BandIntRange(0.75, 0, 100),
	Band(0.05, int64(0)),
	BandIntRange(0.05, 0x80-2, 0x80+2),
	BandIntRange(0.05, 0x100-2, 0x100+2),
	BandIntRange(0.05, 0x10000-2, 0x10000+2),
	Band(0.03, int64(0x80000000)),
	BandIntRange(0.02, 0x100000000-2, 0x100000000+2),
}

// DefaultFloatOdds is biased toward small magnitudes, zero, and a couple of
// wider overflow-seeking bands.
var DefaultFloatOdds = []OddsEntry{
	BandFloatRange(0.75, 0.0, 100.0),
	Band(0.05, 0.0),
	BandFloatRange(0.10, 100.0, 1000.0),
	BandFloatRange(0.10, 1000.0, 100000.0),
}

// DefaultStringLenOdds picks a string *length*, not a character, biased
// toward short strings with occasional empty or long outliers.
var DefaultStringLenOdds = []OddsEntry{
	BandIntRange(0.85, 0, 20),
	Band(0.10, int64(1)),
	Band(0.025, int64(0)),
	BandIntRange(0.025, 20, 100),
}

// Character set constants for StringGen's Charset field.
const (
	CharsetAlphaLower = "abcdefghijklmnopqrstuvwxyz"
	CharsetAlphaUpper = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	CharsetAlpha      = CharsetAlphaLower + CharsetAlphaUpper
	CharsetSpaces     = "\n\r\t "
	CharsetNum        = "1234567890"
	CharsetAlphaNum   = CharsetAlpha + CharsetNum
)

// CharsetAll is every byte value 0x00-0xff, for raw binary fuzzing.
func CharsetAll() string {
	b := make([]byte, 0x100)
	for i := range b {
		b[i] = byte(i)
	}
	return string(b)
}

// pickOddsValue chooses a band by cumulative probability, then samples
// uniformly within it.
func pickOddsValue(r *Rand, odds []OddsEntry) any {
	roll := r.Float(0, 1)
	total := 0.0
	var chosen OddsEntry
	for _, e := range odds {
		if total <= roll && roll < total+e.Probability {
			chosen = e
			break
		}
		total += e.Probability
		chosen = e // fall back to the last entry on floating-point slop
	}
	if !chosen.HasRange {
		return chosen.Value
	}
	if chosen.IntRange {
		return r.Int(int64(chosen.Range[0]), int64(chosen.Range[1]))
	}
	return r.Float(chosen.Range[0], chosen.Range[1])
}

// IntGen generates integers by weighted band distribution, with an optional
// sign flip.
type IntGen struct {
	Min, Max int64
	Signed   bool
	Odds     []OddsEntry
	Value    *int64 // optional hard-coded literal override
}

// NewIntGen constructs an IntGen scoped to [min, max). Explicitly passing
// min/max leaves Odds unset, so the field samples uniformly within the
// given bounds instead of the boundary-seeking default odds table. Build
// DefaultIntOdds into an IntGen struct literal directly to opt back into
// boundary-seeking behavior over a wide default range.
func NewIntGen(min, max int64, signed bool) *IntGen {
	return &IntGen{Min: min, Max: max, Signed: signed}
}

func (g *IntGen) Build(ctx *BuildContext) (string, error) {
	v, err := g.buildValue(ctx)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(v, 10), nil
}

func (g *IntGen) buildValue(ctx *BuildContext) (int64, error) {
	if g.Value != nil && ctx.Rand.MaybeDefault() {
		return *g.Value, nil
	}
	if g.Min == g.Max {
		return g.Min, nil
	}
	odds := g.Odds
	if len(odds) == 0 {
		odds = []OddsEntry{BandIntRange(1.0, g.Min, g.Max)}
	}
	res := pickOddsValue(ctx.Rand, odds).(int64)
	if g.Signed && ctx.Rand.MaybeDefault() {
		res = -res
	}
	return res, nil
}

// FloatGen generates floats by weighted band distribution.
type FloatGen struct {
	Min, Max float64
	Signed   bool
	Odds     []OddsEntry
	Value    *float64
}

// NewFloatGen constructs a FloatGen scoped to [min, max). As with
// NewIntGen, explicit bounds mean uniform sampling within them rather than
// the boundary-seeking DefaultFloatOdds table.
func NewFloatGen(min, max float64, signed bool) *FloatGen {
	return &FloatGen{Min: min, Max: max, Signed: signed}
}

func (g *FloatGen) Build(ctx *BuildContext) (string, error) {
	v, err := g.buildValue(ctx)
	if err != nil {
		return "", err
	}
	return strconv.FormatFloat(v, 'f', -1, 64), nil
}

func (g *FloatGen) buildValue(ctx *BuildContext) (float64, error) {
	if g.Value != nil && ctx.Rand.MaybeDefault() {
		return *g.Value, nil
	}
	if g.Min == g.Max {
		return g.Min, nil
	}
	odds := g.Odds
	if len(odds) == 0 {
		odds = []OddsEntry{BandFloatRange(1.0, g.Min, g.Max)}
	}
	res := pickOddsValue(ctx.Rand, odds).(float64)
	if g.Signed && ctx.Rand.MaybeDefault() {
		res = -res
	}
	return res, nil
}

// StringGen generates strings: the odds distribution picks a length, then
// that many characters are drawn uniformly from Charset.
type StringGen struct {
	MinLen, MaxLen int
	Charset        string
	Odds           []OddsEntry
	Literal        *string // optional hard-coded literal override
}

// NewStringGen constructs a StringGen scoped to a length in [minLen, maxLen)
// drawn uniformly, defaulting to CharsetAlpha. As with NewIntGen, explicit
// bounds mean DefaultStringLenOdds is not applied — build a StringGen
// struct literal directly to opt into the boundary-seeking length odds.
func NewStringGen(minLen, maxLen int, charset string) *StringGen {
	if charset == "" {
		charset = CharsetAlpha
	}
	return &StringGen{MinLen: minLen, MaxLen: maxLen, Charset: charset}
}

func (g *StringGen) Build(ctx *BuildContext) (string, error) {
	if g.Literal != nil && ctx.Rand.MaybeDefault() {
		return *g.Literal, nil
	}
	length := g.buildLength(ctx)
	return ctx.Rand.Data(length, g.Charset), nil
}

func (g *StringGen) buildLength(ctx *BuildContext) int {
	if g.MinLen == g.MaxLen {
		return g.MinLen
	}
	odds := g.Odds
	if len(odds) == 0 {
		odds = []OddsEntry{BandIntRange(1.0, int64(g.MinLen), int64(g.MaxLen))}
	}
	return int(pickOddsValue(ctx.Rand, odds).(int64))
}
