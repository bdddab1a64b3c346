// Package dsl parses a textual rule-definition notation into an AST and
// compiles that AST into a *gram.Registry. This is the "collaborator" the
// core engine delegates grammar interpretation to: gram itself never reads
// grammar source.
package dsl

import (
	"io"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Atom is a child of a sequence: a literal, a generator call, a named
// reference, or a wrapping construct (quote/opt/join/group).
type Atom interface {
	atom()
}

// OrExpr is a `|`-separated list of sequences; a single-alternative OrExpr
// degenerates to a plain sequence.
type OrExpr struct {
	Pos          lexer.Position
	Alternatives []*AndExpr `@@ ( Pipe @@ )*`
}

// AndExpr is a juxtaposed (space-separated) sequence of atoms.
type AndExpr struct {
	Pos   lexer.Position
	Items []Atom `@@+`
}

// StringLit is a quoted string literal atom.
type StringLit struct {
	Pos   lexer.Position
	Value string `@String`
}

func (StringLit) atom() {}

// RefAtom is `ref "name"` or `ref "name" in "category"`. A missing
// `in "category"` clause resolves to the enclosing def's own category at
// compile time.
type RefAtom struct {
	Pos      lexer.Position
	Name     string  `KwRef @String`
	Category *string `( KwIn @String )?`
}

func (RefAtom) atom() {}

// GenArg is one `key=value` argument to a generator call.
type GenArg struct {
	Pos   lexer.Position
	Key   string `@( KwMin | KwMax | KwCharset | KwSigned ) Equals`
	Value string `@( Number | String | Ident )`
}

// GenCall is `int(...)`, `float(...)`, or `string(...)`.
type GenCall struct {
	Pos  lexer.Position
	Kind string    `@( KwInt | KwFloat | KwStr )`
	Args []*GenArg `LParen ( @@ ( Comma @@ )* )? RParen`
}

func (GenCall) atom() {}

// QuoteAtom is `quote raw|code|htmljs ['c'] { body }`.
type QuoteAtom struct {
	Pos  lexer.Position
	Mode string  `KwQuote @( KwRaw | KwCode | KwHtmljs )`
	Char *string `@Char?`
	Body *OrExpr `LBrace @@ RBrace`
}

func (QuoteAtom) atom() {}

// OptAtom is `opt[(prob)] { body }`; prob defaults to 0.5 when omitted.
type OptAtom struct {
	Pos  lexer.Position
	Prob *float64 `KwOpt ( LParen @Number RParen )?`
	Body *OrExpr  `LBrace @@ RBrace`
}

func (OptAtom) atom() {}

// JoinAtom is `join(max=N) { body }`: 1..=N repetitions of body.
type JoinAtom struct {
	Pos  lexer.Position
	Max  float64 `KwJoin LParen KwMax Equals @Number RParen`
	Body *OrExpr `LBrace @@ RBrace`
}

func (JoinAtom) atom() {}

// GroupAtom is a parenthesized sub-sequence, optionally followed by `+`
// (one-or-more) or `*` (zero-or-more) repetition sugar.
type GroupAtom struct {
	Pos  lexer.Position
	Body *OrExpr `LParen @@ RParen`
	Rep  string  `@( Plus | Star )?`
}

func (GroupAtom) atom() {}

// DefNode is one `def "name" [no_prune] [ body ]` rule declaration.
type DefNode struct {
	Pos     lexer.Position
	Name    string  `KwDef @String`
	NoPrune bool    `@KwNoPrune?`
	Body    *OrExpr `LBracket @@ RBracket`
}

// Source is a parsed grammar file: one category/group header followed by
// any number of rule definitions.
type Source struct {
	Pos      lexer.Position
	Category string     `KwCategory @String`
	Group    *string    `( KwGroup @String )?`
	TopCat   bool       `@KwTopCategory?`
	Defs     []*DefNode `@@*`
}

var lex = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "Char", Pattern: `'(?:\\.|[^'\\])'`},
	{Name: "Number", Pattern: `[-+]?(?:\d*\.)?\d+`},
	{Name: "KwCategory", Pattern: `category\b`},
	{Name: "KwGroup", Pattern: `group\b`},
	{Name: "KwTopCategory", Pattern: `top_category\b`},
	{Name: "KwDef", Pattern: `def\b`},
	{Name: "KwNoPrune", Pattern: `no_prune\b`},
	{Name: "KwRef", Pattern: `ref\b`},
	{Name: "KwIn", Pattern: `in\b`},
	{Name: "KwQuote", Pattern: `quote\b`},
	{Name: "KwRaw", Pattern: `raw\b`},
	{Name: "KwCode", Pattern: `code\b`},
	{Name: "KwHtmljs", Pattern: `htmljs\b`},
	{Name: "KwOpt", Pattern: `opt\b`},
	{Name: "KwJoin", Pattern: `join\b`},
	{Name: "KwInt", Pattern: `int\b`},
	{Name: "KwFloat", Pattern: `float\b`},
	{Name: "KwStr", Pattern: `string\b`},
	{Name: "KwMin", Pattern: `min\b`},
	{Name: "KwMax", Pattern: `max\b`},
	{Name: "KwCharset", Pattern: `charset\b`},
	{Name: "KwSigned", Pattern: `signed\b`},
	{Name: "LBracket", Pattern: `\[`},
	{Name: "RBracket", Pattern: `\]`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "LBrace", Pattern: `\{`},
	{Name: "RBrace", Pattern: `\}`},
	{Name: "Pipe", Pattern: `\|`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Equals", Pattern: `=`},
	{Name: "Plus", Pattern: `\+`},
	{Name: "Star", Pattern: `\*`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
})

var parser = participle.MustBuild[Source](
	participle.Lexer(lex),
	participle.Elide("Whitespace", "Comment"),
	participle.Union[Atom](
		QuoteAtom{},
		OptAtom{},
		JoinAtom{},
		GroupAtom{},
		RefAtom{},
		GenCall{},
		StringLit{},
	),
)

// Parse reads one grammar source file from r.
func Parse(r io.Reader) (*Source, error) {
	return parser.Parse("", r)
}
