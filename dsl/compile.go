package dsl

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/mseclab/gramfuzz/gram"
)

// Compile walks a parsed Source and registers every def it declares into
// reg, under src.Category. A group header (or, absent one, the category
// name itself) becomes the def's category-group membership; a
// top_category marker registers reg.SetGroupTopCat accordingly.
func Compile(reg *gram.Registry, src *Source) error {
	group := src.Category
	if src.Group != nil {
		group = *src.Group
	}
	if src.TopCat {
		reg.SetGroupTopCat(group, src.Category)
	}

	for _, d := range src.Defs {
		children, err := compileOr(src.Category, d.Body)
		if err != nil {
			return errors.Wrapf(err, "def %q", d.Name)
		}
		gram.NewDef(reg, src.Category, d.Name, d.NoPrune, group, children...)
	}
	return nil
}

func compileOr(cat string, o *OrExpr) ([]any, error) {
	if len(o.Alternatives) == 1 {
		return compileAnd(cat, o.Alternatives[0])
	}

	alts := make([]any, 0, len(o.Alternatives))
	for _, a := range o.Alternatives {
		items, err := compileAnd(cat, a)
		if err != nil {
			return nil, err
		}
		alts = append(alts, collapse(items))
	}
	return []any{gram.Alt(alts...)}, nil
}

func compileAnd(cat string, a *AndExpr) ([]any, error) {
	items := make([]any, 0, len(a.Items))
	for _, atom := range a.Items {
		v, err := compileAtom(cat, atom)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

// collapse folds a compiled child list down to a single value: a bare
// value when there is exactly one, an And node otherwise. Used wherever
// the grammar nests an OrExpr inside a construct that takes one child
// (Quote, Opt, Join, Group).
func collapse(items []any) any {
	if len(items) == 1 {
		return items[0]
	}
	return gram.Concat("", items...)
}

func compileAtom(cat string, atom Atom) (any, error) {
	switch a := atom.(type) {
	case *StringLit:
		return gram.Lit(unquoteString(a.Value)), nil

	case *RefAtom:
		target := cat
		if a.Category != nil {
			target = unquoteString(*a.Category)
		}
		return gram.To(target, unquoteString(a.Name)), nil

	case *GenCall:
		return compileGenCall(a)

	case *QuoteAtom:
		inner, err := compileOr(cat, a.Body)
		if err != nil {
			return nil, err
		}
		mode := gram.QuoteRaw
		switch a.Mode {
		case "code":
			mode = gram.QuoteCode
		case "htmljs":
			mode = gram.QuoteHTMLJS
		}
		var quoteChar byte
		if a.Char != nil {
			quoteChar = unquoteChar(*a.Char)
		}
		return gram.Wrap(mode, quoteChar, inner...), nil

	case *OptAtom:
		inner, err := compileOr(cat, a.Body)
		if err != nil {
			return nil, err
		}
		prob := 0.0
		if a.Prob != nil {
			prob = *a.Prob
		}
		return gram.Maybe(prob, inner...), nil

	case *JoinAtom:
		inner, err := compileOr(cat, a.Body)
		if err != nil {
			return nil, err
		}
		return gram.Repeat(collapse(inner), int(a.Max), ""), nil

	case *GroupAtom:
		inner, err := compileOr(cat, a.Body)
		if err != nil {
			return nil, err
		}
		val := collapse(inner)
		switch a.Rep {
		case "+":
			return gram.Plus(val, 10), nil
		case "*":
			return gram.Many(val, 10), nil
		default:
			return val, nil
		}

	default:
		return nil, errors.Errorf("dsl: unhandled atom type %T", atom)
	}
}

func compileGenCall(g *GenCall) (any, error) {
	args := make(map[string]string, len(g.Args))
	for _, arg := range g.Args {
		args[arg.Key] = arg.Value
	}

	switch g.Kind {
	case "int":
		min, err := intArg(args, "min", 0)
		if err != nil {
			return nil, err
		}
		max, err := intArg(args, "max", 100)
		if err != nil {
			return nil, err
		}
		return gram.NewIntGen(min, max, args["signed"] == "true"), nil

	case "float":
		min, err := floatArg(args, "min", 0)
		if err != nil {
			return nil, err
		}
		max, err := floatArg(args, "max", 100)
		if err != nil {
			return nil, err
		}
		return gram.NewFloatGen(min, max, args["signed"] == "true"), nil

	case "string":
		minLen, err := intArg(args, "min", 0)
		if err != nil {
			return nil, err
		}
		maxLen, err := intArg(args, "max", 10)
		if err != nil {
			return nil, err
		}
		return gram.NewStringGen(int(minLen), int(maxLen), resolveCharset(args["charset"])), nil

	default:
		return nil, errors.Errorf("dsl: unknown generator %q", g.Kind)
	}
}

func intArg(args map[string]string, key string, def int64) (int64, error) {
	v, ok := args[key]
	if !ok {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "argument %q", key)
	}
	return n, nil
}

func floatArg(args map[string]string, key string, def float64) (float64, error) {
	v, ok := args[key]
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "argument %q", key)
	}
	return f, nil
}

func resolveCharset(name string) string {
	switch name {
	case "alphalower":
		return gram.CharsetAlphaLower
	case "alphaupper":
		return gram.CharsetAlphaUpper
	case "alphanum":
		return gram.CharsetAlphaNum
	case "num":
		return gram.CharsetNum
	case "spaces":
		return gram.CharsetSpaces
	case "all":
		return gram.CharsetAll()
	case "", "alpha":
		return gram.CharsetAlpha
	default:
		return gram.CharsetAlpha
	}
}

// unquoteString strips the surrounding double quotes a String token
// carries and unescapes \" and \\.
func unquoteString(tok string) string {
	s := strings.TrimPrefix(strings.TrimSuffix(tok, `"`), `"`)
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\\`, `\`)
	return s
}

// unquoteChar extracts the single byte a Char token carries, e.g. 'x' or
// the escape '\''.
func unquoteChar(tok string) byte {
	inner := strings.TrimPrefix(strings.TrimSuffix(tok, "'"), "'")
	if len(inner) == 2 && inner[0] == '\\' {
		return inner[1]
	}
	if len(inner) == 0 {
		return 0
	}
	return inner[0]
}
