package gram

// PrereqSink is an ordered buffer into which a node (or its descendants) may
// push strings that must appear before the final result of the enclosing
// top-level build. Used for statement-before-expression patterns raised via
// FlushPrereqs.
type PrereqSink struct {
	items []string
}

func (s *PrereqSink) push(v string) { s.items = append(s.items, v) }

// Items returns the accumulated prerequisite strings, in order.
func (s *PrereqSink) Items() []string { return s.items }

// scope is one entry of the generator's scope stack, pushed on Def.Build
// entry and popped on exit. PrevAppend collects prerequisite/prefix strings
// promoted by a nested FlushPrereqs when the scope stack depth is > 1.
type scope struct {
	prevAppend []string
}

// BuildContext is threaded through every Field.Build call. It is created
// fresh for each sample produced by Registry.Generate and is never shared
// across concurrent builds.
type BuildContext struct {
	Rand     *Rand
	Registry *Registry
	Shortest bool

	prereq     *PrereqSink
	scopeStack []*scope
	refDepth   int
	maxRecur   int
}

func newBuildContext(rnd *Rand, reg *Registry, maxRecursion int) *BuildContext {
	return &BuildContext{
		Rand:     rnd,
		Registry: reg,
		prereq:   &PrereqSink{},
		refDepth: 1,
		maxRecur: maxRecursion,
	}
}

func (ctx *BuildContext) pushScope() {
	ctx.scopeStack = append(ctx.scopeStack, &scope{})
}

func (ctx *BuildContext) popScope() *scope {
	n := len(ctx.scopeStack)
	s := ctx.scopeStack[n-1]
	ctx.scopeStack = ctx.scopeStack[:n-1]
	return s
}

func (ctx *BuildContext) currentScope() *scope {
	return ctx.scopeStack[len(ctx.scopeStack)-1]
}

// promoteFlush implements the FlushPrereqs promotion rule: at scope-stack
// depth 1 (top-level Def), push prefix directly to the outer prereq sink;
// otherwise move the sink's pending items and prefix into the current
// scope's prevAppend buffer, which the enclosing Def appends back to the
// prereq sink when its build finishes.
func (ctx *BuildContext) promoteFlush(prefix string) {
	if len(ctx.scopeStack) <= 1 {
		ctx.prereq.push(prefix)
		return
	}
	s := ctx.currentScope()
	s.prevAppend = append(s.prevAppend, ctx.prereq.Items()...)
	ctx.prereq.items = nil
	s.prevAppend = append(s.prevAppend, prefix)
}

// Field is a node in the generator tree. Build produces the node's output
// string, optionally enqueuing prerequisite strings into ctx's sink and
// honoring ctx.Shortest to force the reference-minimum output.
type Field interface {
	Build(ctx *BuildContext) (string, error)
}

// buildChild builds a native value (string/int/float) or a Field uniformly.
func buildChild(ctx *BuildContext, v any) (string, error) {
	switch x := v.(type) {
	case Field:
		return x.Build(ctx)
	case string:
		return x, nil
	default:
		return formatLiteral(x), nil
	}
}
