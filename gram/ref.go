package gram

import "github.com/pkg/errors"

// Ref looks up a rule by name in a category, picks one definition uniformly
// among competing definitions with the same name, and builds it. Each Ref
// traversal increments ctx's reference-depth counter; once the counter
// reaches the build's recursion cap (set by WithMaxRecursion; 0 disables
// it), nested builds are forced into shortest mode, guaranteeing
// termination regardless of grammar shape.
type Ref struct {
	TargetName     string
	TargetCategory string
	Failsafe       any // built in place of a missing name, when set
}

// To constructs a Ref targeting name in cat.
func To(cat, name string) *Ref {
	return &Ref{TargetName: name, TargetCategory: cat}
}

// WithFailsafe returns a copy of r whose missing-name lookups fall back to
// building value instead of raising ErrNameMissing.
func (r *Ref) WithFailsafe(value any) *Ref {
	clone := *r
	clone.Failsafe = value
	return &clone
}

func (r *Ref) Build(ctx *BuildContext) (string, error) {
	ctx.refDepth++
	defer func() { ctx.refDepth-- }()

	def, err := ctx.Registry.GetRef(ctx.Rand, r.TargetCategory, r.TargetName)
	if err != nil {
		if r.Failsafe != nil && errors.Is(err, ErrNameMissing) {
			return buildChild(ctx, r.Failsafe)
		}
		return "", err
	}

	forceShortest := ctx.maxRecur > 0 && ctx.refDepth >= ctx.maxRecur
	if forceShortest && !ctx.Shortest {
		ctx.Shortest = true
		defer func() { ctx.Shortest = false }()
	}
	return def.Build(ctx)
}
