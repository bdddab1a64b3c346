package gram

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// generateConfig collects the parameters of a Generate call, set via
// GenerateOption.
type generateConfig struct {
	count          int
	category       string
	group          string
	preferred      []string
	preferredRatio float64
	maxRecursion   int
	autoProcess    bool
	seed           *uint64
}

// GenerateOption configures a Registry.Generate call.
type GenerateOption func(*generateConfig)

// WithCount sets how many samples Generate must return. Required.
func WithCount(n int) GenerateOption {
	return func(c *generateConfig) { c.count = n }
}

// WithCategory targets generation at cat directly. Exactly one of
// WithCategory / WithGroup must be given.
func WithCategory(cat string) GenerateOption {
	return func(c *generateConfig) { c.category = cat }
}

// WithGroup targets generation at group's registered top category.
// Exactly one of WithCategory / WithGroup must be given.
func WithGroup(group string) GenerateOption {
	return func(c *generateConfig) { c.group = group }
}

// WithPreferred sets the preferred key set (definition names or group
// names, expanded via Registry.GetGroupKeys).
func WithPreferred(keys ...string) GenerateOption {
	return func(c *generateConfig) { c.preferred = keys }
}

// WithPreferredRatio sets the probability that the next sample's rule name
// is drawn from the preferred key set rather than uniformly over the
// category. Default 0.5.
func WithPreferredRatio(ratio float64) GenerateOption {
	return func(c *generateConfig) { c.preferredRatio = ratio }
}

// WithMaxRecursion caps reference-depth before Ref.Build forces shortest
// mode. 0 disables the cap (not recommended — nothing then guarantees
// termination on a self-referential grammar). Default 50.
func WithMaxRecursion(n int) GenerateOption {
	return func(c *generateConfig) { c.maxRecursion = n }
}

// WithAutoProcess controls whether a stale analyzer is run automatically
// before generating. Default true.
func WithAutoProcess(b bool) GenerateOption {
	return func(c *generateConfig) { c.autoProcess = b }
}

// WithSeed reseeds the registry's random source before generating, so that
// seed(k); Generate(...) is reproducible.
func WithSeed(seed uint64) GenerateOption {
	return func(c *generateConfig) { c.seed = &seed }
}

// Generate produces exactly count non-empty samples. Exactly one of
// WithCategory/WithGroup must be supplied. ctx is checked for cancellation
// between samples only — building a single sample never blocks. An empty
// build is not counted and another is drawn, so a category whose builds
// are always empty keeps Generate drawing until ctx is cancelled.
func (r *Registry) Generate(ctx context.Context, opts ...GenerateOption) ([]string, error) {
	cfg := generateConfig{preferredRatio: 0.5, autoProcess: true, maxRecursion: 50}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.count <= 0 {
		return nil, errors.New("gram: Generate requires WithCount(n) with n > 0")
	}
	if (cfg.category == "") == (cfg.group == "") {
		return nil, errors.New("gram: Generate requires exactly one of WithCategory or WithGroup")
	}

	cat := cfg.category
	if cat == "" {
		topCat, ok := r.GroupTopCat(cfg.group)
		if !ok {
			return nil, errors.Errorf("gram: group %q has no registered top category", cfg.group)
		}
		cat = topCat
	}

	if cfg.seed != nil {
		r.rnd.Seed(*cfg.seed)
	}

	if cfg.autoProcess && !r.analyzed {
		r.Preprocess()
	}

	if !r.categoryExists(cat) {
		return nil, errors.Wrapf(ErrCategoryMissing, "category %q", cat)
	}
	if len(r.Names(cat)) == 0 {
		return nil, errors.Wrapf(ErrEmptyCategory, "category %q", cat)
	}

	preferredKeys := r.GetGroupKeys(cat, cfg.preferred)

	out := make([]string, 0, cfg.count)
	for len(out) < cfg.count {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}

		sample, err := r.generateOne(cat, preferredKeys, cfg.preferredRatio, cfg.maxRecursion)
		if err != nil {
			if isRuntimeBuildError(err) {
				logrus.WithError(err).WithField("category", cat).Warn("gram: runtime build error, discarding attempt")
				continue
			}
			return nil, err
		}
		if sample == "" {
			continue
		}
		out = append(out, sample)
	}
	return out, nil
}

// generateOne runs one pick-name / build / commit-or-discard cycle,
// producing a single sample string.
func (r *Registry) generateOne(cat string, preferredKeys []string, preferredRatio float64, maxRecursion int) (string, error) {
	name, err := r.pickName(cat, preferredKeys, preferredRatio)
	if err != nil {
		return "", err
	}

	def, err := r.GetRef(r.rnd, cat, name)
	if err != nil {
		return "", err
	}

	r.beginStaging()
	buildCtx := newBuildContext(r.rnd, r, maxRecursion)

	body, err := safeBuild(def, buildCtx)
	if err != nil {
		r.discardStaging()
		return "", err
	}
	r.commitStaging()

	var sb strings.Builder
	for _, prereq := range buildCtx.prereq.Items() {
		sb.WriteString(prereq)
	}
	sb.WriteString(body)
	return sb.String(), nil
}

// pickName, with probability preferredRatio, picks uniformly from the
// expanded preferred key set; if that name was pruned meanwhile, it falls
// back to uniform over all current names. Otherwise it draws uniform over
// all current names directly.
func (r *Registry) pickName(cat string, preferredKeys []string, preferredRatio float64) (string, error) {
	live := r.Names(cat)
	if len(live) == 0 {
		return "", errors.Wrapf(ErrEmptyCategory, "category %q", cat)
	}

	if len(preferredKeys) > 0 && r.rnd.Maybe(preferredRatio) {
		name := Choice(r.rnd, preferredKeys)
		if r.isLiveName(cat, name) {
			return name, nil
		}
	}
	return Choice(r.rnd, live), nil
}

// safeBuild runs def.Build, converting any panic (an integer division by
// zero, an out-of-range index, anything else a Field implementation might
// do) into a RuntimeBuild error, so the caller can discard staged defs and
// retry without counting the attempt. A Go stack overflow is a fatal
// runtime error rather than a panic and is not caught here.
func safeBuild(def *Def, buildCtx *BuildContext) (result string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = newRuntimeBuildError(errors.Errorf("%v", p))
		}
	}()
	return def.Build(buildCtx)
}
