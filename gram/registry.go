package gram

import (
	"sort"

	"github.com/pkg/errors"
)

// Def is the top-level form for a named rule: semantically an And plus
// registration metadata. Constructing a Def registers it with reg at
// construction time.
type Def struct {
	Name      string
	Category  string
	Children  []any
	Separator string
	NoPrune   bool

	// analyzer-computed fields, valid only after Registry.Preprocess.
	depth      int
	depthKnown bool
}

// NewDef constructs a rule definition named name in category cat and
// registers it with reg.
func NewDef(reg *Registry, cat, name string, noPrune bool, group string, children ...any) *Def {
	d := &Def{Name: name, Category: cat, Children: children, NoPrune: noPrune}
	reg.AddDefinition(cat, name, d, noPrune, group)
	return d
}

func (d *Def) Build(ctx *BuildContext) (string, error) {
	ctx.pushScope()
	defer ctx.popScope()

	v, err := buildAndLike(ctx, d.Children, d.Separator)
	if err != nil {
		return "", err
	}
	s := ctx.currentScope()
	if len(s.prevAppend) > 0 {
		ctx.prereq.items = append(ctx.prereq.items, s.prevAppend...)
	}
	return v, nil
}

// Registry holds named, multi-valued rule definitions grouped by category
// and by category group (the file/module that declared them).
type Registry struct {
	defs map[string]map[string][]*Def
	// defOrder preserves insertion order of names within a category, since
	// Go maps are unordered and the "*" wildcard and generation loop need a
	// stable, reproducible key set for a given seed.
	defOrder map[string][]string

	groups      map[string]map[string][]string // cat -> group -> names (insertion order)
	groupTopCat map[string]string

	noPrune map[string]map[string]bool

	analyzed bool

	// rnd is the random source owned by this registry's generator. Every
	// Generate call funnels through it, so seeding it reproduces a full run.
	rnd *Rand

	// staging is non-nil only during an in-progress sample build; it
	// quarantines AddDefinition calls made as a build side effect until
	// Generate commits or discards them.
	staging *[]stagedAdd
}

type stagedAdd struct {
	cat, name string
	def       *Def
	noPrune   bool
	group     string
}

// NewRegistry returns an empty Registry with a default-seeded random source.
func NewRegistry() *Registry {
	return &Registry{
		defs:        make(map[string]map[string][]*Def),
		defOrder:    make(map[string][]string),
		groups:      make(map[string]map[string][]string),
		groupTopCat: make(map[string]string),
		noPrune:     make(map[string]map[string]bool),
		rnd:         NewRand(1),
	}
}

// AddDefinition appends def to cat/name's definition list, records group
// membership, and marks def no-prune if requested. Marks the analyzer cache
// stale. When called while a sample build is in progress, the addition is
// quarantined in the staging buffer instead of touching the live registry.
func (r *Registry) AddDefinition(cat, name string, def *Def, noPrune bool, group string) {
	if r.staging != nil {
		*r.staging = append(*r.staging, stagedAdd{cat, name, def, noPrune, group})
		return
	}
	r.addDefinitionLive(cat, name, def, noPrune, group)
}

func (r *Registry) addDefinitionLive(cat, name string, def *Def, noPrune bool, group string) {
	r.analyzed = false

	if r.defs[cat] == nil {
		r.defs[cat] = make(map[string][]*Def)
	}
	if _, ok := r.defs[cat][name]; !ok {
		r.defOrder[cat] = append(r.defOrder[cat], name)
	}
	r.defs[cat][name] = append(r.defs[cat][name], def)

	if group != "" {
		if r.groups[cat] == nil {
			r.groups[cat] = make(map[string][]string)
		}
		r.groups[cat][group] = append(r.groups[cat][group], name)
	}

	if noPrune {
		if r.noPrune[cat] == nil {
			r.noPrune[cat] = make(map[string]bool)
		}
		r.noPrune[cat][name] = true
	}
}

// SetGroupTopCat defines the default category for group-keyed generation.
func (r *Registry) SetGroupTopCat(group, cat string) {
	r.groupTopCat[group] = cat
}

// GroupTopCat returns the default category registered for group, if any.
func (r *Registry) GroupTopCat(group string) (string, bool) {
	c, ok := r.groupTopCat[group]
	return c, ok
}

// Names returns the current (possibly pruned) rule names in cat, in
// insertion order.
func (r *Registry) Names(cat string) []string {
	var out []string
	for _, n := range r.defOrder[cat] {
		if _, ok := r.defs[cat][n]; ok {
			out = append(out, n)
		}
	}
	return out
}

// GetRef uniformly picks one definition among cat/name's competing
// definitions. The reserved name "*" picks any name in cat uniformly first
// (among names currently live in the registry), then a definition within
// that name.
func (r *Registry) GetRef(rnd *Rand, cat, name string) (*Def, error) {
	catDefs, ok := r.defs[cat]
	if !ok {
		return nil, errors.Wrapf(ErrCategoryMissing, "category %q", cat)
	}

	if name == "*" {
		names := r.Names(cat)
		if len(names) == 0 {
			return nil, errors.Wrapf(ErrEmptyCategory, "category %q", cat)
		}
		name = Choice(rnd, names)
	}

	defList, ok := catDefs[name]
	if !ok || len(defList) == 0 {
		return nil, errors.Wrapf(ErrNameMissing, "name %q in category %q", name, cat)
	}

	return Choice(rnd, defList), nil
}

// GetGroupKeys expands preferred entries: for each preferred entry, if it
// names a group present in cat, it expands to that group's names in cat;
// otherwise, if it names a definition directly, it is included as-is.
func (r *Registry) GetGroupKeys(cat string, preferred []string) []string {
	var out []string
	groupsInCat := r.groups[cat]
	for _, p := range preferred {
		if names, ok := groupsInCat[p]; ok {
			out = append(out, names...)
			continue
		}
		if _, ok := r.defs[cat][p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// removeDefinition deletes def from cat/name's list; if the list becomes
// empty, the name is removed from the category entirely. Used by the
// analyzer's pruning pass. Idempotent.
func (r *Registry) removeDefinition(cat, name string, def *Def) {
	list := r.defs[cat][name]
	for i, d := range list {
		if d == def {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(r.defs[cat], name)
		return
	}
	r.defs[cat][name] = list
}

// beginStaging opens a quarantine buffer for AddDefinition calls made
// during the in-progress build.
func (r *Registry) beginStaging() {
	buf := make([]stagedAdd, 0)
	r.staging = &buf
}

// commitStaging replays every quarantined addition into the live registry
// and closes the staging buffer. Called on a successful sample build.
func (r *Registry) commitStaging() {
	buf := r.staging
	r.staging = nil
	if buf == nil {
		return
	}
	for _, s := range *buf {
		r.addDefinitionLive(s.cat, s.name, s.def, s.noPrune, s.group)
	}
}

// discardStaging drops every quarantined addition, leaving the live
// registry exactly as it was before the attempt. Called on a RuntimeBuild
// error, guaranteeing the build's commit-or-rollback invariant.
func (r *Registry) discardStaging() {
	r.staging = nil
}

// categoryExists reports whether cat has ever had a definition registered,
// independent of whether any currently survive pruning.
func (r *Registry) categoryExists(cat string) bool {
	_, ok := r.defs[cat]
	return ok
}

// isLiveName reports whether name currently survives in cat (i.e. was not
// pruned).
func (r *Registry) isLiveName(cat, name string) bool {
	_, ok := r.defs[cat][name]
	return ok
}

// isNoPrune reports whether (cat, name) is exempt from pruning.
func (r *Registry) isNoPrune(cat, name string) bool {
	return r.noPrune[cat] != nil && r.noPrune[cat][name]
}

// allDefs iterates every (category, def) pair currently registered, in a
// stable order: categories sorted by name, then defOrder within each.
func (r *Registry) allDefs() []struct {
	cat string
	def *Def
} {
	var out []struct {
		cat string
		def *Def
	}
	cats := make([]string, 0, len(r.defOrder))
	for cat := range r.defOrder {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	for _, cat := range cats {
		for _, name := range r.defOrder[cat] {
			for _, d := range r.defs[cat][name] {
				out = append(out, struct {
					cat string
					def *Def
				}{cat, d})
			}
		}
	}
	return out
}
