package gram

import "github.com/sirupsen/logrus"

// ruleKey identifies one (category, name) pair in the depth table.
type ruleKey struct {
	cat, name string
}

// depthInfo records a rule's minimum reference-expansion depth and every
// Def that achieves it (ties matter for the pure-leaf Ref shortcut, which
// inspects the first tied Def).
type depthInfo struct {
	depth int
	defs  []*Def
}

type pendingRule struct {
	cat string
	def *Def
}

// Preprocess computes, per definition, the minimum number of Ref
// expansions needed to produce output, prunes provably unreachable rules,
// and annotates every Or node with its shortest-producing branches.
// Idempotent and cheap to call again after it has already run with no
// intervening AddDefinition (Registry tracks staleness).
func (r *Registry) Preprocess() {
	if r.analyzed {
		return
	}
	toPrune := r.findShortestPaths()
	r.pruneRules(toPrune)
	r.analyzed = true
}

// findShortestPaths runs a two-phase worklist fixpoint: first pass resolves
// every rule's minimum reference-expansion depth, looping until a full
// pass makes no progress; second pass annotates every Or node's
// ShortestBranches now that all resolvable depths are known.
func (r *Registry) findShortestPaths() []pendingRule {
	depths := make(map[ruleKey]*depthInfo)

	all := r.allDefs()

	var nonLeaf []pendingRule
	for _, item := range all {
		if len(collectRefs(item.def, nil)) == 0 {
			key := ruleKey{item.cat, item.def.Name}
			if existing, ok := depths[key]; ok {
				existing.defs = append(existing.defs, item.def)
			} else {
				depths[key] = &depthInfo{depth: 0, defs: []*Def{item.def}}
			}
			continue
		}
		nonLeaf = append(nonLeaf, pendingRule{item.cat, item.def})
	}

	unprocessedCount := 0
	for len(nonLeaf) > 0 {
		// Two full passes over the remaining queue with zero progress means
		// these rules form a cycle with no leaf escape: unreachable.
		if unprocessedCount/len(nonLeaf) == 2 {
			break
		}

		cur := nonLeaf[0]
		nonLeaf = nonLeaf[1:]

		d := r.depthOf(cur.cat, cur.def, depths, false)
		if d == nil {
			nonLeaf = append(nonLeaf, cur)
			unprocessedCount++
			continue
		}
		unprocessedCount = 0

		key := ruleKey{cur.cat, cur.def.Name}
		if existing, ok := depths[key]; !ok {
			depths[key] = &depthInfo{depth: *d, defs: []*Def{cur.def}}
		} else if *d < existing.depth {
			depths[key] = &depthInfo{depth: *d, defs: []*Def{cur.def}}
		} else if *d == existing.depth {
			existing.defs = append(existing.defs, cur.def)
		}

		logrus.WithFields(logrus.Fields{
			"category": cur.cat,
			"rule":      cur.def.Name,
			"depth":     *d,
		}).Debug("gram: analyzer resolved rule depth")
	}

	// Second pass: annotate every Or node's ShortestBranches, now that all
	// resolvable depths are known. Runs over leaf rules too, since a leaf
	// rule's Or of plain literals still benefits from a consistent
	// annotation (all ties kept, matching Or.Build's fallback when
	// ShortestBranches is nil).
	for _, item := range all {
		if _, pruned := isPending(nonLeaf, item); pruned {
			continue
		}
		r.depthOf(item.cat, item.def, depths, true)
	}

	for key, info := range depths {
		for _, d := range info.defs {
			if d.Name == key.name {
				d.depth = info.depth
				d.depthKnown = true
			}
		}
	}

	return nonLeaf
}

func isPending(list []pendingRule, item struct {
	cat string
	def *Def
}) (pendingRule, bool) {
	for _, p := range list {
		if p.def == item.def {
			return p, true
		}
	}
	return pendingRule{}, false
}

// pruneRules removes every rule in toPrune from the registry's definition
// list, unless it is exempt via no_prune. Idempotent.
func (r *Registry) pruneRules(toPrune []pendingRule) {
	for _, p := range toPrune {
		if r.isNoPrune(p.cat, p.def.Name) {
			continue
		}
		r.removeDefinition(p.cat, p.def.Name, p.def)
		logrus.WithFields(logrus.Fields{
			"category": p.cat,
			"rule":     p.def.Name,
		}).Warn("gram: pruned unreachable rule")
	}
}

// depthOf computes a field's minimum reference-expansion depth. Returns nil
// when the depth cannot yet be determined (some Ref target isn't resolved
// yet). When assignOr is true, every Or node visited has its
// ShortestBranches field populated as a side effect.
func (r *Registry) depthOf(cat string, field any, depths map[ruleKey]*depthInfo, assignOr bool) *int {
	switch f := field.(type) {
	case *Or:
		return r.depthOfOr(cat, f, depths, assignOr)
	case *And:
		return r.maxOverChildren(cat, f.Children, depths, assignOr)
	case *Def:
		return r.maxOverChildren(cat, f.Children, depths, assignOr)
	case *Quote:
		return r.maxOverChildren(cat, f.Children, depths, assignOr)
	case *Join:
		if f.Max != 0 {
			return r.maxOverChildren(cat, []any{f.First}, depths, assignOr)
		}
		return r.maxOverChildren(cat, f.Children, depths, assignOr)
	case *Opt:
		// shortest_is_nothing: may always produce nothing.
		return zeroDepth()
	case *Star:
		return zeroDepth()
	case *Ref:
		return r.depthOfRef(f, depths)
	default:
		// Literal, IntGen, FloatGen, StringGen, and plain Go values.
		return zeroDepth()
	}
}

func zeroDepth() *int {
	zero := 0
	return &zero
}

func (r *Registry) depthOfOr(cat string, o *Or, depths map[ruleKey]*depthInfo, assignOr bool) *int {
	minRef := -1
	var minVals []any
	for _, alt := range o.Alternatives {
		d := r.depthOf(cat, alt, depths, assignOr)
		if d == nil {
			continue
		}
		switch {
		case minRef == -1 || *d < minRef:
			minRef = *d
			minVals = []any{alt}
		case *d == minRef:
			minVals = append(minVals, alt)
		}
	}
	if minRef == -1 {
		return nil
	}
	if assignOr {
		o.ShortestBranches = minVals
	}
	out := minRef
	return &out
}

func (r *Registry) maxOverChildren(cat string, children []any, depths map[ruleKey]*depthInfo, assignOr bool) *int {
	max := -1
	for _, c := range children {
		d := r.depthOf(cat, c, depths, assignOr)
		if d == nil {
			return nil
		}
		if *d > max {
			max = *d
		}
	}
	if max == -1 {
		// No children: nothing is built, so no Ref is expanded.
		return zeroDepth()
	}
	return &max
}

func (r *Registry) depthOfRef(ref *Ref, depths map[ruleKey]*depthInfo) *int {
	key := ruleKey{ref.TargetCategory, ref.TargetName}
	info, ok := depths[key]
	if !ok {
		// A failsafe is built in place of a name its category does not
		// define, so such a Ref costs what the failsafe itself costs.
		if ref.Failsafe != nil && r.categoryExists(ref.TargetCategory) && !r.isLiveName(ref.TargetCategory, ref.TargetName) {
			return r.depthOf(ref.TargetCategory, ref.Failsafe, depths, false)
		}
		return nil
	}
	// Referencing a pure leaf rule (no Ref anywhere in its subtree) does
	// not count against recursion depth.
	if info.depth == 0 && len(info.defs) > 0 && len(collectRefs(info.defs[0], nil)) == 0 {
		return zeroDepth()
	}
	d := info.depth + 1
	return &d
}

// collectRefs recursively gathers every Ref reachable from field, without
// descending through a Ref's own target (Refs are the recursion boundary;
// the target is looked up by name, not inlined).
func collectRefs(field any, acc []*Ref) []*Ref {
	switch f := field.(type) {
	case *Ref:
		acc = append(acc, f)
	case *And:
		for _, c := range f.Children {
			acc = collectRefs(c, acc)
		}
	case *Join:
		if f.Max != 0 {
			acc = collectRefs(f.First, acc)
		} else {
			for _, c := range f.Children {
				acc = collectRefs(c, acc)
			}
		}
	case *Or:
		for _, c := range f.Alternatives {
			acc = collectRefs(c, acc)
		}
	case *Opt:
		for _, c := range f.Children {
			acc = collectRefs(c, acc)
		}
	case *Star:
		acc = collectRefs(f.inner, acc)
	case *Def:
		for _, c := range f.Children {
			acc = collectRefs(c, acc)
		}
	case *Quote:
		for _, c := range f.Children {
			acc = collectRefs(c, acc)
		}
	}
	return acc
}
