package flowdt

// Lookup traverses the published tree for flow at version and returns
// the highest-priority visible rule whose match is satisfied by flow,
// or (nil, false) if none exists.
//
// Once the tree has been materialized, Lookup is wait-free: it
// performs a single acquire-load of the root and then follows child
// pointers, each written-before-visible by the writer, without
// blocking or mutating shared state. The very first Lookup (or
// Cursor) called before any rule has triggered a build instead
// materializes the tree from the pending buffer and so must be
// serialized like any other mutation until that one-time build has
// happened.
func (c *Classifier) Lookup(version Version, flow Flow) (Rule, bool) {
	return c.LookupWildcard(version, flow, nil)
}

// internal node test semantics, shared with mutation traversal, live
// on node.evalValue: EXACT is a threshold test (see its doc comment).
//
// LookupWildcard is [Classifier.Lookup] with an optional wildcard-mask
// accumulator. When acc is non-nil, it is narrowed by the fields
// tested along the traversal path, by every field cared about by a
// leaf rule scanned before the answer that the flow failed to match,
// and by the matched rule's own mask.
// The resulting mask is a conservative megaflow: any flow agreeing
// with the looked-up flow on every bit acc pins would receive the
// same answer.
func (c *Classifier) LookupWildcard(version Version, flow Flow, acc *WildcardMask) (Rule, bool) {
	c.ensureBuilt()
	root := c.loadRoot()
	if root == nil {
		return nil, false
	}
	if acc != nil {
		acc.reset()
	}

	n := root
	depth := 0
	for !n.isLeaf() {
		if depth >= maxTreeDepth {
			// Invariant 4 guarantees this never happens for a tree built
			// by this package; guard against a corrupted/foreign root.
			return nil, false
		}
		v := flow.Get(n.field)
		outcome := n.evalValue(v)
		if acc != nil {
			acc.pin(n.field, v)
		}
		if outcome {
			n = n.right
		} else {
			n = n.left
		}
		depth++
	}

	for _, r := range n.rules {
		if !r.Match().Satisfies(flow) {
			if acc != nil {
				// The rule lost because of these fields; a flow differing
				// on them could match it instead.
				m := r.Match()
				for f := FieldID(0); f < numFields; f++ {
					if m.Mask(f) != 0 {
						acc.pin(f, flow.Get(f))
					}
				}
			}
			continue
		}
		if !ruleVisible(r, version) {
			continue
		}
		// Leaf is priority-sorted: first satisfying, visible rule wins.
		if acc != nil {
			acc.fold(r.Match())
		}
		return r, true
	}
	return nil, false
}

// WildcardMask accumulates the set of bits a lookup actually depended
// on, for downstream megaflow caching. The zero value is fully
// wildcarded (cares about nothing).
type WildcardMask struct {
	value [numFields]uint32
	mask  [numFields]uint32
}

func (w *WildcardMask) reset() {
	*w = WildcardMask{}
}

// pin records that the lookup's outcome depended on field's exact
// value v at a decision node.
func (w *WildcardMask) pin(field FieldID, v uint32) {
	w.mask[field] = ^uint32(0)
	w.value[field] = v
}

// fold widens the accumulator with the matched rule's own cared-about
// bits. The widening is conservative: once a field is pinned, its
// mask only ever grows.
func (w *WildcardMask) fold(m Match) {
	for f := FieldID(0); f < numFields; f++ {
		rm := m.Mask(f)
		if rm == 0 {
			continue
		}
		if w.mask[f] == 0 {
			w.value[f] = m.Value(f)
		}
		w.mask[f] |= rm
	}
}

// Match returns the accumulated mask as a Match, suitable for
// installing as a megaflow cache entry.
func (w WildcardMask) Match() Match {
	var m Match
	m.value = w.value
	m.mask = w.mask
	return m
}
