package flowdt

import "sort"

// defaultLeafThreshold is the leaf-size threshold above which the
// builder attempts a split. Small enough that a leaf's linear scan
// stays cheap, large enough to keep the tree shallow for large rule
// sets.
const defaultLeafThreshold = 8

// maxTreeDepth bounds every root-to-leaf path so traversal stacks can
// use a fixed-size array instead of growing dynamically.
const maxTreeDepth = 64

// builder carries the per-build state (leaf-id counter) threaded
// through the recursive build.
type builder struct {
	threshold int
	nextLeaf  uint64
}

// build runs the recursive bulk-build algorithm over rules. It
// returns the freshly allocated subtree root, or nil if rules is
// empty.
func (b *builder) build(rules []Rule, depth int) *node {
	if len(rules) == 0 {
		return nil
	}
	if len(rules) <= b.threshold || depth >= maxTreeDepth {
		return b.newLeaf(rules)
	}

	field, pivot, ok := b.chooseSplit(rules)
	if !ok {
		return b.newLeaf(rules)
	}

	left := make([]Rule, 0, len(rules))
	right := make([]Rule, 0, len(rules))
	for _, r := range rules {
		lo, hi := r.Match().Range(field)
		switch {
		case lo < pivot && pivot <= hi:
			// The rule's range straddles the pivot: it must stay
			// reachable on both sides, so duplicate it into each.
			left = append(left, r)
			right = append(right, r)
		case lo >= pivot:
			right = append(right, r)
		default:
			left = append(left, r)
		}
	}

	if len(left) == 0 || len(right) == 0 {
		// Every rule ended up on one side; this field can't separate
		// the set any further, so stop here with a single leaf.
		return b.newLeaf(rules)
	}

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	return newInternal(field, testExact, pivot, 0, l, r)
}

func (b *builder) newLeaf(rules []Rule) *node {
	n := newLeaf(rules, b.nextLeaf)
	b.nextLeaf++
	return n
}

// chooseSplit walks a fixed candidate order and returns the first
// field for which a usable split value exists.
func (b *builder) chooseSplit(rules []Rule) (FieldID, uint32, bool) {
	for _, field := range splitCandidates {
		if pivot, ok := medianSplitValue(rules, field); ok {
			return field, pivot, true
		}
	}
	return 0, 0, false
}

// medianSplitValue collects the distinct non-wildcarded lower-bound
// values of rules for field and returns their median, or false if
// fewer than two distinct values exist (a field can't separate a set
// it doesn't distinguish within).
func medianSplitValue(rules []Rule, field FieldID) (uint32, bool) {
	seen := make(map[uint32]struct{}, len(rules))
	vals := make([]uint32, 0, len(rules))
	for _, r := range rules {
		m := r.Match()
		if m.Wildcarded(field) {
			continue
		}
		lo, _ := m.Range(field)
		if _, dup := seen[lo]; dup {
			continue
		}
		seen[lo] = struct{}{}
		vals = append(vals, lo)
	}
	if len(vals) < 2 {
		return 0, false
	}
	sort.Slice(vals, func(i, j int) bool { return vals[i] < vals[j] })
	return vals[len(vals)/2], true
}

// buildTree is the external entry point used by Classifier.Build and
// by the lazy first-lookup trigger.
func buildTree(rules []Rule, threshold int) *node {
	if threshold <= 0 {
		threshold = defaultLeafThreshold
	}
	b := &builder{threshold: threshold}
	return b.build(rules, 0)
}
