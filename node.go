package flowdt

import "sort"

// testKind is the closed enum of internal-node test kinds. The node
// variant and test kind are closed tagged sums: the implementation
// favors a dense switch over virtual dispatch, since the set of kinds
// never grows at runtime.
type testKind uint8

const (
	testExact testKind = iota
	testPrefix
	testRange // reserved; always evaluates false.
)

// nodeKind discriminates the tagged variant: internal test node or
// leaf rule-list.
type nodeKind uint8

const (
	nodeInternal nodeKind = iota
	nodeLeaf
)

// node is the tree's tagged-variant node. Every non-root node is
// owned by exactly one parent link; the root is owned by the
// Classifier.
type node struct {
	kind nodeKind

	// Internal-node fields. left = "test false", right = "test true".
	field FieldID
	test  testKind
	value uint32 // exact value, or prefix value
	plen  uint8  // prefix length in bits, only meaningful when test == testPrefix
	left  *node
	right *node

	// Leaf fields. rules is kept sorted by descending priority (equal
	// priorities may appear); leafID is a diagnostic counter assigned at
	// build time.
	rules  []Rule
	leafID uint64
}

func newLeaf(rules []Rule, leafID uint64) *node {
	sorted := append([]Rule(nil), rules...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})
	return &node{kind: nodeLeaf, rules: sorted, leafID: leafID}
}

func newInternal(field FieldID, kind testKind, value uint32, plen uint8, left, right *node) *node {
	return &node{
		kind:  nodeInternal,
		field: field,
		test:  kind,
		value: value,
		plen:  plen,
		left:  left,
		right: right,
	}
}

func (n *node) isLeaf() bool {
	return n.kind == nodeLeaf
}

// evalValue evaluates the node's test against a concrete 32-bit field
// value, following the same semantics for lookup and for mutation
// traversal.
//
// EXACT is a threshold test (v >= pivot) so that build-time
// partitioning and lookup stay consistent: the builder sends a rule
// right whenever its range's low bound is >= pivot, so traversal must
// make the identical decision or it would diverge from where the
// rule was actually placed.
func (n *node) evalValue(v uint32) bool {
	switch n.test {
	case testExact:
		return v >= n.value
	case testPrefix:
		if n.plen == 0 {
			return true
		}
		if n.plen >= 32 {
			return v == n.value
		}
		shift := 32 - n.plen
		return (v >> shift) == (n.value >> shift)
	default: // testRange: reserved, always false.
		return false
	}
}

// clone returns a shallow copy of n: an internal node keeps its
// parameters and child links, a leaf gets a fresh rule-sequence buffer
// containing the same rule references. This is the copy-on-write
// primitive used by the mutation engine.
func (n *node) clone() *node {
	if n.isLeaf() {
		rules := append([]Rule(nil), n.rules...)
		return &node{kind: nodeLeaf, rules: rules, leafID: n.leafID}
	}
	cp := *n
	return &cp
}

// insertSorted returns a new slice with r inserted preserving
// descending priority ordering; r goes after existing entries of equal
// priority, whose relative order is kept.
func insertSorted(rules []Rule, r Rule) []Rule {
	i := sort.Search(len(rules), func(i int) bool {
		return rules[i].Priority() < r.Priority()
	})
	out := make([]Rule, len(rules)+1)
	copy(out, rules[:i])
	out[i] = r
	copy(out[i+1:], rules[i:])
	return out
}

// removeRule returns a new slice with the first rule identical to r
// (by interface identity) removed, and whether it was found.
func removeRule(rules []Rule, r Rule) ([]Rule, bool) {
	for i, candidate := range rules {
		if candidate == r {
			out := make([]Rule, 0, len(rules)-1)
			out = append(out, rules[:i]...)
			out = append(out, rules[i+1:]...)
			return out, true
		}
	}
	return rules, false
}
