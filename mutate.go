package flowdt

import "errors"

// pathStep records one recorded step of a root-to-leaf traversal
// during a mutation: the parent node and the direction taken
// (left=false, right=true).
type pathStep struct {
	parent *node
	right  bool
}

// traverseForMutation walks root guided by m's own field values,
// recording the path taken. It uses the same test semantics as
// lookup.
//
// If, at any node, m is wildcarded on the tested field or its range
// straddles the node's pivot, the rule would have been duplicated
// into both children by the builder: traversal cannot locate a single
// owning leaf, and ambiguous is reported true so the caller can fall
// back to a full rebuild.
func traverseForMutation(root *node, m Match) (leaf *node, path []pathStep, ambiguous bool, err error) {
	if root == nil {
		return nil, nil, false, errInvariant("empty tree")
	}
	n := root
	depth := 0
	for !n.isLeaf() {
		if depth >= maxTreeDepth {
			return nil, nil, false, errCapacity("mutation path would exceed maximum depth")
		}
		lo, hi := m.Range(n.field)
		if m.Wildcarded(n.field) || (lo < n.value && n.value <= hi) {
			return nil, nil, true, nil
		}
		// Unambiguous: the rule's whole range lies on one side of the
		// pivot, so testing lo makes the same decision the builder made.
		right := n.evalValue(lo)
		path = append(path, pathStep{parent: n, right: right})
		if right {
			n = n.right
		} else {
			n = n.left
		}
		depth++
	}
	return n, path, false, nil
}

// rewireAndPublish walks the recorded path from leaf-parent back to
// the root, shallow-copying each ancestor and rewiring its child link
// to the freshly built subtree, then publishes the resulting new root.
func (c *Classifier) rewireAndPublish(path []pathStep, newChild *node) {
	child := newChild
	for i := len(path) - 1; i >= 0; i-- {
		step := path[i]
		parent := step.parent.clone()
		if step.right {
			parent.right = child
		} else {
			parent.left = child
		}
		child = parent
	}
	c.publishWorking(child)
}

// AddRuleLazy appends rule to the pending buffer before the tree has
// been built. Calling it after the first build is a protocol misuse:
// it is reported and the classifier is left untouched.
func (c *Classifier) AddRuleLazy(rule Rule) error {
	if c.built {
		c.log.Warn("flowdt: add_rule_lazy called after build")
		return errMisuse("add_rule_lazy called after the tree has been built")
	}
	c.pending = append(c.pending, rule)
	return nil
}

// InsertRule inserts rule into the classifier. Before the first build
// it behaves like AddRuleLazy; afterwards it performs a copy-on-write
// path rebuild, replacing any existing rule with an identical (match,
// priority) first.
func (c *Classifier) InsertRule(rule Rule) error {
	if !c.built {
		c.pending = append(c.pending, rule)
		return nil
	}
	return c.insertIntoTree(rule)
}

func (c *Classifier) insertIntoTree(rule Rule) error {
	m := rule.Match()

	if existing, ok := c.findInWorking(c.workingRoot(), m, rule.Priority(), VersionAll); ok {
		c.log.Warn("flowdt: duplicate rule on insert, replacing", "priority", rule.Priority())
		if err := c.removeFromTree(existing); err != nil {
			return err
		}
	}

	working := c.workingRoot()
	leaf, path, ambiguous, err := traverseForMutation(working, m)
	if err != nil {
		if errors.Is(err, ErrInvariantViolation) {
			// Empty tree: build a fresh single-rule tree.
			c.Build([]Rule{rule})
			return nil
		}
		return err
	}
	if ambiguous {
		c.rebuildWith(rule, nil)
		return nil
	}

	newLeaf := leaf.clone()
	newLeaf.rules = insertSorted(newLeaf.rules, rule)
	c.rewireAndPublish(path, newLeaf)
	c.refreshStats()
	return nil
}

// RemoveRule removes rule from the classifier, failing with
// ErrRuleNotFound if it is not present.
func (c *Classifier) RemoveRule(rule Rule) error {
	if !c.built {
		for i, r := range c.pending {
			if r == rule {
				c.pending = append(c.pending[:i], c.pending[i+1:]...)
				return nil
			}
		}
		return errNotFound("rule not present in pending buffer")
	}
	return c.removeFromTree(rule)
}

func (c *Classifier) removeFromTree(rule Rule) error {
	working := c.workingRoot()
	m := rule.Match()
	leaf, path, ambiguous, err := traverseForMutation(working, m)
	if err != nil {
		if errors.Is(err, ErrInvariantViolation) {
			return errNotFound("rule not present")
		}
		return err
	}
	if ambiguous {
		if !ruleInTree(working, rule) {
			return errNotFound("rule not present")
		}
		c.rebuildWith(nil, rule)
		return nil
	}

	newLeaf := leaf.clone()
	updated, found := removeRule(newLeaf.rules, rule)
	if !found {
		return errNotFound("rule not present in reached leaf")
	}
	newLeaf.rules = updated
	c.rewireAndPublish(path, newLeaf)
	c.refreshStats()
	return nil
}

// ReplaceRule looks up any existing rule sharing rule's (match,
// priority), removes it, inserts rule, and returns the displaced
// rule.
func (c *Classifier) ReplaceRule(rule Rule) (displaced Rule, err error) {
	existing, ok := c.FindMatchExactly(rule.Match(), rule.Priority(), VersionAll)
	if ok {
		if err := c.RemoveRule(existing); err != nil {
			return nil, err
		}
	}
	if err := c.InsertRule(rule); err != nil {
		return nil, err
	}
	if ok {
		return existing, nil
	}
	return nil, nil
}

// FindRuleExactly looks up rule by its own (match, priority), visible
// at version, and reports it only if the stored rule is rule itself: a
// different rule sharing the same (match, priority), such as one that
// replaced it, is not reported.
func (c *Classifier) FindRuleExactly(rule Rule, version Version) (Rule, bool) {
	found, ok := c.FindMatchExactly(rule.Match(), rule.Priority(), version)
	if !ok || found != rule {
		return nil, false
	}
	return found, true
}

// FindMatchExactly looks up a rule with the given (match, priority),
// visible at version, without requiring a Rule handle.
func (c *Classifier) FindMatchExactly(m Match, priority uint32, version Version) (Rule, bool) {
	if !c.built {
		for _, r := range c.pending {
			if r.Priority() == priority && r.Match().Equal(m) && ruleVisible(r, version) {
				return r, true
			}
		}
		return nil, false
	}
	return c.findInWorking(c.workingRoot(), m, priority, version)
}

func (c *Classifier) findInWorking(root *node, m Match, priority uint32, version Version) (Rule, bool) {
	leaf, _, ambiguous, err := traverseForMutation(root, m)
	if err == nil && !ambiguous {
		for _, r := range leaf.rules {
			if r.Priority() == priority && r.Match().Equal(m) && ruleVisible(r, version) {
				return r, true
			}
		}
		return nil, false
	}
	if err != nil && !errors.Is(err, ErrInvariantViolation) {
		// Capacity or other traversal failure: fall through to a
		// conservative full scan rather than silently missing a rule.
		_ = err
	}

	// Ambiguous traversal, or a failure we want to recover from:
	// fall back to a full scan (rare path, only reached for rules the
	// builder would duplicate across leaves).
	cur := &Cursor{version: version}
	if root != nil {
		cur.stack = append(cur.stack, cursorFrame{n: root, state: cursorLeft})
	}
	for cur.Advance() {
		r := cur.Current()
		if r.Priority() == priority && r.Match().Equal(m) {
			return r, true
		}
	}
	return nil, false
}

// rebuildWith recovers the classifier's live rule set by walking the
// working tree (deduplicating by Rule identity, since a rule may
// occupy several leaves), applies the given insert/remove delta, and
// rebuilds from scratch.
func (c *Classifier) rebuildWith(add, remove Rule) {
	seen := make(map[Rule]struct{})
	var all []Rule
	collectRules(c.workingRoot(), seen, &all)

	if remove != nil {
		out := all[:0]
		removedOnce := false
		for _, r := range all {
			if !removedOnce && r == remove {
				removedOnce = true
				continue
			}
			out = append(out, r)
		}
		all = out
	}
	if add != nil {
		all = append(all, add)
	}
	c.Build(all)
}

func collectRules(n *node, seen map[Rule]struct{}, out *[]Rule) {
	if n == nil {
		return
	}
	if n.isLeaf() {
		for _, r := range n.rules {
			if _, dup := seen[r]; dup {
				continue
			}
			seen[r] = struct{}{}
			*out = append(*out, r)
		}
		return
	}
	collectRules(n.left, seen, out)
	collectRules(n.right, seen, out)
}

func ruleInTree(root *node, rule Rule) bool {
	if root == nil {
		return false
	}
	if root.isLeaf() {
		for _, r := range root.rules {
			if r == rule {
				return true
			}
		}
		return false
	}
	return ruleInTree(root.left, rule) || ruleInTree(root.right, rule)
}
