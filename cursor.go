package flowdt

import "iter"

// cursorState is the per-level traversal state: a frame starts
// needing to descend left, then right, then is done and popped.
type cursorState uint8

const (
	cursorLeft cursorState = iota
	cursorRight
	cursorDone
)

type cursorFrame struct {
	n     *node
	state cursorState
}

// Cursor performs a depth-first walk of a point-in-time snapshot of
// the classifier's tree, yielding every visible rule matching an
// optional target filter. A Cursor is created over the root published
// at the moment [Classifier.Cursor] is called; it does not observe
// subsequent mutations.
type Cursor struct {
	version Version
	target  *Flow

	stack     []cursorFrame
	leafRules []Rule
	leafIdx   int

	current Rule
}

// Cursor starts a new depth-first iteration at version, optionally
// restricted to rules whose match is satisfied by target (pass nil
// for no filter). The cursor's Current rule is populated immediately;
// for an empty tree it is nil right away.
func (c *Classifier) Cursor(version Version, target *Flow) *Cursor {
	c.ensureBuilt()
	root := c.loadRoot()
	cur := &Cursor{version: version, target: target}
	if root != nil {
		cur.stack = append(cur.stack, cursorFrame{n: root, state: cursorLeft})
	}
	cur.Advance()
	return cur
}

// Current returns the rule the cursor currently points to, or nil if
// iteration has finished.
func (cur *Cursor) Current() Rule {
	return cur.current
}

// Advance moves the cursor to the next visible, filter-matching rule
// and reports whether one was found. Once it returns false, Current
// is nil and further calls keep returning false.
func (cur *Cursor) Advance() bool {
	for {
		if cur.leafIdx < len(cur.leafRules) {
			r := cur.leafRules[cur.leafIdx]
			cur.leafIdx++
			if !ruleVisible(r, cur.version) {
				continue
			}
			if cur.target != nil && !r.Match().Satisfies(*cur.target) {
				continue
			}
			cur.current = r
			return true
		}

		if len(cur.stack) == 0 {
			cur.current = nil
			return false
		}

		top := &cur.stack[len(cur.stack)-1]
		switch {
		case top.n.isLeaf():
			cur.leafRules = top.n.rules
			cur.leafIdx = 0
			cur.stack = cur.stack[:len(cur.stack)-1]
		case top.state == cursorLeft:
			top.state = cursorRight
			if top.n.left != nil {
				cur.stack = append(cur.stack, cursorFrame{n: top.n.left, state: cursorLeft})
			}
		case top.state == cursorRight:
			top.state = cursorDone
			if top.n.right != nil {
				cur.stack = append(cur.stack, cursorFrame{n: top.n.right, state: cursorLeft})
			}
		default: // cursorDone
			cur.stack = cur.stack[:len(cur.stack)-1]
		}
	}
}

// Rules returns a range iterator over every visible rule matching
// target (nil for all rules) at version, walking a point-in-time
// snapshot of the tree.
func (c *Classifier) Rules(version Version, target *Flow) iter.Seq[Rule] {
	return func(yield func(Rule) bool) {
		cur := c.Cursor(version, target)
		for r := cur.Current(); r != nil; r = cur.Current() {
			if !yield(r) {
				return
			}
			cur.Advance()
		}
	}
}
