package flowdt

import "github.com/flowdt/classifier/internal/epoch"

// reclaimer wraps the epoch domain used to postpone destruction of
// replaced subtrees until reader quiescence.
//
// Note on memory safety: Go's garbage collector already keeps a
// retired subtree alive for as long as any goroutine holds a
// reference into it, regardless of this bookkeeping. The domain
// exists to give callers the documented protocol (retire-then-
// quiesce-then-release) for any caller-owned side effects that should
// be paced by the same quiescent interval (e.g. freeing external
// resources keyed to a node), not because Go requires it for memory
// correctness.
type reclaimer struct {
	d *epoch.Domain
}

func newReclaimer() reclaimer {
	return reclaimer{d: epoch.NewDomain()}
}

func (r reclaimer) retire(n *node) {
	if n == nil {
		return
	}
	r.d.Retire(func() { releaseSubtree(n) })
}

func (r reclaimer) flush() bool {
	return r.d.Flush()
}

// releaseSubtree recursively, post-order releases a subtree's leaf
// rule-sequence buffers. The rules themselves are never freed: they
// are owned by the caller.
func releaseSubtree(n *node) {
	if n == nil {
		return
	}
	if n.isLeaf() {
		n.rules = nil
		return
	}
	releaseSubtree(n.left)
	releaseSubtree(n.right)
	n.left, n.right = nil, nil
}

// EnterReader announces a reader to the classifier's reclamation
// domain for the duration of a manual traversal performed outside the
// built-in query APIs (which do not need this: see the reclaimer
// doc). Exit must be called on the returned guard exactly once.
func (c *Classifier) EnterReader() *epoch.Guard {
	return c.reclaim.d.Enter()
}

// Quiesce runs any subtree-release callbacks queued by prior
// mutations, if no reader announced via [Classifier.EnterReader] is
// currently active. It reports whether it did so; if not, the queue is
// kept until a later Quiesce or Close. Mutations only queue callbacks;
// they never run them.
func (c *Classifier) Quiesce() bool {
	return c.reclaim.flush()
}
