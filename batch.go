package flowdt

// Defer begins (or, if already deferred, extends) a batch of
// mutations. The first Defer snapshots the current published root
// into the shadow slot; subsequent mutations rebuild the shadow
// instead of the published root, so concurrent readers keep observing
// the pre-batch tree. Nested Defer calls are allowed and only
// increment a counter; they are logged as a misuse-adjacent warning,
// since a correctly paired Publish must follow each one.
func (c *Classifier) Defer() {
	if c.deferDepth == 0 {
		c.ensureBuilt()
		c.shadow.Store(c.root.Load())
	} else {
		c.log.Warn("flowdt: nested defer", "depth", c.deferDepth+1)
	}
	c.deferDepth++
}

// Publish ends one level of a Defer/Publish bracket. On reaching
// nesting depth zero, the shadow root is installed atomically as the
// new published root, the previous published root is queued for
// quiescent reclamation, and the shadow slot is cleared. Calling
// Publish without a matching Defer is a caller error: it is reported
// and is a no-op.
func (c *Classifier) Publish() error {
	if c.deferDepth == 0 {
		c.log.Warn("flowdt: publish without defer")
		return errMisuse("publish without a matching defer")
	}
	c.deferDepth--
	if c.deferDepth > 0 {
		return nil
	}
	newRoot := c.shadow.Load()
	old := c.root.Swap(newRoot)
	c.reclaim.retire(old)
	c.shadow.Store(nil)
	c.refreshStats()
	return nil
}

// InBatch reports whether a Defer/Publish bracket is currently open.
func (c *Classifier) InBatch() bool {
	return c.deferDepth > 0
}
