package flowdt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDeferBatchesInsertsUntilPublish checks that lookups issued
// between Defer and Publish keep observing the pre-batch tree, and
// that the batch's rules only become visible together, atomically, at
// Publish.
func TestDeferBatchesInsertsUntilPublish(t *testing.T) {
	c := New()
	base := newRule("base", 1, nil)
	require.NoError(t, c.InsertRule(base))

	c.Defer()
	priorities := []uint32{100, 90, 80, 70, 60}
	for _, p := range priorities {
		require.NoError(t, c.InsertRule(newRule("batch", p, nil)))

		// Readers must never observe a partially applied batch.
		got, ok := c.Lookup(VersionAll, Flow{})
		require.True(t, ok)
		assert.Equal(t, Rule(base), got, "pre-defer tree must still be what readers see")
	}

	require.NoError(t, c.Publish())

	got, ok := c.Lookup(VersionAll, Flow{})
	require.True(t, ok)
	assert.Equal(t, uint32(100), got.Priority(), "after publish, the highest-priority batched rule wins")
	assert.Equal(t, 6, c.Stats().NumRules)
}

func TestDeferPublishMatchesImmediateMode(t *testing.T) {
	rules := []Rule{
		newRule("a", 10, func(m *Match) { m.SetExact(FieldInPort, 1) }),
		newRule("b", 20, func(m *Match) { m.SetExact(FieldInPort, 2) }),
		newRule("c", 30, func(m *Match) { m.SetExact(FieldInPort, 3) }),
	}

	immediate := New()
	for _, r := range rules {
		require.NoError(t, immediate.InsertRule(r))
	}
	immediate.ensureBuilt()

	deferred := New()
	deferred.Defer()
	for _, r := range rules {
		require.NoError(t, deferred.InsertRule(r))
	}
	require.NoError(t, deferred.Publish())

	assert.Equal(t, immediate.Stats(), deferred.Stats())
	for port := uint32(1); port <= 3; port++ {
		want, wantOk := immediate.Lookup(VersionAll, exactFlow(FieldInPort, port))
		got, gotOk := deferred.Lookup(VersionAll, exactFlow(FieldInPort, port))
		require.Equal(t, wantOk, gotOk)
		assert.Equal(t, want, got)
	}
}

func TestNestedDeferIncrementsCounterAndWarns(t *testing.T) {
	c := New()
	require.NoError(t, c.InsertRule(newRule("a", 1, nil)))

	c.Defer()
	assert.True(t, c.InBatch())
	c.Defer() // nested: logs a warning, does not publish early
	assert.Equal(t, 2, c.deferDepth)

	require.NoError(t, c.Publish())
	assert.True(t, c.InBatch(), "still inside the outer bracket")

	require.NoError(t, c.Publish())
	assert.False(t, c.InBatch())
}

func TestPublishWithoutDeferIsMisuseAndNoop(t *testing.T) {
	c := New()
	require.NoError(t, c.InsertRule(newRule("a", 1, nil)))
	before := c.Stats()

	err := c.Publish()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMisuse))
	assert.Equal(t, before, c.Stats(), "classifier must be untouched")
}

func TestDeferBeforeFirstBuildMaterializesPendingRules(t *testing.T) {
	c := New()
	require.NoError(t, c.AddRuleLazy(newRule("r", 1, func(m *Match) { m.SetExact(FieldInPort, 1) })))

	c.Defer()
	require.NoError(t, c.InsertRule(newRule("r2", 2, func(m *Match) { m.SetExact(FieldInPort, 2) })))
	require.NoError(t, c.Publish())

	_, ok := c.Lookup(VersionAll, exactFlow(FieldInPort, uint32(1)))
	assert.True(t, ok)
	_, ok = c.Lookup(VersionAll, exactFlow(FieldInPort, uint32(2)))
	assert.True(t, ok)
}
