package flowdt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsEmptyClassifier(t *testing.T) {
	c := New()
	c.ensureBuilt()
	assert.Equal(t, Stats{}, c.Stats())
}

func TestStatsAfterBuild(t *testing.T) {
	c := New(WithLeafThreshold(4))
	for i := uint32(0); i < 50; i++ {
		i := i
		require.NoError(t, c.InsertRule(newRule("r", 1, func(m *Match) {
			m.SetExact(FieldIPv4Src, i)
		})))
	}
	c.ensureBuilt() // materialize the pending rules; stats describe the built tree
	s := c.Stats()
	assert.Equal(t, 50, s.NumRules)
	assert.Greater(t, s.NumInternal, 0)
	assert.Greater(t, s.NumLeaf, 0)
	assert.LessOrEqual(t, s.MaxDepth, maxTreeDepth)
	assert.Positive(t, s.MaxDepth)
}

func TestStatsUpdatedAfterMutation(t *testing.T) {
	c := New()
	require.NoError(t, c.InsertRule(newRule("a", 1, nil)))
	c.ensureBuilt() // materialize the tree so the next insert takes the COW path
	before := c.Stats()
	assert.Equal(t, 1, before.NumRules)

	require.NoError(t, c.InsertRule(newRule("b", 2, func(m *Match) { m.SetExact(FieldInPort, 9) })))
	after := c.Stats()
	assert.Equal(t, 2, after.NumRules)
}

func TestWalkStatsNilTreeIsZero(t *testing.T) {
	var s Stats
	walkStats(nil, 1, &s)
	assert.Equal(t, Stats{}, s)
}
