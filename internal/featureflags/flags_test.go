package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	m := NewManager("")
	assert.True(t, m.Enabled(LiveFeed, 0))
	assert.True(t, m.Enabled(CommentTreeCache, 0))
	assert.False(t, m.Enabled("unknown", 1))

	var nilManager *Manager
	assert.False(t, nilManager.Enabled(LiveFeed, 1))
}

func TestOverrides(t *testing.T) {
	m := NewManager(" bad , LIVE_FEED = off ,comment_tree_cache=false,x=1,=on,y=")
	assert.False(t, m.Enabled(LiveFeed, 1))
	assert.False(t, m.Enabled(CommentTreeCache, 1))
	assert.True(t, m.Enabled("x", 1))
	assert.Len(t, m.Evaluate(1), 3)
}

func TestPercentageRollout(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%,junk=abc%,nopct=50")

	assert.True(t, m.Enabled("always", 0))
	assert.False(t, m.Enabled("never", 1))
	assert.False(t, m.Enabled("junk", 1))
	assert.False(t, m.Enabled("nopct", 1))
	assert.False(t, m.Enabled("canary", 0), "anonymous callers are outside partial rollouts")

	first := m.Enabled("canary", 42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("canary", 42), "rollout is deterministic per user")
	}

	enabled := 0
	for id := uint(1); id <= 1000; id++ {
		if m.Enabled("canary", id) {
			enabled++
		}
	}
	assert.InDelta(t, 250, enabled, 80)
}

func TestEvaluateSorted(t *testing.T) {
	states := NewManager("b=on,a=off").Evaluate(7)
	names := make([]string, 0, len(states))
	for _, s := range states {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"a", "b", CommentTreeCache, LiveFeed}, names)
	assert.False(t, states[0].Enabled)
	assert.True(t, states[1].Enabled)
}
