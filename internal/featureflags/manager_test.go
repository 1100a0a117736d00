package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	for _, name := range []string{"a", "c", "e"} {
		assert.True(t, m.Enabled(name, 1), name)
	}
	for _, name := range []string{"b", "d", "f", "missing"} {
		assert.False(t, m.Enabled(name, 1), name)
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%,broken=x%")

	assert.True(t, m.Enabled("always", 1))
	assert.False(t, m.Enabled("never", 1))
	assert.False(t, m.Enabled("broken", 1))

	first := m.Enabled("canary", 42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("canary", 42), "rollout must be deterministic per id")
	}
	assert.False(t, m.Enabled("canary", 0), "percentage rollout requires a non-zero id")

	enabled := 0
	for id := uint(1); id <= 1000; id++ {
		if m.Enabled("canary", id) {
			enabled++
		}
	}
	assert.InDelta(t, 250, enabled, 80)
}

func TestDefaultsAndOverrides(t *testing.T) {
	assert.True(t, NewManagerWithDefaults(Defaults, "").Enabled(ContactEvents, 1))
	assert.False(t, NewManagerWithDefaults(Defaults, "contact_events=off").Enabled(ContactEvents, 1))

	m := NewManagerWithDefaults(Defaults, " bad , Contact_Events = 50% ")
	assert.Equal(t, map[string]string{ContactEvents: "50%"}, m.Raw())
}

func TestSnapshot(t *testing.T) {
	m := NewManager("x=on,y=off")
	assert.Equal(t, map[string]bool{"x": true, "y": false}, m.Snapshot(7))
}

func TestNilManager(t *testing.T) {
	var m *Manager
	assert.False(t, m.Enabled(ContactEvents, 1))
	assert.Empty(t, m.Raw())
	assert.Empty(t, m.Snapshot(1))
}
