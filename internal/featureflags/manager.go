// Package featureflags evaluates rollout flags configured through FEATURE_FLAGS.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Flags known to the API.
const (
	// ContactEvents gates publishing of contact lifecycle events to Redis.
	ContactEvents = "contact_events"
)

// Defaults apply unless FEATURE_FLAGS overrides them.
const Defaults = ContactEvents + "=on"

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "contact_events=25%,other=off"
type Manager struct {
	flags map[string]string
}

// NewManager creates a feature-flag manager from a comma-separated config string.
func NewManager(raw string) *Manager {
	m := &Manager{flags: make(map[string]string)}
	m.merge(raw)
	return m
}

// NewManagerWithDefaults parses defaults first, then lets raw override them.
func NewManagerWithDefaults(defaults, raw string) *Manager {
	m := NewManager(defaults)
	m.merge(raw)
	return m
}

func (m *Manager) merge(raw string) {
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		m.flags[key] = value
	}
}

// Enabled returns whether a flag is enabled for a given subject id (a contact id).
// Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic rollout by id, e.g. 25%)
func (m *Manager) Enabled(name string, id uint) bool {
	if m == nil {
		return false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	if pctRaw, ok := strings.CutSuffix(value, "%"); ok {
		pct, err := strconv.Atoi(pctRaw)
		if err != nil || pct <= 0 {
			return false
		}
		if pct >= 100 {
			return true
		}
		if id == 0 {
			return false
		}
		return rolloutBucket(name, id) < pct
	}

	return false
}

// Raw returns a copy of configured flags.
func (m *Manager) Raw() map[string]string {
	if m == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Snapshot returns evaluated flag status for one subject id.
func (m *Manager) Snapshot(id uint) map[string]bool {
	if m == nil {
		return map[string]bool{}
	}
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, id)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, id uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), id)
	return int(h.Sum32() % 100)
}
