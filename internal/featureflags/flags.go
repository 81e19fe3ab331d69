// Package featureflags evaluates FEATURE_FLAGS rollouts such as
// "live_feed=on,comment_tree_cache=25%".
package featureflags

import (
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Flags understood by the server.
const (
	LiveFeed         = "live_feed"
	CommentTreeCache = "comment_tree_cache"
)

// Defaults apply when FEATURE_FLAGS does not mention a flag.
var Defaults = map[string]string{
	LiveFeed:         "on",
	CommentTreeCache: "on",
}

// Manager holds the parsed rollout value of every flag.
type Manager struct {
	values map[string]string
}

// NewManager layers the comma-separated name=value pairs of raw over Defaults.
// Malformed pairs are skipped.
func NewManager(raw string) *Manager {
	values := make(map[string]string, len(Defaults))
	for k, v := range Defaults {
		values[k] = v
	}
	for _, pair := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name, value = normalize(name), normalize(value)
		if name == "" || value == "" {
			continue
		}
		values[name] = value
	}
	return &Manager{values: values}
}

// Enabled reports whether name is on for userID. Percentage rollouts bucket users
// deterministically and are off for anonymous callers (userID 0).
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	value, ok := m.values[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pct, err := strconv.Atoi(strings.TrimSuffix(value, "%"))
	if err != nil || !strings.HasSuffix(value, "%") || pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}
	return userID != 0 && bucket(name, userID) < pct
}

// FlagState is the evaluated state of one flag for one user.
type FlagState struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	Enabled bool   `json:"enabled"`
}

// Evaluate returns every known flag for userID, sorted by name.
func (m *Manager) Evaluate(userID uint) []FlagState {
	out := make([]FlagState, 0, len(m.values))
	for name, value := range m.values {
		out = append(out, FlagState{Name: name, Value: value, Enabled: m.Enabled(name, userID)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name) + ":" + strconv.FormatUint(uint64(userID), 10)))
	return int(h.Sum32() % 100)
}
