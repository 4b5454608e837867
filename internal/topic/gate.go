package topic

import "strings"

// Gate accepts text that mentions at least one keyword. Matching is a plain
// case-insensitive substring test, so "oil" matches "boiler".
type Gate struct {
	keywords map[string]struct{}
}

func NewGate(keywords []string) *Gate {
	set := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		set[k] = struct{}{}
	}
	return &Gate{keywords: set}
}

// Allows reports whether text is on topic. An empty keyword set allows nothing.
func (g *Gate) Allows(text string) bool {
	lower := strings.ToLower(text)
	for k := range g.keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func (g *Gate) Len() int { return len(g.keywords) }
