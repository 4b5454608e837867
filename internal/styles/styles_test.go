package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleBadge_ContainsLabel(t *testing.T) {
	assert.Contains(t, ToggleBadge("Context Tracking: ON", true), "Context Tracking: ON")
	assert.Contains(t, ToggleBadge("Context Tracking: OFF", false), "Context Tracking: OFF")
}
