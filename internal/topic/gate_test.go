package topic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGate_DefaultKeywords(t *testing.T) {
	g := NewGate(DefaultKeywords())

	tests := []struct {
		text string
		want bool
	}{
		{"What shampoo do you recommend for dry hair?", true},
		{"WHICH SERUM?", true},
		{"Is L'ORÉAL vegan?", true},
		{"What's the weather today?", false},
		{"How do I fix my boiler?", true}, // substring match on "oil"
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Allows(tt.text))
		})
	}
}

func TestGate_NormalizesKeywords(t *testing.T) {
	g := NewGate([]string{" Lipstick ", "lipstick", "", "  "})
	assert.Equal(t, 1, g.Len())
	assert.True(t, g.Allows("red lipstick please"))
}

func TestGate_EmptySetRejectsEverything(t *testing.T) {
	g := NewGate(nil)
	assert.False(t, g.Allows("shampoo"))
}

func TestDefaultKeywords_IsCopy(t *testing.T) {
	k := DefaultKeywords()
	k[0] = "changed"
	assert.Equal(t, "l'oréal", DefaultKeywords()[0])
}
