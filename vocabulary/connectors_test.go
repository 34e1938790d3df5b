package vocabulary

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/c360/semgraph/hedge"
)

func TestDefaultConnectors_Blocking(t *testing.T) {
	c := DefaultConnectors()

	tests := []struct {
		connector string
		blocking  bool
	}{
		{"contraindicated", true},
		{"Contraindicated", true},
		{"contraindique", true},
		{"forbidden", true},
		{"forbidden_by_law", true},
		{"recommends", false},
		{"is", false},
		{"takes", false},
		{"", false},
	}

	for _, test := range tests {
		t.Run(test.connector, func(t *testing.T) {
			got := c.IsBlocking(hedge.Predicate(test.connector))
			assert.Equal(t, test.blocking, got)
		})
	}
}

func TestConnectors_RegisterBlocking(t *testing.T) {
	c := NewConnectors()
	assert.False(t, c.IsBlocking(hedge.Predicate("prohibits")))

	c.RegisterBlocking("Prohibit")
	c.RegisterBlocking("  ") // ignored
	c.RegisterBlocking("prohibit")

	assert.True(t, c.IsBlocking(hedge.Predicate("prohibits")))
	assert.Equal(t, []string{"prohibit"}, c.BlockingRoots())
}
