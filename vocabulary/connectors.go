// Package vocabulary classifies rule connectors for validation.
//
// The validator partitions rules into blocking rules (the connector marks a
// prohibition, e.g. "contraindicated") and supporting rules (everything
// else). The default set is deliberately small; domain applications
// register their own blocking roots rather than relying on a guessed
// fixed list.
package vocabulary

import (
	"sort"
	"strings"
	"sync"

	"github.com/c360/semgraph/hedge"
)

// Default blocking-connector roots. Matched as identifier prefixes, so
// "contraind" covers "contraindicated", "contraindique", etc.
const (
	RootContraindicated = "contraind"
	RootForbidden       = "forbidden"
)

// Connectors is a registry of connector identifier roots that mark a rule
// as blocking. Safe for concurrent use.
type Connectors struct {
	mu            sync.RWMutex
	blockingRoots map[string]struct{}
}

// NewConnectors returns a registry with no blocking roots. Most callers
// want DefaultConnectors.
func NewConnectors() *Connectors {
	return &Connectors{blockingRoots: make(map[string]struct{})}
}

// DefaultConnectors returns a registry seeded with the documented blocking
// families.
func DefaultConnectors() *Connectors {
	c := NewConnectors()
	c.RegisterBlocking(RootContraindicated)
	c.RegisterBlocking(RootForbidden)
	return c
}

// RegisterBlocking adds a blocking root. Roots are compared case
// insensitively; empty roots are ignored.
func (c *Connectors) RegisterBlocking(root string) {
	root = strings.ToLower(strings.TrimSpace(root))
	if root == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blockingRoots[root] = struct{}{}
}

// BlockingRoots returns the registered roots, sorted.
func (c *Connectors) BlockingRoots() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.blockingRoots))
	for root := range c.blockingRoots {
		out = append(out, root)
	}
	sort.Strings(out)
	return out
}

// IsBlocking reports whether a connector atom marks a blocking rule: its
// identifier starts with any registered root, case insensitively.
func (c *Connectors) IsBlocking(connector hedge.Atom) bool {
	id := strings.ToLower(connector.ID)
	c.mu.RLock()
	defer c.mu.RUnlock()
	for root := range c.blockingRoots {
		if strings.HasPrefix(id, root) {
			return true
		}
	}
	return false
}
