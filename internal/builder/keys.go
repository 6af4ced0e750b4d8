package builder

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// KeyGenerator produces opaque identities for list items.
type KeyGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 keys.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined keys for testing.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu   sync.Mutex
	keys []string
	idx  int
}

// NewFixedGenerator creates a generator that returns keys in order.
func NewFixedGenerator(keys ...string) *FixedGenerator {
	return &FixedGenerator{keys: keys}
}

// Generate returns the next predetermined key.
//
// Panics if all keys have been consumed, which means a test produced more
// list items than it declared.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.keys) {
		panic("FixedGenerator: all keys exhausted")
	}
	key := g.keys[g.idx]
	g.idx++
	return key
}

// CreateStableKeys returns count fresh keys.
func CreateStableKeys(count int, gen KeyGenerator) []string {
	count = max(count, 0)
	keys := make([]string, count)
	for i := range keys {
		keys[i] = gen.Generate()
	}
	return keys
}

// ReconcileStableKeys resizes existing to count. Growing appends fresh
// keys; shrinking truncates from the end. Surviving keys keep their
// positions, and a truncated key is never handed out again because new
// keys always come from gen.
func ReconcileStableKeys(existing []string, count int, gen KeyGenerator) []string {
	count = max(count, 0)
	switch {
	case count > len(existing):
		return append(slices.Clone(existing), CreateStableKeys(count-len(existing), gen)...)
	case count < len(existing):
		return slices.Clone(existing[:count])
	default:
		return existing
	}
}
