package engine

import (
	"sync"

	"github.com/google/uuid"
)

// TokenGenerator mints call tokens. Every Summarize call is tagged with
// one token, carried on the result metadata so warnings and downstream
// artifacts can be traced back to the call that produced them.
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 call tokens. UUIDv7
// embeds a timestamp in the most significant bits, so tokens sort by
// creation time.
//
// Stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string. Panics if UUID
// generation fails, which cannot happen in practice.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined tokens for deterministic tests
// and golden comparisons.
//
// Safe for concurrent use via an internal mutex.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator that returns tokens in order
// and panics when exhausted, so a test that consumes more tokens than
// it declared fails loudly.
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next predetermined token.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.tokens) {
		panic("engine: FixedGenerator exhausted")
	}
	tok := g.tokens[g.idx]
	g.idx++
	return tok
}
