package testutil

import (
	"fmt"
	"sync"
)

// SequenceKeys generates "key-0001", "key-0002", ... for builder tests
// that need stable keys without declaring each one up front.
//
// Unlike builder.FixedGenerator it never runs out, and it can be reset so
// the same scenario yields identical keys on every run.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequenceKeys struct {
	mu     sync.Mutex
	prefix string
	seq    int
}

// NewSequenceKeys creates a generator. An empty prefix means "key".
func NewSequenceKeys(prefix string) *SequenceKeys {
	if prefix == "" {
		prefix = "key"
	}
	return &SequenceKeys{prefix: prefix}
}

// Generate returns the next key. Implements builder.KeyGenerator.
func (s *SequenceKeys) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return fmt.Sprintf("%s-%04d", s.prefix, s.seq)
}

// Issued returns how many keys have been generated since the last reset.
func (s *SequenceKeys) Issued() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Reset restarts the sequence; the next key is "<prefix>-0001".
func (s *SequenceKeys) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = 0
}
