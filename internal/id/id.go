package id

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Generator mints unique identifiers for transactions and transfers.
type Generator interface {
	NewID() string
}

// UUID generates random (version 4) UUIDs.
type UUID struct{}

// NewID returns a new random UUID string.
func (UUID) NewID() string { return uuid.NewString() }

// Sequence generates "<prefix>-0001", "<prefix>-0002", ... in order.
// Safe for concurrent use.
type Sequence struct {
	prefix string
	mu     sync.Mutex
	next   int
}

// NewSequence returns a Sequence starting at 1.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix, next: 1}
}

// NewID returns the next identifier in the sequence.
func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.next
	s.next++
	return FormatSeqID(s.prefix, n)
}

// FormatSeqID returns an ID like "txn-0007".
func FormatSeqID(prefix string, seq int) string {
	return fmt.Sprintf("%s-%04d", prefix, seq)
}

// ParseSeqID splits "txn-0007" into prefix and sequence number.
func ParseSeqID(id string) (prefix string, seq int, err error) {
	i := strings.LastIndexByte(id, '-')
	if i <= 0 || i == len(id)-1 {
		return "", 0, fmt.Errorf("invalid sequence ID format: %q", id)
	}
	seq, err = strconv.Atoi(id[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid sequence in ID %q: %w", id, err)
	}
	return id[:i], seq, nil
}
