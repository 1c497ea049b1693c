// Package rng provides the randomness sources used by experiments: reproducible
// keyed streams for seeded runs and a lock around shared readers.
package rng

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/tuneinsight/lattigo/v4/utils"
	"github.com/zeebo/blake3"
)

// KeySize is the length of derived PRNG keys.
const KeySize = 32

// DeriveKey hashes seed and labels into a PRNG key:
//
//	blake3(len(seed) ‖ seed ‖ label₀ ‖ label₁ ‖ …)
//
// with integers encoded as 8-byte big-endian.
func DeriveKey(seed []byte, labels ...uint64) []byte {
	h := blake3.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(len(seed)))
	h.Write(buf[:])
	h.Write(seed)
	for _, l := range labels {
		binary.BigEndian.PutUint64(buf[:], l)
		h.Write(buf[:])
	}
	return h.Sum(nil)[:KeySize]
}

// NewSeeded returns a deterministic stream keyed by seed and labels.
// Distinct label tuples give independent streams.
func NewSeeded(seed []byte, labels ...uint64) (io.Reader, error) {
	prng, err := utils.NewKeyedPRNG(DeriveKey(seed, labels...))
	if err != nil {
		return nil, fmt.Errorf("keyed prng: %w", err)
	}
	return prng, nil
}

// Source returns a seeded stream when seed is non-empty and crypto/rand otherwise.
func Source(seed []byte, labels ...uint64) (io.Reader, error) {
	if len(seed) == 0 {
		return rand.Reader, nil
	}
	return NewSeeded(seed, labels...)
}

// LockedReader wraps an io.Reader to be safe for concurrent reads.
//
// Reads are serialized, so the output is the same byte stream as the
// underlying reader, split among callers in lock order.
type LockedReader struct {
	reader io.Reader
	m      sync.Mutex
}

// NewLockedReader creates a LockedReader by wrapping an underlying value.
func NewLockedReader(r io.Reader) *LockedReader {
	return &LockedReader{reader: r}
}

// Read implements io.Reader.
func (r *LockedReader) Read(p []byte) (int, error) {
	r.m.Lock()
	defer r.m.Unlock()
	return r.reader.Read(p)
}
