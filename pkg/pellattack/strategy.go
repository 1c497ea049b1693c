package pellattack

import (
	"context"

	"github.com/mahdiidarabi/cubicpell-nonce/pkg/group"
)

// RecoveryStrategy defines the interface for key recovery strategies.
// Implement this interface to create custom search strategies.
type RecoveryStrategy interface {
	// Search attempts to recover the private key from the signatures.
	// It should return a RecoveryResult if found, or nil if not found.
	// publicKey may be nil, in which case results cannot be verified.
	Search(ctx context.Context, signatures []*Signature, publicKey group.Element) *RecoveryResult

	// Name returns a human-readable name for this strategy.
	Name() string
}

// SearchConfig configures the lattice search.
type SearchConfig struct {
	// NonceBits lists candidate nonce bounds, tried in order
	NonceBits []int

	// Windows lists how many signatures to feed the lattice, tried in order.
	// Windows larger than the available signatures are skipped.
	Windows []int

	// NumWorkers controls parallelization (0 = auto-detect)
	NumWorkers int
}

// DefaultSearchConfig returns a sensible default configuration.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		NonceBits:  []int{128, 160, 192, 224, 256},
		Windows:    []int{2, 3, 4, 6, 8},
		NumWorkers: 0, // Auto-detect
	}
}
