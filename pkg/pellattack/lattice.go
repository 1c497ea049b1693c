package pellattack

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog"

	"github.com/mahdiidarabi/cubicpell-nonce/pkg/group"
	"github.com/mahdiidarabi/cubicpell-nonce/pkg/lattice"
)

// LatticeConfig configures a LatticeAttack.
type LatticeConfig struct {
	// Division is applied to (s₁ − α₀) / σ₁ for every candidate row.
	Division DivisionPolicy

	// Reduce is passed to lattice.Reduce.
	Reduce []lattice.Option

	Logger zerolog.Logger
}

// DefaultLatticeConfig uses floor division and default LLL parameters.
func DefaultLatticeConfig() LatticeConfig {
	return LatticeConfig{
		Division: FloorDivision,
		Logger:   zerolog.Nop(),
	}
}

// LatticeOption customizes a LatticeAttack.
type LatticeOption func(*LatticeConfig)

// WithDivisionPolicy sets how candidate keys are derived from reduced rows.
func WithDivisionPolicy(p DivisionPolicy) LatticeOption {
	return func(c *LatticeConfig) { c.Division = p }
}

// WithReduceOptions forwards options to the LLL reduction.
func WithReduceOptions(opts ...lattice.Option) LatticeOption {
	return func(c *LatticeConfig) { c.Reduce = append(c.Reduce, opts...) }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) LatticeOption {
	return func(c *LatticeConfig) { c.Logger = l }
}

// LatticeResult describes one lattice attack run. A run that finds nothing is
// not an error: Recovered is false.
type LatticeResult struct {
	Recovered bool
	Secret    *big.Int // λ reduced into [0, φ) when Recovered
	Row       int      // index of the reduced row that produced λ, -1 otherwise
	Rows      int
	ZeroRows  int
	Elapsed   time.Duration
}

// LatticeAttack recovers λ from signatures with nonces shorter than a known bound.
type LatticeAttack struct {
	group  group.Group
	config LatticeConfig
}

// NewLatticeAttack creates an attack over g.
func NewLatticeAttack(g group.Group, opts ...LatticeOption) *LatticeAttack {
	cfg := DefaultLatticeConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &LatticeAttack{group: g, config: cfg}
}

// BuildBasis returns the (n+2)×(n+2) Hidden Number Problem basis
//
//	[ φ              ]
//	[    ⋱           ]
//	[       φ        ]
//	[ σ₁ … σₙ  ⌊B/φ⌋  0 ]
//	[ s₁ … sₙ  0     B ]
//
// whose short vectors have α₁ in the first coordinate.
func BuildBasis(s, sigma []*big.Int, bound, phi *big.Int) (lattice.Matrix, error) {
	n := len(s)
	if n == 0 || len(sigma) != n {
		return nil, fmt.Errorf("%w: got %d values and %d hashes", ErrInsufficientSignatures, len(s), len(sigma))
	}
	d := n + 2
	m := lattice.NewMatrix(d, d)
	for i := 0; i < n; i++ {
		m[i][i].Set(phi)
		m[n][i].Set(sigma[i])
		m[n+1][i].Set(s[i])
	}
	m[n][n].Quo(bound, phi)
	m[n+1][n+1].Set(bound)
	return m, nil
}

// Recover runs the attack assuming every nonce is at most 2^nonceBits.
func (a *LatticeAttack) Recover(ctx context.Context, signatures []*Signature, pub group.Element, nonceBits int) (*LatticeResult, error) {
	if nonceBits <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNonceBits, nonceBits)
	}
	return a.RecoverWithBound(ctx, signatures, pub, new(big.Int).Lsh(one, uint(nonceBits)))
}

// RecoverWithBound runs the attack with an explicit nonce bound B.
//
// Reduced rows are scanned in order; for each row the first coordinate is taken
// as α₁ and λ = (s₁ − α₁) / σ₁ under the configured division policy. The first λ
// with λ·G == pub wins.
//
// Returns:
//   - a LatticeResult, or an error for malformed input or a failed reduction
func (a *LatticeAttack) RecoverWithBound(ctx context.Context, signatures []*Signature, pub group.Element, bound *big.Int) (*LatticeResult, error) {
	if len(signatures) == 0 {
		return nil, ErrInsufficientSignatures
	}
	if pub == nil {
		return nil, fmt.Errorf("lattice attack needs a public key to confirm candidates")
	}
	s := make([]*big.Int, len(signatures))
	sigma := make([]*big.Int, len(signatures))
	for i, sig := range signatures {
		if sig == nil || sig.S == nil || sig.Sigma == nil {
			return nil, fmt.Errorf("%w: signature %d", ErrIncompleteSignature, i)
		}
		s[i], sigma[i] = sig.S, sig.Sigma
	}
	if sigma[0].Sign() == 0 {
		return nil, ErrZeroHash
	}

	phi := a.group.Order()
	basis, err := BuildBasis(s, sigma, bound, phi)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var stats lattice.Stats
	opts := append(append([]lattice.Option(nil), a.config.Reduce...), lattice.WithStats(&stats))
	reduced, err := lattice.Reduce(ctx, basis, opts...)
	if err != nil {
		return nil, fmt.Errorf("reduce basis: %w", err)
	}

	result := &LatticeResult{Row: -1, Rows: reduced.Rows(), ZeroRows: stats.ZeroRows}
	for i, row := range reduced {
		lambda, err := a.config.Division.Divide(new(big.Int).Sub(s[0], row[0]), sigma[0])
		if err != nil {
			continue
		}
		if !a.group.ScalarBaseMult(lambda).Equal(pub) {
			continue
		}
		result.Recovered = true
		result.Secret = lambda.Mod(lambda, phi)
		result.Row = i
		break
	}
	result.Elapsed = time.Since(start)

	a.config.Logger.Debug().
		Int("signatures", len(signatures)).
		Int("bound_bits", bound.BitLen()-1).
		Int("iterations", stats.Iterations).
		Int("swaps", stats.Swaps).
		Int("zero_rows", stats.ZeroRows).
		Bool("recovered", result.Recovered).
		Dur("elapsed", result.Elapsed).
		Msg("lattice attack finished")

	return result, nil
}
