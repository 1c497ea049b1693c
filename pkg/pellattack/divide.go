package pellattack

import (
	"fmt"
	"math/big"
)

// DivisionPolicy decides how a recovery quotient is computed.
type DivisionPolicy int

const (
	// FloorDivision rounds toward negative infinity. Candidates are expected
	// to be confirmed against a public key.
	FloorDivision DivisionPolicy = iota

	// ExactDivision rejects quotients with a non-zero remainder.
	ExactDivision
)

func (p DivisionPolicy) String() string {
	switch p {
	case FloorDivision:
		return "floor"
	case ExactDivision:
		return "exact"
	default:
		return fmt.Sprintf("DivisionPolicy(%d)", int(p))
	}
}

// Divide returns a / b under the policy. b must be non-zero.
func (p DivisionPolicy) Divide(a, b *big.Int) (*big.Int, error) {
	if p == ExactDivision {
		return ExactDiv(a, b)
	}
	return FloorDiv(a, b), nil
}

// FloorDiv returns ⌊a / b⌋. b must be non-zero.
func FloorDiv(a, b *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(a, b, new(big.Int))
	if r.Sign() != 0 && r.Sign() != b.Sign() {
		q.Sub(q, one)
	}
	return q
}

// ExactDiv returns a / b, or ErrInexactDivision when b does not divide a.
// b must be non-zero.
func ExactDiv(a, b *big.Int) (*big.Int, error) {
	q, r := new(big.Int).QuoRem(a, b, new(big.Int))
	if r.Sign() != 0 {
		return nil, ErrInexactDivision
	}
	return q, nil
}
