package pellattack

import (
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/cubicpell-nonce/pkg/group"
)

// RecoverFromLeakedNonce recovers λ = (s − α) / σ from a signature whose nonce is known.
//
// Args:
//   - s: Signature value α + σ·λ
//   - sigma: Message hash
//   - alpha: The leaked nonce
//
// Returns:
//   - λ, ErrZeroHash when σ = 0, or ErrInexactDivision when σ does not divide s − α
func RecoverFromLeakedNonce(s, sigma, alpha *big.Int) (*big.Int, error) {
	if sigma.Sign() == 0 {
		return nil, ErrZeroHash
	}
	num := new(big.Int).Sub(s, alpha)
	lambda, err := ExactDiv(num, sigma)
	if err != nil {
		return nil, fmt.Errorf("leaked nonce: %w", err)
	}
	return lambda, nil
}

// RecoverFromReusedNonce recovers λ = (s₁ − s₂) / (σ₁ − σ₂) from two signatures
// made with the same nonce.
//
// Returns:
//   - λ, ErrIndeterminate when σ₁ = σ₂, or ErrInexactDivision when the
//     signatures do not share a nonce
func RecoverFromReusedNonce(s1, s2, sigma1, sigma2 *big.Int) (*big.Int, error) {
	den := new(big.Int).Sub(sigma1, sigma2)
	if den.Sign() == 0 {
		return nil, ErrIndeterminate
	}
	num := new(big.Int).Sub(s1, s2)
	lambda, err := ExactDiv(num, den)
	if err != nil {
		return nil, fmt.Errorf("reused nonce: %w", err)
	}
	return lambda, nil
}

// RecoverSharedNonceKeys recovers two secrets x₁, x₂ from four signatures where
// key 1 and key 2 both signed with nonce α₁ (s₁, s₂) and again with α₂ (s₃, s₄):
//
//	s₁ = α₁ + h₁x₁   s₂ = α₁ + h₂x₂
//	s₃ = α₂ + h₃x₁   s₄ = α₂ + h₄x₂
//
// Subtracting pairs gives [[h₁, −h₂], [h₃, −h₄]]·[x₁, x₂]ᵀ = [s₁ − s₂, s₃ − s₄]ᵀ (mod φ).
// The keys are returned reduced into [0, φ).
//
// Returns:
//   - x₁, x₂, or ErrSingularSystem when the determinant is not invertible modulo φ
func RecoverSharedNonceKeys(h1, h2, h3, h4, s1, s2, s3, s4, phi *big.Int) (*big.Int, *big.Int, error) {
	a := [][]*big.Int{
		{h1, new(big.Int).Neg(h2)},
		{h3, new(big.Int).Neg(h4)},
	}
	b := []*big.Int{
		new(big.Int).Sub(s1, s2),
		new(big.Int).Sub(s3, s4),
	}
	x, err := SolveMod(a, b, phi)
	if err != nil {
		return nil, nil, fmt.Errorf("shared nonce: %w", err)
	}
	return x[0], x[1], nil
}

// RecoverFromSignatures applies the reused-nonce attack to two parsed signatures.
func RecoverFromSignatures(sig1, sig2 *Signature) (*big.Int, error) {
	return RecoverFromReusedNonce(sig1.S, sig2.S, sig1.Sigma, sig2.Sigma)
}

// VerifyRecoveredKey reports whether secret·G equals pub.
func VerifyRecoveredKey(g group.Group, secret *big.Int, pub group.Element) bool {
	if secret == nil || pub == nil {
		return false
	}
	return g.ScalarBaseMult(secret).Equal(pub)
}
