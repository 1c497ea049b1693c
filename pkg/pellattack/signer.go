package pellattack

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/mahdiidarabi/cubicpell-nonce/pkg/group"
)

var one = big.NewInt(1)

// GenerateKey draws λ uniformly from [1, φ−1] and returns (λ, λ·G).
func GenerateKey(random io.Reader, g group.Group) (*KeyPair, error) {
	if random == nil {
		random = rand.Reader
	}
	max := g.Order()
	max.Sub(max, one)
	secret, err := rand.Int(random, max)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	secret.Add(secret, one)
	return &KeyPair{Secret: secret, Public: g.ScalarBaseMult(secret)}, nil
}

// Signer produces signatures with nonces drawn from [1, 2^NonceBits].
type Signer struct {
	Group     group.Group
	Hash      *HashOracle
	NonceBits int
	Rand      io.Reader
}

// NewSigner returns a SHA-256 signer reading nonces from crypto/rand.
func NewSigner(g group.Group, nonceBits int) *Signer {
	return &Signer{
		Group:     g,
		Hash:      DefaultHashOracle(),
		NonceBits: nonceBits,
		Rand:      rand.Reader,
	}
}

// Sign signs msg with secret and a fresh nonce.
//
// Returns:
//   - the signature, the nonce α used, and ErrInvalidNonceBits when NonceBits ≤ 0.
func (s *Signer) Sign(msg []byte, secret *big.Int) (*Signature, *big.Int, error) {
	if s.NonceBits <= 0 {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidNonceBits, s.NonceBits)
	}
	random := s.Rand
	if random == nil {
		random = rand.Reader
	}
	bound := new(big.Int).Lsh(one, uint(s.NonceBits))
	alpha, err := rand.Int(random, bound)
	if err != nil {
		return nil, nil, fmt.Errorf("draw nonce: %w", err)
	}
	alpha.Add(alpha, one)
	return s.SignWithNonce(msg, secret, alpha), alpha, nil
}

// SignWithNonce signs msg with the given nonce. It is used to model leaked,
// reused and shared nonces.
func (s *Signer) SignWithNonce(msg []byte, secret, alpha *big.Int) *Signature {
	hasher := s.Hash
	if hasher == nil {
		hasher = DefaultHashOracle()
	}
	sigma := hasher.HashToInt(msg)

	sv := new(big.Int).Mul(sigma, secret)
	sv.Add(sv, alpha)

	return &Signature{
		Message:    append([]byte(nil), msg...),
		Sigma:      sigma,
		S:          sv,
		Commitment: s.Group.ScalarBaseMult(alpha),
	}
}

// Verify checks s·G == commitment + σ·pub.
func (s *Signer) Verify(sig *Signature, pub group.Element) bool {
	return VerifySignature(s.Group, sig, pub)
}

// VerifySignature checks s·G == commitment + σ·pub in g.
func VerifySignature(g group.Group, sig *Signature, pub group.Element) bool {
	if sig == nil || sig.S == nil || sig.Sigma == nil || sig.Commitment == nil || pub == nil {
		return false
	}
	lhs := g.ScalarBaseMult(sig.S)
	rhs := g.Add(sig.Commitment, g.ScalarMult(sig.Sigma, pub))
	return lhs.Equal(rhs)
}
