package pellattack

import (
	"math/big"

	"github.com/mahdiidarabi/cubicpell-nonce/pkg/group"
)

// Signature is one output of the weak scheme.
type Signature struct {
	Message    []byte        // Signed message, may be nil when only Sigma is known
	Sigma      *big.Int      // Hash of the message
	S          *big.Int      // α + σ·λ, unreduced
	Commitment group.Element // α·G, nil when not published
}

// KeyPair holds a secret scalar λ and its public element λ·G.
type KeyPair struct {
	Secret *big.Int
	Public group.Element
}

// RecoveryResult contains the result of a key recovery operation.
type RecoveryResult struct {
	PrivateKey *big.Int // Recovered private key
	Signatures []int    // Indices of the signatures used
	Verified   bool     // Whether the key was checked against a public key
	Method     string   // Attack that found the key
	NonceBits  int      // Nonce bound used by the lattice attack, 0 otherwise
}
