package pellattack

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"math/big"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"
)

// Digest names a hash function usable as the signature hash.
type Digest string

const (
	DigestSHA256  Digest = "sha256"
	DigestSHA3256 Digest = "sha3-256"
	DigestBLAKE3  Digest = "blake3"
	DigestSHA512  Digest = "sha512"
)

var digests = map[Digest]func() hash.Hash{
	DigestSHA256:  sha256.New,
	DigestSHA3256: sha3.New256,
	DigestBLAKE3:  func() hash.Hash { return blake3.New() },
	DigestSHA512:  sha512.New,
}

// Digests lists the supported digest names.
func Digests() []Digest {
	return []Digest{DigestSHA256, DigestSHA3256, DigestBLAKE3, DigestSHA512}
}

// HashOracle maps messages to non-negative integers.
type HashOracle struct {
	digest Digest
	newFn  func() hash.Hash
}

// NewHashOracle returns an oracle for the named digest.
func NewHashOracle(d Digest) (*HashOracle, error) {
	fn, ok := digests[d]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDigest, d)
	}
	return &HashOracle{digest: d, newFn: fn}, nil
}

// DefaultHashOracle returns the SHA-256 oracle used by the scheme.
func DefaultHashOracle() *HashOracle {
	return &HashOracle{digest: DigestSHA256, newFn: sha256.New}
}

// Digest returns the digest name.
func (h *HashOracle) Digest() Digest { return h.digest }

// HashToInt returns the digest of msg read as a big-endian unsigned integer.
func (h *HashOracle) HashToInt(msg []byte) *big.Int {
	hasher := h.newFn()
	hasher.Write(msg)
	return new(big.Int).SetBytes(hasher.Sum(nil))
}

// HashMessage is HashToInt with SHA-256.
func HashMessage(msg []byte) *big.Int {
	sum := sha256.Sum256(msg)
	return new(big.Int).SetBytes(sum[:])
}
