package group

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"filippo.io/edwards25519"
)

// ed25519Order is ℓ = 2^252 + 27742317777372353535851937790883648493.
var ed25519Order, _ = new(big.Int).SetString("7237005577332262213973186563042994240857116359379907606001950938285454250989", 10)

// Ed25519 is a Group backed by the prime-order subgroup of edwards25519.
type Ed25519 struct{}

// Ed25519Element wraps an edwards25519 point. It encodes as the 32-byte
// compressed form.
type Ed25519Element struct {
	p *edwards25519.Point
}

// NewEd25519 returns the edwards25519 group.
func NewEd25519() *Ed25519 { return &Ed25519{} }

func (g *Ed25519) Name() string { return "ed25519" }

func (g *Ed25519) Order() *big.Int { return new(big.Int).Set(ed25519Order) }

func (g *Ed25519) Generator() Element {
	return &Ed25519Element{p: edwards25519.NewGeneratorPoint()}
}

func (g *Ed25519) Identity() Element {
	return &Ed25519Element{p: edwards25519.NewIdentityPoint()}
}

func (g *Ed25519) Add(a, b Element) Element {
	return &Ed25519Element{p: new(edwards25519.Point).Add(castEd25519(a).p, castEd25519(b).p)}
}

func (g *Ed25519) ScalarMult(k *big.Int, e Element) Element {
	return &Ed25519Element{p: new(edwards25519.Point).ScalarMult(ed25519Scalar(k), castEd25519(e).p)}
}

func (g *Ed25519) ScalarBaseMult(k *big.Int) Element {
	return &Ed25519Element{p: new(edwards25519.Point).ScalarBaseMult(ed25519Scalar(k))}
}

func (g *Ed25519) Decode(data []byte) (Element, error) {
	p, err := new(edwards25519.Point).SetBytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode ed25519 point: %w", err)
	}
	return &Ed25519Element{p: p}, nil
}

// ed25519Scalar reduces k modulo ℓ into a canonical little-endian scalar.
func ed25519Scalar(k *big.Int) *edwards25519.Scalar {
	reduced := new(big.Int).Mod(k, ed25519Order)
	var be [32]byte
	reduced.FillBytes(be[:])
	le := make([]byte, 32)
	for i := range be {
		le[i] = be[31-i]
	}
	s, err := edwards25519.NewScalar().SetCanonicalBytes(le)
	if err != nil {
		// Unreachable: reduced is below ℓ.
		panic(err)
	}
	return s
}

func castEd25519(e Element) *Ed25519Element {
	out, ok := e.(*Ed25519Element)
	if !ok {
		panic(ErrForeignElement)
	}
	return out
}

func (e *Ed25519Element) Equal(other Element) bool {
	o, ok := other.(*Ed25519Element)
	if !ok {
		return false
	}
	return e.p.Equal(o.p) == 1
}

func (e *Ed25519Element) Bytes() []byte { return e.p.Bytes() }

func (e *Ed25519Element) String() string { return hex.EncodeToString(e.Bytes()) }
