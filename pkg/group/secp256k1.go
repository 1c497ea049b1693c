package group

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Secp256k1 is a Group backed by the secp256k1 curve. It lets the same attacks
// run against a prime-order group of a familiar size.
type Secp256k1 struct {
	order *big.Int
}

// Secp256k1Element wraps a Jacobian point. The identity encodes as a single 0x00 byte.
type Secp256k1Element struct {
	p secp256k1.JacobianPoint
}

// NewSecp256k1 returns the secp256k1 group.
func NewSecp256k1() *Secp256k1 {
	return &Secp256k1{order: new(big.Int).Set(secp256k1.S256().Params().N)}
}

func (g *Secp256k1) Name() string { return "secp256k1" }

func (g *Secp256k1) Order() *big.Int { return new(big.Int).Set(g.order) }

func (g *Secp256k1) Generator() Element {
	return g.ScalarBaseMult(big.NewInt(1))
}

func (g *Secp256k1) Identity() Element {
	return new(Secp256k1Element)
}

func (g *Secp256k1) Add(a, b Element) Element {
	out := new(Secp256k1Element)
	secp256k1.AddNonConst(&castSecp256k1(a).p, &castSecp256k1(b).p, &out.p)
	out.p.ToAffine()
	return out
}

func (g *Secp256k1) ScalarMult(k *big.Int, e Element) Element {
	s := g.scalar(k)
	out := new(Secp256k1Element)
	secp256k1.ScalarMultNonConst(&s, &castSecp256k1(e).p, &out.p)
	out.p.ToAffine()
	return out
}

func (g *Secp256k1) ScalarBaseMult(k *big.Int) Element {
	s := g.scalar(k)
	out := new(Secp256k1Element)
	secp256k1.ScalarBaseMultNonConst(&s, &out.p)
	out.p.ToAffine()
	return out
}

func (g *Secp256k1) Decode(data []byte) (Element, error) {
	if len(data) == 1 && data[0] == 0 {
		return g.Identity(), nil
	}
	pk, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return nil, fmt.Errorf("decode secp256k1 point: %w", err)
	}
	out := new(Secp256k1Element)
	pk.AsJacobian(&out.p)
	return out, nil
}

// scalar reduces k modulo the group order.
func (g *Secp256k1) scalar(k *big.Int) secp256k1.ModNScalar {
	reduced := new(big.Int).Mod(k, g.order)
	var buf [32]byte
	reduced.FillBytes(buf[:])
	var s secp256k1.ModNScalar
	s.SetBytes(&buf)
	return s
}

func castSecp256k1(e Element) *Secp256k1Element {
	out, ok := e.(*Secp256k1Element)
	if !ok {
		panic(ErrForeignElement)
	}
	return out
}

func (e *Secp256k1Element) isIdentity() bool {
	return (e.p.X.IsZero() && e.p.Y.IsZero()) || e.p.Z.IsZero()
}

func (e *Secp256k1Element) Equal(other Element) bool {
	o, ok := other.(*Secp256k1Element)
	if !ok {
		return false
	}
	if e.isIdentity() || o.isIdentity() {
		return e.isIdentity() && o.isIdentity()
	}
	return e.p.X.Equals(&o.p.X) && e.p.Y.Equals(&o.p.Y)
}

func (e *Secp256k1Element) Bytes() []byte {
	if e.isIdentity() {
		return []byte{0}
	}
	return secp256k1.NewPublicKey(&e.p.X, &e.p.Y).SerializeCompressed()
}

func (e *Secp256k1Element) String() string {
	return hex.EncodeToString(e.Bytes())
}
