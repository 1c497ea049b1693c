package group

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
)

// BabyJubjub is a Group backed by the prime-order subgroup of the Baby
// Jubjub twisted Edwards curve over the BN254 scalar field.
type BabyJubjub struct {
	order *big.Int
	base  twistededwards.PointAffine
}

// BabyJubjubElement wraps an affine point. The identity is (0, 1).
type BabyJubjubElement struct {
	p twistededwards.PointAffine
}

// NewBabyJubjub returns the Baby Jubjub group.
func NewBabyJubjub() *BabyJubjub {
	curve := twistededwards.GetEdwardsCurve()
	return &BabyJubjub{order: new(big.Int).Set(&curve.Order), base: curve.Base}
}

func (g *BabyJubjub) Name() string { return "babyjubjub" }

func (g *BabyJubjub) Order() *big.Int { return new(big.Int).Set(g.order) }

func (g *BabyJubjub) Generator() Element {
	out := new(BabyJubjubElement)
	out.p.Set(&g.base)
	return out
}

func (g *BabyJubjub) Identity() Element {
	out := new(BabyJubjubElement)
	out.p.X.SetZero()
	out.p.Y.SetOne()
	return out
}

func (g *BabyJubjub) Add(a, b Element) Element {
	out := new(BabyJubjubElement)
	out.p.Add(&castBabyJubjub(a).p, &castBabyJubjub(b).p)
	return out
}

func (g *BabyJubjub) ScalarMult(k *big.Int, e Element) Element {
	out := new(BabyJubjubElement)
	out.p.ScalarMultiplication(&castBabyJubjub(e).p, new(big.Int).Mod(k, g.order))
	return out
}

func (g *BabyJubjub) ScalarBaseMult(k *big.Int) Element {
	out := new(BabyJubjubElement)
	out.p.ScalarMultiplication(&g.base, new(big.Int).Mod(k, g.order))
	return out
}

func (g *BabyJubjub) Decode(data []byte) (Element, error) {
	out := new(BabyJubjubElement)
	if err := out.p.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("decode babyjubjub point: %w", err)
	}
	return out, nil
}

func castBabyJubjub(e Element) *BabyJubjubElement {
	out, ok := e.(*BabyJubjubElement)
	if !ok {
		panic(ErrForeignElement)
	}
	return out
}

func (e *BabyJubjubElement) Equal(other Element) bool {
	o, ok := other.(*BabyJubjubElement)
	if !ok {
		return false
	}
	return e.p.Equal(&o.p)
}

func (e *BabyJubjubElement) Bytes() []byte {
	b := e.p.Bytes()
	return b[:]
}

func (e *BabyJubjubElement) String() string { return hex.EncodeToString(e.Bytes()) }
