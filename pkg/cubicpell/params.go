package cubicpell

import (
	"fmt"
	"math/big"
)

// Params bundles a curve with its base point, generator and group order.
type Params struct {
	Name      string
	Curve     *Curve
	Base      Point
	Generator Point
	Order     *big.Int
}

// NewParams builds a group instance and derives the generator G = (N+1)·base.
func NewParams(name string, n, a *big.Int, bx, by, bz *big.Int) (*Params, error) {
	curve, err := NewCurve(n, a)
	if err != nil {
		return nil, err
	}
	base, err := curve.NewPoint(bx, by, bz)
	if err != nil {
		return nil, fmt.Errorf("base point: %w", err)
	}
	cofactor := new(big.Int).Add(curve.n, one)
	return &Params{
		Name:      name,
		Curve:     curve,
		Base:      base,
		Generator: curve.ScalarMult(cofactor, base),
		Order:     curve.Order(),
	}, nil
}

// CP256 returns the CP256-1299 instance: N = 2²⁵⁶ − 1299, a = 7, base (4, 2, 1).
func CP256() *Params {
	n := new(big.Int).Lsh(one, 256)
	n.Sub(n, big.NewInt(1299))
	params, err := NewParams("CP256-1299", n, big.NewInt(7), big.NewInt(4), big.NewInt(2), big.NewInt(1))
	if err != nil {
		// The constants above satisfy the curve equation.
		panic(err)
	}
	return params
}
