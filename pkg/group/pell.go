package group

import (
	"math/big"

	"github.com/mahdiidarabi/cubicpell-nonce/pkg/cubicpell"
)

// CubicPell is a Group backed by a cubic Pell instance.
type CubicPell struct {
	params *cubicpell.Params
}

// PellElement is a cubic Pell point tagged with its curve. Elements of
// separately constructed instances with equal parameters are interchangeable.
type PellElement struct {
	curve *cubicpell.Curve
	point cubicpell.Point
}

// NewCubicPell wraps the given parameters.
func NewCubicPell(params *cubicpell.Params) *CubicPell {
	return &CubicPell{params: params}
}

// CP256 returns the CP256-1299 group.
func CP256() *CubicPell {
	return NewCubicPell(cubicpell.CP256())
}

// Params exposes the underlying curve parameters.
func (g *CubicPell) Params() *cubicpell.Params { return g.params }

func (g *CubicPell) Name() string { return g.params.Name }

func (g *CubicPell) Order() *big.Int { return new(big.Int).Set(g.params.Order) }

func (g *CubicPell) Generator() Element { return g.wrap(g.params.Generator) }

func (g *CubicPell) Identity() Element { return g.wrap(g.params.Curve.Identity()) }

func (g *CubicPell) Add(a, b Element) Element {
	return g.wrap(g.params.Curve.Add(g.unwrap(a), g.unwrap(b)))
}

func (g *CubicPell) ScalarMult(k *big.Int, e Element) Element {
	return g.wrap(g.params.Curve.ScalarMult(k, g.unwrap(e)))
}

func (g *CubicPell) ScalarBaseMult(k *big.Int) Element {
	return g.wrap(g.params.Curve.ScalarMult(k, g.params.Generator))
}

func (g *CubicPell) Decode(data []byte) (Element, error) {
	p, err := g.params.Curve.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return g.wrap(p), nil
}

func (g *CubicPell) wrap(p cubicpell.Point) *PellElement {
	return &PellElement{curve: g.params.Curve, point: p}
}

// unwrap panics on elements from another group; mixing groups is a programming error.
func (g *CubicPell) unwrap(e Element) cubicpell.Point {
	pe, ok := e.(*PellElement)
	if !ok || !pe.curve.Equal(g.params.Curve) {
		panic(ErrForeignElement)
	}
	return pe.point
}

// Point returns the underlying cubic Pell point.
func (e *PellElement) Point() cubicpell.Point { return e.point }

func (e *PellElement) Equal(other Element) bool {
	o, ok := other.(*PellElement)
	if !ok || !o.curve.Equal(e.curve) {
		return false
	}
	return e.point.Equal(o.point)
}

func (e *PellElement) Bytes() []byte { return e.curve.Marshal(e.point) }

func (e *PellElement) String() string { return e.point.String() }
