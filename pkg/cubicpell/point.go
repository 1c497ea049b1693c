package cubicpell

import (
	"fmt"
	"math/big"
)

// Point is an element (x, y, z) of a cubic Pell group.
//
// The zero value is not a valid point; obtain points from a Curve.
type Point struct {
	x, y, z *big.Int
}

// X returns a copy of the x coordinate.
func (p Point) X() *big.Int { return new(big.Int).Set(p.x) }

// Y returns a copy of the y coordinate.
func (p Point) Y() *big.Int { return new(big.Int).Set(p.y) }

// Z returns a copy of the z coordinate.
func (p Point) Z() *big.Int { return new(big.Int).Set(p.z) }

// Equal reports whether p and q have identical coordinates.
func (p Point) Equal(q Point) bool {
	if p.x == nil || q.x == nil {
		return p.x == nil && q.x == nil
	}
	return p.x.Cmp(q.x) == 0 && p.y.Cmp(q.y) == 0 && p.z.Cmp(q.z) == 0
}

// String formats the point as "(x : y : z)".
func (p Point) String() string {
	if p.x == nil {
		return "(invalid)"
	}
	return fmt.Sprintf("(%s : %s : %s)", p.x, p.y, p.z)
}
