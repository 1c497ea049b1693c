package cubicpell

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrNotOnCurve is returned when coordinates do not satisfy the curve equation.
	ErrNotOnCurve = errors.New("cubicpell: point is not on the curve")

	// ErrInvalidEncoding is returned by Unmarshal for inputs of the wrong length.
	ErrInvalidEncoding = errors.New("cubicpell: invalid point encoding")

	// ErrInvalidParameters is returned by NewCurve for unusable moduli or parameters.
	ErrInvalidParameters = errors.New("cubicpell: invalid curve parameters")
)

var (
	one   = big.NewInt(1)
	three = big.NewInt(3)
)

// Curve is the cubic Pell group defined by a modulus N and a parameter a.
type Curve struct {
	n       *big.Int
	a       *big.Int
	a2      *big.Int // a² mod N
	a3      *big.Int // 3a mod N
	byteLen int
}

// NewCurve creates the group x³ + a·y³ + a²·z³ − 3a·x·y·z ≡ 1 (mod n).
func NewCurve(n, a *big.Int) (*Curve, error) {
	if n == nil || a == nil || n.Cmp(one) <= 0 {
		return nil, fmt.Errorf("%w: modulus must be greater than 1", ErrInvalidParameters)
	}
	aRed := new(big.Int).Mod(a, n)
	if aRed.Sign() == 0 {
		return nil, fmt.Errorf("%w: a must be non-zero modulo N", ErrInvalidParameters)
	}

	a2 := new(big.Int).Mul(aRed, aRed)
	a2.Mod(a2, n)
	a3 := new(big.Int).Mul(three, aRed)
	a3.Mod(a3, n)

	return &Curve{
		n:       new(big.Int).Set(n),
		a:       aRed,
		a2:      a2,
		a3:      a3,
		byteLen: (n.BitLen() + 7) / 8,
	}, nil
}

// Modulus returns a copy of N.
func (c *Curve) Modulus() *big.Int { return new(big.Int).Set(c.n) }

// A returns a copy of the curve parameter a.
func (c *Curve) A() *big.Int { return new(big.Int).Set(c.a) }

// Order returns N² + N + 1, the group order when N is prime and a is a non-cube.
func (c *Curve) Order() *big.Int {
	phi := new(big.Int).Mul(c.n, c.n)
	phi.Add(phi, c.n)
	return phi.Add(phi, one)
}

// Equal reports whether c and d have the same modulus and parameter.
func (c *Curve) Equal(d *Curve) bool {
	if c == d {
		return true
	}
	return d != nil && c.n.Cmp(d.n) == 0 && c.a.Cmp(d.a) == 0
}

// ByteLen is the width in bytes of one encoded coordinate.
func (c *Curve) ByteLen() int { return c.byteLen }

// Identity returns the neutral element (1, 0, 0).
func (c *Curve) Identity() Point {
	return Point{x: big.NewInt(1), y: new(big.Int), z: new(big.Int)}
}

// NewPoint reduces the coordinates modulo N and checks the curve equation.
func (c *Curve) NewPoint(x, y, z *big.Int) (Point, error) {
	p := c.point(new(big.Int).Set(x), new(big.Int).Set(y), new(big.Int).Set(z))
	if !c.IsOnCurve(p) {
		return Point{}, ErrNotOnCurve
	}
	return p, nil
}

// point takes ownership of x, y, z and reduces them in place.
func (c *Curve) point(x, y, z *big.Int) Point {
	return Point{x: x.Mod(x, c.n), y: y.Mod(y, c.n), z: z.Mod(z, c.n)}
}

// IsOnCurve reports whether x³ + a·y³ + a²·z³ − 3a·x·y·z ≡ 1 (mod N).
func (c *Curve) IsOnCurve(p Point) bool {
	if p.x == nil {
		return false
	}
	lhs := new(big.Int).Exp(p.x, three, c.n)

	t := new(big.Int).Exp(p.y, three, c.n)
	t.Mul(t, c.a)
	lhs.Add(lhs, t)

	t.Exp(p.z, three, c.n)
	t.Mul(t, c.a2)
	lhs.Add(lhs, t)

	t.Mul(p.x, p.y)
	t.Mul(t, p.z)
	t.Mul(t, c.a3)
	lhs.Sub(lhs, t)

	lhs.Mod(lhs, c.n)
	return lhs.Cmp(one) == 0
}

// Add returns p + q:
//
//	(x1x2 + a(y2z1 + y1z2), x2y1 + x1y2 + a·z1z2, y1y2 + x2z1 + x1z2) mod N
func (c *Curve) Add(p, q Point) Point {
	t := new(big.Int)

	x3 := new(big.Int).Mul(q.y, p.z)
	x3.Add(x3, t.Mul(p.y, q.z))
	x3.Mul(x3, c.a)
	x3.Add(x3, t.Mul(p.x, q.x))

	y3 := new(big.Int).Mul(p.z, q.z)
	y3.Mul(y3, c.a)
	y3.Add(y3, t.Mul(q.x, p.y))
	y3.Add(y3, t.Mul(p.x, q.y))

	z3 := new(big.Int).Mul(p.y, q.y)
	z3.Add(z3, t.Mul(q.x, p.z))
	z3.Add(z3, t.Mul(p.x, q.z))

	return c.point(x3, y3, z3)
}

// Double returns p + p.
func (c *Curve) Double(p Point) Point {
	return c.Add(p, p)
}

// Neg returns the inverse of p, (x² − a·y·z, a·z² − x·y, y² − x·z) mod N.
func (c *Curve) Neg(p Point) Point {
	t := new(big.Int)

	x := new(big.Int).Mul(p.x, p.x)
	t.Mul(p.y, p.z)
	x.Sub(x, t.Mul(t, c.a))

	y := new(big.Int).Mul(p.z, p.z)
	y.Mul(y, c.a)
	y.Sub(y, t.Mul(p.x, p.y))

	z := new(big.Int).Mul(p.y, p.y)
	z.Sub(z, t.Mul(p.x, p.z))

	return c.point(x, y, z)
}

// ScalarMult returns k·p using most-significant-bit-first double-and-add.
// Negative k multiplies the inverse of p.
func (c *Curve) ScalarMult(k *big.Int, p Point) Point {
	if k.Sign() < 0 {
		return c.ScalarMult(new(big.Int).Neg(k), c.Neg(p))
	}
	r := c.Identity()
	for i := k.BitLen() - 1; i >= 0; i-- {
		r = c.Double(r)
		if k.Bit(i) == 1 {
			r = c.Add(r, p)
		}
	}
	return r
}

// Marshal encodes p as x ‖ y ‖ z, each coordinate big-endian and ByteLen bytes wide.
func (c *Curve) Marshal(p Point) []byte {
	out := make([]byte, 3*c.byteLen)
	p.x.FillBytes(out[:c.byteLen])
	p.y.FillBytes(out[c.byteLen : 2*c.byteLen])
	p.z.FillBytes(out[2*c.byteLen:])
	return out
}

// Unmarshal decodes a point produced by Marshal and checks that it lies on the curve.
func (c *Curve) Unmarshal(data []byte) (Point, error) {
	if len(data) != 3*c.byteLen {
		return Point{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidEncoding, 3*c.byteLen, len(data))
	}
	x := new(big.Int).SetBytes(data[:c.byteLen])
	y := new(big.Int).SetBytes(data[c.byteLen : 2*c.byteLen])
	z := new(big.Int).SetBytes(data[2*c.byteLen:])
	if x.Cmp(c.n) >= 0 || y.Cmp(c.n) >= 0 || z.Cmp(c.n) >= 0 {
		return Point{}, fmt.Errorf("%w: coordinate out of range", ErrInvalidEncoding)
	}
	p := Point{x: x, y: y, z: z}
	if !c.IsOnCurve(p) {
		return Point{}, ErrNotOnCurve
	}
	return p, nil
}
