// Package lattice implements LLL basis reduction over exact integer bases.
package lattice

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ErrRaggedMatrix is returned when the rows of a basis differ in length.
var ErrRaggedMatrix = errors.New("lattice: rows have different lengths")

// Matrix is a row-major integer matrix. Each row is one basis vector.
type Matrix [][]*big.Int

// NewMatrix returns a rows×cols zero matrix.
func NewMatrix(rows, cols int) Matrix {
	m := make(Matrix, rows)
	for i := range m {
		m[i] = make([]*big.Int, cols)
		for j := range m[i] {
			m[i][j] = new(big.Int)
		}
	}
	return m
}

// Rows returns the number of basis vectors.
func (m Matrix) Rows() int { return len(m) }

// Cols returns the vector dimension, 0 for an empty matrix.
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Clone returns a deep copy. Nil entries are copied as zero.
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = make([]*big.Int, len(row))
		for j, v := range row {
			if v == nil {
				out[i][j] = new(big.Int)
				continue
			}
			out[i][j] = new(big.Int).Set(v)
		}
	}
	return out
}

// Validate checks that every row has the same length.
func (m Matrix) Validate() error {
	for i, row := range m {
		if len(row) != m.Cols() {
			return fmt.Errorf("%w: row %d has %d entries, want %d", ErrRaggedMatrix, i, len(row), m.Cols())
		}
	}
	return nil
}

// MaxBitLen is the largest bit length of any entry.
func (m Matrix) MaxBitLen() int {
	max := 0
	for _, row := range m {
		for _, v := range row {
			if v != nil && v.BitLen() > max {
				max = v.BitLen()
			}
		}
	}
	return max
}

func (m Matrix) String() string {
	var b strings.Builder
	for i, row := range m {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteByte('[')
		for j, v := range row {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(v.String())
		}
		b.WriteByte(']')
	}
	return b.String()
}

func dot(a, b []*big.Int) *big.Int {
	sum := new(big.Int)
	t := new(big.Int)
	for i := range a {
		sum.Add(sum, t.Mul(a[i], b[i]))
	}
	return sum
}

func isZero(v []*big.Int) bool {
	for _, x := range v {
		if x.Sign() != 0 {
			return false
		}
	}
	return true
}

// subMul sets dst = dst − x·src.
func subMul(dst, src []*big.Int, x *big.Int) {
	t := new(big.Int)
	for i := range dst {
		dst[i].Sub(dst[i], t.Mul(x, src[i]))
	}
}
