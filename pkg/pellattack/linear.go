package pellattack

import (
	"fmt"
	"math/big"

	"github.com/cronokirby/saferith"
)

// LinearSystem is a square system A·x = b over ℤ/m.
//
// Elimination combines rows with extended-gcd cofactors instead of searching
// for an invertible pivot, so composite moduli with small factors (the group
// order N² + N + 1 is divisible by 3) are handled. m must be odd.
type LinearSystem struct {
	m    *big.Int
	mod  *saferith.Modulus
	bits int
	rows [][]*saferith.Nat // augmented matrix [A | b]
}

// NewLinearSystem validates and reduces the system modulo m.
func NewLinearSystem(a [][]*big.Int, b []*big.Int, m *big.Int) (*LinearSystem, error) {
	if m == nil || m.Cmp(one) <= 0 || m.Bit(0) == 0 {
		return nil, fmt.Errorf("%w: modulus must be odd and greater than 1", ErrInvalidSystem)
	}
	n := len(a)
	if n == 0 || len(b) != n {
		return nil, fmt.Errorf("%w: need a non-empty square matrix and a matching vector", ErrInvalidSystem)
	}

	ls := &LinearSystem{
		m:    new(big.Int).Set(m),
		mod:  saferith.ModulusFromBytes(m.Bytes()),
		bits: m.BitLen(),
		rows: make([][]*saferith.Nat, n),
	}
	for i, row := range a {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d entries, want %d", ErrInvalidSystem, i, len(row), n)
		}
		ls.rows[i] = make([]*saferith.Nat, n+1)
		for j, v := range row {
			if v == nil {
				return nil, fmt.Errorf("%w: nil coefficient at (%d, %d)", ErrInvalidSystem, i, j)
			}
			ls.rows[i][j] = ls.nat(v)
		}
		if b[i] == nil {
			return nil, fmt.Errorf("%w: nil constant at %d", ErrInvalidSystem, i)
		}
		ls.rows[i][n] = ls.nat(b[i])
	}
	return ls, nil
}

// SolveMod solves A·x = b (mod m) and returns x with entries in [0, m).
func SolveMod(a [][]*big.Int, b []*big.Int, m *big.Int) ([]*big.Int, error) {
	ls, err := NewLinearSystem(a, b, m)
	if err != nil {
		return nil, err
	}
	return ls.Solve()
}

// Size returns the number of unknowns.
func (ls *LinearSystem) Size() int { return len(ls.rows) }

// Solve returns the unique solution, or ErrSingularSystem when the determinant
// is not a unit modulo m. The system is consumed.
func (ls *LinearSystem) Solve() ([]*big.Int, error) {
	n := len(ls.rows)
	for c := 0; c < n; c++ {
		for r := c + 1; r < n; r++ {
			ls.eliminate(c, r)
		}
		if ls.rows[c][c].IsUnit(ls.mod) != 1 {
			return nil, fmt.Errorf("%w: pivot %d is not invertible", ErrSingularSystem, c)
		}
	}

	x := make([]*saferith.Nat, n)
	for i := n - 1; i >= 0; i-- {
		acc := new(saferith.Nat).SetNat(ls.rows[i][n])
		for j := i + 1; j < n; j++ {
			t := new(saferith.Nat).ModMul(ls.rows[i][j], x[j], ls.mod)
			acc.ModSub(acc, t, ls.mod)
		}
		inv := new(saferith.Nat).ModInverse(ls.rows[i][i], ls.mod)
		x[i] = acc.ModMul(acc, inv, ls.mod)
	}

	out := make([]*big.Int, n)
	for i, v := range x {
		out[i] = v.Big()
	}
	return out, nil
}

// eliminate clears column c of row r against pivot row c with a unimodular
// transform: with g = u·p + v·q,
//
//	row_c ← u·row_c + v·row_r
//	row_r ← (p/g)·row_r − (q/g)·row_c
func (ls *LinearSystem) eliminate(c, r int) {
	q := ls.rows[r][c].Big()
	if q.Sign() == 0 {
		return
	}
	p := ls.rows[c][c].Big()
	if p.Sign() == 0 {
		ls.rows[c], ls.rows[r] = ls.rows[r], ls.rows[c]
		return
	}

	u, v := new(big.Int), new(big.Int)
	g := new(big.Int).GCD(u, v, p, q)
	pg := new(big.Int).Quo(p, g)
	qg := new(big.Int).Quo(q, g)

	un, vn := ls.nat(u), ls.nat(v)
	pn, qn := ls.nat(pg), ls.nat(qg)

	width := len(ls.rows[c])
	newC := make([]*saferith.Nat, width)
	newR := make([]*saferith.Nat, width)
	for k := 0; k < width; k++ {
		a, b := ls.rows[c][k], ls.rows[r][k]

		t := new(saferith.Nat).ModMul(un, a, ls.mod)
		newC[k] = t.ModAdd(t, new(saferith.Nat).ModMul(vn, b, ls.mod), ls.mod)

		t = new(saferith.Nat).ModMul(pn, b, ls.mod)
		newR[k] = t.ModSub(t, new(saferith.Nat).ModMul(qn, a, ls.mod), ls.mod)
	}
	ls.rows[c], ls.rows[r] = newC, newR
}

// nat reduces v into [0, m).
func (ls *LinearSystem) nat(v *big.Int) *saferith.Nat {
	reduced := new(big.Int).Mod(v, ls.m)
	return new(saferith.Nat).SetBig(reduced, ls.bits)
}
