package lattice

import (
	"context"
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrIterationLimit is returned when the reduction exceeds the configured iteration cap.
	ErrIterationLimit = errors.New("lattice: iteration limit reached")

	// ErrInvalidOption is returned for out-of-range reduction parameters.
	ErrInvalidOption = errors.New("lattice: invalid reduction option")
)

const (
	// DefaultDelta is the Lovász parameter.
	DefaultDelta = 0.99

	// DefaultEta bounds |μ| after size reduction.
	DefaultEta = 0.51

	// DefaultMaxIterations caps the main loop.
	DefaultMaxIterations = 1 << 20

	maxSizeReductionPasses = 100
)

// Stats describes a finished reduction.
type Stats struct {
	Iterations int
	Swaps      int
	ZeroRows   int
	Precision  uint

	// Refreshes counts Gram–Schmidt rows recomputed from the Gram matrix.
	// Rows untouched by a swap keep their coefficients.
	Refreshes int
}

type options struct {
	delta         float64
	eta           float64
	maxIterations int
	precision     uint
	stats         []*Stats
}

// Option configures Reduce.
type Option func(*options)

// WithDelta sets the Lovász parameter, 0.25 < delta ≤ 1.
func WithDelta(delta float64) Option {
	return func(o *options) { o.delta = delta }
}

// WithEta sets the size-reduction bound, 0.5 ≤ eta < √delta.
func WithEta(eta float64) Option {
	return func(o *options) { o.eta = eta }
}

// WithMaxIterations caps the main loop. Zero or negative disables the cap.
func WithMaxIterations(n int) Option {
	return func(o *options) { o.maxIterations = n }
}

// WithPrecision fixes the big.Float mantissa size used for Gram–Schmidt.
// By default it is derived from the input entries and dimension: dependent
// rows leave a residual ‖b*‖² whose rounding error scales with the largest
// squared norm, so the mantissa must cover that range.
func WithPrecision(bits uint) Option {
	return func(o *options) { o.precision = bits }
}

// WithStats records reduction statistics into s. It may be given more than
// once; every target receives the same statistics.
func WithStats(s *Stats) Option {
	return func(o *options) {
		if s != nil {
			o.stats = append(o.stats, s)
		}
	}
}

func (o *options) validate() error {
	if !(o.delta > 0.25 && o.delta <= 1) {
		return fmt.Errorf("%w: delta %v not in (0.25, 1]", ErrInvalidOption, o.delta)
	}
	if !(o.eta >= 0.5 && o.eta*o.eta < o.delta) {
		return fmt.Errorf("%w: eta %v not in [0.5, sqrt(delta))", ErrInvalidOption, o.eta)
	}
	return nil
}

// Reduce returns an LLL-reduced basis of the lattice spanned by the rows of basis.
// The input is not modified.
//
// The basis and its Gram matrix are kept exact; Gram–Schmidt coefficients are
// big.Float values recomputed from the Gram matrix after size reduction and
// updated in place on swaps.
// Linearly dependent rows are accepted: they reduce to zero vectors which are
// moved to the front of the result, followed by the reduced basis.
//
// Args:
//
//	ctx: cancellation is checked once per iteration
//	basis: rows are the generating vectors
//
// Returns:
//
//	the reduced matrix, or an error on ragged input, invalid options,
//	cancellation or ErrIterationLimit
func Reduce(ctx context.Context, basis Matrix, opts ...Option) (Matrix, error) {
	o := options{
		delta:         DefaultDelta,
		eta:           DefaultEta,
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	if err := basis.Validate(); err != nil {
		return nil, err
	}

	d := basis.Rows()
	prec := o.precision
	if prec == 0 {
		prec = uint(2*basis.MaxBitLen() + 4*d + 64)
	}

	r := newReducer(basis.Clone(), prec, o)
	err := r.run(ctx)
	for _, s := range o.stats {
		*s = Stats{
			Iterations: r.iterations,
			Swaps:      r.swaps,
			ZeroRows:   r.z,
			Precision:  prec,
			Refreshes:  r.refreshes,
		}
	}
	if err != nil {
		return nil, err
	}
	return r.b, nil
}

type reducer struct {
	b    Matrix
	g    Matrix // g[i][j] = ⟨b_i, b_j⟩
	d    int
	prec uint
	opts options

	mu [][]*big.Float
	rr []*big.Float
	rk []*big.Float // scratch: r[k][j] = μ[k][j]·‖b*_j‖²

	delta *big.Float
	eta   *big.Float
	half  *big.Float

	// rows [0, z) are zero vectors
	z int
	// rows [z, valid) have current μ and ‖b*‖²
	valid int

	iterations int
	swaps      int
	refreshes  int
}

func newReducer(b Matrix, prec uint, o options) *reducer {
	d := b.Rows()
	r := &reducer{b: b, d: d, prec: prec, opts: o}
	r.g = NewMatrix(d, d)
	for i := 0; i < d; i++ {
		for j := 0; j <= i; j++ {
			v := dot(b[i], b[j])
			r.g[i][j].Set(v)
			r.g[j][i].Set(v)
		}
	}
	r.mu = make([][]*big.Float, d)
	r.rr = make([]*big.Float, d)
	r.rk = make([]*big.Float, d)
	for i := 0; i < d; i++ {
		r.mu[i] = make([]*big.Float, d)
		for j := 0; j < d; j++ {
			r.mu[i][j] = r.float()
		}
		r.rr[i] = r.float()
		r.rk[i] = r.float()
	}
	r.delta = r.float().SetFloat64(o.delta)
	r.eta = r.float().SetFloat64(o.eta)
	r.half = r.float().SetFloat64(0.5)
	return r
}

func (r *reducer) float() *big.Float {
	return new(big.Float).SetPrec(r.prec)
}

func (r *reducer) run(ctx context.Context) error {
	k := 0
	for k < r.d {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.iterations++
		if r.opts.maxIterations > 0 && r.iterations > r.opts.maxIterations {
			return fmt.Errorf("%w: %d iterations", ErrIterationLimit, r.opts.maxIterations)
		}

		if k == r.z {
			if r.g[k][k].Sign() == 0 {
				r.z++
			} else {
				r.rr[k].SetInt(r.g[k][k])
			}
			if r.valid < k+1 {
				r.valid = k + 1
			}
			k++
			continue
		}

		if k >= r.valid {
			r.gramSchmidt(k)
			r.valid = k + 1
		}
		if r.sizeReduce(k) {
			r.valid = k + 1
		}

		if r.g[k][k].Sign() == 0 {
			r.moveToFront(k)
			k = r.z
			continue
		}

		if r.lovasz(k) {
			k++
			continue
		}
		r.swap(k)
		k--
	}
	return nil
}

// gramSchmidt recomputes row k of μ and ‖b*_k‖² from the Gram matrix against
// rows [z, k), which must be current.
func (r *reducer) gramSchmidt(k int) {
	r.refreshes++
	t := r.float()
	for j := r.z; j < k; j++ {
		acc := r.rk[j].SetInt(r.g[k][j])
		for i := r.z; i < j; i++ {
			acc.Sub(acc, t.Mul(r.mu[j][i], r.rk[i]))
		}
		if r.rr[j].Sign() == 0 {
			r.mu[k][j].SetInt64(0)
			continue
		}
		r.mu[k][j].Quo(acc, r.rr[j])
	}
	acc := r.rr[k].SetInt(r.g[k][k])
	for j := r.z; j < k; j++ {
		acc.Sub(acc, t.Mul(r.mu[k][j], r.rk[j]))
	}
}

// sizeReduce makes |μ[k][j]| ≤ η for every j in [z, k) and reports whether
// row k changed.
func (r *reducer) sizeReduce(k int) bool {
	t := r.float()
	abs := r.float()
	changed := false
	for pass := 0; pass < maxSizeReductionPasses; pass++ {
		reduced := true
		for j := r.z; j < k; j++ {
			if abs.Abs(r.mu[k][j]).Cmp(r.eta) > 0 {
				reduced = false
				break
			}
		}
		if reduced {
			return changed
		}

		for j := k - 1; j >= r.z; j-- {
			x := r.round(r.mu[k][j])
			if x.Sign() == 0 {
				continue
			}
			subMul(r.b[k], r.b[j], x)
			r.subMulGram(k, j, x)
			xf := r.float().SetInt(x)
			for i := r.z; i < j; i++ {
				r.mu[k][i].Sub(r.mu[k][i], t.Mul(xf, r.mu[j][i]))
			}
			r.mu[k][j].Sub(r.mu[k][j], xf)
			changed = true
		}
		r.gramSchmidt(k)
	}
	return changed
}

// subMulGram updates the Gram matrix for b_k ← b_k − x·b_j.
func (r *reducer) subMulGram(k, j int, x *big.Int) {
	gkk := r.g[k][k]
	t := new(big.Int).Mul(x, r.g[k][j])
	gkk.Sub(gkk, t.Lsh(t, 1))
	t.Mul(x, x)
	gkk.Add(gkk, t.Mul(t, r.g[j][j]))
	for i := 0; i < r.d; i++ {
		if i == k {
			continue
		}
		r.g[k][i].Sub(r.g[k][i], t.Mul(x, r.g[j][i]))
		r.g[i][k].Set(r.g[k][i])
	}
}

// swap exchanges rows k−1 and k and updates μ and ‖b*‖² for the current rows.
func (r *reducer) swap(k int) {
	r.swaps++

	// Below this bound a zero ‖b*_{k−1}‖² cannot be told apart from rounding
	// error, so rows from k up are recomputed instead of updated.
	floor := r.float().SetInt(r.g[k][k])
	floor.SetMantExp(floor, -int(r.prec/2))

	r.b[k], r.b[k-1] = r.b[k-1], r.b[k]
	r.g[k], r.g[k-1] = r.g[k-1], r.g[k]
	for i := 0; i < r.d; i++ {
		r.g[i][k], r.g[i][k-1] = r.g[i][k-1], r.g[i][k]
	}
	for j := r.z; j < k-1; j++ {
		r.mu[k][j], r.mu[k-1][j] = r.mu[k-1][j], r.mu[k][j]
	}

	mu := new(big.Float).Copy(r.mu[k][k-1])
	b := r.float().Mul(mu, mu)
	b.Mul(b, r.rr[k-1])
	b.Add(b, r.rr[k])

	if b.Sign() <= 0 || b.Cmp(floor) < 0 {
		r.rr[k-1].Set(b)
		r.valid = k
		return
	}

	t := r.float()
	r.mu[k][k-1].Quo(t.Mul(mu, r.rr[k-1]), b)
	r.rr[k].Quo(t.Mul(r.rr[k-1], r.rr[k]), b)
	r.rr[k-1].Set(b)
	for i := k + 1; i < r.valid; i++ {
		old := new(big.Float).Copy(r.mu[i][k])
		r.mu[i][k].Sub(r.mu[i][k-1], t.Mul(mu, old))
		r.mu[i][k-1].Add(old, t.Mul(r.mu[k][k-1], r.mu[i][k]))
	}
}

// moveToFront moves the zero row k to position z.
func (r *reducer) moveToFront(k int) {
	row := r.b[k]
	copy(r.b[r.z+1:k+1], r.b[r.z:k])
	r.b[r.z] = row

	grow := r.g[k]
	copy(r.g[r.z+1:k+1], r.g[r.z:k])
	r.g[r.z] = grow
	for i := 0; i < r.d; i++ {
		col := r.g[i][k]
		copy(r.g[i][r.z+1:k+1], r.g[i][r.z:k])
		r.g[i][r.z] = col
	}

	r.z++
	r.valid = r.z
}

// lovasz reports whether ‖b*_k‖² ≥ (δ − μ²_{k,k−1})·‖b*_{k−1}‖².
func (r *reducer) lovasz(k int) bool {
	m := r.float().Mul(r.mu[k][k-1], r.mu[k][k-1])
	m.Sub(r.delta, m)
	m.Mul(m, r.rr[k-1])
	return r.rr[k].Cmp(m) >= 0
}

// round returns ⌊x + ½⌋.
func (r *reducer) round(x *big.Float) *big.Int {
	f := r.float().Add(x, r.half)
	i, acc := f.Int(nil)
	if acc == big.Above {
		i.Sub(i, big.NewInt(1))
	}
	return i
}
