package pellattack

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahdiidarabi/cubicpell-nonce/pkg/group"
)

func TestFloorDiv(t *testing.T) {
	cases := []struct{ a, b, want int64 }{
		{7, 2, 3},
		{-7, 2, -4},
		{7, -2, -4},
		{-7, -2, 3},
		{6, 3, 2},
		{-6, 3, -2},
		{0, 5, 0},
	}
	for _, c := range cases {
		got := FloorDiv(big.NewInt(c.a), big.NewInt(c.b))
		assert.Equal(t, c.want, got.Int64(), "%d // %d", c.a, c.b)
	}
}

func TestDivisionPolicy(t *testing.T) {
	q, err := ExactDivision.Divide(big.NewInt(12), big.NewInt(4))
	require.NoError(t, err)
	assert.Equal(t, int64(3), q.Int64())

	_, err = ExactDivision.Divide(big.NewInt(13), big.NewInt(4))
	assert.ErrorIs(t, err, ErrInexactDivision)

	q, err = FloorDivision.Divide(big.NewInt(13), big.NewInt(4))
	require.NoError(t, err)
	assert.Equal(t, int64(3), q.Int64())

	assert.Equal(t, "floor", FloorDivision.String())
	assert.Equal(t, "exact", ExactDivision.String())
	assert.Equal(t, "DivisionPolicy(7)", DivisionPolicy(7).String())
}

func TestRecoverFromLeakedNonce(t *testing.T) {
	g := group.CP256()
	key := testKey(t, g)
	sig, alpha, err := NewSigner(g, 512).Sign([]byte("pesan rahasia"), key.Secret)
	require.NoError(t, err)

	lambda, err := RecoverFromLeakedNonce(sig.S, sig.Sigma, alpha)
	require.NoError(t, err)
	assert.Zero(t, lambda.Cmp(key.Secret))
	assert.True(t, VerifyRecoveredKey(g, lambda, key.Public))

	_, err = RecoverFromLeakedNonce(sig.S, new(big.Int), alpha)
	assert.ErrorIs(t, err, ErrZeroHash)

	wrongAlpha := new(big.Int).Add(alpha, big.NewInt(1))
	_, err = RecoverFromLeakedNonce(sig.S, sig.Sigma, wrongAlpha)
	assert.ErrorIs(t, err, ErrInexactDivision)
}

func TestRecoverFromReusedNonce(t *testing.T) {
	g := group.CP256()
	key := testKey(t, g)
	signer := NewSigner(g, 512)
	alpha, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 512))
	require.NoError(t, err)

	sig1 := signer.SignWithNonce([]byte("pesan A"), key.Secret, alpha)
	sig2 := signer.SignWithNonce([]byte("pesan B"), key.Secret, alpha)

	lambda, err := RecoverFromReusedNonce(sig1.S, sig2.S, sig1.Sigma, sig2.Sigma)
	require.NoError(t, err)
	assert.Zero(t, lambda.Cmp(key.Secret))

	// Order of the pair does not matter.
	lambda, err = RecoverFromSignatures(sig2, sig1)
	require.NoError(t, err)
	assert.Zero(t, lambda.Cmp(key.Secret))

	_, err = RecoverFromReusedNonce(sig1.S, sig1.S, sig1.Sigma, sig1.Sigma)
	assert.ErrorIs(t, err, ErrIndeterminate)

	sig3, _, err := signer.Sign([]byte("pesan C"), key.Secret)
	require.NoError(t, err)
	_, err = RecoverFromSignatures(sig1, sig3)
	assert.ErrorIs(t, err, ErrInexactDivision)
}

func TestRecoverSharedNonceKeys(t *testing.T) {
	g := group.CP256()
	phi := g.Order()
	signer := NewSigner(g, 512)

	k1, err := GenerateKey(rand.Reader, g)
	require.NoError(t, err)
	k2, err := GenerateKey(rand.Reader, g)
	require.NoError(t, err)

	bound := new(big.Int).Lsh(big.NewInt(1), 512)
	alpha1, err := rand.Int(rand.Reader, bound)
	require.NoError(t, err)
	alpha2, err := rand.Int(rand.Reader, bound)
	require.NoError(t, err)

	// These four hashes give a determinant that is a unit modulo φ.
	s1 := signer.SignWithNonce([]byte("pesan1"), k1.Secret, alpha1)
	s2 := signer.SignWithNonce([]byte("pesan2"), k2.Secret, alpha1)
	s3 := signer.SignWithNonce([]byte("pesan3"), k1.Secret, alpha2)
	s4 := signer.SignWithNonce([]byte("pesan4"), k2.Secret, alpha2)

	x1, x2, err := RecoverSharedNonceKeys(s1.Sigma, s2.Sigma, s3.Sigma, s4.Sigma, s1.S, s2.S, s3.S, s4.S, phi)
	require.NoError(t, err)
	assert.Zero(t, x1.Cmp(k1.Secret))
	assert.Zero(t, x2.Cmp(k2.Secret))

	// Same hash pair twice makes the system singular.
	_, _, err = RecoverSharedNonceKeys(s1.Sigma, s2.Sigma, s1.Sigma, s2.Sigma, s1.S, s2.S, s3.S, s4.S, phi)
	assert.ErrorIs(t, err, ErrSingularSystem)
}

func TestLinearSystem_CompositeModulus(t *testing.T) {
	phi := group.CP256().Order()
	require.Zero(t, new(big.Int).Mod(phi, big.NewInt(3)).Sign())
	require.Zero(t, new(big.Int).Mod(phi, big.NewInt(31)).Sign())

	// Neither 3 nor 31 is invertible modulo φ, but the determinant 3 − 31 is.
	x := []*big.Int{big.NewInt(123456789), big.NewInt(987654321)}
	a := [][]*big.Int{
		{big.NewInt(3), big.NewInt(1)},
		{big.NewInt(31), big.NewInt(1)},
	}
	b := make([]*big.Int, 2)
	for i := range a {
		b[i] = new(big.Int).Mul(a[i][0], x[0])
		b[i].Add(b[i], new(big.Int).Mul(a[i][1], x[1]))
	}

	got, err := SolveMod(a, b, phi)
	require.NoError(t, err)
	assert.Zero(t, got[0].Cmp(x[0]))
	assert.Zero(t, got[1].Cmp(x[1]))

	// A pivot that shares the factor 3 with φ is singular.
	_, err = SolveMod([][]*big.Int{{big.NewInt(3), big.NewInt(0)}, {big.NewInt(0), big.NewInt(1)}}, b, phi)
	assert.ErrorIs(t, err, ErrSingularSystem)
}

func TestLinearSystem_ThreeByThree(t *testing.T) {
	m := big.NewInt(1000003)
	a := [][]*big.Int{
		{big.NewInt(0), big.NewInt(2), big.NewInt(5)},
		{big.NewInt(4), big.NewInt(-1), big.NewInt(7)},
		{big.NewInt(9), big.NewInt(3), big.NewInt(1)},
	}
	x := []int64{17, 999999, 42}
	b := make([]*big.Int, 3)
	for i := range a {
		b[i] = new(big.Int)
		for j := range a[i] {
			b[i].Add(b[i], new(big.Int).Mul(a[i][j], big.NewInt(x[j])))
		}
	}

	ls, err := NewLinearSystem(a, b, m)
	require.NoError(t, err)
	assert.Equal(t, 3, ls.Size())
	got, err := ls.Solve()
	require.NoError(t, err)
	for i := range x {
		assert.Equal(t, x[i], got[i].Int64())
	}
}

func TestLinearSystem_Invalid(t *testing.T) {
	one := big.NewInt(1)
	_, err := SolveMod([][]*big.Int{{one}}, []*big.Int{one}, big.NewInt(10))
	assert.ErrorIs(t, err, ErrInvalidSystem)

	_, err = SolveMod([][]*big.Int{{one}}, []*big.Int{one}, one)
	assert.ErrorIs(t, err, ErrInvalidSystem)

	_, err = SolveMod([][]*big.Int{{one, one}}, []*big.Int{one}, big.NewInt(11))
	assert.ErrorIs(t, err, ErrInvalidSystem)

	_, err = SolveMod(nil, nil, big.NewInt(11))
	assert.ErrorIs(t, err, ErrInvalidSystem)

	_, err = SolveMod([][]*big.Int{{nil}}, []*big.Int{one}, big.NewInt(11))
	assert.ErrorIs(t, err, ErrInvalidSystem)
}
