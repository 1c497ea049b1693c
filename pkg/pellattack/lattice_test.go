package pellattack

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahdiidarabi/cubicpell-nonce/pkg/group"
	"github.com/mahdiidarabi/cubicpell-nonce/pkg/lattice"
)

func TestBuildBasis(t *testing.T) {
	s := []*big.Int{big.NewInt(11), big.NewInt(12)}
	sigma := []*big.Int{big.NewInt(5), big.NewInt(6)}
	bound := big.NewInt(1000)
	phi := big.NewInt(97)

	m, err := BuildBasis(s, sigma, bound, phi)
	require.NoError(t, err)
	assert.Equal(t, "[97 0 0 0]\n[0 97 0 0]\n[5 6 10 0]\n[11 12 0 1000]", m.String())

	s3 := append(s, big.NewInt(13))
	sigma3 := append(sigma, big.NewInt(7))
	m, err = BuildBasis(s3, sigma3, bound, phi)
	require.NoError(t, err)
	assert.Equal(t, 5, m.Rows())
	assert.Equal(t, 5, m.Cols())
	assert.Equal(t, "[97 0 0 0 0]\n[0 97 0 0 0]\n[0 0 97 0 0]\n[5 6 7 10 0]\n[11 12 13 0 1000]", m.String())

	_, err = BuildBasis(nil, nil, bound, phi)
	assert.ErrorIs(t, err, ErrInsufficientSignatures)
	_, err = BuildBasis(s, sigma[:1], bound, phi)
	assert.ErrorIs(t, err, ErrInsufficientSignatures)
}

func signMessages(t *testing.T, signer *Signer, key *KeyPair, msgs ...string) []*Signature {
	t.Helper()
	sigs := make([]*Signature, len(msgs))
	for i, m := range msgs {
		sig, _, err := signer.Sign([]byte(m), key.Secret)
		require.NoError(t, err)
		sigs[i] = sig
	}
	return sigs
}

func TestLatticeAttack_Fixture(t *testing.T) {
	g := group.CP256()
	info := loadKeyInfo(t)
	client := NewClient()
	pub, err := client.ParsePublicKey(info.PublicKeyHex)
	require.NoError(t, err)

	sigs, err := (&JSONParser{}).ParseSignatures(fixture("weak_nonce.json"), g)
	require.NoError(t, err)

	res, err := NewLatticeAttack(g).Recover(context.Background(), sigs, pub, 128)
	require.NoError(t, err)
	require.True(t, res.Recovered)
	assert.Equal(t, info.PrivateKey, res.Secret.Text(10))
	assert.Equal(t, 4, res.Rows)
	assert.Equal(t, 1, res.ZeroRows)
	assert.GreaterOrEqual(t, res.Row, 0)
}

// Two signatures of fixed messages with 256-bit nonces, as in the published
// two-signature demonstration.
func TestLatticeAttack_ConcreteScenario(t *testing.T) {
	g := group.CP256()
	attack := NewLatticeAttack(g)

	successes := 0
	const trials = 8
	for trial := 0; trial < trials; trial++ {
		key, err := GenerateKey(nil, g)
		require.NoError(t, err)
		signer := seededSigner(t, g, 256, uint64(trial))
		sigs := signMessages(t, signer, key, "hello world", "cryptography!")

		res, err := attack.Recover(context.Background(), sigs, key.Public, 256)
		require.NoError(t, err)
		if res.Recovered {
			successes++
			assert.Zero(t, res.Secret.Cmp(key.Secret))
		}
	}
	assert.GreaterOrEqual(t, successes, 1)
}

func TestLatticeAttack_ShortNoncesAlwaysRecovered(t *testing.T) {
	for _, g := range []group.Group{group.CP256(), group.NewSecp256k1(), group.NewEd25519(), group.NewBabyJubjub()} {
		g := g
		t.Run(g.Name(), func(t *testing.T) {
			attack := NewLatticeAttack(g)
			for trial := 0; trial < 3; trial++ {
				key, err := GenerateKey(nil, g)
				require.NoError(t, err)
				sigs := signMessages(t, NewSigner(g, 128), key,
					fmt.Sprintf("msg-%d-0", trial), fmt.Sprintf("msg-%d-1", trial))

				res, err := attack.Recover(context.Background(), sigs, key.Public, 128)
				require.NoError(t, err)
				require.True(t, res.Recovered, "trial %d", trial)
				assert.Zero(t, res.Secret.Cmp(key.Secret))
			}
		})
	}
}

func TestLatticeAttack_SeveralSignatures(t *testing.T) {
	g := group.CP256()
	key := testKey(t, g)

	cases := []struct {
		count, bits int
	}{
		{3, 128},
		{5, 192},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(fmt.Sprintf("%d_signatures", tc.count), func(t *testing.T) {
			msgs := make([]string, tc.count)
			for i := range msgs {
				msgs[i] = fmt.Sprintf("several-%d-%d", tc.count, i)
			}
			sigs := signMessages(t, seededSigner(t, g, tc.bits, uint64(tc.count)), key, msgs...)

			var stats lattice.Stats
			attack := NewLatticeAttack(g, WithReduceOptions(lattice.WithStats(&stats)))
			res, err := attack.Recover(context.Background(), sigs, key.Public, tc.bits)
			require.NoError(t, err)
			require.True(t, res.Recovered)
			assert.Equal(t, testLambda, res.Secret.Text(10))
			assert.Equal(t, tc.count+2, res.Rows)
			assert.Equal(t, 1, res.ZeroRows)
			assert.Equal(t, 0, res.Row)

			// Statistics requested by the caller are filled alongside the attack's own.
			assert.Greater(t, stats.Iterations, 0)
			assert.Equal(t, res.ZeroRows, stats.ZeroRows)
		})
	}
}

func TestLatticeAttack_LongNoncesFail(t *testing.T) {
	g := group.CP256()
	attack := NewLatticeAttack(g)

	successes := 0
	for trial := 0; trial < 5; trial++ {
		key, err := GenerateKey(nil, g)
		require.NoError(t, err)
		signer := seededSigner(t, g, 280, uint64(100+trial))
		sigs := signMessages(t, signer, key, fmt.Sprintf("msg-%d-0", trial), fmt.Sprintf("msg-%d-1", trial))

		res, err := attack.Recover(context.Background(), sigs, key.Public, 280)
		require.NoError(t, err)
		if res.Recovered {
			successes++
		}
	}
	assert.LessOrEqual(t, successes, 1)
}

func TestLatticeAttack_ExactDivisionPolicy(t *testing.T) {
	g := group.CP256()
	key := testKey(t, g)
	sigs := signMessages(t, seededSigner(t, g, 128, 7), key, "hello world", "cryptography!")

	// Reduced rows hold α₁ exactly, or nothing; exact division must still find
	// the key whenever a row carries the true nonce.
	res, err := NewLatticeAttack(g, WithDivisionPolicy(ExactDivision)).Recover(context.Background(), sigs, key.Public, 128)
	require.NoError(t, err)
	if res.Recovered {
		assert.Zero(t, res.Secret.Cmp(key.Secret))
	}

	res, err = NewLatticeAttack(g).Recover(context.Background(), sigs, key.Public, 128)
	require.NoError(t, err)
	assert.True(t, res.Recovered)
}

func TestLatticeAttack_WrongPublicKey(t *testing.T) {
	g := group.CP256()
	key := testKey(t, g)
	sigs := signMessages(t, NewSigner(g, 128), key, "hello world", "cryptography!")

	other, err := GenerateKey(nil, g)
	require.NoError(t, err)
	res, err := NewLatticeAttack(g).Recover(context.Background(), sigs, other.Public, 128)
	require.NoError(t, err)
	assert.False(t, res.Recovered)
	assert.Nil(t, res.Secret)
	assert.Equal(t, -1, res.Row)
}

func TestLatticeAttack_Errors(t *testing.T) {
	g := group.CP256()
	key := testKey(t, g)
	attack := NewLatticeAttack(g)
	ctx := context.Background()
	sigs := signMessages(t, NewSigner(g, 128), key, "a", "b")

	_, err := attack.Recover(ctx, nil, key.Public, 128)
	assert.ErrorIs(t, err, ErrInsufficientSignatures)

	_, err = attack.Recover(ctx, sigs, key.Public, 0)
	assert.ErrorIs(t, err, ErrInvalidNonceBits)

	zero := []*Signature{{Sigma: new(big.Int), S: big.NewInt(5)}}
	_, err = attack.Recover(ctx, zero, key.Public, 128)
	assert.ErrorIs(t, err, ErrZeroHash)

	_, err = attack.Recover(ctx, sigs, nil, 128)
	assert.Error(t, err)

	_, err = attack.Recover(ctx, []*Signature{sigs[0], {Sigma: big.NewInt(3)}}, key.Public, 128)
	assert.ErrorIs(t, err, ErrIncompleteSignature)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = attack.Recover(canceled, sigs, key.Public, 128)
	assert.ErrorIs(t, err, context.Canceled)

	limited := NewLatticeAttack(g, WithReduceOptions(lattice.WithMaxIterations(1)))
	_, err = limited.Recover(ctx, sigs, key.Public, 128)
	assert.ErrorIs(t, err, lattice.ErrIterationLimit)
}
