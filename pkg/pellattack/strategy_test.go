package pellattack

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahdiidarabi/cubicpell-nonce/pkg/group"
)

func TestReusedNonceStrategy(t *testing.T) {
	g := group.CP256()
	key := testKey(t, g)
	sigs, err := (&JSONParser{}).ParseSignatures(fixture("reused_nonce.json"), g)
	require.NoError(t, err)

	s := NewReusedNonceStrategy(g)
	assert.Equal(t, "ReusedNonce", s.Name())

	result := s.Search(context.Background(), sigs, key.Public)
	require.NotNil(t, result)
	assert.Zero(t, result.PrivateKey.Cmp(key.Secret))
	assert.True(t, result.Verified)

	// Without commitments the pair is still found by exact division.
	for _, sig := range sigs {
		sig.Commitment = nil
	}
	result = s.Search(context.Background(), sigs, nil)
	require.NotNil(t, result)
	assert.Zero(t, result.PrivateKey.Cmp(key.Secret))
	assert.False(t, result.Verified)

	other, err := GenerateKey(nil, g)
	require.NoError(t, err)
	assert.Nil(t, s.Search(context.Background(), sigs, other.Public))
}

func TestReusedNonceStrategy_NoReuse(t *testing.T) {
	g := group.CP256()
	key := testKey(t, g)
	sigs := signMessages(t, NewSigner(g, 512), key, "a", "b", "c")
	assert.Nil(t, NewReusedNonceStrategy(g).Search(context.Background(), sigs, key.Public))
}

func TestLatticeStrategy(t *testing.T) {
	g := group.CP256()
	key := testKey(t, g)
	sigs := signMessages(t, NewSigner(g, 160), key, "hello world", "cryptography!", "third")

	s := NewLatticeStrategy(g).WithSearchConfig(SearchConfig{
		NonceBits:  []int{160},
		Windows:    []int{2, 3, 50},
		NumWorkers: 2,
	})
	assert.Equal(t, "Lattice", s.Name())

	result := s.Search(context.Background(), sigs, key.Public)
	require.NotNil(t, result)
	assert.Zero(t, result.PrivateKey.Cmp(key.Secret))
	assert.Equal(t, "lattice", result.Method)
	assert.Equal(t, 160, result.NonceBits)
	assert.True(t, result.Verified)

	assert.Nil(t, s.Search(context.Background(), sigs, nil))
	assert.Nil(t, s.Search(context.Background(), nil, key.Public))

	none := NewLatticeStrategy(g).WithSearchConfig(SearchConfig{NonceBits: []int{160}, Windows: []int{10}})
	assert.Nil(t, none.Search(context.Background(), sigs, key.Public))
}

func TestSmartStrategy_LogsPhases(t *testing.T) {
	g := group.CP256()
	info := loadKeyInfo(t)
	pub, err := NewClient().ParsePublicKey(info.PublicKeyHex)
	require.NoError(t, err)
	sigs, err := (&JSONParser{}).ParseSignatures(fixture("weak_nonce.json"), g)
	require.NoError(t, err)

	var buf bytes.Buffer
	s := NewSmartStrategy(g).WithLogger(zerolog.New(zerolog.SyncWriter(&buf)))
	assert.Equal(t, "Smart", s.Name())

	result := s.Search(context.Background(), sigs, pub)
	require.NotNil(t, result)
	assert.Equal(t, "lattice", result.Method)

	out := buf.String()
	assert.True(t, strings.Contains(out, `"strategy":"ReusedNonce"`))
	assert.True(t, strings.Contains(out, `"strategy":"Lattice"`))
	assert.True(t, strings.Contains(out, "key recovered"))
}

func TestDefaultSearchConfig(t *testing.T) {
	c := DefaultSearchConfig()
	assert.Contains(t, c.NonceBits, 256)
	assert.Contains(t, c.Windows, 2)
}
