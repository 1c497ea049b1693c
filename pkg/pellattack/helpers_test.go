package pellattack

import (
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mahdiidarabi/cubicpell-nonce/internal/rng"
	"github.com/mahdiidarabi/cubicpell-nonce/pkg/group"
)

const testLambda = "83171353578472409519651024131274511974299080148110592010555215815306508292189"

type keyInfo struct {
	PrivateKey   string `json:"private_key"`
	PublicKeyHex string `json:"public_key_hex"`
	LeakedIndex  int    `json:"leaked_index"`
	LeakedNonce  string `json:"leaked_nonce"`
}

func fixture(name string) string {
	return filepath.Join("testdata", name)
}

// loadKeyInfo reads the key behind the fixtures in testdata/.
func loadKeyInfo(t *testing.T) keyInfo {
	t.Helper()
	data, err := os.ReadFile(fixture("key_info.json"))
	require.NoError(t, err)
	var info keyInfo
	require.NoError(t, json.Unmarshal(data, &info))
	return info
}

func bigFromString(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok, "bad decimal constant %s", s)
	return v
}

func testKey(t *testing.T, g group.Group) *KeyPair {
	t.Helper()
	secret := bigFromString(t, testLambda)
	return &KeyPair{Secret: secret, Public: g.ScalarBaseMult(secret)}
}

// seededSigner returns a signer whose nonces are reproducible for a given label.
func seededSigner(t *testing.T, g group.Group, nonceBits int, label uint64) *Signer {
	t.Helper()
	r, err := rng.NewSeeded([]byte("pellattack-test"), label)
	require.NoError(t, err)
	s := NewSigner(g, nonceBits)
	s.Rand = r
	return s
}
