package pellattack

import (
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahdiidarabi/cubicpell-nonce/pkg/group"
)

func TestJSONParser_ParseSignatures(t *testing.T) {
	g := group.CP256()
	info := loadKeyInfo(t)
	pub, err := NewClient().ParsePublicKey(info.PublicKeyHex)
	require.NoError(t, err)

	for _, name := range []string{"reused_nonce.json", "weak_nonce.json"} {
		t.Run(name, func(t *testing.T) {
			sigs, err := (&JSONParser{}).ParseSignatures(fixture(name), g)
			require.NoError(t, err)
			require.NotEmpty(t, sigs)
			for i, sig := range sigs {
				require.NotNil(t, sig.Commitment, "signature %d", i)
				assert.Zero(t, sig.Sigma.Cmp(HashMessage(sig.Message)), "signature %d", i)
				assert.True(t, VerifySignature(g, sig, pub), "signature %d", i)
			}
		})
	}
}

func TestJSONParser_HashesMessageWhenSigmaMissing(t *testing.T) {
	g := group.CP256()
	withSigma, err := (&JSONParser{}).ParseSignatures(fixture("weak_nonce.json"), g)
	require.NoError(t, err)
	withoutSigma, err := (&JSONParser{}).ParseSignatures(fixture("weak_nonce_messages.json"), g)
	require.NoError(t, err)

	require.Len(t, withoutSigma, len(withSigma))
	for i := range withSigma {
		assert.Zero(t, withSigma[i].Sigma.Cmp(withoutSigma[i].Sigma))
		assert.Zero(t, withSigma[i].S.Cmp(withoutSigma[i].S))
		assert.Nil(t, withoutSigma[i].Commitment)
	}
}

func TestJSONParser_CustomFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"h": "0x10", "sig": 12345678901234567890123}]`), 0o600))

	sigs, err := (&JSONParser{SigmaField: "h", SField: "sig"}).ParseSignatures(path, group.CP256())
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Equal(t, int64(16), sigs[0].Sigma.Int64())
	assert.Equal(t, "12345678901234567890123", sigs[0].S.Text(10))
}

func TestJSONParser_Errors(t *testing.T) {
	g := group.CP256()
	dir := t.TempDir()
	cases := map[string]string{
		"missing_s.json":      `[{"message": "m"}]`,
		"missing_hash.json":   `[{"s": "1"}]`,
		"bad_commitment.json": `[{"message": "m", "s": "1", "commitment": "abcd"}]`,
		"not_json.json":       `{`,
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		_, err := (&JSONParser{}).ParseSignatures(path, g)
		assert.Error(t, err, name)
	}

	_, err := (&JSONParser{}).ParseSignatures(filepath.Join(dir, "absent.json"), g)
	assert.Error(t, err)
}

func TestCSVParser_ParseSignatures(t *testing.T) {
	g := group.CP256()
	fromCSV, err := (&CSVParser{}).ParseSignatures(fixture("weak_nonce.csv"), g)
	require.NoError(t, err)
	fromJSON, err := (&JSONParser{}).ParseSignatures(fixture("weak_nonce.json"), g)
	require.NoError(t, err)

	require.Len(t, fromCSV, len(fromJSON))
	for i := range fromJSON {
		assert.Equal(t, fromJSON[i].Message, fromCSV[i].Message)
		assert.Zero(t, fromJSON[i].S.Cmp(fromCSV[i].S))
		assert.True(t, fromJSON[i].Commitment.Equal(fromCSV[i].Commitment))
	}
}

func TestCSVParser_MissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("message,sigma\nm,1\n"), 0o600))
	_, err := (&CSVParser{}).ParseSignatures(path, group.CP256())
	assert.Error(t, err)
}

func TestCBOR_RoundTrip(t *testing.T) {
	g := group.CP256()
	sigs, err := (&JSONParser{}).ParseSignatures(fixture("reused_nonce.json"), g)
	require.NoError(t, err)
	sigs = append(sigs, &Signature{Sigma: big.NewInt(3), S: big.NewInt(4)})

	data, err := MarshalSignaturesCBOR(sigs)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "sigs.cbor")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	decoded, err := (&CBORParser{}).ParseSignatures(path, g)
	require.NoError(t, err)

	require.Len(t, decoded, len(sigs))
	for i := range sigs {
		assert.Equal(t, sigs[i].Message, decoded[i].Message)
		assert.Zero(t, sigs[i].Sigma.Cmp(decoded[i].Sigma))
		assert.Zero(t, sigs[i].S.Cmp(decoded[i].S))
		if sigs[i].Commitment == nil {
			assert.Nil(t, decoded[i].Commitment)
			continue
		}
		assert.True(t, sigs[i].Commitment.Equal(decoded[i].Commitment))
	}

	_, err = MarshalSignaturesCBOR([]*Signature{{Sigma: big.NewInt(1), S: big.NewInt(-1)}})
	assert.Error(t, err)

	_, err = UnmarshalSignaturesCBOR([]byte{0xff}, g)
	assert.Error(t, err)
}

func TestMarshalSignaturesJSON_RoundTrip(t *testing.T) {
	g := group.CP256()
	sigs, err := (&JSONParser{}).ParseSignatures(fixture("weak_nonce.json"), g)
	require.NoError(t, err)

	data, err := MarshalSignaturesJSON(sigs)
	require.NoError(t, err)
	var raw []map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "hello world", raw[0]["message"])

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	again, err := (&JSONParser{}).ParseSignatures(path, g)
	require.NoError(t, err)
	for i := range sigs {
		assert.Zero(t, sigs[i].S.Cmp(again[i].S))
		assert.True(t, sigs[i].Commitment.Equal(again[i].Commitment))
	}
}

func TestMarshalSignatures_Incomplete(t *testing.T) {
	cases := map[string][]*Signature{
		"nil signature": {{Sigma: big.NewInt(1), S: big.NewInt(2)}, nil},
		"missing s":     {{Sigma: big.NewInt(1)}},
		"missing sigma": {{S: big.NewInt(2)}},
	}
	for name, sigs := range cases {
		sigs := sigs
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				_, err := MarshalSignaturesCBOR(sigs)
				assert.ErrorIs(t, err, ErrIncompleteSignature)
			})
			assert.NotPanics(t, func() {
				_, err := MarshalSignaturesJSON(sigs)
				assert.ErrorIs(t, err, ErrIncompleteSignature)
			})
		})
	}
}

func TestParseBigInt(t *testing.T) {
	cases := []struct {
		in   interface{}
		want string
	}{
		{"123", "123"},
		{"0x1f", "31"},
		{"ff", "255"},
		{"123456789012345678901234567890", "123456789012345678901234567890"},
		{json.Number("42"), "42"},
		{float64(7), "7"},
		{int64(-3), "-3"},
		{5, "5"},
	}
	for _, c := range cases {
		got, err := parseBigInt(c.in)
		require.NoError(t, err, "%v", c.in)
		assert.Equal(t, c.want, got.Text(10), "%v", c.in)
	}

	_, err := parseBigInt("12z")
	assert.Error(t, err)
	_, err = parseBigInt([]int{1})
	assert.Error(t, err)
}
