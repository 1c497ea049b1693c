package pellattack

import (
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/mahdiidarabi/cubicpell-nonce/pkg/group"
)

// SignatureParser defines the interface for parsing signatures from various sources.
type SignatureParser interface {
	// ParseSignatures parses signatures from a source. Commitments are decoded in g.
	ParseSignatures(source string, g group.Group) ([]*Signature, error)
}

// JSONParser parses signatures from JSON files.
type JSONParser struct {
	MessageField    string      // Field name for message (default: "message")
	SigmaField      string      // Field name for the hash (default: "sigma", missing = hash message)
	SField          string      // Field name for s (default: "s")
	CommitmentField string      // Field name for α·G in hex (default: "commitment", optional)
	Hash            *HashOracle // Used when sigma is absent (default: SHA-256)
}

// ParseSignatures parses signatures from a JSON file.
//
// Expected format:
// [
//
//	{"message": "...", "s": "...", "commitment": "..."},
//	{"sigma": "0x...", "s": "123..."}
//
// ]
func (p *JSONParser) ParseSignatures(jsonFile string, g group.Group) ([]*Signature, error) {
	file, err := os.Open(jsonFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.UseNumber() // Preserve large numbers as json.Number instead of float64

	var items []map[string]interface{}
	if err := decoder.Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	messageField := orDefault(p.MessageField, "message")
	sigmaField := orDefault(p.SigmaField, "sigma")
	sField := orDefault(p.SField, "s")
	commitmentField := orDefault(p.CommitmentField, "commitment")

	signatures := make([]*Signature, 0, len(items))
	for i, item := range items {
		sig := &Signature{}

		if msgVal, ok := item[messageField]; ok {
			msg, ok := msgVal.(string)
			if !ok {
				return nil, fmt.Errorf("signature %d: message field must be a string", i)
			}
			sig.Message = []byte(msg)
		}

		if sigmaVal, ok := item[sigmaField]; ok {
			sigma, err := parseBigInt(sigmaVal)
			if err != nil {
				return nil, fmt.Errorf("signature %d: failed to parse sigma: %w", i, err)
			}
			sig.Sigma = sigma
		} else if sig.Message != nil {
			sig.Sigma = oracleOrDefault(p.Hash).HashToInt(sig.Message)
		} else {
			return nil, fmt.Errorf("signature %d: missing message or sigma field", i)
		}

		sVal, ok := item[sField]
		if !ok {
			return nil, fmt.Errorf("signature %d: missing s field", i)
		}
		s, err := parseBigInt(sVal)
		if err != nil {
			return nil, fmt.Errorf("signature %d: failed to parse s: %w", i, err)
		}
		sig.S = s

		if cVal, ok := item[commitmentField]; ok {
			str, ok := cVal.(string)
			if !ok {
				return nil, fmt.Errorf("signature %d: commitment must be a hex string", i)
			}
			if sig.Commitment, err = decodeElement(g, str); err != nil {
				return nil, fmt.Errorf("signature %d: %w", i, err)
			}
		}

		signatures = append(signatures, sig)
	}

	return signatures, nil
}

// CSVParser parses signatures from CSV files.
type CSVParser struct {
	MessageCol    string      // Column name for message (default: "message")
	SigmaCol      string      // Column name for the hash (default: "sigma")
	SCol          string      // Column name for s (default: "s")
	CommitmentCol string      // Column name for α·G in hex (default: "commitment")
	Hash          *HashOracle // Used when sigma is absent (default: SHA-256)
}

// ParseSignatures parses signatures from a CSV file with a header row.
func (p *CSVParser) ParseSignatures(csvFile string, g group.Group) ([]*Signature, error) {
	file, err := os.Open(csvFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	messageCol := orDefault(p.MessageCol, "message")
	sigmaCol := orDefault(p.SigmaCol, "sigma")
	sCol := orDefault(p.SCol, "s")
	commitmentCol := orDefault(p.CommitmentCol, "commitment")

	messageIdx, sigmaIdx, sIdx, commitmentIdx := -1, -1, -1, -1
	for i, col := range header {
		switch col {
		case messageCol:
			messageIdx = i
		case sigmaCol:
			sigmaIdx = i
		case sCol:
			sIdx = i
		case commitmentCol:
			commitmentIdx = i
		}
	}
	if sIdx == -1 {
		return nil, fmt.Errorf("missing required column: %s", sCol)
	}
	if sigmaIdx == -1 && messageIdx == -1 {
		return nil, fmt.Errorf("missing message or sigma column")
	}

	signatures := make([]*Signature, 0)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		sig := &Signature{}
		if messageIdx >= 0 {
			sig.Message = []byte(record[messageIdx])
		}
		if sigmaIdx >= 0 && record[sigmaIdx] != "" {
			if sig.Sigma, err = parseBigInt(record[sigmaIdx]); err != nil {
				return nil, fmt.Errorf("line %d: failed to parse sigma: %w", line, err)
			}
		} else if messageIdx >= 0 {
			sig.Sigma = oracleOrDefault(p.Hash).HashToInt(sig.Message)
		} else {
			return nil, fmt.Errorf("line %d: missing sigma", line)
		}

		if sig.S, err = parseBigInt(record[sIdx]); err != nil {
			return nil, fmt.Errorf("line %d: failed to parse s: %w", line, err)
		}

		if commitmentIdx >= 0 && record[commitmentIdx] != "" {
			if sig.Commitment, err = decodeElement(g, record[commitmentIdx]); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}

		signatures = append(signatures, sig)
	}

	return signatures, nil
}

// CBORParser parses signatures written by MarshalSignaturesCBOR.
type CBORParser struct{}

// ParseSignatures parses signatures from a CBOR file.
func (p *CBORParser) ParseSignatures(cborFile string, g group.Group) ([]*Signature, error) {
	data, err := os.ReadFile(cborFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return UnmarshalSignaturesCBOR(data, g)
}

type signatureMarshal struct {
	Message    []byte `cbor:"1,keyasint,omitempty"`
	Sigma      []byte `cbor:"2,keyasint"`
	S          []byte `cbor:"3,keyasint"`
	Commitment []byte `cbor:"4,keyasint,omitempty"`
}

// MarshalSignaturesCBOR encodes signatures in a compact binary form.
// S must be non-negative.
func MarshalSignaturesCBOR(signatures []*Signature) ([]byte, error) {
	out := make([]signatureMarshal, len(signatures))
	for i, sig := range signatures {
		if sig == nil || sig.S == nil || sig.Sigma == nil {
			return nil, fmt.Errorf("%w: signature %d", ErrIncompleteSignature, i)
		}
		if sig.S.Sign() < 0 || sig.Sigma.Sign() < 0 {
			return nil, fmt.Errorf("signature %d: negative values cannot be encoded", i)
		}
		out[i] = signatureMarshal{
			Message: sig.Message,
			Sigma:   sig.Sigma.Bytes(),
			S:       sig.S.Bytes(),
		}
		if sig.Commitment != nil {
			out[i].Commitment = sig.Commitment.Bytes()
		}
	}
	return cbor.Marshal(out)
}

// UnmarshalSignaturesCBOR decodes the output of MarshalSignaturesCBOR.
func UnmarshalSignaturesCBOR(data []byte, g group.Group) ([]*Signature, error) {
	var items []signatureMarshal
	if err := cbor.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse CBOR: %w", err)
	}
	signatures := make([]*Signature, len(items))
	for i, item := range items {
		sig := &Signature{
			Message: item.Message,
			Sigma:   new(big.Int).SetBytes(item.Sigma),
			S:       new(big.Int).SetBytes(item.S),
		}
		if len(item.Commitment) > 0 {
			c, err := g.Decode(item.Commitment)
			if err != nil {
				return nil, fmt.Errorf("signature %d: failed to decode commitment: %w", i, err)
			}
			sig.Commitment = c
		}
		signatures[i] = sig
	}
	return signatures, nil
}

type signatureJSON struct {
	Message    string `json:"message,omitempty"`
	Sigma      string `json:"sigma"`
	S          string `json:"s"`
	Commitment string `json:"commitment,omitempty"`
}

// MarshalSignaturesJSON writes signatures in the format read by JSONParser,
// with integers as decimal strings and commitments as hex.
func MarshalSignaturesJSON(signatures []*Signature) ([]byte, error) {
	out := make([]signatureJSON, len(signatures))
	for i, sig := range signatures {
		if sig == nil || sig.S == nil || sig.Sigma == nil {
			return nil, fmt.Errorf("%w: signature %d", ErrIncompleteSignature, i)
		}
		out[i] = signatureJSON{
			Message: string(sig.Message),
			Sigma:   sig.Sigma.Text(10),
			S:       sig.S.Text(10),
		}
		if sig.Commitment != nil {
			out[i].Commitment = hex.EncodeToString(sig.Commitment.Bytes())
		}
	}
	return json.MarshalIndent(out, "", "  ")
}

func decodeElement(g group.Group, s string) (group.Element, error) {
	if g == nil {
		return nil, fmt.Errorf("no group to decode commitment")
	}
	raw, err := hex.DecodeString(trimHexPrefix(s))
	if err != nil {
		return nil, fmt.Errorf("failed to decode commitment hex: %w", err)
	}
	e, err := g.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode commitment: %w", err)
	}
	return e, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func oracleOrDefault(h *HashOracle) *HashOracle {
	if h == nil {
		return DefaultHashOracle()
	}
	return h
}

func trimHexPrefix(s string) string {
	s = strings.TrimPrefix(s, "0x")
	return strings.TrimPrefix(s, "0X")
}

// parseBigInt parses a big integer from a decimal string, a hex string or a JSON number.
// Strings are read as hex when they carry a 0x prefix or contain hex letters.
func parseBigInt(val interface{}) (*big.Int, error) {
	switch v := val.(type) {
	case string:
		s := strings.TrimSpace(v)
		base := 10
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") || strings.ContainsAny(s, "abcdefABCDEF") {
			s = trimHexPrefix(s)
			base = 16
		}
		z, ok := new(big.Int).SetString(s, base)
		if !ok {
			return nil, fmt.Errorf("invalid number format: %s", v)
		}
		return z, nil

	case json.Number:
		z, ok := new(big.Int).SetString(string(v), 10)
		if !ok {
			return nil, fmt.Errorf("invalid number format: %s", v)
		}
		return z, nil

	case float64:
		z, ok := new(big.Int).SetString(fmt.Sprintf("%.0f", v), 10)
		if !ok {
			return nil, fmt.Errorf("invalid number format: %v", v)
		}
		return z, nil

	case int64:
		return big.NewInt(v), nil

	case int:
		return big.NewInt(int64(v)), nil

	default:
		return nil, fmt.Errorf("unsupported type: %T", val)
	}
}
