package pellattack

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/rs/zerolog"

	"github.com/mahdiidarabi/cubicpell-nonce/pkg/group"
)

// Client provides a high-level API for key recovery operations.
type Client struct {
	group    group.Group
	strategy RecoveryStrategy
	parser   SignatureParser
	logger   zerolog.Logger
}

// NewClient creates a new client over CP256-1299 with default settings.
func NewClient() *Client {
	g := group.CP256()
	return &Client{
		group:    g,
		strategy: NewSmartStrategy(g),
		parser:   &JSONParser{},
		logger:   zerolog.Nop(),
	}
}

// WithGroup switches the group. The default strategy is rebuilt for the new
// group; call WithStrategy afterwards to override it.
func (c *Client) WithGroup(g group.Group) *Client {
	c.group = g
	c.strategy = NewSmartStrategy(g).WithLogger(c.logger)
	return c
}

// WithStrategy sets a custom recovery strategy.
func (c *Client) WithStrategy(strategy RecoveryStrategy) *Client {
	c.strategy = strategy
	return c
}

// WithParser sets a custom signature parser.
func (c *Client) WithParser(parser SignatureParser) *Client {
	c.parser = parser
	return c
}

// WithLogger sets the logger, propagating it to the default strategy.
func (c *Client) WithLogger(l zerolog.Logger) *Client {
	c.logger = l
	if smart, ok := c.strategy.(*SmartStrategy); ok {
		smart.WithLogger(l)
	}
	return c
}

// Group returns the group the client works in.
func (c *Client) Group() group.Group { return c.group }

// RecoverKey attempts to recover a private key from signatures in a file.
//
// Args:
//   - ctx: Context for cancellation.
//   - source: Path to signature file.
//   - publicKeyHex: Optional public key in hex (Element.Bytes encoding).
//
// Returns:
//   - RecoveryResult if successful, error otherwise.
func (c *Client) RecoverKey(ctx context.Context, source string, publicKeyHex string) (*RecoveryResult, error) {
	signatures, err := c.parser.ParseSignatures(source, c.group)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signatures: %w", err)
	}
	return c.RecoverKeyFromSignatures(ctx, signatures, publicKeyHex)
}

// RecoverKeyFromSignatures attempts to recover a private key from in-memory signatures.
// Public key is optional; when provided, the recovered key is verified.
func (c *Client) RecoverKeyFromSignatures(ctx context.Context, signatures []*Signature, publicKeyHex string) (*RecoveryResult, error) {
	if len(signatures) == 0 {
		return nil, ErrInsufficientSignatures
	}
	publicKey, err := c.ParsePublicKey(publicKeyHex)
	if err != nil {
		return nil, err
	}

	result := c.strategy.Search(ctx, signatures, publicKey)
	if result == nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrKeyNotRecovered
	}
	return result, nil
}

// RecoverKeyWithKnownNonce recovers the key from the signature at index when its nonce leaked.
//
// Args:
//   - ctx: Context for cancellation.
//   - source: Path to signature file.
//   - index: Signature the nonce belongs to.
//   - nonce: The leaked α.
//   - publicKeyHex: Optional public key for verification.
//
// Returns:
//   - RecoveryResult if successful, error otherwise.
func (c *Client) RecoverKeyWithKnownNonce(ctx context.Context, source string, index int, nonce *big.Int, publicKeyHex string) (*RecoveryResult, error) {
	signatures, err := c.parser.ParseSignatures(source, c.group)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signatures: %w", err)
	}
	if index < 0 || index >= len(signatures) {
		return nil, fmt.Errorf("signature index %d out of range [0, %d)", index, len(signatures))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	publicKey, err := c.ParsePublicKey(publicKeyHex)
	if err != nil {
		return nil, err
	}

	sig := signatures[index]
	priv, err := RecoverFromLeakedNonce(sig.S, sig.Sigma, nonce)
	if err != nil {
		return nil, err
	}

	verified := false
	if publicKey != nil {
		if verified = VerifyRecoveredKey(c.group, priv, publicKey); !verified {
			return nil, fmt.Errorf("%w: key from leaked nonce does not match public key", ErrKeyNotRecovered)
		}
	}

	return &RecoveryResult{
		PrivateKey: priv,
		Signatures: []int{index},
		Verified:   verified,
		Method:     "leaked_nonce",
	}, nil
}

// RecoverSharedNonceKeys recovers two keys from four signatures: sigs[0] and
// sigs[2] by key 1, sigs[1] and sigs[3] by key 2, with sigs[0], sigs[1] sharing
// one nonce and sigs[2], sigs[3] another.
func (c *Client) RecoverSharedNonceKeys(sigs [4]*Signature) (*big.Int, *big.Int, error) {
	for i, sig := range sigs {
		if sig == nil || sig.S == nil || sig.Sigma == nil {
			return nil, nil, fmt.Errorf("%w: signature %d is incomplete", ErrInvalidSystem, i)
		}
	}
	return RecoverSharedNonceKeys(
		sigs[0].Sigma, sigs[1].Sigma, sigs[2].Sigma, sigs[3].Sigma,
		sigs[0].S, sigs[1].S, sigs[2].S, sigs[3].S,
		c.group.Order(),
	)
}

// ParsePublicKey decodes a hex element. An empty string yields nil.
func (c *Client) ParsePublicKey(publicKeyHex string) (group.Element, error) {
	if publicKeyHex == "" {
		return nil, nil
	}
	raw, err := hex.DecodeString(trimHexPrefix(publicKeyHex))
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	pub, err := c.group.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return pub, nil
}
