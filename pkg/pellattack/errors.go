package pellattack

import "errors"

var (
	// ErrZeroHash is returned when a divisor derived from a message hash is zero.
	ErrZeroHash = errors.New("pellattack: message hash is zero")

	// ErrIndeterminate is returned by the reused-nonce attack when both hashes are equal.
	ErrIndeterminate = errors.New("pellattack: equal hashes, key is indeterminate")

	// ErrInexactDivision is returned when a recovery formula does not divide exactly,
	// meaning the inputs do not satisfy the assumed nonce relation.
	ErrInexactDivision = errors.New("pellattack: division is not exact")

	// ErrSingularSystem is returned when a modular linear system has no unique solution.
	ErrSingularSystem = errors.New("pellattack: linear system is singular")

	// ErrInvalidSystem is returned for malformed linear systems.
	ErrInvalidSystem = errors.New("pellattack: invalid linear system")

	// ErrInvalidNonceBits is returned for a non-positive nonce bit length.
	ErrInvalidNonceBits = errors.New("pellattack: nonce bit length must be positive")

	// ErrUnknownDigest is returned for an unsupported hash name.
	ErrUnknownDigest = errors.New("pellattack: unknown digest")

	// ErrInsufficientSignatures is returned when an attack gets too few signatures.
	ErrInsufficientSignatures = errors.New("pellattack: not enough signatures")

	// ErrIncompleteSignature is returned for a signature without σ or s.
	ErrIncompleteSignature = errors.New("pellattack: signature is incomplete")

	// ErrKeyNotRecovered is returned by the client when no strategy found the key.
	ErrKeyNotRecovered = errors.New("pellattack: failed to recover private key")
)
