// Package group abstracts the cyclic groups the weak signature scheme can be
// instantiated over. The attacks only need scalar multiplication, addition and
// equality, so they are written against Group and work for every backend here.
package group

import (
	"errors"
	"math/big"
)

// ErrForeignElement is returned when an element from another group is passed in.
var ErrForeignElement = errors.New("group: element belongs to a different group")

// Element is a group element. Implementations are immutable.
type Element interface {
	// Equal reports whether both elements are the same point of the same group.
	Equal(other Element) bool

	// Bytes returns the canonical encoding accepted by Group.Decode.
	Bytes() []byte

	String() string
}

// Group is a cyclic group with a fixed generator.
type Group interface {
	// Name identifies the instance, e.g. "CP256-1299".
	Name() string

	// Order is the scalar modulus φ.
	Order() *big.Int

	Generator() Element
	Identity() Element
	Add(a, b Element) Element

	// ScalarMult returns k·e. k may exceed Order and may be negative.
	ScalarMult(k *big.Int, e Element) Element

	// ScalarBaseMult returns k·G.
	ScalarBaseMult(k *big.Int) Element

	// Decode parses an encoding produced by Element.Bytes.
	Decode(data []byte) (Element, error)
}
