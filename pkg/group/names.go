package group

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownGroup is returned by ByName for an unrecognized name.
var ErrUnknownGroup = errors.New("group: unknown group")

// Names lists the names accepted by ByName, one per backend.
func Names() []string {
	return []string{"cp256", "secp256k1", "ed25519", "babyjubjub"}
}

// ByName returns the backend for a case-insensitive name. "cp256-1299" and
// "bjj" are accepted as aliases.
func ByName(name string) (Group, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cp256", "cp256-1299":
		return CP256(), nil
	case "secp256k1":
		return NewSecp256k1(), nil
	case "ed25519":
		return NewEd25519(), nil
	case "babyjubjub", "bjj":
		return NewBabyJubjub(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, name)
	}
}
