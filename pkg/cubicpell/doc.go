// Package cubicpell implements the cubic Pell group over ℤ/Nℤ.
//
// A point is a triple (x, y, z) of residues modulo N satisfying
//
//	x³ + a·y³ + a²·z³ − 3a·x·y·z ≡ 1 (mod N)
//
// which is the norm-1 condition for x + yθ + zθ² in ℤ_N[θ]/(θ³ − a). The group law is
// multiplication in that ring, so when N is prime and a is not a cube modulo N the group
// is cyclic of order N² + N + 1.
//
// # Quick Start
//
//	params := cubicpell.CP256()
//	pub := params.Curve.ScalarMult(secret, params.Generator)
//
// Points are immutable values. Arithmetic is variable time; this package is meant for
// cryptanalysis experiments, not for deployed signatures.
package cubicpell
