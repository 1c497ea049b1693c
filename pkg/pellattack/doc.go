// Package pellattack recovers private keys from a weak Schnorr-like signature
// scheme over the cubic Pell group.
//
// The scheme signs a message m with secret λ and a fresh nonce α as
//
//	σ = SHA-256(m)
//	s = α + σ·λ        (a plain integer, never reduced modulo φ)
//	commitment = α·G
//
// Because s is not reduced, every signature leaks a linear relation over the
// integers. The package exploits it four ways:
//
//   - leaked nonce: λ = (s − α) / σ
//   - reused nonce: λ = (s₁ − s₂) / (σ₁ − σ₂)
//   - shared nonces across two keys: a 2×2 linear system modulo φ
//   - short nonces: a Hidden Number Problem lattice reduced with LLL
//
// # Quick Start
//
//	import "github.com/mahdiidarabi/cubicpell-nonce/pkg/pellattack"
//
//	// Create a client with default settings (CP256-1299, smart strategy)
//	client := pellattack.NewClient()
//
//	result, err := client.RecoverKey(ctx, "signatures.json", "a1b2...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Recovered key: %s\n", result.PrivateKey.Text(10))
//
// # Lattice attack
//
// The lattice attack can be driven directly when the nonce size is known:
//
//	attack := pellattack.NewLatticeAttack(group.CP256())
//	res, err := attack.Recover(ctx, signatures, publicKey, 256)
//	if err == nil && res.Recovered {
//	    fmt.Println(res.Secret)
//	}
//
// # Custom Strategies
//
// Implement RecoveryStrategy to plug a custom search into the client:
//
//	type MyStrategy struct{}
//
//	func (s *MyStrategy) Search(ctx context.Context, signatures []*Signature, publicKey group.Element) *RecoveryResult {
//	    // Your custom search logic
//	}
//
//	func (s *MyStrategy) Name() string {
//	    return "MyCustomStrategy"
//	}
//
//	client := pellattack.NewClient().WithStrategy(&MyStrategy{})
package pellattack
