package pellattack

import (
	"bytes"
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/mahdiidarabi/cubicpell-nonce/internal/logger"
	"github.com/mahdiidarabi/cubicpell-nonce/pkg/group"
)

// ReusedNonceStrategy looks for two signatures made with the same nonce.
// Pairs with equal commitments are tried first, then pairs without published
// commitments, relying on exact division to reject unrelated pairs.
type ReusedNonceStrategy struct {
	Group  group.Group
	Logger zerolog.Logger
}

// NewReusedNonceStrategy creates a reused-nonce strategy over g.
func NewReusedNonceStrategy(g group.Group) *ReusedNonceStrategy {
	return &ReusedNonceStrategy{Group: g, Logger: zerolog.Nop()}
}

// Name returns the name of this strategy.
func (s *ReusedNonceStrategy) Name() string {
	return "ReusedNonce"
}

// Search implements the RecoveryStrategy interface.
func (s *ReusedNonceStrategy) Search(ctx context.Context, signatures []*Signature, publicKey group.Element) *RecoveryResult {
	for _, sameCommitment := range []bool{true, false} {
		for i := 0; i < len(signatures); i++ {
			for j := i + 1; j < len(signatures); j++ {
				if ctx.Err() != nil {
					return nil
				}
				if commitmentsEqual(signatures[i], signatures[j]) != sameCommitment {
					continue
				}
				if !sameCommitment && signatures[i].Commitment != nil && signatures[j].Commitment != nil {
					continue
				}
				if result := s.tryPair(signatures, i, j, publicKey); result != nil {
					return result
				}
			}
		}
	}
	return nil
}

func (s *ReusedNonceStrategy) tryPair(signatures []*Signature, i, j int, publicKey group.Element) *RecoveryResult {
	priv, err := RecoverFromSignatures(signatures[i], signatures[j])
	if err != nil {
		return nil
	}
	if priv.Sign() <= 0 || priv.Cmp(s.Group.Order()) >= 0 {
		return nil
	}

	verified := false
	if publicKey != nil {
		verified = VerifyRecoveredKey(s.Group, priv, publicKey)
		if !verified {
			return nil
		}
	}

	s.Logger.Debug().Int("i", i).Int("j", j).Bool("verified", verified).Msg("reused nonce found")
	return &RecoveryResult{
		PrivateKey: priv,
		Signatures: []int{i, j},
		Verified:   verified,
		Method:     "reused_nonce",
	}
}

func commitmentsEqual(a, b *Signature) bool {
	if a.Commitment == nil || b.Commitment == nil {
		return false
	}
	return bytes.Equal(a.Commitment.Bytes(), b.Commitment.Bytes())
}

// LatticeStrategy runs the lattice attack over signature windows and candidate
// nonce bounds in parallel. It needs a public key to confirm candidates.
type LatticeStrategy struct {
	Attack *LatticeAttack
	Config SearchConfig
	Logger zerolog.Logger
}

// NewLatticeStrategy creates a lattice strategy over g with default settings.
func NewLatticeStrategy(g group.Group) *LatticeStrategy {
	return &LatticeStrategy{
		Attack: NewLatticeAttack(g),
		Config: DefaultSearchConfig(),
		Logger: zerolog.Nop(),
	}
}

// WithSearchConfig sets the search configuration for the strategy.
func (s *LatticeStrategy) WithSearchConfig(config SearchConfig) *LatticeStrategy {
	s.Config = config
	return s
}

// Name returns the name of this strategy.
func (s *LatticeStrategy) Name() string {
	return "Lattice"
}

type latticeJob struct {
	window int
	bits   int
}

// Search implements the RecoveryStrategy interface.
func (s *LatticeStrategy) Search(ctx context.Context, signatures []*Signature, publicKey group.Element) *RecoveryResult {
	if publicKey == nil || len(signatures) == 0 {
		s.Logger.Debug().Msg("lattice search skipped: needs signatures and a public key")
		return nil
	}

	jobs := make([]latticeJob, 0, len(s.Config.Windows)*len(s.Config.NonceBits))
	for _, w := range s.Config.Windows {
		if w <= 0 || w > len(signatures) {
			continue
		}
		for _, bits := range s.Config.NonceBits {
			jobs = append(jobs, latticeJob{window: w, bits: bits})
		}
	}
	if len(jobs) == 0 {
		return nil
	}

	numWorkers := s.Config.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var tested int64
	resultChan := make(chan *RecoveryResult, 1)
	workChan := make(chan latticeJob)

	go func() {
		defer close(workChan)
		for _, job := range jobs {
			select {
			case <-ctx.Done():
				return
			case workChan <- job:
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range workChan {
				atomic.AddInt64(&tested, 1)
				res, err := s.Attack.Recover(ctx, signatures[:job.window], publicKey, job.bits)
				if err != nil {
					s.Logger.Debug().Err(err).Int("window", job.window).Int("bits", job.bits).Msg("lattice attempt failed")
					continue
				}
				if !res.Recovered {
					continue
				}
				indices := make([]int, job.window)
				for i := range indices {
					indices[i] = i
				}
				select {
				case resultChan <- &RecoveryResult{
					PrivateKey: res.Secret,
					Signatures: indices,
					Verified:   true,
					Method:     "lattice",
					NonceBits:  job.bits,
				}:
					cancel()
				default:
				}
				return
			}
		}()
	}

	wg.Wait()
	s.Logger.Debug().Int64("attempts", atomic.LoadInt64(&tested)).Msg("lattice search finished")

	select {
	case result := <-resultChan:
		return result
	default:
		return nil
	}
}

// SmartStrategy implements a multi-phase strategy that tries the cheap
// reused-nonce check first, then the lattice search.
type SmartStrategy struct {
	Phases []RecoveryStrategy
	Logger zerolog.Logger
}

// NewSmartStrategy creates a smart strategy over g with default settings.
func NewSmartStrategy(g group.Group) *SmartStrategy {
	return &SmartStrategy{
		Phases: []RecoveryStrategy{NewReusedNonceStrategy(g), NewLatticeStrategy(g)},
		Logger: zerolog.Nop(),
	}
}

// WithLogger sets the logger on the strategy and on its built-in phases.
func (s *SmartStrategy) WithLogger(l zerolog.Logger) *SmartStrategy {
	s.Logger = l
	for _, phase := range s.Phases {
		switch p := phase.(type) {
		case *ReusedNonceStrategy:
			p.Logger = l
		case *LatticeStrategy:
			p.Logger = l
			p.Attack.config.Logger = l
		}
	}
	return s
}

// Name returns the name of this strategy.
func (s *SmartStrategy) Name() string {
	return "Smart"
}

// Search implements the RecoveryStrategy interface.
func (s *SmartStrategy) Search(ctx context.Context, signatures []*Signature, publicKey group.Element) *RecoveryResult {
	s.Logger.Info().Int("signatures", len(signatures)).Msg("starting key recovery")
	for i, phase := range s.Phases {
		if ctx.Err() != nil {
			return nil
		}
		s.Logger.Info().Int("phase", i).Str("strategy", phase.Name()).Msg("running phase")
		if result := phase.Search(ctx, signatures, publicKey); result != nil {
			s.Logger.Info().
				Str("method", result.Method).
				Bool("verified", result.Verified).
				Str("key", logger.RedactScalar(result.PrivateKey)).
				Msg("key recovered")
			return result
		}
	}
	s.Logger.Info().Msg("all phases completed, key not found")
	return nil
}
