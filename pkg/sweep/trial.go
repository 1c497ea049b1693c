package sweep

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mahdiidarabi/cubicpell-nonce/internal/rng"
	"github.com/mahdiidarabi/cubicpell-nonce/pkg/pellattack"
)

// trialMessage names the i-th message of a trial.
func trialMessage(trial, i int) []byte {
	return []byte(fmt.Sprintf("msg-%d-%d", trial, i))
}

// source returns the randomness for one trial.
func (r *Runner) source(bits, count, trial int) (io.Reader, error) {
	if r.rand != nil {
		return r.rand, nil
	}
	return rng.Source([]byte(r.config.Seed), uint64(bits), uint64(count), uint64(trial))
}

// runTrial generates a fresh key pair, signs count messages with bits-bit
// nonces and runs the lattice attack with bound 2^bits.
func (r *Runner) runTrial(ctx context.Context, bits, count, trial int) (bool, error) {
	random, err := r.source(bits, count, trial)
	if err != nil {
		return false, err
	}

	key, err := pellattack.GenerateKey(random, r.group)
	if err != nil {
		return false, err
	}

	signer := &pellattack.Signer{
		Group:     r.group,
		Hash:      r.hash,
		NonceBits: bits,
		Rand:      random,
	}
	sigs := make([]*pellattack.Signature, count)
	for i := range sigs {
		sig, _, err := signer.Sign(trialMessage(trial, i), key.Secret)
		if err != nil {
			return false, err
		}
		sigs[i] = sig
	}

	if timeout := time.Duration(r.config.TrialTimeout); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := r.attack.Recover(ctx, sigs, key.Public, bits)
	if err != nil {
		return false, err
	}
	return res.Recovered, nil
}
