package sweep

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mahdiidarabi/cubicpell-nonce/pkg/pellattack"
)

// ErrInvalidConfig is returned before any trial runs when a Config is unusable.
var ErrInvalidConfig = errors.New("invalid sweep configuration")

// Duration is a time.Duration that reads and writes JSON as "30s" style strings.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts a duration string or an integer count of nanoseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var n int64
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("duration must be a string or integer: %s", b)
		}
		*d = Duration(n)
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// StopPolicy decides when a bit-length has seen enough signature counts.
//
// Above Threshold the sweep stops once the rate reaches AboveRate; at or below
// it the sweep stops once the rate reaches AtOrBelowRate. Rates are percentages.
type StopPolicy struct {
	Threshold     int     `json:"threshold"`
	AboveRate     float64 `json:"above_rate"`
	AtOrBelowRate float64 `json:"at_or_below_rate"`
	Disabled      bool    `json:"disabled"`
}

// DefaultStopPolicy returns the 256-bit threshold with 70% / 90% cut-offs.
func DefaultStopPolicy() StopPolicy {
	return StopPolicy{Threshold: 256, AboveRate: 70, AtOrBelowRate: 90}
}

// ShouldStop reports whether a cell with the given rate ends its bit-length.
func (p StopPolicy) ShouldStop(bits int, rate float64) bool {
	if p.Disabled {
		return false
	}
	if bits > p.Threshold {
		return rate >= p.AboveRate
	}
	return rate >= p.AtOrBelowRate
}

// Config describes a sweep over nonce bit-lengths and signature counts.
type Config struct {
	// BitLengths are the nonce sizes to test, in order.
	BitLengths []int `json:"bit_lengths"`
	// MinSignatures and MaxSignatures bound the signature counts per bit-length.
	MinSignatures int `json:"min_signatures"`
	MaxSignatures int `json:"max_signatures"`
	// Trials per cell.
	Trials int `json:"trials"`
	// Workers bounds concurrent trials; zero uses all CPUs.
	Workers int `json:"workers"`
	// Seed makes the run reproducible; empty draws from crypto/rand.
	Seed string `json:"seed"`
	// Digest is the signature hash; empty means sha256.
	Digest pellattack.Digest `json:"digest"`
	Stop   StopPolicy        `json:"stop"`
	// TrialTimeout caps one lattice attack; zero disables the cap.
	TrialTimeout Duration `json:"trial_timeout"`
}

// DefaultConfig returns the original experiment grid. Above 256 bits no
// trial succeeds, so the stop policy does not cut those rows short and the
// largest lattices dominate the run time. Set TrialTimeout to bound a cell.
func DefaultConfig() Config {
	return Config{
		BitLengths:    []int{128, 160, 192, 224, 256, 257, 258, 259, 260, 264, 272, 280},
		MinSignatures: 2,
		MaxSignatures: 50,
		Trials:        10,
		Digest:        pellattack.DigestSHA256,
		Stop:          DefaultStopPolicy(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if len(c.BitLengths) == 0 {
		return fmt.Errorf("%w: no bit lengths", ErrInvalidConfig)
	}
	for _, b := range c.BitLengths {
		if b <= 0 {
			return fmt.Errorf("%w: bit length %d", ErrInvalidConfig, b)
		}
	}
	if c.MinSignatures <= 0 || c.MaxSignatures <= 0 {
		return fmt.Errorf("%w: signature counts must be positive", ErrInvalidConfig)
	}
	if c.MinSignatures > c.MaxSignatures {
		return fmt.Errorf("%w: min signatures %d exceeds max %d", ErrInvalidConfig, c.MinSignatures, c.MaxSignatures)
	}
	if c.Trials <= 0 {
		return fmt.Errorf("%w: trials must be positive", ErrInvalidConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: negative workers", ErrInvalidConfig)
	}
	if c.TrialTimeout < 0 {
		return fmt.Errorf("%w: negative trial timeout", ErrInvalidConfig)
	}
	for _, r := range []float64{c.Stop.AboveRate, c.Stop.AtOrBelowRate} {
		if r < 0 || r > 100 {
			return fmt.Errorf("%w: stop rate %v outside [0, 100]", ErrInvalidConfig, r)
		}
	}
	if c.Digest != "" {
		if _, err := pellattack.NewHashOracle(c.Digest); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}

// LoadConfig reads a JSON file over DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, cfg.Validate()
}
