package pbloom

import (
	"fmt"
	"math"
)

const (
	// DefaultCapacity is the expected number of elements used by
	// DefaultConfig.
	DefaultCapacity = 64

	// DefaultFalsePositiveTarget is the false positive probability used by
	// DefaultConfig.
	DefaultFalsePositiveTarget = 0.001
)

// Config determines the size of a filter.
type Config struct {
	// Capacity is the expected maximum number of inserted elements.
	Capacity uint64 `json:"capacity"`
	// FalsePositiveTarget is the false positive probability wanted when
	// Capacity elements are inserted.
	FalsePositiveTarget float64 `json:"false_positive_target"`
}

// DefaultConfig returns a config for 64 elements at 0.1%.
func DefaultConfig() Config {
	return Config{
		Capacity:            DefaultCapacity,
		FalsePositiveTarget: DefaultFalsePositiveTarget,
	}
}

// Validate checks ranges of the config.
func (c Config) Validate() error {
	if c.Capacity == 0 {
		return fmt.Errorf("capacity should be positive: %w", ErrInvalidConfig)
	}
	// negated to reject NaN too.
	if !(c.FalsePositiveTarget > 0 && c.FalsePositiveTarget < 1) {
		return fmt.Errorf("false positive target should be in (0,1) got=%v: %w", c.FalsePositiveTarget, ErrInvalidConfig)
	}
	return nil
}

// Params are derived from Config, and never change for a filter.
type Params struct {
	// BitCount is m, the number of bits in the array.
	BitCount uint64
	// HashCount is k, the number of positions per element.
	HashCount int
}

// ArrayBytes returns the byte length of the bit array: ceil(m/8).
func (p Params) ArrayBytes() int {
	return int((p.BitCount + 7) / 8)
}

// DeriveParams computes m and k for the config:
//
//	m = ceil(-n * ln(p) / ln(2)^2)
//	k = ceil(m / n * ln(2))
func DeriveParams(c Config) (Params, error) {
	if err := c.Validate(); err != nil {
		return Params{}, err
	}
	n := float64(c.Capacity)
	m := math.Ceil(-n * math.Log(c.FalsePositiveTarget) / (math.Ln2 * math.Ln2))
	if m < 1 || m > math.MaxInt64 {
		return Params{}, fmt.Errorf("bit count out of range: m=%v: %w", m, ErrInvalidConfig)
	}
	k := math.Ceil(m / n * math.Ln2)
	if k < 1 {
		k = 1
	}
	return Params{
		BitCount:  uint64(m),
		HashCount: int(k),
	}, nil
}

// EstimatedFalsePositiveRate returns the expected false positive rate after
// n distinct elements are inserted: (1 - e^(-k*n/m))^k.
//
// k is not adjusted to n, so the rate grows past Capacity; it is not a hard
// limit.
func (p Params) EstimatedFalsePositiveRate(n uint64) float64 {
	k := float64(p.HashCount)
	return math.Pow(1-math.Exp(-k*float64(n)/float64(p.BitCount)), k)
}
