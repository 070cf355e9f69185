package pbloom

import (
	"encoding"
	"fmt"
)

// Filter is a Bloom filter sized by Config. It has no false negatives.
//
// Filter is not safe for concurrent use when Insert is involved. Contains
// never mutates the filter, so concurrent readers are fine without writers.
//
// The zero value holds no bits: it contains nothing, Insert panics and
// MarshalBinary fails. Use New or Reconstruct, or unmarshal a record into
// it.
type Filter struct {
	cfg   Config
	p     Params
	reg   *Registry
	s     MemoryStore
	empty bool
}

var errZeroFilter = fmt.Errorf("filter is not initialized: %w", ErrMalformedFilterState)

func newFilter(cfg Config, reg *Registry) (*Filter, error) {
	if reg == nil {
		reg = RegistryV1
	}
	p, err := DeriveParams(cfg)
	if err != nil {
		return nil, err
	}
	if err := reg.Check(p.HashCount); err != nil {
		return nil, fmt.Errorf("capacity=%d false_positive_target=%v: %w", cfg.Capacity, cfg.FalsePositiveTarget, err)
	}
	return &Filter{
		cfg:   cfg,
		p:     p,
		reg:   reg,
		empty: true,
	}, nil
}

// New creates an empty filter with RegistryV1.
func New(cfg Config) (*Filter, error) {
	return NewWithRegistry(cfg, RegistryV1)
}

// NewWithRegistry creates an empty filter which derives positions with reg.
func NewWithRegistry(cfg Config, reg *Registry) (*Filter, error) {
	f, err := newFilter(cfg, reg)
	if err != nil {
		return nil, err
	}
	f.s = NewMemoryStore(f.p.BitCount)
	return f, nil
}

// Reconstruct restores a filter from its bit array with RegistryV1.
func Reconstruct(cfg Config, bits []byte) (*Filter, error) {
	return ReconstructWithRegistry(cfg, RegistryV1, bits)
}

// ReconstructWithRegistry restores a filter from its bit array. The length
// of bits must be what cfg implies. The result is treated as not empty
// because its history is unknown.
func ReconstructWithRegistry(cfg Config, reg *Registry, bits []byte) (*Filter, error) {
	f, err := newFilter(cfg, reg)
	if err != nil {
		return nil, err
	}
	if n := f.p.ArrayBytes(); len(bits) != n {
		return nil, fmt.Errorf("bit array length mismatch: want=%d got=%d: %w", n, len(bits), ErrMalformedFilterState)
	}
	f.s = make(MemoryStore, len(bits))
	copy(f.s, bits)
	f.empty = false
	return f, nil
}

// Positions returns HashCount positions in [0, BitCount) for d.
// It returns nil for the zero Filter.
func (f *Filter) Positions(d []byte) []uint64 {
	if f.reg == nil {
		return nil
	}
	return f.reg.Positions(make([]uint64, 0, f.p.HashCount), d, f.p.HashCount, f.p.BitCount)
}

// Insert puts a byte array to the filter.
func (f *Filter) Insert(d []byte) {
	if f.reg == nil {
		panic("pbloom: Insert on zero Filter")
	}
	f.s.SetBits(f.Positions(d)...)
	f.empty = false
}

// InsertString puts a string to the filter.
func (f *Filter) InsertString(s string) {
	f.Insert([]byte(s))
}

// InsertValue puts a value to the filter, v is responsible to encode itself
// deterministically.
func (f *Filter) InsertValue(v encoding.BinaryMarshaler) error {
	d, err := v.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to marshal element: %w", err)
	}
	f.Insert(d)
	return nil
}

// Contains checks that a byte array is in the filter. false means d was
// never inserted, true means d was probably inserted.
func (f *Filter) Contains(d []byte) bool {
	return f.s.CheckBits(f.Positions(d)...)
}

// ContainsString checks that a string is in the filter.
func (f *Filter) ContainsString(s string) bool {
	return f.Contains([]byte(s))
}

// ContainsValue checks that a value is in the filter.
func (f *Filter) ContainsValue(v encoding.BinaryMarshaler) (bool, error) {
	d, err := v.MarshalBinary()
	if err != nil {
		return false, fmt.Errorf("failed to marshal element: %w", err)
	}
	return f.Contains(d), nil
}

// IsEmpty returns true when nothing has been inserted to a new filter.
// Reconstructed filters are never empty.
func (f *Filter) IsEmpty() bool {
	return f.empty || f.reg == nil
}

// Config returns the config of the filter.
func (f *Filter) Config() Config {
	return f.cfg
}

// Params returns the parameters derived from the config.
func (f *Filter) Params() Params {
	return f.p
}

// BitCount returns m.
func (f *Filter) BitCount() uint64 {
	return f.p.BitCount
}

// HashCount returns k.
func (f *Filter) HashCount() int {
	return f.p.HashCount
}

// Registry returns the hash registry of the filter.
func (f *Filter) Registry() *Registry {
	return f.reg
}

// Bytes returns a copy of the bit array.
func (f *Filter) Bytes() []byte {
	b := make([]byte, len(f.s))
	copy(b, f.s)
	return b
}

// EstimatedFalsePositiveRate returns the expected false positive rate after
// n distinct elements are inserted.
func (f *Filter) EstimatedFalsePositiveRate(n uint64) float64 {
	return f.p.EstimatedFalsePositiveRate(n)
}
