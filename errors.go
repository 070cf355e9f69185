package pbloom

import "errors"

var (
	// ErrInvalidConfig is returned when capacity is zero or the false
	// positive target is not in (0, 1).
	ErrInvalidConfig = errors.New("pbloom: invalid config")

	// ErrCapacityUnsatisfiable is returned when the hash registry can't
	// supply as many hash words as the config requires.
	ErrCapacityUnsatisfiable = errors.New("pbloom: not enough hash words for config")

	// ErrMalformedFilterState is returned when a bit array or a serialized
	// record doesn't match the config it claims.
	ErrMalformedFilterState = errors.New("pbloom: malformed filter state")

	// ErrReservedRegistryVersion is returned by NewRegistry for versions of
	// registries shipped with this package.
	ErrReservedRegistryVersion = errors.New("pbloom: reserved registry version")
)
