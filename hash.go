package pbloom

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	"github.com/dgryski/go-metro"
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// WordBytes is the width of a hash word which is reduced to a position.
const WordBytes = 8

// HashFunc is a named hash function in a Registry.
type HashFunc struct {
	// Name identifies the function. It is informational, positions depend
	// on the order of functions in a registry only.
	Name string
	// Size is the length of the digest in bytes.
	Size int
	// Sum appends the digest of d to dst.
	Sum func(dst, d []byte) []byte
}

// Words returns the number of hash words the digest yields. A trailing
// chunk shorter than WordBytes is discarded.
func (hf HashFunc) Words() int {
	return hf.Size / WordBytes
}

// Registry is an ordered, versioned list of hash functions which derive
// positions for elements. Filters are portable only between registries with
// the same version.
type Registry struct {
	version uint8
	funcs   []HashFunc
	words   int
}

// NewRegistry creates a registry. version identifies the list in binary
// records, different lists must use different versions. Versions of
// registries shipped with this package are reserved.
func NewRegistry(version uint8, funcs ...HashFunc) (*Registry, error) {
	if _, ok := registryByVersion(version); ok {
		return nil, fmt.Errorf("version %d is reserved: %w", version, ErrReservedRegistryVersion)
	}
	return newRegistry(version, funcs...), nil
}

func newRegistry(version uint8, funcs ...HashFunc) *Registry {
	words := 0
	for _, hf := range funcs {
		words += hf.Words()
	}
	return &Registry{
		version: version,
		funcs:   append([]HashFunc(nil), funcs...),
		words:   words,
	}
}

// Version returns the version of the registry.
func (r *Registry) Version() uint8 {
	return r.version
}

// Funcs returns a copy of the hash functions in order.
func (r *Registry) Funcs() []HashFunc {
	return append([]HashFunc(nil), r.funcs...)
}

// Words returns the total number of hash words the registry can supply for
// an element.
func (r *Registry) Words() int {
	return r.words
}

// Check returns ErrCapacityUnsatisfiable when the registry can't supply k
// words.
func (r *Registry) Check(k int) error {
	if k > r.words {
		return fmt.Errorf("registry v%d supplies %d words, want=%d: %w", r.version, r.words, k, ErrCapacityUnsatisfiable)
	}
	return nil
}

// Positions appends k positions in [0, m) for d to dst.
//
// Digests are taken in registry order, split into little-endian uint64
// words, and each word is reduced modulo m. It stops once k positions are
// produced. k should be checked by Check beforehand.
func (r *Registry) Positions(dst []uint64, d []byte, k int, m uint64) []uint64 {
	var buf [64]byte
	n := 0
	for _, hf := range r.funcs {
		if n >= k {
			break
		}
		sum := hf.Sum(buf[:0], d)
		for i := 0; i+WordBytes <= hf.Size && n < k; i += WordBytes {
			w := binary.LittleEndian.Uint64(sum[i : i+WordBytes])
			dst = append(dst, w%m)
			n++
		}
	}
	return dst
}

func put128(dst []byte, a, b uint64) []byte {
	var v [16]byte
	binary.LittleEndian.PutUint64(v[0:8], a)
	binary.LittleEndian.PutUint64(v[8:16], b)
	return append(dst, v[:]...)
}

const registryV1Version = 1

// RegistryV1 is the registry of format version 1. Never change its
// contents: add a new version instead.
var RegistryV1 = newRegistry(registryV1Version,
	HashFunc{Name: "metro128", Size: 16, Sum: func(dst, d []byte) []byte {
		lo, hi := metro.Hash128(d, 0)
		return put128(dst, lo, hi)
	}},
	HashFunc{Name: "xxh3-128", Size: 16, Sum: func(dst, d []byte) []byte {
		h := xxh3.Hash128(d)
		return put128(dst, h.Lo, h.Hi)
	}},
	HashFunc{Name: "murmur3-128", Size: 16, Sum: func(dst, d []byte) []byte {
		h1, h2 := murmur3.Sum128(d)
		return put128(dst, h1, h2)
	}},
	HashFunc{Name: "sha256", Size: sha256.Size, Sum: func(dst, d []byte) []byte {
		s := sha256.Sum256(d)
		return append(dst, s[:]...)
	}},
	HashFunc{Name: "sha512", Size: sha512.Size, Sum: func(dst, d []byte) []byte {
		s := sha512.Sum512(d)
		return append(dst, s[:]...)
	}},
	HashFunc{Name: "blake2b-512", Size: blake2b.Size, Sum: func(dst, d []byte) []byte {
		s := blake2b.Sum512(d)
		return append(dst, s[:]...)
	}},
	HashFunc{Name: "sha3-512", Size: 64, Sum: func(dst, d []byte) []byte {
		s := sha3.Sum512(d)
		return append(dst, s[:]...)
	}},
	HashFunc{Name: "md5", Size: md5.Size, Sum: func(dst, d []byte) []byte {
		s := md5.Sum(d)
		return append(dst, s[:]...)
	}},
	HashFunc{Name: "sha1", Size: sha1.Size, Sum: func(dst, d []byte) []byte {
		s := sha1.Sum(d)
		return append(dst, s[:]...)
	}},
)

// registryByVersion finds a registry shipped with this package.
func registryByVersion(v uint8) (*Registry, bool) {
	switch v {
	case registryV1Version:
		return RegistryV1, true
	default:
		return nil, false
	}
}
