package pbloom

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryV1(t *testing.T) {
	require.Equal(t, uint8(1), RegistryV1.Version())
	require.Equal(t, 38, RegistryV1.Words())

	names := []string{}
	for _, hf := range RegistryV1.Funcs() {
		names = append(names, hf.Name)
		// digest sizes must match what words are counted from.
		for _, d := range []string{"", "bloom", "a longer element for the digest"} {
			require.Len(t, hf.Sum(nil, []byte(d)), hf.Size, "%s(%q)", hf.Name, d)
		}
	}
	require.Equal(t, []string{
		"metro128", "xxh3-128", "murmur3-128",
		"sha256", "sha512", "blake2b-512", "sha3-512",
		"md5", "sha1",
	}, names)
}

func TestRegistry_Positions(t *testing.T) {
	d := []byte("element")
	const m = 1000003

	// positions come from little-endian words of digests in order.
	var want []uint64
	for _, hf := range RegistryV1.Funcs() {
		sum := hf.Sum(nil, d)
		for i := 0; i+8 <= len(sum); i += 8 {
			want = append(want, binary.LittleEndian.Uint64(sum[i:])%m)
		}
	}
	require.Len(t, want, RegistryV1.Words())

	for _, k := range []int{1, 2, 3, 7, 10, 38} {
		got := RegistryV1.Positions(nil, d, k, m)
		require.Equal(t, want[:k], got, "k=%d", k)
	}

	// appends to dst.
	got := RegistryV1.Positions([]uint64{42}, d, 3, m)
	require.Equal(t, append([]uint64{42}, want[:3]...), got)
}

func TestRegistry_PartialWord(t *testing.T) {
	// 20 bytes digest yields 2 words, the trailing 4 bytes are discarded.
	hf := HashFunc{Name: "fixed20", Size: 20, Sum: func(dst, _ []byte) []byte {
		b := make([]byte, 20)
		b[0] = 5
		b[8] = 7
		b[16] = 9
		return append(dst, b...)
	}}
	require.Equal(t, 2, hf.Words())
	r, err := NewRegistry(100, hf, hf)
	require.NoError(t, err)
	require.Equal(t, 4, r.Words())
	require.Equal(t, []uint64{5, 7, 5, 7}, r.Positions(nil, nil, 4, 1000))
	require.Equal(t, []uint64{5, 7, 5}, r.Positions(nil, nil, 3, 1000))
	require.NoError(t, r.Check(4))
	require.ErrorIs(t, r.Check(5), ErrCapacityUnsatisfiable)
}

func TestRegistry_Stable(t *testing.T) {
	// same element must give the same positions every time.
	a := RegistryV1.Positions(nil, []byte("stable"), 38, 1<<20)
	b := RegistryV1.Positions(nil, []byte("stable"), 38, 1<<20)
	require.Equal(t, a, b)
	c := RegistryV1.Positions(nil, []byte("stablE"), 38, 1<<20)
	require.NotEqual(t, a, c)
}

func TestNewRegistry_Reserved(t *testing.T) {
	_, err := NewRegistry(RegistryV1.Version(), RegistryV1.Funcs()...)
	require.ErrorIs(t, err, ErrReservedRegistryVersion)

	r, err := NewRegistry(2, RegistryV1.Funcs()...)
	require.NoError(t, err)
	require.Equal(t, uint8(2), r.Version())
	require.Equal(t, RegistryV1.Words(), r.Words())
}
