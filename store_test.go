package pbloom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func checkStoreTrue(tb testing.TB, s MemoryStore, indexes ...uint64) {
	tb.Helper()
	if !s.CheckBits(indexes...) {
		tb.Errorf("CheckBits returns false unexpectedly for: %+v", indexes)
	}
}

func checkStoreFalse(tb testing.TB, s MemoryStore, indexes ...uint64) {
	tb.Helper()
	if s.CheckBits(indexes...) {
		tb.Errorf("CheckBits returns true unexpectedly for: %+v", indexes)
	}
}

func TestMemoryStore(t *testing.T) {
	ms := NewMemoryStore(32)
	require.Len(t, ms, 4)
	require.Equal(t, MemoryStore{0, 0, 0, 0}, ms)

	ms.SetBits(0, 1, 2, 3, 8, 9, 10, 11, 12, 13, 14, 15)
	require.Equal(t, MemoryStore{0x0f, 0xff, 0, 0}, ms)

	checkStoreTrue(t, ms, 0)
	checkStoreTrue(t, ms, 0, 1)
	checkStoreTrue(t, ms, 1, 2)
	checkStoreTrue(t, ms, 2, 3)
	checkStoreTrue(t, ms, 0, 1, 2, 3)

	checkStoreFalse(t, ms, 4)
	checkStoreFalse(t, ms, 5)
	checkStoreFalse(t, ms, 6)
	checkStoreFalse(t, ms, 7)
	checkStoreFalse(t, ms, 0, 4)
	checkStoreFalse(t, ms, 0, 1, 2, 3, 4)
	checkStoreFalse(t, ms)
	checkStoreTrue(t, ms, 0)

	checkStoreTrue(t, ms, 8)
	checkStoreTrue(t, ms, 12)
	checkStoreTrue(t, ms, 15)
}

func TestMemoryStoreLayout(t *testing.T) {
	ms := NewMemoryStore(17)
	require.Len(t, ms, 3)
	ms.SetBits(0, 9, 16)
	require.Equal(t, MemoryStore{0x01, 0x02, 0x01}, ms)
}
