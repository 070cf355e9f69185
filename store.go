package pbloom

// MemoryStore is the bit array of a filter. Bit x is at byte x/8, and
// its weight is 1<<(x%8) (LSB0).
type MemoryStore []byte

// NewMemoryStore creates a zeroed store which holds nbits bits.
func NewMemoryStore(nbits uint64) MemoryStore {
	nbytes := (nbits + 7) / 8
	return make(MemoryStore, nbytes)
}

// SetBits sets bits on indexes in the store.
func (ms MemoryStore) SetBits(indexes ...uint64) {
	for _, x := range indexes {
		ms[x/8] |= 1 << (x % 8)
	}
}

// CheckBits checks all bits are `true` on indexes in the store.
// It returns false for no indexes.
func (ms MemoryStore) CheckBits(indexes ...uint64) bool {
	if len(indexes) == 0 {
		return false
	}
	for _, x := range indexes {
		if ms[x/8]&(1<<(x%8)) == 0 {
			return false
		}
	}
	return true
}
