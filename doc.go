/*
Package pbloom provides a Bloom filter which is sized by expected capacity
and false positive target, and which can be stored and restored portably.

	f, err := pbloom.New(pbloom.Config{Capacity: 1000, FalsePositiveTarget: 0.01})
	if err != nil {
		return err
	}
	f.InsertString("hello")
	f.ContainsString("hello") // true
	f.ContainsString("world") // false, with probability 0.99

# Sizing

For capacity n and target p, the filter has m bits and k positions per
element:

	m = ceil(-n * ln(p) / ln(2)^2)
	k = ceil(m / n * ln(2))

Inserting more than n elements is allowed. The false positive rate rises as
the filter saturates, see EstimatedFalsePositiveRate.

# Positions

Positions are derived from a fixed Registry of hash functions. RegistryV1
chains metro128, xxh3-128, murmur3-128, sha256, sha512, blake2b-512,
sha3-512, md5 and sha1, splits each digest into little-endian uint64 words,
and reduces each word modulo m, until k positions are produced. A config
which needs more than 38 positions fails with ErrCapacityUnsatisfiable.

# Records

Serialize writes a text record "capacity|target|base64(bits)".
MarshalBinary writes a length prefixed binary record which also carries the
registry version.

Filter has no locks. Serialize writers externally.
*/
package pbloom
