package pbloom

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
)

// RecordDelimiter separates fields of a text record. Neither the numeric
// fields nor standard base64 can contain it.
const RecordDelimiter = '|'

// Serialize encodes the filter into a text record:
//
//	<capacity>|<false positive target>|<base64 of bit array>
//
// The record doesn't carry the registry version: it is portable between
// filters which use the same registry.
func (f *Filter) Serialize() []byte {
	// 64 bytes are enough for both numeric fields and the delimiters.
	b := make([]byte, 0, 64+base64.StdEncoding.EncodedLen(len(f.s)))
	b = strconv.AppendUint(b, f.cfg.Capacity, 10)
	b = append(b, RecordDelimiter)
	b = strconv.AppendFloat(b, f.cfg.FalsePositiveTarget, 'g', -1, 64)
	b = append(b, RecordDelimiter)
	n := len(b)
	b = b[:n+base64.StdEncoding.EncodedLen(len(f.s))]
	base64.StdEncoding.Encode(b[n:], f.s)
	return b
}

// Deserialize decodes a text record made by Serialize, with RegistryV1.
func Deserialize(b []byte) (*Filter, error) {
	return DeserializeWithRegistry(b, RegistryV1)
}

// DeserializeWithRegistry decodes a text record made by Serialize.
func DeserializeWithRegistry(b []byte, reg *Registry) (*Filter, error) {
	fields := bytes.Split(b, []byte{RecordDelimiter})
	if len(fields) != 3 {
		return nil, fmt.Errorf("record should have 3 fields, got=%d: %w", len(fields), ErrMalformedFilterState)
	}
	capacity, err := strconv.ParseUint(string(fields[0]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid capacity field %q: %w", fields[0], ErrMalformedFilterState)
	}
	target, err := strconv.ParseFloat(string(fields[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid false positive target field %q: %w", fields[1], ErrMalformedFilterState)
	}
	// the decoder skips line breaks, they are not part of a record.
	if i := bytes.IndexFunc(fields[2], notBase64); i >= 0 {
		return nil, fmt.Errorf("invalid byte %q in bit array field at %d: %w", fields[2][i], i, ErrMalformedFilterState)
	}
	bits := make([]byte, base64.StdEncoding.DecodedLen(len(fields[2])))
	n, err := base64.StdEncoding.Decode(bits, fields[2])
	if err != nil {
		return nil, fmt.Errorf("invalid bit array field: %v: %w", err, ErrMalformedFilterState)
	}
	return ReconstructWithRegistry(Config{
		Capacity:            capacity,
		FalsePositiveTarget: target,
	}, reg, bits[:n])
}

func notBase64(r rune) bool {
	switch {
	case 'A' <= r && r <= 'Z', 'a' <= r && r <= 'z', '0' <= r && r <= '9':
		return false
	case r == '+', r == '/', r == '=':
		return false
	default:
		return true
	}
}

// MarshalText implements encoding.TextMarshaler with Serialize.
func (f *Filter) MarshalText() ([]byte, error) {
	return f.Serialize(), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The registry of f is
// kept when it is set, otherwise RegistryV1 is used.
func (f *Filter) UnmarshalText(b []byte) error {
	g, err := DeserializeWithRegistry(b, f.registryOrDefault())
	if err != nil {
		return err
	}
	*f = *g
	return nil
}

func (f *Filter) registryOrDefault() *Registry {
	if f.reg != nil {
		return f.reg
	}
	return RegistryV1
}

const (
	binaryMagic   = "PBF1"
	binaryVersion = 1

	// magic + format version + registry version
	binaryHeaderBytes = len(binaryMagic) + 2
)

// MarshalBinary implements encoding.BinaryMarshaler. Fields are length
// prefixed so no value can be confused with a separator:
//
//	"PBF1" | format version (u8) | registry version (u8) |
//	capacity (uvarint) | false positive target (float64 bits, BE) |
//	len(bits) (uvarint) | bits
func (f *Filter) MarshalBinary() ([]byte, error) {
	if f.reg == nil {
		return nil, errZeroFilter
	}
	b := make([]byte, 0, binaryHeaderBytes+2*binary.MaxVarintLen64+8+len(f.s))
	b = append(b, binaryMagic...)
	b = append(b, binaryVersion, f.reg.Version())
	b = appendUvarint(b, f.cfg.Capacity)
	var fb [8]byte
	binary.BigEndian.PutUint64(fb[:], math.Float64bits(f.cfg.FalsePositiveTarget))
	b = append(b, fb[:]...)
	b = appendUvarint(b, uint64(len(f.s)))
	b = append(b, f.s...)
	return b, nil
}

func appendUvarint(b []byte, v uint64) []byte {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	return append(b, buf[:n]...)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. The registry of f
// is kept when it is set, and the record must carry its version. Otherwise
// the registry is chosen by the version in the record.
func (f *Filter) UnmarshalBinary(b []byte) error {
	var (
		g   *Filter
		err error
	)
	if f.reg != nil {
		g, err = DecodeBinaryWithRegistry(b, f.reg)
	} else {
		g, err = DecodeBinary(b)
	}
	if err != nil {
		return err
	}
	*f = *g
	return nil
}

func checkBinaryHeader(b []byte) error {
	if len(b) < binaryHeaderBytes || string(b[:len(binaryMagic)]) != binaryMagic {
		return fmt.Errorf("bad magic: %w", ErrMalformedFilterState)
	}
	if v := b[len(binaryMagic)]; v != binaryVersion {
		return fmt.Errorf("unsupported format version: %d: %w", v, ErrMalformedFilterState)
	}
	return nil
}

// DecodeBinary decodes a binary record made by MarshalBinary, with the
// registry shipped with this package for the version in the record.
func DecodeBinary(b []byte) (*Filter, error) {
	if err := checkBinaryHeader(b); err != nil {
		return nil, err
	}
	rv := b[len(binaryMagic)+1]
	reg, ok := registryByVersion(rv)
	if !ok {
		return nil, fmt.Errorf("unknown registry version: %d: %w", rv, ErrMalformedFilterState)
	}
	return decodeBinaryBody(b[binaryHeaderBytes:], reg)
}

// DecodeBinaryWithRegistry decodes a binary record made by a filter which
// uses reg. The registry version in the record must be reg's.
func DecodeBinaryWithRegistry(b []byte, reg *Registry) (*Filter, error) {
	if reg == nil {
		reg = RegistryV1
	}
	if err := checkBinaryHeader(b); err != nil {
		return nil, err
	}
	if rv := b[len(binaryMagic)+1]; rv != reg.Version() {
		return nil, fmt.Errorf("registry version mismatch: want=%d got=%d: %w", reg.Version(), rv, ErrMalformedFilterState)
	}
	return decodeBinaryBody(b[binaryHeaderBytes:], reg)
}

func decodeBinaryBody(b []byte, reg *Registry) (*Filter, error) {
	capacity, n := binary.Uvarint(b)
	if n <= 0 {
		return nil, fmt.Errorf("truncated capacity: %w", ErrMalformedFilterState)
	}
	b = b[n:]
	if len(b) < 8 {
		return nil, fmt.Errorf("truncated false positive target: %w", ErrMalformedFilterState)
	}
	target := math.Float64frombits(binary.BigEndian.Uint64(b[:8]))
	b = b[8:]
	size, n := binary.Uvarint(b)
	if n <= 0 {
		return nil, fmt.Errorf("truncated bit array length: %w", ErrMalformedFilterState)
	}
	b = b[n:]
	if uint64(len(b)) != size {
		return nil, fmt.Errorf("bit array length mismatch: header=%d got=%d: %w", size, len(b), ErrMalformedFilterState)
	}
	return ReconstructWithRegistry(Config{
		Capacity:            capacity,
		FalsePositiveTarget: target,
	}, reg, b)
}
