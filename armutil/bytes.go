// Package armutil collects the small byte/big.Int conversion helpers this
// module's binary encodings share, adapted from the teacher's pkg/common
// utility package.
package armutil

import (
	"math/big"
)

// BigIntToBytes renders n as a fixed-size big-endian byte slice, left-padded
// with zeros. A nil n encodes as all zeros.
func BigIntToBytes(n *big.Int, size int) []byte {
	if n == nil {
		return make([]byte, size)
	}
	b := n.Bytes()
	if len(b) >= size {
		return b[len(b)-size:]
	}
	result := make([]byte, size)
	copy(result[size-len(b):], b)
	return result
}

// BytesToBigInt parses a big-endian byte slice into a big.Int.
func BytesToBigInt(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// Uint32Bytes renders w as 4 big-endian bytes.
func Uint32Bytes(w uint32) []byte {
	return []byte{byte(w >> 24), byte(w >> 16), byte(w >> 8), byte(w)}
}

// IsZeroBytes reports whether every byte in b is zero.
func IsZeroBytes(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// ConcatBytes concatenates every slice in order into one new slice.
func ConcatBytes(slices ...[]byte) []byte {
	total := 0
	for _, s := range slices {
		total += len(s)
	}
	result := make([]byte, 0, total)
	for _, s := range slices {
		result = append(result, s...)
	}
	return result
}
