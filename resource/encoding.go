package resource

import (
	"encoding/binary"

	"github.com/anoma/arm-go/armerrors"
)

// encodedSize is the fixed wire size of an encoded Resource: six 32-byte
// digests, one 8-byte quantity, and one 1-byte ephemeral flag.
const encodedSize = 6*DigestSize + 8 + 1

// Encode renders r as a fixed-length, big-endian byte string in field
// declaration order. This is the canonical form hashed and transmitted
// wherever a Resource needs to cross a process boundary.
func (r Resource) Encode() []byte {
	buf := make([]byte, 0, encodedSize)
	buf = append(buf, r.LogicRef[:]...)
	buf = append(buf, r.LabelRef[:]...)
	qb := make([]byte, 8)
	binary.BigEndian.PutUint64(qb, r.Quantity)
	buf = append(buf, qb...)
	buf = append(buf, r.ValueRef[:]...)
	buf = append(buf, boolByte(r.IsEphemeral)...)
	buf = append(buf, r.Nonce[:]...)
	nkc := r.NKCommitment.Digest()
	buf = append(buf, nkc[:]...)
	buf = append(buf, r.RandSeed[:]...)
	return buf
}

// Decode parses the wire form produced by Encode.
func Decode(b []byte) (Resource, error) {
	if len(b) != encodedSize {
		return Resource{}, armerrors.New(armerrors.KindMissingField,
			"resource: wrong encoded length")
	}
	var r Resource
	off := 0
	copy(r.LogicRef[:], b[off:off+DigestSize])
	off += DigestSize
	copy(r.LabelRef[:], b[off:off+DigestSize])
	off += DigestSize
	r.Quantity = binary.BigEndian.Uint64(b[off : off+8])
	off += 8
	copy(r.ValueRef[:], b[off:off+DigestSize])
	off += DigestSize
	r.IsEphemeral = b[off] != 0
	off++
	copy(r.Nonce[:], b[off:off+DigestSize])
	off += DigestSize
	var nkc Digest
	copy(nkc[:], b[off:off+DigestSize])
	r.NKCommitment = NullifierKeyCommitmentFromDigest(nkc)
	off += DigestSize
	copy(r.RandSeed[:], b[off:off+DigestSize])
	return r, nil
}
