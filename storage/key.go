package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// columnTag prefixes every column record so other record kinds can share the database.
const columnTag = 'c'

// KeySize is the length of an encoded column key: tag, world id, x and z.
const KeySize = 1 + 16 + 4 + 4

// Key addresses one column of one world.
type Key struct {
	World uuid.UUID
	X, Z  int32
}

// Bytes returns the database key. Keys of a world share a common prefix and
// sort by x, then z, with negative coordinates first.
func (k Key) Bytes() []byte {
	b := worldPrefix(k.World)
	b = binary.BigEndian.AppendUint32(b, flipSign(k.X))
	b = binary.BigEndian.AppendUint32(b, flipSign(k.Z))

	return b
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d,%d", k.World, k.X, k.Z)
}

// ParseKey decodes a key produced by Key.Bytes.
func ParseKey(data []byte) (Key, error) {
	if len(data) != KeySize || data[0] != columnTag {
		return Key{}, fmt.Errorf("invalid column key %x", data)
	}

	var k Key
	copy(k.World[:], data[1:17])
	k.X = int32(binary.BigEndian.Uint32(data[17:21]) ^ signBit) //nolint: gosec
	k.Z = int32(binary.BigEndian.Uint32(data[21:25]) ^ signBit) //nolint: gosec

	return k, nil
}

func worldPrefix(world uuid.UUID) []byte {
	b := make([]byte, 0, KeySize)
	b = append(b, columnTag)

	return append(b, world[:]...)
}

const signBit = 1 << 31

func flipSign(v int32) uint32 {
	return uint32(v) ^ signBit //nolint: gosec
}
