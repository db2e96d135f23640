package endian

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestCheckEndianness(t *testing.T) {
	var probe uint16 = 0x0102
	first := (*[2]byte)(unsafe.Pointer(&probe))[0]

	switch first {
	case 0x01:
		require.Equal(t, binary.BigEndian, CheckEndianness())
		require.True(t, IsNativeBigEndian())
	case 0x02:
		require.Equal(t, binary.LittleEndian, CheckEndianness())
		require.True(t, IsNativeLittleEndian())
	default:
		require.Failf(t, "unexpected byte value", "got: %v", first)
	}
	require.NotEqual(t, IsNativeBigEndian(), IsNativeLittleEndian())
}

func TestCompareNativeEndian(t *testing.T) {
	if IsNativeLittleEndian() {
		require.True(t, CompareNativeEndian(GetLittleEndianEngine()))
		require.False(t, CompareNativeEndian(GetBigEndianEngine()))
	} else {
		require.True(t, CompareNativeEndian(GetBigEndianEngine()))
		require.False(t, CompareNativeEndian(GetLittleEndianEngine()))
	}
}

func TestNetworkEngineIsBigEndian(t *testing.T) {
	engine := GetNetworkEngine()
	buf := engine.AppendUint64(nil, 0x0102030405060708)

	require.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, buf)
	require.True(t, IsBigEndian(engine))
	require.False(t, IsBigEndian(GetLittleEndianEngine()))
}

func TestEngineRoundTrip(t *testing.T) {
	for _, engine := range []EndianEngine{GetLittleEndianEngine(), GetBigEndianEngine()} {
		buf := engine.AppendUint64(nil, 0xdeadbeefcafef00d)
		require.Equal(t, uint64(0xdeadbeefcafef00d), engine.Uint64(buf))
	}
}
