// Package endian provides the byte order engines used by the typed serializers.
//
// The wire format of bytecodec is big-endian ("network order") for every fixed-width
// scalar. Values are held in host order in memory; the engine performs the
// normalization when a scalar is appended to or read from a buffer.
//
//	engine := endian.GetNetworkEngine()
//	buf = engine.AppendUint32(buf, 0xCAFEBABE) // 0xCA 0xFE 0xBA 0xBE
//
// A little-endian engine is available for callers that need to interoperate with
// host-order peers, but nothing in bytecodec writes little-endian data by default.
//
// All functions are safe for concurrent use; engines are immutable and stateless.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
//
// binary.BigEndian and binary.LittleEndian both satisfy it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness reports the host byte order.
func CheckEndianness() binary.ByteOrder {
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))

	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

func IsNativeBigEndian() bool {
	return CheckEndianness() == binary.BigEndian
}

// IsNetworkOrderNative reports whether host order already matches the wire order,
// in which case normalization is a plain copy.
func IsNetworkOrderNative() bool {
	return IsNativeBigEndian()
}

// GetNetworkEngine returns the engine used for the bytecodec wire format.
func GetNetworkEngine() EndianEngine {
	return binary.BigEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}
