package walcore

import (
	"encoding/binary"
	"hash/crc32"
)

// EntryHeader is the 12-byte, little-endian header stored at the first
// block of every entry.
type EntryHeader struct {
	CRC      uint32
	Rollover uint32
	Len      uint32
}

// EncodeEntry allocates an aligned buffer sized to HeaderSize+len(payload)
// rounded up to blocks, writes the header and payload, and fills in the
// CRC over bytes [4, HeaderSize+len).
func EncodeEntry(payload []byte, rollover uint32) *AlignedBuffer {
	buf := NewAlignedBuffer(HeaderSize + len(payload))
	EncodeEntryInto(buf, payload, rollover)
	return buf
}

// EncodeEntryInto writes a header and payload into a caller-supplied
// buffer (typically pool-recycled and carrying stale bytes), zeroing
// everything past the payload before filling in the CRC. buf must be at
// least HeaderSize+len(payload) bytes.
func EncodeEntryInto(buf *AlignedBuffer, payload []byte, rollover uint32) {
	data := buf.Bytes()
	entryLen := HeaderSize + len(payload)

	binary.LittleEndian.PutUint32(data[0:4], 0)
	binary.LittleEndian.PutUint32(data[4:8], rollover)
	binary.LittleEndian.PutUint32(data[8:12], uint32(len(payload)))
	copy(data[HeaderSize:entryLen], payload)
	for i := entryLen; i < len(data); i++ {
		data[i] = 0
	}

	crc := crc32.ChecksumIEEE(data[4:entryLen])
	binary.LittleEndian.PutUint32(data[0:4], crc)
}

// DecodeHeader interprets the first HeaderSize bytes of block as an
// EntryHeader without checking the CRC.
func DecodeHeader(block []byte) (EntryHeader, bool) {
	if len(block) < HeaderSize {
		return EntryHeader{}, false
	}
	return EntryHeader{
		CRC:      binary.LittleEndian.Uint32(block[0:4]),
		Rollover: binary.LittleEndian.Uint32(block[4:8]),
		Len:      binary.LittleEndian.Uint32(block[8:12]),
	}, true
}

// VerifyCRC reports whether entry (header through payload, HeaderSize+len
// bytes) carries a CRC matching its declared header.
func VerifyCRC(header EntryHeader, entry []byte) bool {
	if len(entry) < int(HeaderSize+header.Len) {
		return false
	}
	computed := crc32.ChecksumIEEE(entry[4 : HeaderSize+int(header.Len)])
	return computed == header.CRC
}

// DecodeEntry decodes and validates a full entry (HeaderSize+len bytes).
// Validity requires len > 0 and a matching CRC; a zero-length header marks
// the end of initialized entries and is reported as invalid.
func DecodeEntry(entry []byte) (EntryHeader, bool) {
	header, ok := DecodeHeader(entry)
	if !ok || header.Len == 0 {
		return header, false
	}
	return header, VerifyCRC(header, entry)
}

// NumBlocks returns the number of blocks an entry with this header occupies.
func NumBlocks(header EntryHeader) uint32 {
	return uint32(NumBlocksForBytes(HeaderSize + int(header.Len)))
}
