package mft

import (
	"encoding/binary"
	"time"
	"unicode/utf16"
)

// 100ns intervals between 1601-01-01 and the unix epoch.
const filetimeEpochDelta = 116444736000000000

func toFiletime(t time.Time) uint64 {
	return uint64(t.UnixNano()/100) + filetimeEpochDelta
}

func utf16Bytes(s string) []byte {
	result := []byte{}
	for _, c := range utf16.Encode([]rune(s)) {
		result = binary.LittleEndian.AppendUint16(result, c)
	}
	return result
}

func siPayload(created, modified time.Time, flags uint32) []byte {
	buf := make([]byte, 0x48)
	binary.LittleEndian.PutUint64(buf[0x00:], toFiletime(created))
	binary.LittleEndian.PutUint64(buf[0x08:], toFiletime(modified))
	binary.LittleEndian.PutUint64(buf[0x10:], toFiletime(modified))
	binary.LittleEndian.PutUint64(buf[0x18:], toFiletime(modified))
	binary.LittleEndian.PutUint32(buf[0x20:], flags)
	binary.LittleEndian.PutUint32(buf[0x34:], 0x101)
	binary.LittleEndian.PutUint64(buf[0x40:], 0x9988)
	return buf
}

func fnPayload(parent uint32, parent_seq uint16, name string, name_type uint8,
	created, modified time.Time, size uint64) []byte {
	name16 := utf16Bytes(name)
	buf := make([]byte, 0x42+len(name16))
	binary.LittleEndian.PutUint64(buf[0x00:], uint64(parent)|uint64(parent_seq)<<48)
	binary.LittleEndian.PutUint64(buf[0x08:], toFiletime(created))
	binary.LittleEndian.PutUint64(buf[0x10:], toFiletime(modified))
	binary.LittleEndian.PutUint64(buf[0x18:], toFiletime(modified))
	binary.LittleEndian.PutUint64(buf[0x20:], toFiletime(modified))
	binary.LittleEndian.PutUint64(buf[0x28:], (size+4095)&^4095)
	binary.LittleEndian.PutUint64(buf[0x30:], size)
	buf[0x40] = uint8(len(name16) / 2)
	buf[0x41] = name_type
	copy(buf[0x42:], name16)
	return buf
}

func reparsePayload(tag uint32, substitute, print string) []byte {
	sub16 := utf16Bytes(substitute)
	print16 := utf16Bytes(print)

	path_buffer := 16
	if tag == IO_REPARSE_TAG_SYMLINK {
		path_buffer = 20
	}

	buf := make([]byte, path_buffer+len(sub16)+len(print16))
	binary.LittleEndian.PutUint32(buf[0:], tag)
	binary.LittleEndian.PutUint16(buf[4:], uint16(len(buf)-8))
	binary.LittleEndian.PutUint16(buf[8:], 0)
	binary.LittleEndian.PutUint16(buf[10:], uint16(len(sub16)))
	binary.LittleEndian.PutUint16(buf[12:], uint16(len(sub16)))
	binary.LittleEndian.PutUint16(buf[14:], uint16(len(print16)))
	copy(buf[path_buffer:], sub16)
	copy(buf[path_buffer+len(sub16):], print16)
	return buf
}

type testAttribute struct {
	attr_type uint32
	id        uint16
	name      string
	content   []byte
}

func align8(x int) int {
	return (x + 7) &^ 7
}

// buildRecord lays out a 1024 byte FILE record with resident
// attributes and a valid fixup table.
func buildRecord(sequence, flags uint16, base uint64, attrs []testAttribute) []byte {
	buf := make([]byte, 1024)
	copy(buf, "FILE")
	binary.LittleEndian.PutUint16(buf[0x04:], 0x30)
	binary.LittleEndian.PutUint16(buf[0x06:], 3)
	binary.LittleEndian.PutUint64(buf[0x08:], 0x4455)
	binary.LittleEndian.PutUint16(buf[0x10:], sequence)
	binary.LittleEndian.PutUint16(buf[0x12:], 1)
	binary.LittleEndian.PutUint16(buf[0x14:], 0x38)
	binary.LittleEndian.PutUint16(buf[0x16:], flags)
	binary.LittleEndian.PutUint32(buf[0x1C:], 1024)
	binary.LittleEndian.PutUint64(buf[0x20:], base)
	binary.LittleEndian.PutUint16(buf[0x28:], uint16(len(attrs)+1))

	offset := 0x38
	for _, attr := range attrs {
		name16 := utf16Bytes(attr.name)
		content_offset := align8(0x18 + len(name16))
		length := align8(content_offset + len(attr.content))

		binary.LittleEndian.PutUint32(buf[offset:], attr.attr_type)
		binary.LittleEndian.PutUint32(buf[offset+4:], uint32(length))
		buf[offset+8] = 0
		buf[offset+9] = uint8(len(name16) / 2)
		binary.LittleEndian.PutUint16(buf[offset+10:], 0x18)
		binary.LittleEndian.PutUint16(buf[offset+14:], attr.id)
		binary.LittleEndian.PutUint32(buf[offset+16:], uint32(len(attr.content)))
		binary.LittleEndian.PutUint16(buf[offset+20:], uint16(content_offset))
		copy(buf[offset+0x18:], name16)
		copy(buf[offset+content_offset:], attr.content)

		offset += length
	}
	binary.LittleEndian.PutUint32(buf[offset:], 0xFFFFFFFF)
	binary.LittleEndian.PutUint32(buf[0x18:], uint32(offset+8))

	// Move the last two bytes of each sector into the fixup array.
	binary.LittleEndian.PutUint16(buf[0x30:], 0x0001)
	copy(buf[0x32:0x34], buf[510:512])
	copy(buf[0x34:0x36], buf[1022:1024])
	binary.LittleEndian.PutUint16(buf[510:], 0x0001)
	binary.LittleEndian.PutUint16(buf[1022:], 0x0001)

	return buf
}
