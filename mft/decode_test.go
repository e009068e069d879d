package mft

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"www.velocidex.com/golang/go-ntfs/parser"
	"www.velocidex.com/golang/mftecmd/records"
)

var (
	t2019 = time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	t2020 = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	profile = parser.NewNTFSProfile()
)

func payloadReader(buf []byte) (*bytes.Reader, int64) {
	return bytes.NewReader(buf), int64(len(buf))
}

func TestDecodeStandardInformation(t *testing.T) {
	assert := assert.New(t)

	// 100ns resolution survives.
	precise := time.Date(2021, 3, 4, 5, 6, 7, 1234500, time.UTC)

	reader, size := payloadReader(siPayload(precise, t2019, 0x26))
	si, err := decodeStandardInformation(profile, 0, reader, size)
	assert.NoError(err)
	assert.Equal(precise, si.Created)
	assert.Equal(t2019, si.ContentModified)
	assert.Equal(uint32(0x26), si.Flags)
	assert.Equal(uint32(0x101), si.SecurityId)
	assert.Equal("Hidden|System|Archive", records.SiFlagNames(si.Flags))

	// NTFS 1.2 style attribute without the extended fields.
	reader, size = payloadReader(siPayload(t2020, t2019, 0)[:0x30])
	si, err = decodeStandardInformation(profile, 0, reader, size)
	assert.NoError(err)
	assert.Equal(uint32(0), si.SecurityId)
	assert.Equal(uint64(0), si.UpdateSequenceNumber)

	reader, size = payloadReader(make([]byte, 10))
	_, err = decodeStandardInformation(profile, 0, reader, size)
	assert.Error(err)
}

// Journal offsets grow past 4GB on busy volumes.
func TestDecodeStandardInformationWideUsn(t *testing.T) {
	buf := siPayload(t2020, t2019, 0)
	buf[0x44] = 0x02

	reader, size := payloadReader(buf)
	si, err := decodeStandardInformation(profile, 0, reader, size)
	assert.NoError(t, err)
	assert.Equal(t, uint64(0x200009988), si.UpdateSequenceNumber)
}

func TestDecodeFileName(t *testing.T) {
	assert := assert.New(t)

	reader, size := payloadReader(
		fnPayload(0x1234, 7, "Größe.txt", 1, t2019, t2020, 100))
	fn, err := decodeFileName(profile, 3, reader, size)
	assert.NoError(err)
	assert.Equal(uint16(3), fn.AttributeId)
	assert.Equal(uint32(0x1234), fn.ParentEntryNumber)
	assert.Equal(uint16(7), fn.ParentSequenceNumber)
	assert.Equal("Größe.txt", fn.Name)
	assert.Equal(records.NameTypeWin32, fn.NameType)
	assert.Equal(t2019, fn.Created)
	assert.Equal(t2020, fn.ContentModified)
	assert.Equal(uint64(100), fn.LogicalSize)
	assert.Equal(uint64(4096), fn.AllocatedSize)

	// Name length pointing past the end.
	payload := fnPayload(5, 5, "abc", 1, t2019, t2020, 0)
	reader, size = payloadReader(payload[:len(payload)-2])
	_, err = decodeFileName(profile, 3, reader, size)
	assert.Error(err)
}

func TestDecodeReparsePoint(t *testing.T) {
	assert := assert.New(t)

	reader, size := payloadReader(reparsePayload(
		IO_REPARSE_TAG_MOUNT_POINT, `\??\D:\Data`, `D:\Data`))
	rp, err := decodeReparsePoint(1, reader, size)
	assert.NoError(err)
	assert.Equal(`\??\D:\Data`, rp.SubstituteName)
	assert.Equal(`D:\Data`, rp.PrintName)

	reader, size = payloadReader(reparsePayload(
		IO_REPARSE_TAG_SYMLINK, `\??\C:\Target`, `C:\Target`))
	rp, err = decodeReparsePoint(1, reader, size)
	assert.NoError(err)
	assert.Equal(`\??\C:\Target`, rp.SubstituteName)

	// Other tags are surfaced without a target.
	reader, size = payloadReader(reparsePayload(0x8000001B, "x", "y"))
	rp, err = decodeReparsePoint(1, reader, size)
	assert.NoError(err)
	assert.Equal(uint32(0x8000001B), rp.Tag)
	assert.Equal("", rp.SubstituteName)

	// Offsets past the buffer.
	payload := reparsePayload(IO_REPARSE_TAG_MOUNT_POINT, `\??\D:\Data`, `D:\Data`)
	reader, size = payloadReader(payload[:20])
	_, err = decodeReparsePoint(1, reader, size)
	assert.Error(err)
}

func TestDecodeObjectId(t *testing.T) {
	reader, size := payloadReader([]byte{
		0x33, 0x22, 0x11, 0x00, 0x55, 0x44, 0x77, 0x66,
		0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff})
	oid, err := decodeObjectId(profile, 2, reader, size)
	assert.NoError(t, err)
	assert.Equal(t, "00112233-4455-6677-8899-aabbccddeeff", oid.FileDroid)

	reader, size = payloadReader([]byte{1, 2, 3})
	_, err = decodeObjectId(profile, 2, reader, size)
	assert.Error(t, err)
}

func TestDecodePayload(t *testing.T) {
	reader, size := payloadReader(fnPayload(5, 5, "x", 3, t2019, t2019, 0))
	attr, err := decodePayload(profile, records.ATTR_TYPE_FILE_NAME, 4,
		reader, size)
	assert.NoError(t, err)
	assert.IsType(t, &records.FileName{}, attr)

	_, err = decodePayload(profile, records.ATTR_TYPE_DATA, 4,
		bytes.NewReader(nil), 0)
	assert.Error(t, err)
}
