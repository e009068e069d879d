package artifact

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func bootSector() []byte {
	sector := make([]byte, BootSectorSize)
	copy(sector, []byte("\xeb\x52\x90NTFS    "))
	binary.LittleEndian.PutUint16(sector[0x0B:], 512)
	sector[0x0D] = 8
	binary.LittleEndian.PutUint64(sector[0x28:], 0x3FFFFFF)
	binary.LittleEndian.PutUint64(sector[0x30:], 786432)
	binary.LittleEndian.PutUint64(sector[0x38:], 2)
	sector[0x40] = 0xF6
	sector[0x44] = 1
	copy(sector[0x48:], []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88})
	sector[0x1FE] = 0x55
	sector[0x1FF] = 0xAA
	return sector
}

func TestParseBoot(t *testing.T) {
	assert := assert.New(t)

	boot, err := ParseBoot(bootSector())
	assert.NoError(err)

	assert.Equal("EB-52-90", boot.EntryPoint)
	assert.Equal("NTFS", boot.Signature)
	assert.Equal(512, boot.BytesPerSector)
	assert.Equal(8, boot.SectorsPerCluster)
	assert.Equal(4096, boot.ClusterSize)
	assert.Equal(int64(0x3FFFFFF), boot.TotalSectors)
	assert.Equal(int64(786432), boot.MftClusterBlockNumber)
	assert.Equal(int64(2), boot.MftMirrClusterBlockNumber)
	assert.Equal(1024, boot.MftEntrySize)
	assert.Equal(4096, boot.IndexEntrySize)
	assert.Equal("11-22-33-44-55-66-77-88", boot.VolumeSerialNumberRaw)
	assert.Equal("8877665544332211", boot.VolumeSerialNumber)
	assert.Equal("4433-2211", boot.VolumeSerialNumber32)
	assert.Equal("1122-3344", boot.VolumeSerialNumber32Reverse)
	assert.Equal("55-AA", boot.SectorSignature)

	row := boot.Row()
	assert.Equal("EntryPoint", row.Keys()[0])
	assert.Equal("SectorSignature", row.Keys()[len(row.Keys())-1])
	assert.Equal(16, len(row.Keys()))
}

func TestParseBootLargeClusters(t *testing.T) {
	sector := bootSector()
	sector[0x0D] = 0xF4 // 2^12 sectors
	boot, err := ParseBoot(sector)
	assert.NoError(t, err)
	assert.Equal(t, 4096, boot.SectorsPerCluster)
}

func TestParseBootRejectsGarbage(t *testing.T) {
	_, err := ParseBoot(make([]byte, 100))
	assert.Error(t, err)

	_, err = ParseBoot(make([]byte, BootSectorSize))
	assert.Error(t, err)
}
