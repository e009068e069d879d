package artifact

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/Velocidex/ordereddict"
	"github.com/pkg/errors"
	"www.velocidex.com/golang/go-ntfs/parser"
)

const (
	BootSectorSize = 512

	// Not part of the boot sector profile.
	reservedSectorsOffset = 0x0E
)

// BootInfo summarizes an NTFS $Boot file (the volume boot sector).
type BootInfo struct {
	EntryPoint                  string
	Signature                   string
	BytesPerSector              int
	SectorsPerCluster           int
	ClusterSize                 int
	ReservedSectors             int64
	TotalSectors                int64
	MftClusterBlockNumber       int64
	MftMirrClusterBlockNumber   int64
	MftEntrySize                int
	IndexEntrySize              int
	VolumeSerialNumberRaw       string
	VolumeSerialNumber          string
	VolumeSerialNumber32        string
	VolumeSerialNumber32Reverse string
	SectorSignature             string
}

func ParseBoot(sector []byte) (*BootInfo, error) {
	if len(sector) < BootSectorSize {
		return nil, errors.Errorf("Boot sector too short: %v bytes", len(sector))
	}

	profile := parser.NewNTFSProfile()
	reader := bytes.NewReader(sector[:BootSectorSize])
	boot := profile.NTFS_BOOT_SECTOR(reader, 0)

	oem_name := boot.Oemname()
	if !strings.HasPrefix(oem_name, "NTFS") {
		return nil, errors.New("Boot sector has no NTFS signature")
	}

	magic := boot.Magic()
	self := &BootInfo{
		EntryPoint:     hexBytes(sector[0:3]),
		Signature:      strings.TrimRight(oem_name, " \x00"),
		BytesPerSector: int(boot.Sector_size()),
		SectorsPerCluster: sectorsPerCluster(parser.ParseUint8(
			reader, profile.Off_NTFS_BOOT_SECTOR__cluster_size)),
		ReservedSectors: int64(parser.ParseUint16(
			reader, reservedSectorsOffset)),
		TotalSectors: boot.VolumeSize(),
		MftClusterBlockNumber: int64(parser.ParseUint64(
			reader, profile.Off_NTFS_BOOT_SECTOR__mft_cluster)),
		MftMirrClusterBlockNumber: int64(parser.ParseUint64(
			reader, profile.Off_NTFS_BOOT_SECTOR__mirror_mft_cluster)),
		SectorSignature: fmt.Sprintf("%02X-%02X", magic&0xFF, magic>>8),
	}
	self.ClusterSize = self.BytesPerSector * self.SectorsPerCluster

	// The profile's RecordSize does not know the large cluster
	// encoding so both sizes are derived from our cluster size.
	self.MftEntrySize = recordSize(parser.ParseInt8(
		reader, profile.Off_NTFS_BOOT_SECTOR__mft_record_size), self.ClusterSize)
	self.IndexEntrySize = recordSize(
		int8(boot.Index_record_size()), self.ClusterSize)

	serial := []byte(boot.Serial())
	if len(serial) != 8 {
		return nil, errors.New("Boot sector has no volume serial")
	}
	serial32 := binary.LittleEndian.Uint32(serial)
	self.VolumeSerialNumberRaw = hexBytes(serial)
	self.VolumeSerialNumber = fmt.Sprintf("%016X", binary.LittleEndian.Uint64(serial))
	self.VolumeSerialNumber32 = fmt.Sprintf("%04X-%04X", serial32>>16, serial32&0xFFFF)
	reversed := binary.BigEndian.Uint32(serial)
	self.VolumeSerialNumber32Reverse = fmt.Sprintf("%04X-%04X", reversed>>16, reversed&0xFFFF)

	return self, nil
}

// Row gives the fields in output column order.
func (self *BootInfo) Row() *ordereddict.Dict {
	return ordereddict.NewDict().
		Set("EntryPoint", self.EntryPoint).
		Set("Signature", self.Signature).
		Set("BytesPerSector", self.BytesPerSector).
		Set("SectorsPerCluster", self.SectorsPerCluster).
		Set("ClusterSize", self.ClusterSize).
		Set("ReservedSectors", self.ReservedSectors).
		Set("TotalSectors", self.TotalSectors).
		Set("MftClusterBlockNumber", self.MftClusterBlockNumber).
		Set("MftMirrClusterBlockNumber", self.MftMirrClusterBlockNumber).
		Set("MftEntrySize", self.MftEntrySize).
		Set("IndexEntrySize", self.IndexEntrySize).
		Set("VolumeSerialNumberRaw", self.VolumeSerialNumberRaw).
		Set("VolumeSerialNumber", self.VolumeSerialNumber).
		Set("VolumeSerialNumber32", self.VolumeSerialNumber32).
		Set("VolumeSerialNumber32Reverse", self.VolumeSerialNumber32Reverse).
		Set("SectorSignature", self.SectorSignature)
}

// Values above 0x80 encode a power of two on large cluster volumes.
func sectorsPerCluster(value byte) int {
	if value > 0x80 {
		return 1 << uint(256-int(value))
	}
	return int(value)
}

// Positive values count clusters, negative ones are a power of two
// in bytes.
func recordSize(value int8, cluster_size int) int {
	if value > 0 {
		return int(value) * cluster_size
	}
	return 1 << uint(-int(value))
}

func hexBytes(data []byte) string {
	result := make([]string, 0, len(data))
	for _, b := range data {
		result = append(result, fmt.Sprintf("%02X", b))
	}
	return strings.Join(result, "-")
}
