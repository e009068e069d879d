package artifact

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Velocidex/ordereddict"
	"github.com/pkg/errors"
)

const (
	// $SDS is written in 256kb blocks, each followed by a mirror
	// copy of itself.
	sdsBlockSize = 0x40000

	sdsHeaderSize     = 20
	sdsMaxEntrySize   = 0x10000
	descriptorMinSize = 20

	SE_DACL_PRESENT = 0x0004
	SE_SACL_PRESENT = 0x0010
)

var controlNames = []struct {
	bit  uint16
	name string
}{
	{0x0001, "SE_OWNER_DEFAULTED"},
	{0x0002, "SE_GROUP_DEFAULTED"},
	{0x0004, "SE_DACL_PRESENT"},
	{0x0008, "SE_DACL_DEFAULTED"},
	{0x0010, "SE_SACL_PRESENT"},
	{0x0020, "SE_SACL_DEFAULTED"},
	{0x0100, "SE_DACL_AUTO_INHERIT_REQ"},
	{0x0200, "SE_SACL_AUTO_INHERIT_REQ"},
	{0x0400, "SE_DACL_AUTO_INHERITED"},
	{0x0800, "SE_SACL_AUTO_INHERITED"},
	{0x1000, "SE_DACL_PROTECTED"},
	{0x2000, "SE_SACL_PROTECTED"},
	{0x4000, "SE_RM_CONTROL_VALID"},
	{0x8000, "SE_SELF_RELATIVE"},
}

var aceTypeNames = map[byte]string{
	0x00: "AccessAllowed",
	0x01: "AccessDenied",
	0x02: "SystemAudit",
	0x03: "SystemAlarm",
	0x04: "AccessAllowedCompound",
	0x05: "AccessAllowedObject",
	0x06: "AccessDeniedObject",
	0x07: "SystemAuditObject",
	0x08: "SystemAlarmObject",
	0x09: "AccessAllowedCallback",
	0x0A: "AccessDeniedCallback",
	0x0B: "AccessAllowedCallbackObject",
	0x0C: "AccessDeniedCallbackObject",
	0x0D: "SystemAuditCallback",
	0x0E: "SystemAlarmCallback",
	0x0F: "SystemAuditCallbackObject",
	0x10: "SystemAlarmCallbackObject",
	0x11: "SystemMandatoryLabel",
	0x12: "SystemResourceAttribute",
	0x13: "SystemScopedPolicyId",
}

// SdsEntry is one security descriptor stored in $Secure:$SDS.
type SdsEntry struct {
	Hash       uint32
	Id         uint32
	Offset     uint64
	FileOffset int64

	OwnerSid string
	GroupSid string
	Control  uint16

	SaclAceTypes []string
	DaclAceTypes []string
}

func (self *SdsEntry) Row() *ordereddict.Dict {
	return ordereddict.NewDict().
		Set("Hash", fmt.Sprintf("%08X", self.Hash)).
		Set("Id", self.Id).
		Set("Offset", self.Offset).
		Set("OwnerSid", self.OwnerSid).
		Set("GroupSid", self.GroupSid).
		Set("Control", ControlNames(self.Control)).
		Set("SaclAceCount", len(self.SaclAceTypes)).
		Set("UniqueSaclAceTypes", uniqueJoin(self.SaclAceTypes)).
		Set("DaclAceCount", len(self.DaclAceTypes)).
		Set("UniqueDaclAceTypes", uniqueJoin(self.DaclAceTypes)).
		Set("FileOffset", self.FileOffset)
}

func ControlNames(control uint16) string {
	result := []string{}
	for _, item := range controlNames {
		if control&item.bit != 0 {
			result = append(result, item.name)
		}
	}
	return strings.Join(result, "|")
}

func uniqueJoin(names []string) string {
	seen := make(map[string]bool)
	result := []string{}
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}
	sort.Strings(result)
	return strings.Join(result, "|")
}

// ParseSds walks the primary blocks of a $SDS stream. Mirror blocks
// are skipped and an empty header ends the entries of its block.
func ParseSds(reader io.ReaderAt, size int64,
	cb func(entry *SdsEntry) error) error {
	header := make([]byte, sdsHeaderSize)

	offset := int64(0)
	for offset+sdsHeaderSize <= size {
		block := offset / sdsBlockSize
		if block%2 == 1 {
			offset = (block + 1) * sdsBlockSize
			continue
		}

		n, err := reader.ReadAt(header, offset)
		if n < sdsHeaderSize {
			if err != nil && err != io.EOF {
				return errors.Wrap(err, "ParseSds")
			}
			break
		}

		hash := binary.LittleEndian.Uint32(header[0:])
		id := binary.LittleEndian.Uint32(header[4:])
		entry_offset := binary.LittleEndian.Uint64(header[8:])
		length := int64(binary.LittleEndian.Uint32(header[16:]))

		if hash == 0 && id == 0 && length == 0 {
			offset = (block + 1) * sdsBlockSize
			continue
		}

		if entry_offset != uint64(offset) ||
			length < sdsHeaderSize+descriptorMinSize ||
			length > sdsMaxEntrySize {
			offset += 16
			continue
		}

		descriptor := make([]byte, length-sdsHeaderSize)
		n, err = reader.ReadAt(descriptor, offset+sdsHeaderSize)
		if n < len(descriptor) && err != nil && err != io.EOF {
			return errors.Wrap(err, "ParseSds")
		}

		entry := &SdsEntry{
			Hash:       hash,
			Id:         id,
			Offset:     entry_offset,
			FileOffset: offset,
		}
		parseDescriptor(descriptor[:n], entry)

		err = cb(entry)
		if err != nil {
			return err
		}

		offset = (offset + length + 15) &^ 15
	}

	return nil
}

// parseDescriptor decodes a self relative SECURITY_DESCRIPTOR. Parts
// pointing outside the buffer are left empty.
func parseDescriptor(buf []byte, entry *SdsEntry) {
	if len(buf) < descriptorMinSize {
		return
	}

	entry.Control = binary.LittleEndian.Uint16(buf[2:])
	owner := int(binary.LittleEndian.Uint32(buf[4:]))
	group := int(binary.LittleEndian.Uint32(buf[8:]))
	sacl := int(binary.LittleEndian.Uint32(buf[12:]))
	dacl := int(binary.LittleEndian.Uint32(buf[16:]))

	entry.OwnerSid = parseSid(buf, owner)
	entry.GroupSid = parseSid(buf, group)

	if entry.Control&SE_SACL_PRESENT != 0 {
		entry.SaclAceTypes = parseAceTypes(buf, sacl)
	}
	if entry.Control&SE_DACL_PRESENT != 0 {
		entry.DaclAceTypes = parseAceTypes(buf, dacl)
	}
}

// parseSid renders a SID as S-R-A-S1-S2...
func parseSid(buf []byte, offset int) string {
	if offset == 0 || offset+8 > len(buf) {
		return ""
	}

	revision := buf[offset]
	count := int(buf[offset+1])
	if offset+8+count*4 > len(buf) {
		return ""
	}

	authority := uint64(0)
	for _, b := range buf[offset+2 : offset+8] {
		authority = authority<<8 | uint64(b)
	}

	result := fmt.Sprintf("S-%d-%d", revision, authority)
	for i := 0; i < count; i++ {
		sub := binary.LittleEndian.Uint32(buf[offset+8+i*4:])
		result += fmt.Sprintf("-%d", sub)
	}
	return result
}

func parseAceTypes(buf []byte, offset int) []string {
	if offset == 0 || offset+8 > len(buf) {
		return nil
	}

	count := int(binary.LittleEndian.Uint16(buf[offset+4:]))
	result := make([]string, 0, count)

	ace := offset + 8
	for i := 0; i < count; i++ {
		if ace+4 > len(buf) {
			break
		}

		ace_type := buf[ace]
		name, pres := aceTypeNames[ace_type]
		if !pres {
			name = fmt.Sprintf("Unknown(%#x)", ace_type)
		}
		result = append(result, name)

		size := int(binary.LittleEndian.Uint16(buf[ace+2:]))
		if size < 4 {
			break
		}
		ace += size
	}
	return result
}
