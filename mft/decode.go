package mft

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"www.velocidex.com/golang/go-ntfs/parser"
	"www.velocidex.com/golang/mftecmd/records"
)

const (
	IO_REPARSE_TAG_MOUNT_POINT = 0xA0000003
	IO_REPARSE_TAG_SYMLINK     = 0xA000000C

	// Size of $STANDARD_INFORMATION before NTFS 3.0 added the
	// owner, security and USN fields.
	siShortSize = 0x30
	siFullSize  = 0x48

	// The fixed part of $FILE_NAME before the name.
	fnFixedSize = 0x42

	guidSize = 16
)

var errShortPayload = errors.New("Attribute payload too short")

// decodePayload decodes the resident content of the attribute kinds
// we read the payload of. reader holds exactly size bytes of content.
func decodePayload(profile *parser.NTFSProfile,
	attr_type records.AttributeType, id uint16,
	reader io.ReaderAt, size int64) (records.Attribute, error) {
	switch attr_type {
	case records.ATTR_TYPE_STANDARD_INFORMATION:
		return decodeStandardInformation(profile, id, reader, size)
	case records.ATTR_TYPE_FILE_NAME:
		return decodeFileName(profile, id, reader, size)
	case records.ATTR_TYPE_OBJECT_ID:
		return decodeObjectId(profile, id, reader, size)
	case records.ATTR_TYPE_REPARSE_POINT:
		return decodeReparsePoint(id, reader, size)
	}
	return nil, errors.Errorf("No decoder for %v", attr_type)
}

func decodeStandardInformation(profile *parser.NTFSProfile, id uint16,
	reader io.ReaderAt, size int64) (*records.StandardInformation, error) {
	if size < siShortSize {
		return nil, errShortPayload
	}

	si := profile.STANDARD_INFORMATION(reader, 0)
	result := &records.StandardInformation{
		AttributeId:     id,
		Created:         si.Create_time().Time,
		ContentModified: si.File_altered_time().Time,
		RecordModified:  si.Mft_altered_time().Time,
		LastAccessed:    si.File_accessed_time().Time,
		Flags:           uint32(si.Flags().Value),
	}

	if size >= siFullSize {
		result.SecurityId = si.Sid()

		// The profile types the USN as 32 bits but the field is a
		// full 64 bit journal offset.
		result.UpdateSequenceNumber = parser.ParseUint64(
			reader, profile.Off_STANDARD_INFORMATION_Usn)
	}

	return result, nil
}

func decodeFileName(profile *parser.NTFSProfile, id uint16,
	reader io.ReaderAt, size int64) (*records.FileName, error) {
	if size < fnFixedSize {
		return nil, errShortPayload
	}

	fn := profile.FILE_NAME(reader, 0)
	name_length := int64(parser.ParseUint8(
		reader, profile.Off_FILE_NAME__length_of_name)) * 2
	if size < profile.Off_FILE_NAME_name+name_length {
		return nil, errShortPayload
	}

	return &records.FileName{
		AttributeId:          id,
		ParentEntryNumber:    uint32(fn.MftReference()),
		ParentSequenceNumber: fn.Seq_num(),
		Created:              fn.Created().Time,
		ContentModified:      fn.File_modified().Time,
		RecordModified:       fn.Mft_modified().Time,
		LastAccessed:         fn.File_accessed().Time,
		AllocatedSize:        fn.Allocated_size(),
		LogicalSize:          fn.FilenameSize(),
		Flags:                uint32(fn.Flags().Value),
		ReparseValue:         fn.Reparse_value(),
		NameType:             records.NameType(fn.NameType().Value),
		Name:                 fn.Name(),
	}, nil
}

func decodeObjectId(profile *parser.NTFSProfile, id uint16,
	reader io.ReaderAt, size int64) (*records.ObjectId, error) {
	if size < guidSize {
		return nil, errShortPayload
	}

	guid := profile.GUID(reader, 0)
	return &records.ObjectId{
		AttributeId: id,
		FileDroid:   strings.Trim(guid.AsString(), "{}"),
	}, nil
}

// Only mount points and symlinks carry a target we can surface. The
// reparse buffer has no type in the profile so it is laid out here.
func decodeReparsePoint(id uint16,
	reader io.ReaderAt, size int64) (*records.ReparsePoint, error) {
	if size < 8 {
		return nil, errShortPayload
	}

	result := &records.ReparsePoint{
		AttributeId: id,
		Tag:         parser.ParseUint32(reader, 0),
	}

	var path_buffer int64
	switch result.Tag {
	case IO_REPARSE_TAG_MOUNT_POINT:
		path_buffer = 16
	case IO_REPARSE_TAG_SYMLINK:
		path_buffer = 20
	default:
		return result, nil
	}

	if size < path_buffer {
		return nil, errShortPayload
	}

	sub_offset := int64(parser.ParseUint16(reader, 8))
	sub_length := int64(parser.ParseUint16(reader, 10))
	print_offset := int64(parser.ParseUint16(reader, 12))
	print_length := int64(parser.ParseUint16(reader, 14))

	if path_buffer+sub_offset+sub_length > size ||
		path_buffer+print_offset+print_length > size {
		return nil, errShortPayload
	}

	result.SubstituteName = parser.ParseUTF16String(
		reader, path_buffer+sub_offset, sub_length)
	result.PrintName = parser.ParseUTF16String(
		reader, path_buffer+print_offset, print_length)

	return result, nil
}
