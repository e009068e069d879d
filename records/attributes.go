package records

import (
	"strings"
	"time"
)

type AttributeType uint32

const (
	ATTR_TYPE_STANDARD_INFORMATION  AttributeType = 0x10
	ATTR_TYPE_FILE_NAME             AttributeType = 0x30
	ATTR_TYPE_OBJECT_ID             AttributeType = 0x40
	ATTR_TYPE_DATA                  AttributeType = 0x80
	ATTR_TYPE_INDEX_ROOT            AttributeType = 0x90
	ATTR_TYPE_REPARSE_POINT         AttributeType = 0xC0
	ATTR_TYPE_LOGGED_UTILITY_STREAM AttributeType = 0x100
)

func (self AttributeType) String() string {
	switch self {
	case ATTR_TYPE_STANDARD_INFORMATION:
		return "$STANDARD_INFORMATION"
	case ATTR_TYPE_FILE_NAME:
		return "$FILE_NAME"
	case ATTR_TYPE_OBJECT_ID:
		return "$OBJECT_ID"
	case ATTR_TYPE_DATA:
		return "$DATA"
	case ATTR_TYPE_INDEX_ROOT:
		return "$INDEX_ROOT"
	case ATTR_TYPE_REPARSE_POINT:
		return "$REPARSE_POINT"
	case ATTR_TYPE_LOGGED_UTILITY_STREAM:
		return "$LOGGED_UTILITY_STREAM"
	}
	return "Unknown"
}

// Attribute is a decoded NTFS attribute. The set of implementations
// is closed: only the types in this file satisfy it.
type Attribute interface {
	Type() AttributeType
	Id() uint16

	sealed()
}

type StandardInformation struct {
	AttributeId uint16

	Created         time.Time
	ContentModified time.Time
	RecordModified  time.Time
	LastAccessed    time.Time

	Flags                uint32
	SecurityId           uint32
	UpdateSequenceNumber uint64
}

type FileName struct {
	AttributeId uint16

	ParentEntryNumber    uint32
	ParentSequenceNumber uint16

	Created         time.Time
	ContentModified time.Time
	RecordModified  time.Time
	LastAccessed    time.Time

	AllocatedSize uint64
	LogicalSize   uint64
	Flags         uint32
	ReparseValue  uint32
	NameType      NameType
	Name          string
}

// Data is a $DATA attribute. An empty Name is the primary stream,
// anything else is an alternate data stream.
type Data struct {
	AttributeId uint16
	Name        string
	Size        uint64
	IsResident  bool

	// Only populated for resident streams the loader was asked to
	// keep (Zone.Identifier).
	Content    []byte
	ContentErr error
}

type ObjectId struct {
	AttributeId uint16
	FileDroid   string
}

type ReparsePoint struct {
	AttributeId    uint16
	Tag            uint32
	SubstituteName string
	PrintName      string
}

type LoggedUtilityStream struct {
	AttributeId uint16
	Name        string
}

type IndexRoot struct {
	AttributeId uint16
}

// Malformed stands in for an attribute whose payload could not be
// decoded.
type Malformed struct {
	AttributeType AttributeType
	AttributeId   uint16
	Err           error
}

func (self *StandardInformation) Type() AttributeType { return ATTR_TYPE_STANDARD_INFORMATION }
func (self *FileName) Type() AttributeType            { return ATTR_TYPE_FILE_NAME }
func (self *Data) Type() AttributeType                { return ATTR_TYPE_DATA }
func (self *ObjectId) Type() AttributeType            { return ATTR_TYPE_OBJECT_ID }
func (self *ReparsePoint) Type() AttributeType        { return ATTR_TYPE_REPARSE_POINT }
func (self *LoggedUtilityStream) Type() AttributeType { return ATTR_TYPE_LOGGED_UTILITY_STREAM }
func (self *IndexRoot) Type() AttributeType           { return ATTR_TYPE_INDEX_ROOT }
func (self *Malformed) Type() AttributeType           { return self.AttributeType }

func (self *StandardInformation) Id() uint16 { return self.AttributeId }
func (self *FileName) Id() uint16            { return self.AttributeId }
func (self *Data) Id() uint16                { return self.AttributeId }
func (self *ObjectId) Id() uint16            { return self.AttributeId }
func (self *ReparsePoint) Id() uint16        { return self.AttributeId }
func (self *LoggedUtilityStream) Id() uint16 { return self.AttributeId }
func (self *IndexRoot) Id() uint16           { return self.AttributeId }
func (self *Malformed) Id() uint16           { return self.AttributeId }

func (self *StandardInformation) sealed() {}
func (self *FileName) sealed()            {}
func (self *Data) sealed()                {}
func (self *ObjectId) sealed()            {}
func (self *ReparsePoint) sealed()        {}
func (self *LoggedUtilityStream) sealed() {}
func (self *IndexRoot) sealed()           {}
func (self *Malformed) sealed()           {}

var si_flag_names = []struct {
	mask uint32
	name string
}{
	{0x0001, "ReadOnly"},
	{0x0002, "Hidden"},
	{0x0004, "System"},
	{0x0010, "Directory"},
	{0x0020, "Archive"},
	{0x0040, "Device"},
	{0x0080, "Normal"},
	{0x0100, "Temporary"},
	{0x0200, "SparseFile"},
	{0x0400, "ReparsePoint"},
	{0x0800, "Compressed"},
	{0x1000, "Offline"},
	{0x2000, "NotContentIndexed"},
	{0x4000, "Encrypted"},
	{0x10000000, "IsDirectory"},
	{0x20000000, "IsIndexView"},
}

// SiFlagNames renders the $STANDARD_INFORMATION file attribute flags
// as a | separated list.
func SiFlagNames(flags uint32) string {
	if flags == 0 {
		return "None"
	}

	result := []string{}
	for _, f := range si_flag_names {
		if flags&f.mask != 0 {
			result = append(result, f.name)
		}
	}
	return strings.Join(result, "|")
}
