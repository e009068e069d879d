package records

import (
	"time"
)

type NameType uint8

const (
	NameTypePosix       NameType = 0
	NameTypeWin32       NameType = 1
	NameTypeDos         NameType = 2
	NameTypeWin32AndDos NameType = 3
)

func (self NameType) String() string {
	switch self {
	case NameTypePosix:
		return "Posix"
	case NameTypeWin32:
		return "Win32"
	case NameTypeDos:
		return "Dos"
	case NameTypeWin32AndDos:
		return "Win32AndDos"
	}
	return "Unknown"
}

// RawFileRecord is a single MFT entry as handed over by the decoder,
// with any extension records already folded in.
type RawFileRecord struct {
	EntryNumber    uint32
	SequenceNumber uint16
	InUse          bool
	IsDirectory    bool

	// Non zero for extension records. These are never emitted on
	// their own.
	BaseRecordReference uint64

	ReferenceCount        uint16
	LogfileSequenceNumber uint64

	Attributes []Attribute
}

func (self *RawFileRecord) Key() EntryKey {
	return NewEntryKey(self.EntryNumber, self.SequenceNumber)
}

// NormalizedRecord is one output row: a single file name of an MFT
// entry, optionally expanded to one of its alternate data streams.
type NormalizedRecord struct {
	EntryNumber          uint32
	SequenceNumber       uint16
	ParentEntryNumber    uint32
	ParentSequenceNumber uint16
	InUse                bool

	ParentPath  string
	FileName    string
	Extension   string
	IsDirectory bool
	HasAds      bool
	IsAds       bool
	FileSize    uint64

	Created0x10          time.Time
	Created0x30          *time.Time
	LastModified0x10     time.Time
	LastModified0x30     *time.Time
	LastRecordChange0x10 time.Time
	LastRecordChange0x30 *time.Time
	LastAccess0x10       time.Time
	LastAccess0x30       *time.Time

	UpdateSequenceNumber  uint64
	LogfileSequenceNumber uint64
	SecurityId            uint32
	SiFlags               string
	ObjectIdFileDroid     string
	ReparseTarget         string
	ReferenceCount        uint16
	NameType              NameType
	LoggedUtilStream      string
	ZoneIdContents        string

	Timestomped bool
	USecZeros   bool
	Copied      bool

	FnAttributeId    uint16
	OtherAttributeId uint16

	SourceFile string
}

func (self *NormalizedRecord) Key() EntryKey {
	return NewEntryKey(self.EntryNumber, self.SequenceNumber)
}

func (self *NormalizedRecord) Copy() *NormalizedRecord {
	result := *self
	return &result
}
