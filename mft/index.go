package mft

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"www.velocidex.com/golang/mftecmd/records"
)

const (
	rootEntry = 5

	// Deeper chains are treated as loops.
	maxDirectoryDepth = 256
)

// MFTFile is a loaded $MFT: the record set plus the indexes needed
// to resolve parent paths and list directories.
type MFTFile struct {
	*records.Collection

	// Each entry number is present at most once in an $MFT.
	by_entry map[uint32]*records.RawFileRecord

	children   map[records.EntryKey][]*records.DirectoryEntry
	path_cache map[records.EntryKey]string
}

// NewMFTFile indexes an already populated collection. Extension
// records are folded into their base records here.
func NewMFTFile(collection *records.Collection) *MFTFile {
	self := &MFTFile{
		Collection: collection,
		by_entry:   make(map[uint32]*records.RawFileRecord),
		children:   make(map[records.EntryKey][]*records.DirectoryEntry),
		path_cache: make(map[records.EntryKey]string),
	}

	_ = records.EachRecord(collection, func(record *records.RawFileRecord) error {
		self.by_entry[record.EntryNumber] = record
		return nil
	})

	_ = records.EachRecord(collection, func(record *records.RawFileRecord) error {
		if record.BaseRecordReference != 0 {
			self.foldExtension(record)
		}
		return nil
	})

	_ = records.EachRecord(collection, func(record *records.RawFileRecord) error {
		if record.BaseRecordReference == 0 {
			self.addChild(record)
		}
		return nil
	})

	for _, children := range self.children {
		sort.SliceStable(children, func(i, j int) bool {
			return strings.ToLower(children[i].FileName) <
				strings.ToLower(children[j].FileName)
		})
	}

	return self
}

func (self *MFTFile) foldExtension(extension *records.RawFileRecord) {
	base_entry := uint32(extension.BaseRecordReference & 0xFFFFFFFFFFFF)
	base_sequence := uint16(extension.BaseRecordReference >> 48)

	base, pres := self.by_entry[base_entry]
	if !pres || base.SequenceNumber != base_sequence {
		return
	}

	type attr_key struct {
		attr_type records.AttributeType
		id        uint16
	}

	seen := make(map[attr_key]bool)
	for _, attr := range base.Attributes {
		seen[attr_key{attr.Type(), attr.Id()}] = true
	}

	for _, attr := range extension.Attributes {
		key := attr_key{attr.Type(), attr.Id()}
		if !seen[key] {
			base.Attributes = append(base.Attributes, attr)
			seen[key] = true
		}
	}
}

func (self *MFTFile) addChild(record *records.RawFileRecord) {
	name := bestName(record)
	if name == nil {
		return
	}

	// The root directory is its own parent.
	if record.EntryNumber == rootEntry && name.ParentEntryNumber == rootEntry {
		return
	}

	parent := records.NewEntryKey(name.ParentEntryNumber, name.ParentSequenceNumber)
	self.children[parent] = append(self.children[parent], &records.DirectoryEntry{
		Key:         record.Key(),
		FileName:    name.Name,
		IsDirectory: record.IsDirectory,
		InUse:       record.InUse,
	})
}

// Children lists the entries whose long file name points at key.
func (self *MFTFile) Children(key records.EntryKey) ([]*records.DirectoryEntry, error) {
	record, pres := self.Get(key)
	if !pres {
		return nil, errors.Wrapf(records.ErrNotFound, "Entry %v", key)
	}

	if !record.IsDirectory {
		return nil, errors.Errorf("Entry %v is not a directory", key)
	}

	return self.children[key], nil
}

// ParentPath resolves a parent reference to a path like
// .\Windows\System32. The root directory is ".".
func (self *MFTFile) ParentPath(entry uint32, sequence uint16) string {
	return self.parentPath(entry, sequence, 0)
}

func (self *MFTFile) parentPath(entry uint32, sequence uint16, depth int) string {
	if entry == rootEntry {
		return "."
	}

	key := records.NewEntryKey(entry, sequence)
	cached, pres := self.path_cache[key]
	if pres {
		return cached
	}

	result := self.resolvePath(entry, sequence, depth)
	self.path_cache[key] = result
	return result
}

func (self *MFTFile) resolvePath(entry uint32, sequence uint16, depth int) string {
	unknown := fmt.Sprintf(`.\PathUnknown\Directory with ID 0x%08X-%08X`,
		entry, sequence)

	if depth > maxDirectoryDepth {
		return unknown
	}

	record, pres := self.by_entry[entry]
	if !pres || record.SequenceNumber != sequence {
		return unknown
	}

	name := bestName(record)
	if name == nil {
		return unknown
	}

	// A directory whose parent is itself (other than the root).
	if name.ParentEntryNumber == entry {
		return unknown
	}

	parent := self.parentPath(name.ParentEntryNumber,
		name.ParentSequenceNumber, depth+1)
	return parent + `\` + name.Name
}

// The name used for paths: long names win over DOS names, then the
// longest name.
func bestName(record *records.RawFileRecord) *records.FileName {
	var result *records.FileName
	for _, attr := range record.Attributes {
		fn, ok := attr.(*records.FileName)
		if !ok {
			continue
		}

		switch {
		case result == nil:
			result = fn
		case result.NameType == records.NameTypeDos && fn.NameType != records.NameTypeDos:
			result = fn
		case fn.NameType != records.NameTypeDos && len(fn.Name) > len(result.Name):
			result = fn
		}
	}
	return result
}
