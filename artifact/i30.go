package artifact

import (
	"io"
	"time"

	"github.com/Velocidex/ordereddict"
	"github.com/pkg/errors"
	"www.velocidex.com/golang/go-ntfs/parser"
	"www.velocidex.com/golang/mftecmd/records"
)

const indexPageSize = 0x1000

// I30Entry is one $FILE_NAME index entry of a directory's $I30
// allocation stream. Entries carved from slack have no reliable
// self reference.
type I30Entry struct {
	Offset          int64
	FromSlack       bool
	SelfMftEntry    *uint64
	SelfMftSequence *uint16

	FileName          string
	Flags             uint32
	NameType          records.NameType
	ParentMftEntry    uint64
	ParentMftSequence uint16

	CreatedOn         time.Time
	ContentModifiedOn time.Time
	RecordModifiedOn  time.Time
	LastAccessedOn    time.Time

	PhysicalSize uint64
	LogicalSize  uint64
}

func (self *I30Entry) Row(date_format string) *ordereddict.Dict {
	var self_entry, self_sequence interface{}
	if self.SelfMftEntry != nil {
		self_entry = *self.SelfMftEntry
	}
	if self.SelfMftSequence != nil {
		self_sequence = *self.SelfMftSequence
	}

	return ordereddict.NewDict().
		Set("Offset", self.Offset).
		Set("FromSlack", self.FromSlack).
		Set("SelfMftEntry", self_entry).
		Set("SelfMftSequence", self_sequence).
		Set("FileName", self.FileName).
		Set("Flags", records.SiFlagNames(self.Flags)).
		Set("NameType", self.NameType.String()).
		Set("ParentMftEntry", self.ParentMftEntry).
		Set("ParentMftSequence", self.ParentMftSequence).
		Set("CreatedOn", self.CreatedOn.Format(date_format)).
		Set("ContentModifiedOn", self.ContentModifiedOn.Format(date_format)).
		Set("RecordModifiedOn", self.RecordModifiedOn.Format(date_format)).
		Set("LastAccessedOn", self.LastAccessedOn.Format(date_format)).
		Set("PhysicalSize", self.PhysicalSize).
		Set("LogicalSize", self.LogicalSize)
}

// ParseI30 walks the INDX pages of an $I30 stream. Pages that fail
// the fixup check are skipped.
func ParseI30(reader io.ReaderAt, size int64,
	cb func(entry *I30Entry) error) error {
	ntfs_ctx := &parser.NTFSContext{Profile: parser.NewNTFSProfile()}

	for page := int64(0); page < size; page += indexPageSize {
		index, err := parser.DecodeSTANDARD_INDEX_HEADER(
			ntfs_ctx, reader, page, indexPageSize)
		if err != nil {
			continue
		}

		if !index.MagicNumber().IsValid() {
			continue
		}

		node := index.Node()
		for _, record := range node.GetRecords(ntfs_ctx) {
			if !record.IsValid() {
				continue
			}
			err := cb(newI30Entry(page, record, false))
			if err != nil {
				return errors.Wrap(err, "ParseI30")
			}
		}

		for _, record := range node.ScanSlack(ntfs_ctx) {
			err := cb(newI30Entry(page, record, true))
			if err != nil {
				return errors.Wrap(err, "ParseI30")
			}
		}
	}

	return nil
}

func newI30Entry(page int64, record *parser.INDEX_RECORD_ENTRY,
	slack bool) *I30Entry {
	fn := record.File()
	result := &I30Entry{
		Offset:            page + record.Offset,
		FromSlack:         slack,
		FileName:          fn.Name(),
		Flags:             uint32(fn.Flags().Value),
		NameType:          records.NameType(fn.NameType().Value),
		ParentMftEntry:    fn.MftReference(),
		ParentMftSequence: fn.Seq_num(),
		CreatedOn:         fn.Created().Time,
		ContentModifiedOn: fn.File_modified().Time,
		RecordModifiedOn:  fn.Mft_modified().Time,
		LastAccessedOn:    fn.File_accessed().Time,
		PhysicalSize:      fn.Allocated_size(),
		LogicalSize:       fn.FilenameSize(),
	}

	if !slack {
		entry := record.MftReference()
		sequence := record.Seq_num()
		result.SelfMftEntry = &entry
		result.SelfMftSequence = &sequence
	}

	return result
}
