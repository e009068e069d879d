package artifact

import (
	"io"
	"sort"
	"strings"
	"time"

	"github.com/Velocidex/ordereddict"
	"github.com/pkg/errors"
	"www.velocidex.com/golang/go-ntfs/parser"
)

// Journals are sparse files. Extracted copies keep the leading
// hole as zeros.
const zeroScanSize = 1024 * 1024

// UsnEntry is one change record of the $UsnJrnl:$J stream.
type UsnEntry struct {
	Name                 string
	EntryNumber          uint64
	SequenceNumber       uint64
	ParentEntryNumber    uint64
	ParentSequenceNumber uint64
	UpdateSequenceNumber uint64
	UpdateTimestamp      time.Time
	UpdateReasons        string
	FileAttributes       string
	OffsetToData         int64
}

func (self *UsnEntry) Row(date_format string) *ordereddict.Dict {
	return ordereddict.NewDict().
		Set("Name", self.Name).
		Set("EntryNumber", self.EntryNumber).
		Set("SequenceNumber", self.SequenceNumber).
		Set("ParentEntryNumber", self.ParentEntryNumber).
		Set("ParentSequenceNumber", self.ParentSequenceNumber).
		Set("UpdateSequenceNumber", self.UpdateSequenceNumber).
		Set("UpdateTimestamp", self.UpdateTimestamp.Format(date_format)).
		Set("UpdateReasons", self.UpdateReasons).
		Set("FileAttributes", self.FileAttributes).
		Set("OffsetToData", self.OffsetToData)
}

// ParseUsnJournal walks every version 2 record of a $J stream.
// Records of other versions are skipped.
func ParseUsnJournal(reader io.ReaderAt, size int64,
	cb func(entry *UsnEntry) error) error {
	paged_reader, err := parser.NewPagedReader(reader, 1024, 10000)
	if err != nil {
		return errors.Wrap(err, "ParseUsnJournal")
	}

	ntfs_ctx := &parser.NTFSContext{Profile: parser.NewNTFSProfile()}

	start, err := firstNonZero(paged_reader, size)
	if err != nil {
		return err
	}
	if start >= size {
		return nil
	}

	record := parser.NewUSN_RECORD(ntfs_ctx, paged_reader, start)
	if !record.Validate() {
		record = record.Next(size)
	}

	for ; record != nil; record = record.Next(size) {
		if record.MajorVersion() != 2 {
			continue
		}

		err := cb(&UsnEntry{
			Name:                 record.Filename(),
			EntryNumber:          record.FileReferenceNumberID(),
			SequenceNumber:       record.FileReferenceNumberSequence(),
			ParentEntryNumber:    record.ParentFileReferenceNumberID(),
			ParentSequenceNumber: record.ParentFileReferenceNumberSequence(),
			UpdateSequenceNumber: record.Usn(),
			UpdateTimestamp:      record.TimeStamp().Time,
			UpdateReasons:        joinFlags(record.Reason()),
			FileAttributes:       joinFlags(record.FileAttributes()),
			OffsetToData:         record.Offset,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// Flag names come from a map so they are sorted for stable output.
func joinFlags(names []string) string {
	sort.Strings(names)
	return strings.Join(names, "|")
}

// firstNonZero finds the 8 byte aligned offset of the first non zero
// byte, or size when there is none.
func firstNonZero(reader io.ReaderAt, size int64) (int64, error) {
	buf := make([]byte, zeroScanSize)
	for offset := int64(0); offset < size; offset += zeroScanSize {
		n, err := reader.ReadAt(buf, offset)
		if n == 0 {
			if err != nil && err != io.EOF {
				return 0, errors.Wrap(err, "Reading $J")
			}
			break
		}

		for i := 0; i < n; i++ {
			if buf[i] != 0 {
				return (offset + int64(i)) &^ 7, nil
			}
		}
	}
	return size, nil
}
