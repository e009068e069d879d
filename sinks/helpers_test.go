package sinks

import (
	"bytes"
	"time"

	"github.com/davecgh/go-spew/spew"
	"www.velocidex.com/golang/mftecmd/records"
)

func init() {
	spew.Config.DisablePointerAddresses = true
	spew.Config.SortKeys = true
}

// memoryFile collects written bytes and remembers being closed.
type memoryFile struct {
	bytes.Buffer
	closed    bool
	close_err error
}

func (self *memoryFile) Close() error {
	self.closed = true
	return self.close_err
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// sampleRecords gives a timestomped file, its Zone.Identifier stream
// and a deleted directory.
func sampleRecords() []*records.NormalizedRecord {
	created_fn := day(2019, 1, 1)

	file := &records.NormalizedRecord{
		EntryNumber:           5,
		SequenceNumber:        2,
		InUse:                 true,
		ParentEntryNumber:     5,
		ParentSequenceNumber:  5,
		ParentPath:            ".",
		FileName:              "a.txt",
		Extension:             ".txt",
		FileSize:              100,
		HasAds:                true,
		Created0x10:           day(2020, 1, 1),
		Created0x30:           &created_fn,
		LastModified0x10:      day(2020, 1, 2),
		LastRecordChange0x10:  day(2020, 1, 3),
		LastAccess0x10:        day(2020, 1, 4),
		Timestomped:           true,
		USecZeros:             true,
		SiFlags:               "Archive",
		NameType:              records.NameTypeWin32,
		UpdateSequenceNumber:  0x9988,
		LogfileSequenceNumber: 0x4455,
		SecurityId:            0x101,
		ReferenceCount:        1,
		FnAttributeId:         2,
		OtherAttributeId:      1,
		SourceFile:            `C:\$MFT`,
	}

	stream := file.Copy()
	stream.FileName = "a.txt:Zone.Identifier"
	stream.Extension = ".Identifier"
	stream.IsAds = true
	stream.HasAds = false
	stream.FileSize = 26
	stream.OtherAttributeId = 4
	stream.ZoneIdContents = "[ZoneTransfer]\r\nZoneId=3\r\n"

	deleted := &records.NormalizedRecord{
		EntryNumber:          40,
		SequenceNumber:       3,
		ParentEntryNumber:    30,
		ParentSequenceNumber: 1,
		ParentPath:           `.\Users`,
		FileName:             "old",
		IsDirectory:          true,
		Created0x10:          day(2020, 1, 1),
		LastModified0x10:     day(2020, 1, 1),
		LastRecordChange0x10: day(2020, 1, 1),
		LastAccess0x10:       day(2020, 1, 1),
		SiFlags:              "Directory",
		NameType:             records.NameTypeWin32AndDos,
		FnAttributeId:        3,
		OtherAttributeId:     7,
		SourceFile:           `C:\$MFT`,
	}

	return []*records.NormalizedRecord{file, stream, deleted}
}

func writeAll(sink Sink, rows []*records.NormalizedRecord) error {
	for _, row := range rows {
		err := sink.Write(row)
		if err != nil {
			return err
		}
	}
	return sink.Close()
}
