package sinks

import (
	"time"

	"github.com/Velocidex/ordereddict"
	"www.velocidex.com/golang/mftecmd/records"
)

const DefaultDateTimeFormat = "2006-01-02 15:04:05.0000000"

// RecordRow lays out a record in output column order. With an empty
// date_format timestamps are left as time.Time for the JSON encoder.
func RecordRow(record *records.NormalizedRecord, date_format string) *ordereddict.Dict {
	ts := func(t time.Time) interface{} {
		if date_format == "" {
			return t
		}
		return t.Format(date_format)
	}

	optional := func(t *time.Time) interface{} {
		if t == nil {
			return nil
		}
		return ts(*t)
	}

	return ordereddict.NewDict().
		Set("EntryNumber", record.EntryNumber).
		Set("SequenceNumber", record.SequenceNumber).
		Set("InUse", record.InUse).
		Set("ParentEntryNumber", record.ParentEntryNumber).
		Set("ParentSequenceNumber", record.ParentSequenceNumber).
		Set("ParentPath", record.ParentPath).
		Set("FileName", record.FileName).
		Set("Extension", record.Extension).
		Set("FileSize", record.FileSize).
		Set("ReferenceCount", record.ReferenceCount).
		Set("ReparseTarget", record.ReparseTarget).
		Set("IsDirectory", record.IsDirectory).
		Set("HasAds", record.HasAds).
		Set("IsAds", record.IsAds).
		Set("SI<FN", record.Timestomped).
		Set("uSecZeros", record.USecZeros).
		Set("Copied", record.Copied).
		Set("SiFlags", record.SiFlags).
		Set("NameType", record.NameType.String()).
		Set("Created0x10", ts(record.Created0x10)).
		Set("Created0x30", optional(record.Created0x30)).
		Set("LastModified0x10", ts(record.LastModified0x10)).
		Set("LastModified0x30", optional(record.LastModified0x30)).
		Set("LastRecordChange0x10", ts(record.LastRecordChange0x10)).
		Set("LastRecordChange0x30", optional(record.LastRecordChange0x30)).
		Set("LastAccess0x10", ts(record.LastAccess0x10)).
		Set("LastAccess0x30", optional(record.LastAccess0x30)).
		Set("UpdateSequenceNumber", record.UpdateSequenceNumber).
		Set("LogfileSequenceNumber", record.LogfileSequenceNumber).
		Set("SecurityId", record.SecurityId).
		Set("ObjectIdFileDroid", record.ObjectIdFileDroid).
		Set("LoggedUtilStream", record.LoggedUtilStream).
		Set("ZoneIdContents", record.ZoneIdContents).
		Set("SourceFile", record.SourceFile)
}

// FileListRow is the condensed listing: one line per file name.
func FileListRow(record *records.NormalizedRecord, date_format string) *ordereddict.Dict {
	return ordereddict.NewDict().
		Set("FullPath", record.ParentPath+`\`+record.FileName).
		Set("Extension", record.Extension).
		Set("IsDirectory", record.IsDirectory).
		Set("FileSize", record.FileSize).
		Set("Created0x10", record.Created0x10.Format(date_format)).
		Set("LastModified0x10", record.LastModified0x10.Format(date_format))
}
