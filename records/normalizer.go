package records

import (
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"
)

const (
	ZoneIdentifierStream      = "Zone.Identifier"
	ZoneIdentifierNonResident = "(Zone.Identifier data is non-resident)"
)

// PathResolver maps a parent reference to the path of that directory
// (e.g. ".\Windows\System32").
type PathResolver interface {
	ParentPath(entry uint32, sequence uint16) string
}

// Normalizer turns raw file records into output rows. A normalizer
// is bound to one source.
type Normalizer struct {
	options     Options
	paths       PathResolver
	logger      logrus.FieldLogger
	source_file string
}

func NewNormalizer(options Options, paths PathResolver,
	logger logrus.FieldLogger, source_file string) *Normalizer {
	return &Normalizer{
		options:     options,
		paths:       paths,
		logger:      logger,
		source_file: source_file,
	}
}

// The attributes of a record sorted by kind.
type recordAttributes struct {
	si             *StandardInformation
	file_names     []*FileName
	primary        *Data
	streams        []*Data
	index_root     *IndexRoot
	object_id      *ObjectId
	reparse        *ReparsePoint
	logged_utility *LoggedUtilityStream
}

func (self *Normalizer) collect(record *RawFileRecord) *recordAttributes {
	result := &recordAttributes{}

	for _, attr := range record.Attributes {
		switch t := attr.(type) {
		case *StandardInformation:
			if result.si == nil {
				result.si = t
			}

		case *FileName:
			result.file_names = append(result.file_names, t)

		case *Data:
			if t.Name == "" {
				if result.primary == nil {
					result.primary = t
				}
			} else {
				result.streams = append(result.streams, t)
			}

		case *IndexRoot:
			if result.index_root == nil {
				result.index_root = t
			}

		case *ObjectId:
			result.object_id = t

		case *ReparsePoint:
			result.reparse = t

		case *LoggedUtilityStream:
			result.logged_utility = t

		case *Malformed:
			self.logger.WithFields(logrus.Fields{
				"entry":     record.EntryNumber,
				"sequence":  record.SequenceNumber,
				"attribute": t.AttributeType.String(),
				"id":        t.AttributeId,
			}).Warnf("Unable to decode attribute: %v", t.Err)
		}
	}

	// Long names first. Sort is stable so the decoder's order is
	// kept within each group.
	sort.SliceStable(result.file_names, func(i, j int) bool {
		return result.file_names[i].NameType != NameTypeDos &&
			result.file_names[j].NameType == NameTypeDos
	})

	if !self.options.IncludeShortNames {
		long_names := make([]*FileName, 0, len(result.file_names))
		for _, fn := range result.file_names {
			if fn.NameType != NameTypeDos {
				long_names = append(long_names, fn)
			}
		}
		result.file_names = long_names
	}

	return result
}

// Normalize emits one row per retained file name, each followed by
// one row per alternate data stream. Extension records emit nothing.
func (self *Normalizer) Normalize(
	record *RawFileRecord, emit func(row *NormalizedRecord) error) error {
	if record.BaseRecordReference != 0 {
		return nil
	}

	attrs := self.collect(record)
	for _, fn := range attrs.file_names {
		row := self.baseRow(record, attrs, fn)
		err := emit(row)
		if err != nil {
			return err
		}

		for _, stream := range attrs.streams {
			err := emit(self.streamRow(record, row, stream))
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func (self *Normalizer) baseRow(record *RawFileRecord,
	attrs *recordAttributes, fn *FileName) *NormalizedRecord {
	row := &NormalizedRecord{
		EntryNumber:           record.EntryNumber,
		SequenceNumber:        record.SequenceNumber,
		ParentEntryNumber:     fn.ParentEntryNumber,
		ParentSequenceNumber:  fn.ParentSequenceNumber,
		InUse:                 record.InUse,
		FileName:              fn.Name,
		IsDirectory:           record.IsDirectory,
		HasAds:                len(attrs.streams) > 0,
		FileSize:              fn.LogicalSize,
		ReferenceCount:        record.ReferenceCount,
		LogfileSequenceNumber: record.LogfileSequenceNumber,
		NameType:              fn.NameType,
		FnAttributeId:         fn.AttributeId,
		SourceFile:            self.source_file,
	}

	if self.paths != nil {
		row.ParentPath = self.paths.ParentPath(
			fn.ParentEntryNumber, fn.ParentSequenceNumber)
	}

	if !record.IsDirectory {
		row.Extension = extension(fn.Name)
	}

	if attrs.primary != nil {
		row.FileSize = attrs.primary.Size
		row.OtherAttributeId = attrs.primary.AttributeId
	} else if attrs.index_root != nil {
		row.OtherAttributeId = attrs.index_root.AttributeId
	}

	if record.IsDirectory {
		row.FileSize = 0
	}

	si := attrs.si
	if si == nil {
		// No authoritative timestamps: the file name set stands in.
		row.Created0x10 = fn.Created
		row.LastModified0x10 = fn.ContentModified
		row.LastRecordChange0x10 = fn.RecordModified
		row.LastAccess0x10 = fn.LastAccessed

	} else {
		row.Created0x10 = si.Created
		row.LastModified0x10 = si.ContentModified
		row.LastRecordChange0x10 = si.RecordModified
		row.LastAccess0x10 = si.LastAccessed

		row.Created0x30 = self.secondary(si.Created, fn.Created)
		row.LastModified0x30 = self.secondary(si.ContentModified, fn.ContentModified)
		row.LastRecordChange0x30 = self.secondary(si.RecordModified, fn.RecordModified)
		row.LastAccess0x30 = self.secondary(si.LastAccessed, fn.LastAccessed)

		row.Timestomped = self.isTimestomped(row)
		row.USecZeros = si.Created.Nanosecond() == 0 ||
			si.ContentModified.Nanosecond() == 0
		row.Copied = si.ContentModified.Before(si.Created)

		row.SecurityId = si.SecurityId
		row.UpdateSequenceNumber = si.UpdateSequenceNumber
		row.SiFlags = SiFlagNames(si.Flags)
	}

	if attrs.object_id != nil {
		row.ObjectIdFileDroid = attrs.object_id.FileDroid
	}

	if attrs.reparse != nil {
		row.ReparseTarget = strings.TrimPrefix(
			attrs.reparse.SubstituteName, `\??\`)
	}

	if attrs.logged_utility != nil {
		row.LoggedUtilStream = attrs.logged_utility.Name
	}

	return row
}

func (self *Normalizer) streamRow(record *RawFileRecord,
	base *NormalizedRecord, stream *Data) *NormalizedRecord {
	row := base.Copy()
	row.IsAds = true
	row.HasAds = false
	row.FileName = base.FileName + ":" + stream.Name
	row.Extension = extension(stream.Name)
	row.FileSize = stream.Size
	row.OtherAttributeId = stream.AttributeId

	if stream.Name == ZoneIdentifierStream {
		row.ZoneIdContents = self.zoneIdentifier(record, stream)
	}

	return row
}

func (self *Normalizer) zoneIdentifier(
	record *RawFileRecord, stream *Data) string {
	if !stream.IsResident {
		return ZoneIdentifierNonResident
	}

	if stream.ContentErr != nil {
		self.logger.WithFields(logrus.Fields{
			"entry":     record.EntryNumber,
			"sequence":  record.SequenceNumber,
			"attribute": ATTR_TYPE_DATA.String(),
			"id":        stream.AttributeId,
		}).Warnf("Unable to read Zone.Identifier: %v", stream.ContentErr)
		return ""
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(stream.Content)
	if err != nil {
		self.logger.WithFields(logrus.Fields{
			"entry":    record.EntryNumber,
			"sequence": record.SequenceNumber,
		}).Warnf("Unable to decode Zone.Identifier: %v", err)
		return ""
	}
	return string(decoded)
}

// The $FILE_NAME copy of a timestamp, or nil when it adds nothing.
func (self *Normalizer) secondary(si, fn time.Time) *time.Time {
	if !self.options.AlwaysPopulate0x30 && si.Equal(fn) {
		return nil
	}
	return &fn
}

func (self *Normalizer) isTimestomped(row *NormalizedRecord) bool {
	if row.Created0x30 != nil && row.Created0x30.Before(row.Created0x10) {
		return true
	}

	if self.options.TimestompRule == TimestompCreatedOrModified &&
		row.LastModified0x30 != nil &&
		row.LastModified0x30.Before(row.LastModified0x10) {
		return true
	}

	return false
}

// extension includes the leading dot, like ".txt".
func extension(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 || idx == len(name)-1 {
		return ""
	}

	ext := name[idx:]
	if strings.ContainsAny(ext, `\/:`) {
		return ""
	}
	return ext
}
