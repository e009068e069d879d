package mft

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"www.velocidex.com/golang/go-ntfs/parser"
	"www.velocidex.com/golang/mftecmd/records"
)

const (
	// Raw $MFT files carry no boot sector so the cluster size is
	// only used to satisfy the context.
	rawClusterSize = 0x1000
)

type Loader struct {
	Logger logrus.FieldLogger

	// Called after each record so callers can show progress.
	Progress func(done, total int64)
}

// Load decodes every record of a raw $MFT stream.
func (self Loader) Load(reader io.ReaderAt, size int64) (*MFTFile, error) {
	paged_reader, err := parser.NewPagedReader(reader, 1024, 10000)
	if err != nil {
		return nil, errors.Wrap(err, "Load")
	}

	record_size, err := detectRecordSize(paged_reader)
	if err != nil {
		return nil, err
	}

	ntfs_ctx := parser.GetNTFSContextFromRawMFT(
		paged_reader, rawClusterSize, record_size)

	total := size / record_size
	collection := records.NewCollection()
	for id := int64(0); id < total; id++ {
		if self.Progress != nil {
			self.Progress(id, total)
		}

		mft_entry, err := ntfs_ctx.GetMFT(id)
		if err != nil {
			// Unused slots often fail the fixup check.
			self.logger().WithFields(logrus.Fields{
				"entry": id,
			}).Debugf("Skipping record: %v", err)
			continue
		}

		record, err := convertEntry(ntfs_ctx, mft_entry, id)
		if err != nil {
			self.logger().WithFields(logrus.Fields{
				"entry": id,
			}).Warnf("Unable to parse record: %v", err)
			continue
		}
		collection.Add(record)
	}

	if self.Progress != nil {
		self.Progress(total, total)
	}

	return NewMFTFile(collection), nil
}

func (self Loader) logger() logrus.FieldLogger {
	if self.Logger == nil {
		return logrus.StandardLogger()
	}
	return self.Logger
}

// Without a boot sector the record size comes from the allocated
// size of the first record, or failing that from the position of the
// next record signature.
func detectRecordSize(reader io.ReaderAt) (int64, error) {
	header := make([]byte, 0x20)
	n, err := reader.ReadAt(header, 0)
	if err != nil || n != len(header) || string(header[:4]) != "FILE" {
		return 0, errors.New("Unknown MFT record size: not an $MFT file?")
	}

	switch allocated := parser.ParseUint32(reader, 0x1C); allocated {
	case 1024, 2048, 4096:
		return int64(allocated), nil
	}

	buf := make([]byte, 4)
	for i := int64(512); i <= 4096; i += 512 {
		n, err := reader.ReadAt(buf, i)
		if err != nil || n != 4 {
			break
		}
		if string(buf) == "FILE" {
			return i, nil
		}
	}

	return 1024, nil
}

func convertEntry(ntfs_ctx *parser.NTFSContext,
	mft_entry *parser.MFT_ENTRY, id int64) (result *records.RawFileRecord, err error) {
	defer func() {
		r := recover()
		if r != nil {
			err = fmt.Errorf("Decoding entry %v: %v", id, r)
		}
	}()

	flags := mft_entry.Flags()
	result = &records.RawFileRecord{
		// Older NTFS versions do not store the record number in
		// the header so the position wins.
		EntryNumber:           uint32(id),
		SequenceNumber:        mft_entry.Sequence_value(),
		InUse:                 flags.IsSet("ALLOCATED"),
		IsDirectory:           flags.IsSet("DIRECTORY"),
		BaseRecordReference:   mft_entry.Base_record_reference(),
		ReferenceCount:        mft_entry.Link_count(),
		LogfileSequenceNumber: mft_entry.Logfile_sequence_number(),
	}

	for _, attr := range mft_entry.EnumerateAttributes(ntfs_ctx) {
		converted := convertAttribute(ntfs_ctx, attr)
		if converted != nil {
			result.Attributes = append(result.Attributes, converted)
		}
	}

	return result, nil
}

func convertAttribute(ntfs_ctx *parser.NTFSContext,
	attr *parser.NTFS_ATTRIBUTE) (result records.Attribute) {
	attr_type := records.AttributeType(attr.Type().Value)
	attr_id := attr.Attribute_id()

	malformed := func(err error) records.Attribute {
		return &records.Malformed{
			AttributeType: attr_type,
			AttributeId:   attr_id,
			Err:           err,
		}
	}

	defer func() {
		r := recover()
		if r != nil {
			result = malformed(fmt.Errorf("%v", r))
		}
	}()

	switch attr_type {
	case records.ATTR_TYPE_STANDARD_INFORMATION,
		records.ATTR_TYPE_FILE_NAME,
		records.ATTR_TYPE_OBJECT_ID,
		records.ATTR_TYPE_REPARSE_POINT:
		if !attr.IsResident() {
			return malformed(errors.New("Attribute is not resident"))
		}

		decoded, err := decodePayload(ntfs_ctx.Profile, attr_type, attr_id,
			attr.Data(ntfs_ctx), attr.DataSize())
		if err != nil {
			return malformed(err)
		}
		return decoded

	case records.ATTR_TYPE_DATA:
		// Later VCN runs of a fragmented stream repeat the same
		// attribute.
		if !attr.IsResident() && attr.Runlist_vcn_start() != 0 {
			return nil
		}

		data := &records.Data{
			AttributeId: attr_id,
			Name:        attr.Name(),
			Size:        uint64(attr.DataSize()),
			IsResident:  attr.IsResident(),
		}
		if data.IsResident && data.Name == records.ZoneIdentifierStream {
			data.Content, data.ContentErr = residentPayload(ntfs_ctx, attr)
		}
		return data

	case records.ATTR_TYPE_INDEX_ROOT:
		return &records.IndexRoot{AttributeId: attr_id}

	case records.ATTR_TYPE_LOGGED_UTILITY_STREAM:
		return &records.LoggedUtilityStream{
			AttributeId: attr_id,
			Name:        attr.Name(),
		}
	}

	return nil
}

func residentPayload(ntfs_ctx *parser.NTFSContext,
	attr *parser.NTFS_ATTRIBUTE) ([]byte, error) {
	if !attr.IsResident() {
		return nil, errors.New("Attribute is not resident")
	}

	size := attr.DataSize()
	buf := make([]byte, size)
	n, err := attr.Data(ntfs_ctx).ReadAt(buf, 0)
	if int64(n) < size {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return nil, errors.Wrap(err, "Reading resident attribute")
	}
	return buf, nil
}
