package records

import (
	"fmt"
	"strings"
	"time"
)

const (
	bodyfileMode = "r/rrwxrwxrwx"
)

// BodyFileRow is one mactime line:
// md5|name|inode|mode|uid|gid|size|atime|mtime|ctime|crtime
type BodyFileRow struct {
	Md5                string
	Name               string
	Inode              string
	Mode               string
	Uid                int
	Gid                int
	Size               uint64
	AccessTime         int64
	ModifiedTime       int64
	RecordModifiedTime int64
	CreatedTime        int64
}

func (self *BodyFileRow) String() string {
	return fmt.Sprintf("%s|%s|%s|%s|%d|%d|%d|%d|%d|%d|%d",
		self.Md5, self.Name, self.Inode, self.Mode, self.Uid, self.Gid,
		self.Size, self.AccessTime, self.ModifiedTime,
		self.RecordModifiedTime, self.CreatedTime)
}

// BodyfileRows gives the $STANDARD_INFORMATION row followed by the
// $FILE_NAME row for a record.
func BodyfileRows(record *NormalizedRecord, drive_letter string) []*BodyFileRow {
	name := bodyfileName(record, drive_letter)
	if !record.InUse {
		name += " (deleted)"
	}

	si_type := ATTR_TYPE_DATA
	if record.IsDirectory && !record.IsAds {
		si_type = ATTR_TYPE_INDEX_ROOT
	}

	si_row := &BodyFileRow{
		Md5:  "0",
		Name: name,
		Inode: fmt.Sprintf("%d-%d-%d", record.EntryNumber,
			uint32(si_type), record.OtherAttributeId),
		Mode:               bodyfileMode,
		Size:               record.FileSize,
		AccessTime:         record.LastAccess0x10.Unix(),
		ModifiedTime:       record.LastModified0x10.Unix(),
		RecordModifiedTime: record.LastRecordChange0x10.Unix(),
		CreatedTime:        record.Created0x10.Unix(),
	}

	fn_name := bodyfileName(record, drive_letter) + " ($FILE_NAME)"
	if !record.InUse {
		fn_name += " (deleted)"
	}

	fn_row := &BodyFileRow{
		Md5:  "0",
		Name: fn_name,
		Inode: fmt.Sprintf("%d-%d-%d", record.EntryNumber,
			uint32(ATTR_TYPE_FILE_NAME), record.FnAttributeId),
		Mode:               bodyfileMode,
		Size:               record.FileSize,
		AccessTime:         fallback(record.LastAccess0x30, record.LastAccess0x10),
		ModifiedTime:       fallback(record.LastModified0x30, record.LastModified0x10),
		RecordModifiedTime: fallback(record.LastRecordChange0x30, record.LastRecordChange0x10),
		CreatedTime:        fallback(record.Created0x30, record.Created0x10),
	}

	return []*BodyFileRow{si_row, fn_row}
}

// c:/Windows/notepad.exe from ".\Windows" and "notepad.exe". The
// drive letter may be given as "C" or "C:".
func bodyfileName(record *NormalizedRecord, drive_letter string) string {
	drive_letter = strings.TrimSuffix(drive_letter, ":")

	parent := strings.TrimPrefix(record.ParentPath, ".")
	parent = strings.TrimSuffix(parent, `\`)

	name := fmt.Sprintf("%s:%s\\%s", strings.ToLower(drive_letter),
		parent, record.FileName)
	return strings.Replace(name, `\`, "/", -1)
}

func fallback(primary *time.Time, secondary time.Time) int64 {
	if primary != nil {
		return primary.Unix()
	}
	return secondary.Unix()
}
