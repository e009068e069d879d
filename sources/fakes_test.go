package sources

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"www.velocidex.com/golang/mftecmd/records"
	"www.velocidex.com/golang/mftecmd/sinks"
)

type fakeStream struct {
	*bytes.Reader
	closed bool
}

func (self *fakeStream) Close() error {
	self.closed = true
	return nil
}

func newFakeStream(data []byte) *fakeStream {
	return &fakeStream{Reader: bytes.NewReader(data)}
}

// mftContent looks like a raw $MFT to the classifier. The tag makes
// contents distinct.
func mftContent(tag string) []byte {
	data := make([]byte, 1024)
	copy(data, "FILE0")
	copy(data[100:], tag)
	return data
}

// fakeFiles serves both direct and raw opens.
type fakeFiles struct {
	files  map[string][]byte
	errors map[string]error
	opened []*fakeStream
	calls  []string
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{
		files:  make(map[string][]byte),
		errors: make(map[string]error),
	}
}

func (self *fakeFiles) open(kind, path string) (Stream, error) {
	self.calls = append(self.calls, kind+":"+path)

	err, pres := self.errors[kind+":"+path]
	if pres {
		return nil, err
	}

	data, pres := self.files[path]
	if !pres {
		return nil, errors.Wrap(ErrInputNotFound, path)
	}

	stream := newFakeStream(data)
	self.opened = append(self.opened, stream)
	return stream, nil
}

type fakeOpener struct {
	*fakeFiles
}

func (self fakeOpener) Open(path string) (Stream, error) {
	return self.open("open", path)
}

type fakeRaw struct {
	*fakeFiles
}

func (self fakeRaw) OpenRaw(path string) (Stream, error) {
	return self.open("raw", path)
}

type fakeShadows struct {
	shadows []*ShadowCopy
	err     error
}

func (self fakeShadows) ShadowCopies(path string) ([]*ShadowCopy, error) {
	return self.shadows, self.err
}

type fakeLoaded struct {
	*records.Collection
}

func (self fakeLoaded) ParentPath(entry uint32, sequence uint16) string {
	return "."
}

// fakeLoader gives one file per source, named after the tag stored
// in the content.
type fakeLoader struct {
	fail map[string]bool
}

func (self fakeLoader) Load(reader io.ReaderAt, size int64) (LoadedSource, error) {
	buf := make([]byte, 16)
	_, err := reader.ReadAt(buf, 100)
	if err != nil {
		return nil, err
	}
	tag := string(bytes.TrimRight(buf, "\x00"))

	if self.fail[tag] {
		return nil, errors.New("corrupt")
	}

	created := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	collection := records.NewCollection()
	collection.Add(&records.RawFileRecord{
		EntryNumber:    40,
		SequenceNumber: 1,
		InUse:          true,
		Attributes: []records.Attribute{
			&records.StandardInformation{
				Created:         created,
				ContentModified: created,
				RecordModified:  created,
				LastAccessed:    created,
			},
			&records.FileName{
				AttributeId:          2,
				ParentEntryNumber:    5,
				ParentSequenceNumber: 5,
				Created:              created,
				ContentModified:      created,
				RecordModified:       created,
				LastAccessed:         created,
				NameType:             records.NameTypeWin32,
				Name:                 tag + ".txt",
			},
		},
	})
	return fakeLoaded{collection}, nil
}

type memorySink struct {
	rows   []*records.NormalizedRecord
	closed bool
}

func (self *memorySink) Write(record *records.NormalizedRecord) error {
	self.rows = append(self.rows, record)
	return nil
}

func (self *memorySink) Close() error {
	self.closed = true
	return nil
}

type fakeSinkFactory struct {
	names []string
	sinks []*memorySink
}

func (self *fakeSinkFactory) NewSinks(
	source *SourceDescriptor, run_time time.Time) (sinks.Sink, error) {
	self.names = append(self.names, BaseName(source, run_time))
	sink := &memorySink{}
	self.sinks = append(self.sinks, sink)
	return sink, nil
}

var errLocked = &os.PathError{Op: "open", Path: `C:\$MFT`, Err: os.ErrPermission}
