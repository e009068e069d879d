package sources

import (
	"io"
	"time"

	"www.velocidex.com/golang/mftecmd/records"
)

// Stream is an opened artifact.
type Stream interface {
	io.ReaderAt
	io.Closer
	Size() int64
}

// Opener opens an artifact through the regular file API.
type Opener interface {
	Open(path string) (Stream, error)
}

// RawCopier reads a file straight off the volume so files locked by
// the OS and paths inside a shadow copy device can be read.
type RawCopier interface {
	OpenRaw(path string) (Stream, error)
}

type ShadowCopy struct {
	Number       int
	Created      time.Time
	DeviceObject string
}

// ShadowEnumerator lists the shadow copies of the volume holding
// path, ordered by number.
type ShadowEnumerator interface {
	ShadowCopies(path string) ([]*ShadowCopy, error)
}

// LoadedSource is a decoded artifact.
type LoadedSource interface {
	records.RecordSet
	records.PathResolver
}

type Loader interface {
	Load(reader io.ReaderAt, size int64) (LoadedSource, error)
}

// SourceDescriptor is one artifact taking part in a run: the primary
// file or a copy of it inside a shadow copy.
type SourceDescriptor struct {
	Path       string
	IsVSS      bool
	VssNumber  int
	VssCreated time.Time

	Stream      Stream
	Fingerprint uint64

	Records LoadedSource
}

func (self *SourceDescriptor) Close() error {
	if self.Stream == nil {
		return nil
	}
	err := self.Stream.Close()
	self.Stream = nil
	return err
}
