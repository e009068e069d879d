package sources

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"www.velocidex.com/golang/go-ntfs/parser"
)

type rawStream struct {
	reader io.ReaderAt
	size   int64
	closer io.Closer
}

func (self *rawStream) ReadAt(buf []byte, offset int64) (int, error) {
	return self.reader.ReadAt(buf, offset)
}

func (self *rawStream) Size() int64 {
	return self.size
}

func (self *rawStream) Close() error {
	return self.closer.Close()
}

// NTFSRawCopier reads a file's $DATA stream by parsing the NTFS
// volume under it. This bypasses share locks held by the OS and
// works the same on shadow copy devices.
type NTFSRawCopier struct{}

func (self NTFSRawCopier) OpenRaw(path string) (Stream, error) {
	device, subpath, err := DeviceAndSubpath(path)
	if err != nil {
		return nil, err
	}

	fd, err := os.Open(device)
	if err != nil {
		return nil, errors.Wrapf(err, "Can not open device %v", device)
	}

	stream, err := openRawStream(fd, subpath)
	if err != nil {
		fd.Close()
		return nil, errors.Wrapf(err, "OpenRaw %v", path)
	}
	return stream, nil
}

type deviceReader interface {
	io.ReaderAt
	io.Closer
}

func openRawStream(device deviceReader, subpath string) (*rawStream, error) {
	reader, err := parser.NewPagedReader(device, 0x1000, 10000)
	if err != nil {
		return nil, err
	}

	ntfs_ctx, err := parser.GetNTFSContext(reader, 0)
	if err != nil {
		return nil, err
	}

	data, err := parser.GetDataForPath(ntfs_ctx, subpath)
	if err != nil {
		return nil, err
	}

	return &rawStream{
		reader: data,
		size:   parser.RangeSize(data),
		closer: device,
	}, nil
}
