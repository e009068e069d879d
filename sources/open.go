package sources

import (
	"os"

	"github.com/pkg/errors"
)

var (
	ErrInputNotFound       = errors.New("Input not found")
	ErrUnsupportedArtifact = errors.New("Unsupported artifact")
)

type fileStream struct {
	*os.File
	size int64
}

func (self *fileStream) Size() int64 {
	return self.size
}

// FileOpener opens artifacts with the regular file API.
type FileOpener struct{}

func (self FileOpener) Open(path string) (Stream, error) {
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(ErrInputNotFound, path)
		}
		return nil, err
	}

	if stat.IsDir() {
		return nil, errors.Wrapf(ErrInputNotFound, "%v is a directory", path)
	}

	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	return &fileStream{File: fd, size: stat.Size()}, nil
}
