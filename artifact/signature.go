package artifact

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

type Kind int

const (
	Unknown Kind = iota
	Mft
	LogFile
	UsnJournal
	Boot
	Sds
	I30
)

func (self Kind) String() string {
	switch self {
	case Mft:
		return "$MFT"
	case LogFile:
		return "$LogFile"
	case UsnJournal:
		return "$J"
	case Boot:
		return "$Boot"
	case Sds:
		return "$SDS"
	case I30:
		return "$I30"
	}
	return "Unknown"
}

const (
	HeaderSize = 50

	sigFile uint32 = 0x454C4946 // FILE
	sigRstr uint32 = 0x52545352 // RSTR
	sigRcrd uint32 = 0x44524352 // RCRD
	sigIndx uint32 = 0x58444E49 // INDX

	// The first $SDS entry is always the one for security id 0x100.
	sdsFirstSecurityId uint32 = 0x100
)

// Classify guesses the artifact kind from the first bytes of a
// file. Short headers classify as Unknown.
func Classify(header []byte) Kind {
	if len(header) < 16 {
		return Unknown
	}

	sig := binary.LittleEndian.Uint32(header[0:4])
	switch sig {
	case sigFile:
		return Mft
	case sigRstr, sigRcrd:
		return LogFile
	case sigIndx:
		return I30
	}

	if sig != 0 && binary.LittleEndian.Uint32(header[4:8]) == sdsFirstSecurityId {
		return Sds
	}

	major := binary.LittleEndian.Uint16(header[4:6])
	minor := binary.LittleEndian.Uint16(header[6:8])

	if sig == 0 && major == 0 && minor == 0 {
		return UsnJournal
	}

	if bytes.Equal(header[3:7], []byte("NTFS")) {
		return Boot
	}

	if major == 2 && minor == 0 {
		return UsnJournal
	}

	if bytes.Equal(header[8:16], make([]byte, 8)) {
		return Sds
	}

	return Unknown
}

// ReadHeader reads the bytes Classify needs.
func ReadHeader(path string) ([]byte, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	buf := make([]byte, HeaderSize)
	n, err := io.ReadFull(fd, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) &&
		!errors.Is(err, io.EOF) {
		return nil, errors.Wrapf(err, "Reading header of %v", path)
	}
	return buf[:n], nil
}
