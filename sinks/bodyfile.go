package sinks

import (
	"bufio"
	"io"

	"www.velocidex.com/golang/mftecmd/records"
)

type BodyfileSink struct {
	fd           io.WriteCloser
	buf          *bufio.Writer
	drive_letter string
	newline      string
}

// NewBodyfileSink writes CRLF terminated lines unless lf is set.
func NewBodyfileSink(fd io.WriteCloser, drive_letter string, lf bool) *BodyfileSink {
	newline := "\r\n"
	if lf {
		newline = "\n"
	}

	return &BodyfileSink{
		fd:           fd,
		buf:          bufio.NewWriterSize(fd, 1024*1024),
		drive_letter: drive_letter,
		newline:      newline,
	}
}

func (self *BodyfileSink) Write(record *records.NormalizedRecord) error {
	for _, row := range records.BodyfileRows(record, self.drive_letter) {
		_, err := self.buf.WriteString(row.String() + self.newline)
		if err != nil {
			return err
		}
	}
	return nil
}

func (self *BodyfileSink) Close() error {
	err := self.buf.Flush()
	close_err := self.fd.Close()
	if err == nil {
		err = close_err
	}
	return err
}
