package sinks

import (
	"bufio"
	"io"

	"github.com/Velocidex/json"
	"github.com/Velocidex/ordereddict"
	"github.com/pkg/errors"
	"www.velocidex.com/golang/mftecmd/records"
)

// RowWriter writes ordered rows to one output file.
type RowWriter interface {
	WriteRow(row *ordereddict.Dict) error
	Close() error
}

// JSONWriter writes one JSON object per line.
type JSONWriter struct {
	fd  io.WriteCloser
	buf *bufio.Writer
}

func NewJSONWriter(fd io.WriteCloser) *JSONWriter {
	return &JSONWriter{
		fd:  fd,
		buf: bufio.NewWriterSize(fd, 1024*1024),
	}
}

func (self *JSONWriter) WriteRow(row *ordereddict.Dict) error {
	serialized, err := json.Marshal(row)
	if err != nil {
		return errors.Wrap(err, "JSON")
	}

	_, err = self.buf.Write(serialized)
	if err != nil {
		return err
	}
	_, err = self.buf.Write([]byte("\n"))
	return err
}

func (self *JSONWriter) Close() error {
	err := self.buf.Flush()
	close_err := self.fd.Close()
	if err == nil {
		err = close_err
	}
	return err
}

// JSONSink keeps every row of the source in memory and writes them
// as one JSON object per line when closed.
type JSONSink struct {
	writer *JSONWriter
	rows   []*ordereddict.Dict
}

func NewJSONSink(fd io.WriteCloser) *JSONSink {
	return &JSONSink{writer: NewJSONWriter(fd)}
}

func (self *JSONSink) Write(record *records.NormalizedRecord) error {
	self.rows = append(self.rows, RecordRow(record, ""))
	return nil
}

func (self *JSONSink) Close() error {
	var err error
	for _, row := range self.rows {
		err = self.writer.WriteRow(row)
		if err != nil {
			break
		}
	}
	self.rows = nil

	close_err := self.writer.Close()
	if err == nil {
		err = close_err
	}
	return err
}
