package sinks

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/Velocidex/ordereddict"
	"github.com/pkg/errors"
	"www.velocidex.com/golang/mftecmd/records"
)

// CSVWriter writes ordered rows. The first row's keys become the
// header.
type CSVWriter struct {
	fd      io.WriteCloser
	buf     *bufio.Writer
	csvw    *csv.Writer
	headers []string
}

func NewCSVWriter(fd io.WriteCloser) *CSVWriter {
	buf := bufio.NewWriterSize(fd, 1024*1024)
	return &CSVWriter{
		fd:   fd,
		buf:  buf,
		csvw: csv.NewWriter(buf),
	}
}

func (self *CSVWriter) WriteRow(row *ordereddict.Dict) error {
	if self.headers == nil {
		self.headers = row.Keys()
		err := self.csvw.Write(self.headers)
		if err != nil {
			return errors.Wrap(err, "CSV header")
		}
	}

	values := make([]string, 0, len(self.headers))
	for _, key := range self.headers {
		value, _ := row.Get(key)
		values = append(values, formatValue(value))
	}

	return self.csvw.Write(values)
}

func (self *CSVWriter) Close() error {
	self.csvw.Flush()
	err := self.csvw.Error()
	if err == nil {
		err = self.buf.Flush()
	}

	close_err := self.fd.Close()
	if err == nil {
		err = close_err
	}
	return err
}

func formatValue(value interface{}) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%v", value)
}

// CSVSink writes the full record layout.
type CSVSink struct {
	writer      *CSVWriter
	date_format string
}

func NewCSVSink(fd io.WriteCloser, date_format string) *CSVSink {
	if date_format == "" {
		date_format = DefaultDateTimeFormat
	}
	return &CSVSink{
		writer:      NewCSVWriter(fd),
		date_format: date_format,
	}
}

func (self *CSVSink) Write(record *records.NormalizedRecord) error {
	return self.writer.WriteRow(RecordRow(record, self.date_format))
}

func (self *CSVSink) Close() error {
	return self.writer.Close()
}

// FileListSink writes the condensed listing. Stream rows are left
// out.
type FileListSink struct {
	writer      *CSVWriter
	date_format string
}

func NewFileListSink(fd io.WriteCloser, date_format string) *FileListSink {
	if date_format == "" {
		date_format = DefaultDateTimeFormat
	}
	return &FileListSink{
		writer:      NewCSVWriter(fd),
		date_format: date_format,
	}
}

func (self *FileListSink) Write(record *records.NormalizedRecord) error {
	if record.IsAds {
		return nil
	}
	return self.writer.WriteRow(FileListRow(record, self.date_format))
}

func (self *FileListSink) Close() error {
	return self.writer.Close()
}
