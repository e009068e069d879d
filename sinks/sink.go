package sinks

import (
	"www.velocidex.com/golang/mftecmd/records"
)

// Sink consumes normalized records. Close flushes anything buffered
// and releases the underlying file.
type Sink interface {
	Write(record *records.NormalizedRecord) error
	Close() error
}

// FanOut hands every record to each configured sink in order. An
// empty FanOut is valid and discards everything.
type FanOut struct {
	sinks []Sink
}

func NewFanOut(sinks ...Sink) *FanOut {
	return &FanOut{sinks: sinks}
}

func (self *FanOut) Add(sink Sink) {
	self.sinks = append(self.sinks, sink)
}

func (self *FanOut) Len() int {
	return len(self.sinks)
}

func (self *FanOut) Write(record *records.NormalizedRecord) error {
	for _, sink := range self.sinks {
		err := sink.Write(record)
		if err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink even if some fail and reports the first
// error.
func (self *FanOut) Close() error {
	var result error
	for _, sink := range self.sinks {
		err := sink.Close()
		if err != nil && result == nil {
			result = err
		}
	}
	self.sinks = nil
	return result
}
