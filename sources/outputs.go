package sources

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"www.velocidex.com/golang/mftecmd/sinks"
)

var ErrDestinationUnavailable = errors.New("Destination unavailable")

// CheckDestination fails when the volume root of an output directory
// is missing. The directory itself is created later on demand.
func CheckDestination(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return errors.Wrap(ErrDestinationUnavailable, err.Error())
	}

	root := filepath.VolumeName(abs) + string(filepath.Separator)
	_, err = os.Stat(root)
	if err != nil {
		return errors.Wrapf(ErrDestinationUnavailable, "%v: %v", root, err)
	}
	return nil
}

func CreateOutput(dir, name string) (*os.File, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, errors.Wrapf(err, "CreateOutput %v", dir)
	}

	return os.OpenFile(filepath.Join(dir, name),
		os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
}

// SinkFactory opens the sinks of one source.
type SinkFactory interface {
	NewSinks(source *SourceDescriptor, run_time time.Time) (sinks.Sink, error)
}

// FileSinkFactory writes every configured output kind into its own
// directory.
type FileSinkFactory struct {
	Config *Config
}

func (self FileSinkFactory) NewSinks(
	source *SourceDescriptor, run_time time.Time) (sinks.Sink, error) {
	config := self.Config
	fan_out := sinks.NewFanOut()

	open := func(dir, explicit, suffix string) (*os.File, error) {
		name := OutputName(source, run_time, explicit, suffix)
		return CreateOutput(dir, name)
	}

	if config.CsvDir != "" {
		fd, err := open(config.CsvDir, config.CsvName, ".csv")
		if err != nil {
			fan_out.Close()
			return nil, err
		}
		fan_out.Add(sinks.NewCSVSink(fd, config.DateTimeFormat))
	}

	if config.JsonDir != "" {
		fd, err := open(config.JsonDir, config.JsonName, ".json")
		if err != nil {
			fan_out.Close()
			return nil, err
		}
		fan_out.Add(sinks.NewJSONSink(fd))
	}

	if config.BodyDir != "" {
		fd, err := open(config.BodyDir, config.BodyName, ".body")
		if err != nil {
			fan_out.Close()
			return nil, err
		}
		fan_out.Add(sinks.NewBodyfileSink(
			fd, config.BodyDriveLetter, config.BodyLF))
	}

	if config.FileListDir != "" {
		fd, err := open(config.FileListDir, config.FileListName,
			"_FileListing.csv")
		if err != nil {
			fan_out.Close()
			return nil, err
		}
		fan_out.Add(sinks.NewFileListSink(fd, config.DateTimeFormat))
	}

	return fan_out, nil
}
