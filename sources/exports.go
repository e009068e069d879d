package sources

import (
	"fmt"
	"io"

	"github.com/Velocidex/ordereddict"
	"github.com/pkg/errors"
	"www.velocidex.com/golang/mftecmd/artifact"
	"www.velocidex.com/golang/mftecmd/sinks"
)

// artifactName is the output file name of a non $MFT artifact.
//
//	20240102030405_MFTECmd_$J_Output.csv
func artifactName(ctx *Context, explicit string, kind artifact.Kind,
	extension string) string {
	if explicit != "" {
		return explicit
	}
	return fmt.Sprintf("%s_MFTECmd_%v_Output%s",
		ctx.Now().Format(runTimestampFormat), kind, extension)
}

// ExportArtifact writes every entry of a $J, $I30 or $SDS source as
// one row to the configured CSV and JSON outputs. It returns the
// names of the written files and the number of rows.
func ExportArtifact(ctx *Context, source *SourceDescriptor,
	kind artifact.Kind) ([]string, int, error) {
	switch kind {
	case artifact.UsnJournal, artifact.I30, artifact.Sds:
	default:
		return nil, 0, errors.Wrapf(ErrUnsupportedArtifact, "%v", kind)
	}

	config := ctx.Config
	if config.CsvDir == "" && config.JsonDir == "" {
		return nil, 0, errors.Errorf(
			"%v output needs a CSV or JSON directory", kind)
	}

	date_format := config.DateTimeFormat
	if date_format == "" {
		date_format = sinks.DefaultDateTimeFormat
	}

	names := []string{}
	writers := []sinks.RowWriter{}

	close_all := func() error {
		var err error
		for _, writer := range writers {
			close_err := writer.Close()
			if err == nil {
				err = close_err
			}
		}
		return err
	}

	if config.CsvDir != "" {
		name := artifactName(ctx, config.CsvName, kind, ".csv")
		fd, err := CreateOutput(config.CsvDir, name)
		if err != nil {
			return nil, 0, err
		}
		names = append(names, name)
		writers = append(writers, sinks.NewCSVWriter(fd))
	}

	if config.JsonDir != "" {
		name := artifactName(ctx, config.JsonName, kind, ".json")
		fd, err := CreateOutput(config.JsonDir, name)
		if err != nil {
			close_all()
			return nil, 0, err
		}
		names = append(names, name)
		writers = append(writers, sinks.NewJSONWriter(fd))
	}

	rows := 0
	err := artifactRows(kind, source.Stream, source.Stream.Size(), date_format,
		func(row *ordereddict.Dict) error {
			row.Set("SourceFile", source.Path)
			rows++
			for _, writer := range writers {
				err := writer.WriteRow(row)
				if err != nil {
					return err
				}
			}
			return nil
		})

	close_err := close_all()
	if err == nil {
		err = close_err
	}
	if err != nil {
		return names, rows, errors.Wrapf(err, "Exporting %v", source.Path)
	}

	ctx.Logger.Infof("Wrote %d %v rows", rows, kind)
	return names, rows, nil
}

func artifactRows(kind artifact.Kind, reader io.ReaderAt, size int64,
	date_format string, cb func(row *ordereddict.Dict) error) error {
	switch kind {
	case artifact.UsnJournal:
		return artifact.ParseUsnJournal(reader, size,
			func(entry *artifact.UsnEntry) error {
				return cb(entry.Row(date_format))
			})

	case artifact.I30:
		return artifact.ParseI30(reader, size,
			func(entry *artifact.I30Entry) error {
				return cb(entry.Row(date_format))
			})

	case artifact.Sds:
		return artifact.ParseSds(reader, size,
			func(entry *artifact.SdsEntry) error {
				return cb(entry.Row())
			})
	}

	return errors.Wrapf(ErrUnsupportedArtifact, "%v", kind)
}
