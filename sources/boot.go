package sources

import (
	"github.com/pkg/errors"
	"www.velocidex.com/golang/mftecmd/artifact"
	"www.velocidex.com/golang/mftecmd/sinks"
)

// WriteBootSummary writes the decoded boot sector of source as a
// single CSV row and returns the output file name.
func WriteBootSummary(ctx *Context, source *SourceDescriptor) (string, error) {
	if ctx.Config.CsvDir == "" {
		return "", errors.New("$Boot output needs a CSV directory")
	}

	sector := make([]byte, artifact.BootSectorSize)
	n, _ := source.Stream.ReadAt(sector, 0)
	if n < len(sector) {
		return "", errors.Errorf("Short boot sector in %v: %v bytes",
			source.Path, n)
	}

	info, err := artifact.ParseBoot(sector)
	if err != nil {
		return "", err
	}

	name := artifactName(ctx, ctx.Config.CsvName, artifact.Boot, ".csv")

	fd, err := CreateOutput(ctx.Config.CsvDir, name)
	if err != nil {
		return "", err
	}

	writer := sinks.NewCSVWriter(fd)
	err = writer.WriteRow(info.Row())
	close_err := writer.Close()
	if err == nil {
		err = close_err
	}
	return name, err
}
