package sources

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"www.velocidex.com/golang/mftecmd/artifact"
	"www.velocidex.com/golang/mftecmd/mft"
	"www.velocidex.com/golang/mftecmd/records"
)

// Context carries the state of one run. Nothing outlives it.
type Context struct {
	Config  *Config
	Options records.Options
	Logger  logrus.FieldLogger
	Sinks   SinkFactory

	// Clock for output file names.
	Now func() time.Time
}

func NewContext(config *Config, logger logrus.FieldLogger) (*Context, error) {
	options, err := config.Options()
	if err != nil {
		return nil, err
	}

	return &Context{
		Config:  config,
		Options: options,
		Logger:  logger,
		Sinks:   FileSinkFactory{Config: config},
		Now:     time.Now,
	}, nil
}

// MFTLoader decodes sources as raw $MFT files.
type MFTLoader struct {
	mft.Loader
}

func (self MFTLoader) Load(reader io.ReaderAt, size int64) (LoadedSource, error) {
	result, err := self.Loader.Load(reader, size)
	if err != nil {
		return nil, err
	}
	return result, nil
}

type Result struct {
	// Sources that were written out, in processing order.
	Processed []*SourceDescriptor

	// Sources skipped because an earlier source had the same
	// content.
	Duplicates []*SourceDescriptor

	// Sources that could not be opened or processed.
	Failed []*SourceDescriptor

	Rows int
}

// Processor runs the primary artifact and optionally its shadow
// copies through normalization and the configured sinks, one source
// at a time.
type Processor struct {
	Opener  Opener
	Raw     RawCopier
	Shadows ShadowEnumerator
	Loader  Loader
}

func NewProcessor(loader Loader) *Processor {
	return &Processor{
		Opener:  FileOpener{},
		Raw:     NTFSRawCopier{},
		Shadows: WMIShadowEnumerator{},
		Loader:  loader,
	}
}

// OpenPrimary opens the input file, falling back to reading it off
// the raw volume when the OS holds it locked, and classifies it.
func (self *Processor) OpenPrimary(ctx *Context) (
	*SourceDescriptor, artifact.Kind, error) {
	path := ctx.Config.File

	stream, err := self.Opener.Open(path)
	if err != nil && IsAccessDenied(err) {
		ctx.Logger.Infof("%v is locked, reading it from the raw volume", path)
		stream, err = self.Raw.OpenRaw(path)
	}
	if err != nil {
		return nil, artifact.Unknown, err
	}

	header := make([]byte, artifact.HeaderSize)
	n, err := stream.ReadAt(header, 0)
	if err != nil && err != io.EOF && n == 0 {
		stream.Close()
		return nil, artifact.Unknown, errors.Wrapf(err, "Reading %v", path)
	}

	return &SourceDescriptor{
		Path:   path,
		Stream: stream,
	}, artifact.Classify(header[:n]), nil
}

// CheckDestinations verifies every output location before anything
// is read.
func CheckDestinations(ctx *Context) error {
	for _, dir := range ctx.Config.Destinations() {
		err := CheckDestination(dir)
		if err != nil {
			return err
		}
	}
	return nil
}

// Run processes a run end to end. $MFT files go through
// normalization. $J, $I30 and $SDS files are exported entry by entry.
func (self *Processor) Run(ctx *Context) (*Result, error) {
	err := CheckDestinations(ctx)
	if err != nil {
		return nil, err
	}

	primary, kind, err := self.OpenPrimary(ctx)
	if err != nil {
		return nil, err
	}

	switch kind {
	case artifact.Mft:
		return self.Process(ctx, primary)
	case artifact.UsnJournal, artifact.I30, artifact.Sds:
		return self.Export(ctx, primary, kind)
	}

	primary.Close()
	return nil, errors.Wrapf(ErrUnsupportedArtifact, "%v", kind)
}

// Export writes the entries of a $J, $I30 or $SDS primary source.
// Shadow copies are only searched for $MFT files.
func (self *Processor) Export(ctx *Context,
	primary *SourceDescriptor, kind artifact.Kind) (*Result, error) {
	defer primary.Close()

	if ctx.Config.Vss {
		ctx.Logger.Warnf("Shadow copies are not processed for %v files", kind)
	}

	_, rows, err := ExportArtifact(ctx, primary, kind)
	result := &Result{Rows: rows}
	if err != nil {
		result.Failed = append(result.Failed, primary)
		return result, err
	}

	result.Processed = append(result.Processed, primary)
	return result, nil
}

// Process handles an opened primary source. Failures of single
// sources are logged and the remaining sources still run. The error
// of the primary source, if any, is returned at the end.
func (self *Processor) Process(
	ctx *Context, primary *SourceDescriptor) (*Result, error) {
	result := &Result{}
	run_time := ctx.Now()

	sources := []*SourceDescriptor{primary}
	if ctx.Config.Vss {
		sources = append(sources, self.openShadows(ctx, primary, result)...)
	}

	defer func() {
		for _, source := range sources {
			source.Close()
		}
	}()

	if ctx.Config.Dedupe {
		sources = self.dedupe(ctx, sources, result)
	}

	var primary_err error
	for _, source := range sources {
		rows, err := self.processSource(ctx, source, run_time)
		result.Rows += rows
		source.Records = nil
		source.Close()

		if err != nil {
			ctx.Logger.WithFields(logrus.Fields{
				"source": source.Path,
			}).Errorf("Processing failed: %v", err)
			result.Failed = append(result.Failed, source)
			if !source.IsVSS {
				primary_err = err
			}
			continue
		}
		result.Processed = append(result.Processed, source)
	}

	return result, primary_err
}

func (self *Processor) openShadows(ctx *Context,
	primary *SourceDescriptor, result *Result) []*SourceDescriptor {
	shadows, err := self.Shadows.ShadowCopies(primary.Path)
	if err != nil {
		ctx.Logger.Errorf("Unable to list shadow copies: %v", err)
		return nil
	}

	ctx.Logger.Infof("Found %d shadow copies", len(shadows))

	opened := []*SourceDescriptor{}
	for _, shadow := range shadows {
		source := &SourceDescriptor{
			IsVSS:      true,
			VssNumber:  shadow.Number,
			VssCreated: shadow.Created,
		}

		path, err := ShadowPath(shadow, primary.Path)
		if err == nil {
			source.Path = path
			source.Stream, err = self.Raw.OpenRaw(path)
		}

		if err != nil {
			ctx.Logger.WithFields(logrus.Fields{
				"vss": shadow.Number,
			}).Errorf("Unable to open shadow copy: %v", err)
			result.Failed = append(result.Failed, source)
			continue
		}
		opened = append(opened, source)
	}

	return opened
}

func (self *Processor) dedupe(ctx *Context,
	sources []*SourceDescriptor, result *Result) []*SourceDescriptor {
	hashed := []*SourceDescriptor{}
	for _, source := range sources {
		fingerprint, err := Fingerprint(source.Stream, source.Stream.Size())
		if err != nil {
			ctx.Logger.WithFields(logrus.Fields{
				"source": source.Path,
			}).Errorf("Unable to fingerprint: %v", err)
			source.Close()
			result.Failed = append(result.Failed, source)
			continue
		}
		source.Fingerprint = fingerprint
		hashed = append(hashed, source)
	}

	retained, dropped := dedupe(hashed)
	for _, source := range dropped {
		ctx.Logger.Infof("Skipping %v: same content as an earlier source",
			source.Path)
	}
	result.Duplicates = append(result.Duplicates, dropped...)

	return retained
}

func (self *Processor) processSource(ctx *Context,
	source *SourceDescriptor, run_time time.Time) (int, error) {
	logger := ctx.Logger.WithFields(logrus.Fields{
		"source": source.Path,
	})
	logger.Infof("Processing %v", source.Path)

	loaded, err := self.Loader.Load(source.Stream, source.Stream.Size())
	if err != nil {
		return 0, errors.Wrapf(err, "Loading %v", source.Path)
	}
	source.Records = loaded

	sink, err := ctx.Sinks.NewSinks(source, run_time)
	if err != nil {
		return 0, err
	}

	normalizer := records.NewNormalizer(
		ctx.Options, loaded, logger, source.Path)

	rows := 0
	err = records.EachRecord(loaded, func(record *records.RawFileRecord) error {
		return normalizer.Normalize(record,
			func(row *records.NormalizedRecord) error {
				rows++
				return sink.Write(row)
			})
	})

	close_err := sink.Close()
	if err == nil {
		err = close_err
	}

	logger.Infof("Wrote %d rows", rows)
	return rows, err
}
