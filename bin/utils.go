package main

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/mftecmd/artifact"
	"www.velocidex.com/golang/mftecmd/logging"
	"www.velocidex.com/golang/mftecmd/mft"
	"www.velocidex.com/golang/mftecmd/records"
	"www.velocidex.com/golang/mftecmd/sources"
)

// newProgress draws a bar on stderr. A new bar is started whenever
// counting restarts at zero.
func newProgress(description string, quiet bool) func(done, total int64) {
	var bar *progressbar.ProgressBar

	return func(done, total int64) {
		if quiet {
			return
		}

		if bar == nil || done == 0 {
			bar = progressbar.NewOptions64(total,
				progressbar.OptionSetDescription(description),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionSetPredictTime(true),
				progressbar.OptionThrottle(100*time.Millisecond),
				progressbar.OptionClearOnFinish(),
				progressbar.OptionFullWidth(),
			)
		}

		_ = bar.Set64(done)
		if done >= total {
			_ = bar.Finish()
		}
	}
}

func newLoader(quiet bool) mft.Loader {
	return mft.Loader{
		Logger:   logging.Get(),
		Progress: newProgress("Loading records", quiet),
	}
}

// Bool flags given on the command line. A config file value is only
// overridden by a flag that was given, so --no-vss can turn off a
// vss: true in the YAML file.
var flags_given = make(map[*bool]bool)

func trackedBool(clause *kingpin.FlagClause) *bool {
	target := new(bool)
	clause.Action(func(*kingpin.ParseContext) error {
		flags_given[target] = true
		return nil
	}).BoolVar(target)
	return target
}

func overrideBool(target *bool, flag *bool) {
	if flags_given[flag] {
		*target = *flag
	}
}

// loadMFT opens a raw $MFT, reading it off the volume if it is
// locked.
func loadMFT(path string) *mft.MFTFile {
	ctx := &sources.Context{
		Config: &sources.Config{File: path},
		Logger: logging.Get(),
		Now:    time.Now,
	}

	source, kind, err := sources.NewProcessor(nil).OpenPrimary(ctx)
	kingpin.FatalIfError(err, "Can not open %v", path)
	defer source.Close()

	if kind != artifact.Mft {
		kingpin.Fatalf("%v is a %v file, not an $MFT", path, kind)
	}

	mft_file, err := newLoader(*quiet_flag).Load(source.Stream, source.Stream.Size())
	kingpin.FatalIfError(err, "Can not load %v", path)

	return mft_file
}

// resolveAddress prints every candidate of an ambiguous address
// before exiting.
func resolveAddress(set records.RecordSet, address string) records.EntryKey {
	key, err := records.Resolve(set, address)
	if err != nil {
		reportAddressError(err, address)
	}
	return key
}

func reportAddressError(err error, address string) {
	var ambiguous *records.AmbiguousAddressError
	if errors.As(err, &ambiguous) {
		for _, candidate := range ambiguous.Candidates {
			logging.Get().Errorf("Candidate: %v", candidate)
		}
		kingpin.Fatalf("Address %v matches %d records. Add a sequence "+
			"number to pick one.", address, len(ambiguous.Candidates))
	}
	kingpin.FatalIfError(err, "Can not resolve %v", address)
}
