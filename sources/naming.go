package sources

import (
	"fmt"
	"time"
)

const (
	runTimestampFormat = "20060102150405"
	outputSuffix       = "MFTECmd_$MFT_Output"
)

// BaseName gives the output file name stem of a source.
//
//	20240102030405_MFTECmd_$MFT_Output
//	20240102030405_VSS3_20231201101112_MFTECmd_$MFT_Output
func BaseName(source *SourceDescriptor, run_time time.Time) string {
	if source.IsVSS {
		return fmt.Sprintf("%s_VSS%d_%s_%s",
			run_time.Format(runTimestampFormat), source.VssNumber,
			source.VssCreated.Format(runTimestampFormat), outputSuffix)
	}

	return fmt.Sprintf("%s_%s",
		run_time.Format(runTimestampFormat), outputSuffix)
}

// OutputName picks the file name for one sink. An explicit name is
// used as is for the primary source and prefixed with the snapshot
// details for shadow copies so snapshots never overwrite each other.
func OutputName(source *SourceDescriptor, run_time time.Time,
	explicit, suffix string) string {
	if explicit == "" {
		return BaseName(source, run_time) + suffix
	}

	if source.IsVSS {
		return fmt.Sprintf("VSS%d_%s_%s", source.VssNumber,
			source.VssCreated.Format(runTimestampFormat), explicit)
	}
	return explicit
}
