package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/mftecmd/artifact"
	"www.velocidex.com/golang/mftecmd/logging"
	"www.velocidex.com/golang/mftecmd/sources"
)

var (
	mft_command = app.Command(
		"mft", "Process a raw $MFT, $J, $I30, $SDS or $Boot file.")

	mft_command_file_arg = mft_command.Flag(
		"file", "The artifact to process",
	).Short('f').String()

	mft_command_config = mft_command.Flag(
		"config", "A YAML file with default options",
	).String()

	mft_command_csv = mft_command.Flag(
		"csv", "Directory to write CSV output to").String()

	mft_command_csvf = mft_command.Flag(
		"csvf", "File name for the CSV output").String()

	mft_command_json = mft_command.Flag(
		"json", "Directory to write JSON output to").String()

	mft_command_jsonf = mft_command.Flag(
		"jsonf", "File name for the JSON output").String()

	mft_command_body = mft_command.Flag(
		"body", "Directory to write bodyfile output to").String()

	mft_command_bodyf = mft_command.Flag(
		"bodyf", "File name for the bodyfile output").String()

	mft_command_bdl = mft_command.Flag(
		"bdl", "Drive letter to use in bodyfile names (C, D, ...)").String()

	mft_command_blf = trackedBool(mft_command.Flag(
		"blf", "Terminate bodyfile lines with LF instead of CRLF"))

	mft_command_fl = mft_command.Flag(
		"fl", "Directory to write the condensed file listing to").String()

	mft_command_flf = mft_command.Flag(
		"flf", "File name for the file listing").String()

	mft_command_dt = mft_command.Flag(
		"dt", "Go time layout for CSV timestamps").String()

	mft_command_sn = trackedBool(mft_command.Flag(
		"sn", "Include DOS 8.3 short names"))

	mft_command_at = trackedBool(mft_command.Flag(
		"at", "Always populate the 0x30 timestamps"))

	mft_command_timestomp_rule = mft_command.Flag(
		"timestomp_rule", "Which $FILE_NAME timestamps are compared "+
			"(created, created-or-modified)").String()

	mft_command_vss = trackedBool(mft_command.Flag(
		"vss", "Also process the artifact in every shadow copy"))

	mft_command_dedupe = trackedBool(mft_command.Flag(
		"dedupe", "Skip sources with identical content"))
)

// Flags that were given override the config file.
func applyFlags(config *sources.Config) {
	overrideString := func(target *string, value string) {
		if value != "" {
			*target = value
		}
	}

	overrideString(&config.File, *mft_command_file_arg)
	overrideString(&config.CsvDir, *mft_command_csv)
	overrideString(&config.CsvName, *mft_command_csvf)
	overrideString(&config.JsonDir, *mft_command_json)
	overrideString(&config.JsonName, *mft_command_jsonf)
	overrideString(&config.BodyDir, *mft_command_body)
	overrideString(&config.BodyName, *mft_command_bodyf)
	overrideString(&config.BodyDriveLetter, *mft_command_bdl)
	overrideString(&config.FileListDir, *mft_command_fl)
	overrideString(&config.FileListName, *mft_command_flf)
	overrideString(&config.DateTimeFormat, *mft_command_dt)
	overrideString(&config.TimestompRule, *mft_command_timestomp_rule)

	overrideBool(&config.BodyLF, mft_command_blf)
	overrideBool(&config.IncludeShortNames, mft_command_sn)
	overrideBool(&config.AlwaysPopulate0x30, mft_command_at)
	overrideBool(&config.Vss, mft_command_vss)
	overrideBool(&config.Dedupe, mft_command_dedupe)
	overrideBool(&config.Quiet, quiet_flag)
}

func doMFT() {
	config := &sources.Config{}
	if *mft_command_config != "" {
		loaded, err := sources.LoadConfig(*mft_command_config)
		kingpin.FatalIfError(err, "Can not load config")
		config = loaded
	}
	applyFlags(config)

	if config.LogLevel != "" || config.Quiet {
		level := config.LogLevel
		if level == "" {
			level = *log_level_flag
		}
		logging.Init(level, config.Quiet)
	}

	kingpin.FatalIfError(config.Validate(), "Invalid options")

	ctx, err := sources.NewContext(config, logging.Get())
	kingpin.FatalIfError(err, "Invalid options")

	kingpin.FatalIfError(sources.CheckDestinations(ctx), "Output")

	processor := sources.NewProcessor(sources.MFTLoader{Loader: newLoader(config.Quiet)})
	primary, kind, err := processor.OpenPrimary(ctx)
	kingpin.FatalIfError(err, "Can not open %v", config.File)

	logging.Get().Infof("%v looks like a %v file", config.File, kind)

	switch kind {
	case artifact.Mft:
		result, err := processor.Process(ctx, primary)
		if result != nil {
			printSummary(result, config.Quiet)
		}
		kingpin.FatalIfError(err, "Processing %v", config.File)

	case artifact.UsnJournal, artifact.I30, artifact.Sds:
		result, err := processor.Export(ctx, primary, kind)
		if result != nil {
			printSummary(result, config.Quiet)
		}
		kingpin.FatalIfError(err, "Processing %v", config.File)

	case artifact.Boot:
		defer primary.Close()

		name, err := sources.WriteBootSummary(ctx, primary)
		kingpin.FatalIfError(err, "Processing %v", config.File)
		logging.Get().Infof("Wrote %v", name)

	default:
		primary.Close()
		kingpin.Fatalf("%v: %v (%v)", config.File,
			sources.ErrUnsupportedArtifact, kind)
	}
}

func printSummary(result *sources.Result, quiet bool) {
	if quiet {
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Source", "Shadow Copy", "Status"})
	table.SetCaption(true, fmt.Sprintf("%d rows written", result.Rows))
	defer table.Render()

	add := func(source *sources.SourceDescriptor, status string) {
		vss := ""
		if source.IsVSS {
			vss = fmt.Sprintf("VSS%d (%v)", source.VssNumber,
				source.VssCreated.Format("2006-01-02 15:04:05"))
		}
		table.Append([]string{source.Path, vss, status})
	}

	for _, source := range result.Processed {
		add(source, "Processed")
	}
	for _, source := range result.Duplicates {
		add(source, "Duplicate")
	}
	for _, source := range result.Failed {
		add(source, "Failed")
	}
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case "mft":
			doMFT()
		default:
			return false
		}
		return true
	})
}
