package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/Velocidex/json"
	"github.com/davecgh/go-spew/spew"
	"github.com/olekukonko/tablewriter"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/mftecmd/logging"
	"www.velocidex.com/golang/mftecmd/records"
	"www.velocidex.com/golang/mftecmd/sinks"
)

var (
	de_command = app.Command(
		"de", "Dump a single entry of a raw $MFT.")

	de_command_file_arg = de_command.Arg(
		"file", "The $MFT file to inspect",
	).Required().String()

	de_command_arg = de_command.Arg(
		"address", "The entry, or entry-sequence (decimal or 0x hex).",
	).Required().String()

	de_command_sn = de_command.Flag(
		"sn", "Include DOS 8.3 short names").Bool()

	de_command_at = de_command.Flag(
		"at", "Always populate the 0x30 timestamps").Bool()

	de_command_timestomp_rule = de_command.Flag(
		"timestomp_rule", "Which $FILE_NAME timestamps are compared "+
			"(created, created-or-modified)").Default("created").String()
)

func doDE() {
	rule, err := records.ParseTimestompRule(*de_command_timestomp_rule)
	kingpin.FatalIfError(err, "Invalid options")

	mft_file := loadMFT(*de_command_file_arg)
	key := resolveAddress(mft_file, *de_command_arg)

	record, pres := mft_file.Get(key)
	if !pres {
		kingpin.Fatalf("Entry %v not found", key)
	}

	options := records.GetDefaultOptions()
	options.IncludeShortNames = *de_command_sn
	options.AlwaysPopulate0x30 = *de_command_at
	options.TimestompRule = rule

	normalizer := records.NewNormalizer(options, mft_file,
		logging.Get(), *de_command_file_arg)

	err = normalizer.Normalize(record, func(row *records.NormalizedRecord) error {
		serialized, err := json.Marshal(sinks.RecordRow(row, ""))
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		err = json.Indent(&buf, serialized, "", " ")
		if err != nil {
			return err
		}

		fmt.Println(buf.String())
		return nil
	})
	kingpin.FatalIfError(err, "Normalize")

	printAttributes(record)

	if *verbose_flag {
		spew.Dump(record)
	}
}

func printAttributes(record *records.RawFileRecord) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Type", "Id", "Name", "Details"})
	table.SetCaption(true, fmt.Sprintf(
		"Attributes of %v (in use %v, directory %v, references %v)",
		record.Key(), record.InUse, record.IsDirectory,
		record.ReferenceCount))
	table.SetAutoWrapText(false)
	defer table.Render()

	for _, attr := range record.Attributes {
		name, details := describeAttribute(attr)
		table.Append([]string{
			attr.Type().String(),
			fmt.Sprintf("%d", attr.Id()),
			name,
			details,
		})
	}
}

func describeAttribute(attr records.Attribute) (string, string) {
	switch t := attr.(type) {
	case *records.StandardInformation:
		return "", fmt.Sprintf("Created %v, Modified %v, Flags %v",
			t.Created, t.ContentModified, records.SiFlagNames(t.Flags))

	case *records.FileName:
		return t.Name, fmt.Sprintf("Parent %v, %v, Created %v, Modified %v",
			records.NewEntryKey(t.ParentEntryNumber, t.ParentSequenceNumber),
			t.NameType, t.Created, t.ContentModified)

	case *records.Data:
		return t.Name, fmt.Sprintf("Size %v, Resident %v", t.Size, t.IsResident)

	case *records.ObjectId:
		return "", t.FileDroid

	case *records.ReparsePoint:
		return t.PrintName, fmt.Sprintf("Tag 0x%08X, Target %v",
			t.Tag, t.SubstituteName)

	case *records.LoggedUtilityStream:
		return t.Name, ""

	case *records.IndexRoot:
		return "$I30", ""

	case *records.Malformed:
		return "", fmt.Sprintf("Malformed: %v", t.Err)
	}
	return "", ""
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case "de":
			doDE()
		default:
			return false
		}
		return true
	})
}
