package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/mftecmd/records"
)

var (
	ls_command = app.Command(
		"ls", "List a directory of a raw $MFT.")

	ls_command_file_arg = ls_command.Arg(
		"file", "The $MFT file to inspect",
	).Required().String()

	ls_command_arg = ls_command.Arg(
		"address", "The directory's entry, or entry-sequence.",
	).Default("5").String()
)

func doLS() {
	mft_file := loadMFT(*ls_command_file_arg)

	key, children, err := records.ListDirectory(
		mft_file, mft_file, *ls_command_arg)
	var ambiguous *records.AmbiguousAddressError
	if errors.As(err, &ambiguous) {
		reportAddressError(err, *ls_command_arg)
	}
	kingpin.FatalIfError(err, "Can not list %v", *ls_command_arg)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"Entry",
		"FileName",
		"IsDir",
		"InUse",
	})
	table.SetCaption(true, fmt.Sprintf(
		"Directory listing for %v (%v)", key,
		mft_file.ParentPath(key.Entry(), key.Sequence())))
	defer table.Render()

	for _, child := range children {
		table.Append([]string{
			child.Key.String(),
			child.FileName,
			fmt.Sprintf("%v", child.IsDirectory),
			fmt.Sprintf("%v", child.InUse),
		})
	}
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case "ls":
			doLS()
		default:
			return false
		}
		return true
	})
}
