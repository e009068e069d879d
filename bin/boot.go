package main

import (
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/mftecmd/artifact"
)

var (
	boot_command = app.Command(
		"boot", "Inspect a $Boot file or the first sector of an image.")

	boot_command_arg = boot_command.Arg(
		"file", "The file to inspect",
	).Required().File()
)

func doBoot() {
	sector := make([]byte, artifact.BootSectorSize)
	_, err := io.ReadFull(*boot_command_arg, sector)
	kingpin.FatalIfError(err, "Boot sector")

	info, err := artifact.ParseBoot(sector)
	kingpin.FatalIfError(err, "Boot sector")

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Field", "Value"})
	defer table.Render()

	row := info.Row()
	for _, key := range row.Keys() {
		value, _ := row.Get(key)
		table.Append([]string{key, fmt.Sprintf("%v", value)})
	}
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case "boot":
			doBoot()
		default:
			return false
		}
		return true
	})
}
