package main

import (
	"fmt"

	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/mftecmd/artifact"
)

var (
	classify_command = app.Command(
		"classify", "Report which NTFS artifact a file holds.")

	classify_command_files = classify_command.Arg(
		"files", "Files to check",
	).Required().Strings()
)

func doClassify() {
	for _, path := range *classify_command_files {
		header, err := artifact.ReadHeader(path)
		kingpin.FatalIfError(err, "Can not read %v", path)

		fmt.Printf("%v: %v\n", path, artifact.Classify(header))
	}
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case "classify":
			doClassify()
		default:
			return false
		}
		return true
	})
}
