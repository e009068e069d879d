package main

import (
	"os"

	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/mftecmd/logging"
)

type CommandHandler func(command string) bool

var (
	app = kingpin.New("mftecmd",
		"A tool for normalizing and exporting NTFS $MFT records.")

	verbose_flag = app.Flag(
		"verbose", "Show verbose information").Bool()

	log_level_flag = app.Flag(
		"log_level", "Log level (debug, info, warn, error)").
		Default("info").String()

	quiet_flag = trackedBool(app.Flag(
		"quiet", "Only log warnings and errors"))

	command_handlers []CommandHandler
)

func main() {
	app.HelpFlag.Short('h')
	app.UsageTemplate(kingpin.CompactUsageTemplate)
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	logging.Init(*log_level_flag, *quiet_flag)

	for _, command_handler := range command_handlers {
		if command_handler(command) {
			break
		}
	}
}
