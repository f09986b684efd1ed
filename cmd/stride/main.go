package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	Walk    WalkCommand    `command:"walk" description:"Run the gait controller headless"`
	Monitor MonitorCommand `command:"monitor" alias:"mon" description:"Run the gait controller with a live TUI"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "Stride - bipedal gait controller for the Z-Bot"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}
