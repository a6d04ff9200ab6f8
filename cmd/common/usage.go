package common

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

// UsageExample represents a usage example
type UsageExample struct {
	Command     string
	Description string
}

// UsageFormatter provides utilities for formatting flag usage
type UsageFormatter struct {
	AppName        string
	AppDescription string
	Examples       []UsageExample
}

// NewUsageFormatter creates a new usage formatter
func NewUsageFormatter(appName, description string) *UsageFormatter {
	return &UsageFormatter{
		AppName:        appName,
		AppDescription: description,
	}
}

// AddExample adds a usage example
func (u *UsageFormatter) AddExample(command, description string) *UsageFormatter {
	u.Examples = append(u.Examples, UsageExample{Command: command, Description: description})
	return u
}

// Install makes the formatter the usage function of the default flag set
func (u *UsageFormatter) Install() {
	flag.Usage = u.PrintUsage
}

// PrintUsage prints formatted usage information
func (u *UsageFormatter) PrintUsage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "%s - %s\n\n", u.AppName, u.AppDescription)
	fmt.Fprintf(out, "USAGE:\n  %s [OPTIONS]\n\n", filepath.Base(os.Args[0]))

	if len(u.Examples) > 0 {
		fmt.Fprintf(out, "EXAMPLES:\n")
		for _, example := range u.Examples {
			fmt.Fprintf(out, "  # %s\n  %s\n\n", example.Description, example.Command)
		}
	}

	fmt.Fprintf(out, "OPTIONS:\n")
	flag.PrintDefaults()
}
