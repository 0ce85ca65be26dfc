// Command vhal-log views and analyzes broker trace files.
//
// Trace files are written by vhal-broker when started with -trace or with
// trace.path set in its configuration.
//
// Usage:
//
//	vhal-log <command> [flags] <file.vlog>
//
// Examples:
//
//	# View every event of one client
//	vhal-log view -client 3f2a9c1e-... broker.vlog
//
//	# View only property events for one property
//	vhal-log view -category property -property 0x11600207 broker.vlog
//
//	# Keep the last minute of results in a new file
//	vhal-log filter -category result -time-start 2026-03-02T08:30:00Z -o late.vlog broker.vlog
//
//	# Show statistics
//	vhal-log stats broker.vlog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/carprop/vhal-go/cmd/vhal-log/commands"
	"github.com/carprop/vhal-go/pkg/vehicle"
)

const usage = `vhal-log - vehicle property broker trace analyzer

Usage:
  vhal-log <command> [flags] <file.vlog>

Commands:
  view     View trace file in human-readable format
  export   Export trace file to JSONL or CSV
  filter   Filter trace file and write to new file
  stats    Show statistics about the trace file

Use "vhal-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// pathArg returns the single positional trace path or exits.
func pathArg(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func newFlagSet(name, summary string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "vhal-log %s - %s\n\nUsage:\n  vhal-log %s [flags] <file.vlog>\n\nFlags:\n", name, summary, name)
		fs.PrintDefaults()
	}
	return fs
}

func runView(args []string) {
	fs := newFlagSet("view", "View trace file in human-readable format")
	client := fs.String("client", "", "Filter by client ID")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (call, result, property, subscription, error)")
	property := fs.String("property", "", "Filter by property ID (decimal or 0x hex)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := pathArg(fs)

	filter := commands.ViewFilter{ClientID: vehicle.ClientID(*client)}
	if *direction != "" {
		d, err := commands.ParseDirectionFlag(*direction)
		if err != nil {
			fail(err)
		}
		filter.Direction = &d
	}
	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fail(err)
		}
		filter.Category = &c
	}
	if *property != "" {
		p, err := commands.ParsePropertyFlag(*property)
		if err != nil {
			fail(err)
		}
		filter.Property = &p
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "Export trace file to JSONL or CSV")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := pathArg(fs)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "Filter trace file and write to new file")
	output := fs.String("o", "", "Output file (required)")
	client := fs.String("client", "", "Filter by client ID")
	property := fs.String("property", "", "Filter by property ID (decimal or 0x hex)")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (call, result, property, subscription, error)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := pathArg(fs)
	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	opts := commands.FilterOptions{
		Output:    *output,
		ClientID:  *client,
		Property:  *property,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
		Direction: *direction,
		Category:  *category,
	}
	if err := commands.RunFilter(path, opts, os.Stdout); err != nil {
		fail(err)
	}
}

func runStats(args []string) {
	fs := newFlagSet("stats", "Show statistics about the trace file")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := pathArg(fs)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
