// Command compare prints the change between two benchmark aggregate files.
// Without arguments it compares the two newest files in the log directory.
//
//	compare [-include-mismatches] [-log-dir logs] [old.json new.json]
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/brensch/floodsnek/config"
	"github.com/brensch/floodsnek/report"
	"github.com/brensch/floodsnek/store"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "compare: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	env := config.NewEnv(os.LookupEnv)
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	includeMismatches := fs.Bool("include-mismatches", false, "Include cases present in only one file")
	logDir := fs.String("log-dir", env.String("LOG_DIR", "logs"), "Where to look for aggregate files when none are given")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var older, newer string
	switch fs.NArg() {
	case 2:
		older, newer = fs.Arg(0), fs.Arg(1)
	case 0:
		var err error
		if older, newer, err = store.FindLatestAggregates(*logDir); err != nil {
			return err
		}
	default:
		return fmt.Errorf("want two aggregate files or none, got %d", fs.NArg())
	}

	before, err := store.LoadAggregates(older)
	if err != nil {
		return err
	}
	after, err := store.LoadAggregates(newer)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s -> %s\n", older, newer)
	fmt.Fprintln(out, report.Render(report.Compare(before, after, *includeMismatches)))
	return nil
}
