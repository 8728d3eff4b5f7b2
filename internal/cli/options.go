// internal/cli/options.go
package cli

import (
	"errors"
	"flag"
	"fmt"

	"github.com/DecodeGenetics/svimmer/internal/version"
)

// Options holds all CLI flags and positionals.
type Options struct {
	FileList    string   // text file naming one indexed VCF per line
	Chromosomes []string // chromosomes to process, in order

	// Merge parameters
	MaxDistance       int
	MaxSizeDifference int // negative = unlimited
	IgnoreTypes       bool
	IgnoreBND         bool
	IgnoreINV         bool
	JoinMode          bool
	JoinModeStrict    bool
	RegionStart       int
	RegionEnd         int

	// Output
	IDs bool

	// Performance
	Threads int

	Quiet   bool
	Version bool
}

// NewFlagSet returns a configured FlagSet with custom usage/help.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			`%s: merge structural variants across VCF files

Version: %s

Usage:
  %s [options] <sv-file-list> <chromosome> [<chromosome>...]

<sv-file-list> is a text file with one bgzip-compressed, tabix-indexed VCF
per line. Merged sites are written to stdout as a sample-less VCF.

Options:
`, name, version.Version, name)
		fs.PrintDefaults()
	}
	return fs
}

// ParseArgs registers and parses all flags, returns an Options struct.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options
	var help bool

	// Merge parameters
	fs.IntVar(&opt.MaxDistance, "max-distance", 200, "maximum breakpoint distance between merged SVs [200]")
	fs.IntVar(&opt.MaxSizeDifference, "max-size-difference", 100, "maximum size difference between merged SVs (negative = unlimited) [100]")
	fs.BoolVar(&opt.IgnoreTypes, "ignore-types", false, "merge SVs regardless of their type [false]")
	fs.BoolVar(&opt.IgnoreBND, "ignore-bnd", false, "drop break-end (BND/TRA) records [false]")
	fs.BoolVar(&opt.IgnoreINV, "ignore-inv", false, "drop inversion records [false]")
	fs.BoolVar(&opt.JoinMode, "join-mode", false, "attach secondary inputs' records onto sites of the first input [false]")
	fs.BoolVar(&opt.JoinModeStrict, "join-mode-strict", false, "join mode, each secondary record joining at most one site [false]")
	fs.IntVar(&opt.RegionStart, "region-start", 0, "only consider records starting at or after this position [0]")
	fs.IntVar(&opt.RegionEnd, "region-end", -1, "only consider records starting at or before this position (-1 = chromosome end) [-1]")

	// Output
	fs.BoolVar(&opt.IDs, "ids", false, "write MERGED_IDS with the IDs of all merged records [false]")

	// Performance
	fs.IntVar(&opt.Threads, "threads", 0, "number of fetch workers (0 = all CPUs; merge topology only) [0]")

	fs.BoolVar(&opt.Quiet, "quiet", false, "suppress progress and warning logs [false]")
	fs.BoolVar(&opt.Version, "v", false, "print version and exit (shorthand) [false]")
	fs.BoolVar(&opt.Version, "version", false, "print version and exit [false]")
	fs.BoolVar(&help, "h", false, "show this help message (shorthand) [false]")

	flagArgs, posArgs := SplitFlagsAndPositionals(fs, argv)
	if err := fs.Parse(flagArgs); err != nil {
		return opt, err
	}
	if help {
		fs.Usage()
		return opt, flag.ErrHelp
	}
	if opt.Version {
		return opt, nil
	}

	if len(posArgs) < 2 {
		return opt, errors.New("provide an SV file list and at least one chromosome")
	}
	opt.FileList = posArgs[0]
	opt.Chromosomes = posArgs[1:]

	// Normalization
	if opt.JoinModeStrict {
		opt.JoinMode = true
	}

	// Validation
	if opt.MaxDistance < 0 {
		return opt, errors.New("--max-distance must be ≥ 0")
	}
	if opt.RegionStart < 0 {
		return opt, errors.New("--region-start must be ≥ 0")
	}
	if opt.Threads < 0 {
		return opt, errors.New("--threads must be ≥ 0")
	}
	return opt, nil
}
