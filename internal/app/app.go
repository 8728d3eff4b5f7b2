// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/rs/zerolog"

	"github.com/DecodeGenetics/svimmer/internal/cli"
	"github.com/DecodeGenetics/svimmer/internal/cluster"
	"github.com/DecodeGenetics/svimmer/internal/output"
	"github.com/DecodeGenetics/svimmer/internal/pipeline"
	"github.com/DecodeGenetics/svimmer/internal/sv"
	"github.com/DecodeGenetics/svimmer/internal/vcf"
	"github.com/DecodeGenetics/svimmer/internal/version"
)

// RunContext parses argv, wires the pipeline and streams merged sites to
// stdout. Exit codes: 0 ok, 1 run failure, 2 usage error.
func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	fs := cli.NewFlagSet("svimmer")
	fs.SetOutput(io.Discard)

	opts, err := cli.ParseArgs(fs, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(stdout)
			fs.Usage()
			return 0
		}
		_, _ = fmt.Fprintln(stderr, err)
		fs.SetOutput(stderr)
		fs.Usage()
		return 2
	}
	if opts.Version {
		_, _ = fmt.Fprintf(stdout, "svimmer version %s\n", version.Version)
		return 0
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: stderr, NoColor: true}).
		With().Timestamp().Logger()
	if opts.Quiet {
		log = log.Level(zerolog.ErrorLevel)
	}

	paths, err := readFileList(opts.FileList)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 2
	}
	if len(paths) == 0 {
		_, _ = fmt.Fprintf(stderr, "%s lists no input files\n", opts.FileList)
		return 2
	}

	inputs := make([]*vcf.Reader, len(paths))
	for i, p := range paths {
		in, err := vcf.Open(p)
		if err != nil {
			log.Error().Err(err).Msg("opening input")
			return 1
		}
		inputs[i] = in
	}

	threads := opts.Threads
	if threads == 0 {
		threads = runtime.NumCPU()
	}

	cfg := pipeline.Config{
		Threads:     threads,
		JoinMode:    opts.JoinMode,
		Strict:      opts.JoinModeStrict,
		RegionStart: opts.RegionStart,
		RegionEnd:   opts.RegionEnd,
		Parse: sv.Options{
			CheckType: !opts.IgnoreTypes,
			JoinMode:  opts.JoinMode,
			IgnoreBND: opts.IgnoreBND,
			IgnoreINV: opts.IgnoreINV,
		},
		Cluster: cluster.Config{
			MaxDistance:       opts.MaxDistance,
			MaxSizeDifference: opts.MaxSizeDifference,
			TrackIDs:          opts.IDs,
		},
	}

	outw := bufio.NewWriter(stdout)
	if err := output.WriteHeader(outw, opts.JoinMode, opts.IDs); err != nil {
		if output.IsBrokenPipe(err) {
			return 0
		}
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}
	sink := func(chrom string, sites []*sv.Site) error {
		for _, s := range sites {
			if err := output.WriteSite(outw, s, opts.JoinMode, opts.IDs); err != nil {
				return err
			}
		}
		return outw.Flush()
	}

	if err := pipeline.Run(ctx, cfg, inputs, opts.Chromosomes, sink, log); err != nil {
		if output.IsBrokenPipe(err) {
			return 0
		}
		log.Error().Err(err).Msg("run failed")
		return 1
	}
	if err := outw.Flush(); err != nil {
		if output.IsBrokenPipe(err) {
			return 0
		}
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

// Run is RunContext with a background context.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

// readFileList reads input VCF paths, one per line; blank lines and lines
// starting with '#' are skipped.
func readFileList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading SV file list: %w", err)
	}
	defer f.Close()

	var paths []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading SV file list: %w", err)
	}
	return paths, nil
}
