// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/DecodeGenetics/svimmer/internal/cluster"
	"github.com/DecodeGenetics/svimmer/internal/sv"
	"github.com/DecodeGenetics/svimmer/internal/vcf"
)

// Config controls the per-chromosome merge pipeline.
type Config struct {
	Threads     int  // fetch workers; merge topology only (>=1)
	JoinMode    bool // anchor sites on the first input
	Strict      bool // join mode, at most one site per secondary record
	RegionStart int
	RegionEnd   int // negative = chromosome end
	Parse       sv.Options
	Cluster     cluster.Config
}

// Sink receives one chromosome's finalized, (begin,end)-sorted sites.
type Sink func(chrom string, sites []*sv.Site) error

// Run processes chromosomes strictly in order, streaming each one's sites to
// the sink before starting the next, so peak memory stays at roughly one
// chromosome's worth of sites.
func Run(ctx context.Context, cfg Config, inputs []*vcf.Reader, chroms []string, sink Sink, log zerolog.Logger) error {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	for _, chrom := range chroms {
		var sites []*sv.Site
		var err error
		if cfg.JoinMode {
			sites, err = joinChromosome(ctx, cfg, inputs, chrom, log)
		} else {
			sites, err = mergeChromosome(ctx, cfg, inputs, chrom, log)
		}
		if err != nil {
			return err
		}
		sv.SortSites(sites)
		if err := sink(chrom, sites); err != nil {
			return err
		}
		log.Info().Str("chrom", chrom).Int("sites", len(sites)).Msg("chromosome done")
	}
	return nil
}

// fetchRecords pulls one input's decoded records for a chromosome region and
// converts them to SV records. A contig missing from that input is downgraded
// to a warning and an empty list; any other failure is fatal for the run.
func fetchRecords(cfg Config, in *vcf.Reader, source int, chrom string, log zerolog.Logger) ([]*sv.Record, error) {
	raw, err := in.Fetch(chrom, cfg.RegionStart, cfg.RegionEnd)
	if err != nil {
		if errors.Is(err, vcf.ErrUnknownContig) {
			log.Warn().Str("chrom", chrom).Str("file", in.Path()).
				Msg("contig not found; input contributes no records for this chromosome")
			return nil, nil
		}
		return nil, fmt.Errorf("fetch %s from %s: %w", chrom, in.Path(), err)
	}
	recs := make([]*sv.Record, 0, len(raw))
	for _, rr := range raw {
		if r := sv.New(rr, cfg.Parse); r != nil {
			r.Source = source
			recs = append(recs, r)
		}
	}
	return recs, nil
}

// mergeChromosome fetches every input in parallel, then pools, sorts and
// clusters the records. The errgroup wait is the barrier between the parallel
// map and the sequential sort+cluster phase; workers share no mutable state.
func mergeChromosome(ctx context.Context, cfg Config, inputs []*vcf.Reader, chrom string, log zerolog.Logger) ([]*sv.Site, error) {
	lists := make([][]*sv.Record, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Threads)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			recs, err := fetchRecords(cfg, in, i, chrom, log)
			if err != nil {
				return err
			}
			lists[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var pool []*sv.Record
	for _, l := range lists {
		pool = append(pool, l...)
	}
	sv.SortRecords(pool)

	sites := cluster.Merge(pool, cfg.Cluster)
	for _, s := range sites {
		s.Finalize()
	}
	return sites, nil
}

// joinChromosome runs the inputs strictly sequentially: each join step depends
// on the site set accumulated so far. Sites are not finalized; join topology
// keeps plain counters only.
func joinChromosome(ctx context.Context, cfg Config, inputs []*vcf.Reader, chrom string, log zerolog.Logger) ([]*sv.Site, error) {
	primary, err := fetchRecords(cfg, inputs[0], 0, chrom, log)
	if err != nil {
		return nil, err
	}
	sv.SortRecords(primary)
	j := cluster.NewJoiner(primary, cfg.Cluster, cfg.Strict)

	for i, in := range inputs[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recs, err := fetchRecords(cfg, in, i+1, chrom, log)
		if err != nil {
			return nil, err
		}
		sv.SortRecords(recs)
		j.Join(recs)
	}
	return j.Sites(), nil
}
