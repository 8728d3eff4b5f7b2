// internal/cluster/cluster.go
package cluster

import "github.com/DecodeGenetics/svimmer/internal/sv"

// windowSlack pads the window-closing bound: a site's MaxBegin can sit up to
// this far ahead of the begins of records absorbed earlier, so closing on
// MaxBegin alone would be premature.
const windowSlack = 1000

// Config fixes the clustering parameters for one run.
type Config struct {
	MaxDistance       int
	MaxSizeDifference int // negative = unlimited
	TrackIDs          bool
}

// Merger clusters a (begin,end)-sorted record stream into sites in a single
// greedy pass. The grouping is order-sensitive: each record goes to the most
// recently touched compatible site, not the best match.
type Merger struct {
	cfg         Config
	sites       []*sv.Site
	comparisons int
}

func NewMerger(cfg Config) *Merger { return &Merger{cfg: cfg} }

// Add assigns one record. The active list is scanned newest-first; the scan
// stops as soon as a site has fallen more than MaxDistance+windowSlack behind
// the record's begin, since every earlier site is staler still. Records must
// arrive in non-decreasing Begin order.
func (m *Merger) Add(r *sv.Record) {
	for i := len(m.sites) - 1; i >= 0; i-- {
		s := m.sites[i]
		if s.MaxBegin+m.cfg.MaxDistance+windowSlack < r.Begin {
			break
		}
		m.comparisons++
		if s.ShouldMerge(r, m.cfg.MaxDistance, m.cfg.MaxSizeDifference) {
			s.Merge(r)
			return
		}
	}
	m.sites = append(m.sites, sv.NewSite(r, m.cfg.TrackIDs))
}

// Sites returns every site founded so far, in founding order.
func (m *Merger) Sites() []*sv.Site { return m.sites }

// Merge runs the single-pass clustering over an already-sorted record slice.
func Merge(records []*sv.Record, cfg Config) []*sv.Site {
	m := NewMerger(cfg)
	for _, r := range records {
		m.Add(r)
	}
	return m.Sites()
}

// Joiner anchors the site set on a primary input: every primary record seeds
// exactly one site, and secondary inputs only ever attach to those.
type Joiner struct {
	cfg    Config
	strict bool
	sites  []*sv.Site
}

func NewJoiner(primary []*sv.Record, cfg Config, strict bool) *Joiner {
	j := &Joiner{cfg: cfg, strict: strict, sites: make([]*sv.Site, 0, len(primary))}
	for _, r := range primary {
		j.sites = append(j.sites, sv.NewSite(r, cfg.TrackIDs))
	}
	return j
}

// Join attaches one secondary input's sorted records. A record may join every
// compatible site; in strict mode the scan stops after its first join. There
// is no window-closing break here: the scan stays O(primary x secondary),
// matching the merge semantics this tool has always shipped with.
func (j *Joiner) Join(records []*sv.Record) {
	for _, r := range records {
		for i := len(j.sites) - 1; i >= 0; i-- {
			s := j.sites[i]
			if s.ShouldMerge(r, j.cfg.MaxDistance, j.cfg.MaxSizeDifference) {
				s.Merge(r)
				if j.strict {
					break
				}
			}
		}
	}
}

// Sites returns the primary-seeded site set, in primary order.
func (j *Joiner) Sites() []*sv.Site { return j.sites }
