// internal/sv/site.go
package sv

import "math"

// Site is the evolving result of merging one or more records believed to
// represent the same event. The representative coordinates stay the founder's;
// the aggregates are summary-only.
type Site struct {
	Rep      Record // founder's core fields
	MaxBegin int
	Members  int      // records absorbed, founder included
	IDs      []string // member IDs in absorption order; nil unless tracking

	StdBegin int
	StdEnd   int

	extra        int // prior-merged surplus from re-merged inputs
	begins, ends RunningStat
	finalized    bool
}

// NewSite founds a site on a single record.
func NewSite(r *Record, trackIDs bool) *Site {
	s := &Site{Rep: *r, MaxBegin: r.MaxBegin, Members: 1}
	if r.PriorMerged > 0 {
		s.extra = r.PriorMerged - 1
	}
	if trackIDs {
		s.IDs = []string{r.ID}
	}
	s.begins.Add(r.Begin)
	s.ends.Add(r.End)
	return s
}

// ShouldMerge tests the candidate record against the site's founder.
func (s *Site) ShouldMerge(r *Record, maxDistance, maxSizeDifference int) bool {
	return ShouldMerge(&s.Rep, r, maxDistance, maxSizeDifference)
}

// Merge absorbs a record. MaxBegin never decreases.
func (s *Site) Merge(r *Record) {
	if r.MaxBegin > s.MaxBegin {
		s.MaxBegin = r.MaxBegin
	}
	s.Members++
	if r.PriorMerged > 0 {
		s.extra += r.PriorMerged - 1
	}
	if s.IDs != nil {
		s.IDs = append(s.IDs, r.ID)
	}
	s.begins.Add(r.Begin)
	s.ends.Add(r.End)
}

// Count is the merged-member total, with records from a previous merge run
// counted at their prior weight.
func (s *Site) Count() int { return s.Members + s.extra }

// Joined is the number of secondary records attached in join topology.
func (s *Site) Joined() int { return s.Members - 1 }

// Finalize fixes the breakpoint-spread statistics as integers. It runs once
// per site and only in merge topology; join topology keeps plain counters.
func (s *Site) Finalize() {
	if s.finalized {
		return
	}
	s.finalized = true
	s.StdBegin = int(math.Round(s.begins.StdDev()))
	s.StdEnd = int(math.Round(s.ends.StdDev()))
}
