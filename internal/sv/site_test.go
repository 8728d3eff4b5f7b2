// internal/sv/site_test.go
package sv

import "testing"

func TestSiteMergeAggregates(t *testing.T) {
	a := mk(1000, 1200, KindDeletion, 200)
	a.ID = "a"
	b := mk(1010, 1195, KindDeletion, 185)
	b.ID = "b"

	s := NewSite(a, true)
	if s.Members != 1 || s.MaxBegin != 1000 {
		t.Fatalf("bad fresh site: %+v", s)
	}
	s.Merge(b)
	if s.Members != 2 || s.Count() != 2 {
		t.Errorf("want 2 members, got %d/%d", s.Members, s.Count())
	}
	if s.MaxBegin != 1010 {
		t.Errorf("MaxBegin must track the maximum begin, got %d", s.MaxBegin)
	}
	if s.Rep.Begin != 1000 || s.Rep.End != 1200 {
		t.Errorf("representative coordinates must stay the founder's, got %+v", s.Rep)
	}
	if len(s.IDs) != 2 || s.IDs[0] != "a" || s.IDs[1] != "b" {
		t.Errorf("want founder-first ID list, got %v", s.IDs)
	}
}

func TestSiteMaxBeginMonotone(t *testing.T) {
	s := NewSite(mk(1000, 1200, KindDeletion, 200), false)
	s.Merge(mk(1100, 1210, KindDeletion, 110))
	s.Merge(mk(1050, 1190, KindDeletion, 140))
	if s.MaxBegin != 1100 {
		t.Errorf("MaxBegin must never decrease, got %d", s.MaxBegin)
	}
}

func TestSiteFinalizeStdDev(t *testing.T) {
	s := NewSite(mk(1000, 1200, KindDeletion, 200), false)
	s.Merge(mk(1010, 1195, KindDeletion, 185))
	s.Finalize()
	// begins 1000,1010: population stddev 5; ends 1200,1195: 2.5 rounds to 3.
	if s.StdBegin != 5 || s.StdEnd != 3 {
		t.Errorf("want STDDEV 5,3, got %d,%d", s.StdBegin, s.StdEnd)
	}
}

func TestSiteFinalizeOnce(t *testing.T) {
	s := NewSite(mk(1000, 1200, KindDeletion, 200), false)
	s.Finalize()
	s.Merge(mk(1100, 1210, KindDeletion, 110))
	s.Finalize()
	if s.StdBegin != 0 {
		t.Errorf("second Finalize must be a no-op, got %d", s.StdBegin)
	}
}

func TestSingleMemberStdDevIsZero(t *testing.T) {
	s := NewSite(mk(1000, 1200, KindDeletion, 200), false)
	s.Finalize()
	if s.StdBegin != 0 || s.StdEnd != 0 {
		t.Errorf("single member has no spread, got %d,%d", s.StdBegin, s.StdEnd)
	}
}

func TestSitePriorMergedWeight(t *testing.T) {
	founder := mk(1000, 1200, KindDeletion, 200)
	founder.PriorMerged = 3
	s := NewSite(founder, false)
	if s.Count() != 3 {
		t.Fatalf("founder with prior weight 3 counts as 3, got %d", s.Count())
	}
	other := mk(1010, 1195, KindDeletion, 185)
	other.PriorMerged = 2
	s.Merge(other)
	if s.Count() != 5 {
		t.Errorf("want 3+2=5 weighted members, got %d", s.Count())
	}
}

func TestSiteJoined(t *testing.T) {
	s := NewSite(mk(1000, 1200, KindDeletion, 200), false)
	if s.Joined() != 0 {
		t.Errorf("fresh site has no joined records, got %d", s.Joined())
	}
	s.Merge(mk(1010, 1195, KindDeletion, 185))
	if s.Joined() != 1 {
		t.Errorf("want one joined record, got %d", s.Joined())
	}
}
