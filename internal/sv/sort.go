// internal/sv/sort.go
package sv

import "sort"

// LessRecord defines the (begin, end) order the clustering pass requires.
func LessRecord(a, b *Record) bool {
	if a.Begin != b.Begin {
		return a.Begin < b.Begin
	}
	return a.End < b.End
}

func SortRecords(rs []*Record) {
	sort.Slice(rs, func(i, j int) bool { return LessRecord(rs[i], rs[j]) })
}

// SortSites orders sites by their representative (begin, end) for output.
func SortSites(ss []*Site) {
	sort.Slice(ss, func(i, j int) bool { return LessRecord(&ss[i].Rep, &ss[j].Rep) })
}
