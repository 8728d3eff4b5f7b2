// internal/sv/record.go
package sv

import (
	"strconv"
	"strings"

	"github.com/DecodeGenetics/svimmer/internal/vcf"
)

// Kind classifies a structural variant record.
type Kind int

const (
	// KindUnknown is the any-type sentinel: it is compatible with every kind
	// and is assigned to all records when type checking is disabled.
	KindUnknown Kind = iota
	KindBND
	KindDeletion
	KindInsertion
	KindDuplication
	KindInversion
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindBND:
		return "BND"
	case KindDeletion:
		return "DEL"
	case KindInsertion:
		return "INS"
	case KindDuplication:
		return "DUP"
	case KindInversion:
		return "INV"
	case KindOther:
		return "OTHER"
	}
	return "UNK"
}

// Symbolic returns the symbolic ALT allele for the kind.
func (k Kind) Symbolic() string {
	switch k {
	case KindBND, KindDeletion, KindInsertion, KindDuplication, KindInversion:
		return "<" + k.String() + ">"
	}
	return "<SV>"
}

// minSVLen is the smallest event treated as a structural variant.
const minSVLen = 50

// Options control record construction.
type Options struct {
	CheckType bool // false forces every record into the any-type class
	JoinMode  bool // join topology: prior NUM_MERGED_SVS values are left alone
	IgnoreBND bool // drop break-end (BND/TRA) records
	IgnoreINV bool // drop inversion records
}

// Record is one SV call decoded from one input file.
type Record struct {
	Chrom string
	Begin int
	End   int
	ID    string
	Kind  Kind

	// Declared is the kind decoded from the input. It equals Kind except
	// under any-type matching, where Kind is the sentinel; output falls back
	// to it so --ignore-types does not erase the emitted SVTYPE.
	Declared Kind

	// Size is the event length; SizeKnown is false for break-ends and other
	// records whose length cannot be derived.
	Size      int
	SizeKnown bool

	// Source is the index of the input file the record came from.
	Source int

	// MaxBegin is the maximum Begin over this record and every record ever
	// merged into it. The clustering window-closing invariant depends on it
	// being monotone.
	MaxBegin int

	// PriorMerged carries a NUM_MERGED_SVS value from a previous merge run,
	// so re-merging an already-merged file keeps counts honest. Zero if none.
	PriorMerged int
}

// New decodes one raw VCF record into an SV record. It returns nil when the
// record is dropped: an ignored type, not a structural variant, or below the
// minimum event size.
func New(raw vcf.Record, opt Options) *Record {
	info := infoMap(raw.Info)

	svType, ok := info["SVTYPE"]
	if !ok {
		// No declared type: fall back to allele shape for long indels.
		svType, ok = classifyByAlleles(raw.Ref, raw.Alt, info)
		if !ok {
			return nil
		}
	}
	if opt.IgnoreBND && (svType == "BND" || svType == "TRA") {
		return nil
	}
	if opt.IgnoreINV && svType == "INV" {
		return nil
	}

	r := &Record{
		Chrom:    raw.Chrom,
		Begin:    raw.Pos,
		End:      raw.Pos,
		ID:       raw.ID,
		Kind:     classify(svType),
		MaxBegin: raw.Pos,
	}

	switch r.Kind {
	case KindDeletion, KindDuplication, KindInversion:
		if end, ok := infoInt(info, "END"); ok {
			r.End = end
		} else if n, ok := infoInt(info, "SVSIZE"); ok {
			r.End = r.Begin + abs(n)
		} else if n, ok := infoInt(info, "SVLEN"); ok {
			r.End = r.Begin + abs(n)
		}
		if r.Kind == KindDeletion && r.End-minSVLen < r.Begin {
			return nil
		}
		if r.End > r.Begin {
			r.Size = r.End - r.Begin
			r.SizeKnown = true
		}
	case KindInsertion:
		n, ok := infoInt(info, "SVLEN")
		if !ok {
			n, ok = infoInt(info, "SVSIZE")
		}
		if ok {
			r.Size = abs(n)
			r.SizeKnown = true
		}
		if (!ok || r.Size < minSVLen) && !hasInsertionSeq(info) {
			return nil
		}
	}

	if !opt.JoinMode {
		if n, ok := infoInt(info, "NUM_MERGED_SVS"); ok {
			r.PriorMerged = n
		}
	}
	r.Declared = r.Kind
	if !opt.CheckType {
		r.Kind = KindUnknown
	}
	return r
}

// ShouldMerge reports whether two records plausibly represent the same event.
// The test is reflexive and symmetric but deliberately not transitive; the
// clustering pass's scan order decides the final grouping.
//
// Break-end mate coordinates are never resolved from the ALT breakend
// notation, so a break-end's End equals its Begin and only the local
// breakpoint is compared. Mate-aware matching would need both records of a
// breakend pair, which the per-region fetch does not guarantee.
func ShouldMerge(a, b *Record, maxDistance, maxSizeDifference int) bool {
	if a.Kind != KindUnknown && b.Kind != KindUnknown && a.Kind != b.Kind {
		return false
	}
	if abs(a.Begin-b.Begin) > maxDistance || abs(a.End-b.End) > maxDistance {
		return false
	}
	// Size is not checked when either side cannot resolve one (break-ends).
	if maxSizeDifference >= 0 && a.SizeKnown && b.SizeKnown &&
		abs(a.Size-b.Size) > maxSizeDifference {
		return false
	}
	return true
}

// classify folds the SVTYPE aliases seen in the wild into one kind each.
func classify(svType string) Kind {
	switch svType {
	case "DEL", "DEL_ALU", "DEL_LINE1":
		return KindDeletion
	case "INS", "ALU", "LINE1", "SVA":
		return KindInsertion
	case "DUP", "CNV", "INVDUP":
		return KindDuplication
	case "INV":
		return KindInversion
	case "BND", "TRA":
		return KindBND
	}
	return KindOther
}

// classifyByAlleles derives DEL/INS from a biallelic REF/ALT length difference
// of at least minSVLen, recording the derived length in the info map.
func classifyByAlleles(ref, alt string, info map[string]string) (string, bool) {
	var alts []string
	for _, a := range strings.Split(alt, ",") {
		if a != "*" {
			alts = append(alts, a)
		}
	}
	if len(alts) != 1 {
		return "", false
	}
	switch a := alts[0]; {
	case len(ref) >= len(a)+minSVLen:
		info["SVSIZE"] = strconv.Itoa(len(ref) - len(a))
		return "DEL", true
	case len(a) >= len(ref)+minSVLen:
		info["SVLEN"] = strconv.Itoa(len(a) - len(ref))
		return "INS", true
	}
	return "", false
}

func hasInsertionSeq(info map[string]string) bool {
	for _, key := range [...]string{"SVINSSEQ", "LEFT_SVINSSEQ", "RIGHT_SVINSSEQ"} {
		if _, ok := info[key]; ok {
			return true
		}
	}
	return false
}

func infoMap(s string) map[string]string {
	m := make(map[string]string)
	if s == "" || s == "." {
		return m
	}
	for _, kv := range strings.Split(s, ";") {
		if kv == "" {
			continue
		}
		if i := strings.IndexByte(kv, '='); i >= 0 {
			m[kv[:i]] = kv[i+1:]
		} else {
			m[kv] = ""
		}
	}
	return m
}

func infoInt(m map[string]string, key string) (int, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
