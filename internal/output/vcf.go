// internal/output/vcf.go
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/DecodeGenetics/svimmer/internal/sv"
	"github.com/DecodeGenetics/svimmer/internal/version"
)

// WriteHeader emits the sample-less VCF header. The INFO definitions for the
// merge annotations must precede any data line; downstream genotypers read
// them to interpret the merged sites.
func WriteHeader(w io.Writer, joinMode, ids bool) error {
	var b strings.Builder
	b.WriteString("##fileformat=VCFv4.2\n")
	fmt.Fprintf(&b, "##source=svimmer-%s\n", version.Version)
	b.WriteString("##INFO=<ID=SVTYPE,Number=1,Type=String,Description=\"Type of structural variant\">\n")
	b.WriteString("##INFO=<ID=END,Number=1,Type=Integer,Description=\"End position of the variant\">\n")
	if ids {
		b.WriteString("##INFO=<ID=MERGED_IDS,Number=.,Type=String,Description=\"IDs of all merged SVs, the founding record first\">\n")
	}
	if joinMode {
		b.WriteString("##INFO=<ID=NUM_JOINED_SVS,Number=1,Type=Integer,Description=\"Number of secondary SVs joined to this site\">\n")
	} else {
		b.WriteString("##INFO=<ID=NUM_MERGED_SVS,Number=1,Type=Integer,Description=\"Number of SVs merged into this site\">\n")
	}
	b.WriteString("##INFO=<ID=STDDEV_POS,Number=2,Type=Integer,Description=\"Standard deviation of the begin and end positions of merged SVs\">\n")
	b.WriteString("#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteSite serializes one site as a single VCF data line without sample
// columns. REF, QUAL and FILTER are placeholders; ALT is symbolic.
func WriteSite(w io.Writer, s *sv.Site, joinMode, ids bool) error {
	kind := s.Rep.Kind
	if kind == sv.KindUnknown {
		kind = s.Rep.Declared
	}

	var info strings.Builder
	if kind != sv.KindUnknown && kind != sv.KindOther {
		fmt.Fprintf(&info, "SVTYPE=%s;", kind)
	}
	if s.Rep.End > s.Rep.Begin {
		fmt.Fprintf(&info, "END=%d;", s.Rep.End)
	}
	if ids && len(s.IDs) > 0 {
		fmt.Fprintf(&info, "MERGED_IDS=%s;", strings.Join(s.IDs, ","))
	}
	if joinMode {
		fmt.Fprintf(&info, "NUM_JOINED_SVS=%d;", s.Joined())
	} else {
		fmt.Fprintf(&info, "NUM_MERGED_SVS=%d;", s.Count())
	}
	fmt.Fprintf(&info, "STDDEV_POS=%d,%d", s.StdBegin, s.StdEnd)

	_, err := fmt.Fprintf(w, "%s\t%d\t.\tN\t%s\t0\t.\t%s\n",
		s.Rep.Chrom, s.Rep.Begin, kind.Symbolic(), info.String())
	return err
}
