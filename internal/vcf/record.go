// internal/vcf/record.go
package vcf

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is one decoded VCF data line, truncated to the eight site columns.
// Sample/genotype columns are never needed for merging and are not retained.
type Record struct {
	Chrom  string
	Pos    int
	ID     string
	Ref    string
	Alt    string
	Qual   string
	Filter string
	Info   string
}

// ParseLine decodes the first eight tab-separated columns of a VCF data line.
func ParseLine(line string) (Record, error) {
	cols := strings.SplitN(strings.TrimRight(line, "\n"), "\t", 9)
	if len(cols) < 8 {
		return Record{}, fmt.Errorf("vcf: record has %d columns, want at least 8", len(cols))
	}
	pos, err := strconv.Atoi(cols[1])
	if err != nil {
		return Record{}, fmt.Errorf("vcf: bad POS %q: %v", cols[1], err)
	}
	return Record{
		Chrom:  cols[0],
		Pos:    pos,
		ID:     cols[2],
		Ref:    cols[3],
		Alt:    cols[4],
		Qual:   cols[5],
		Filter: cols[6],
		Info:   cols[7],
	}, nil
}
