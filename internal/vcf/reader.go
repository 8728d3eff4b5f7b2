// internal/vcf/reader.go
package vcf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/bgzf/index"
	"github.com/biogo/hts/tabix"
)

// ErrUnknownContig reports a contig absent from one input's index. It is a
// recoverable condition: the caller continues with an empty record set.
var ErrUnknownContig = errors.New("vcf: unknown contig")

// MaxTargetPos is the largest position addressable by a tabix (.tbi) index.
const MaxTargetPos = 1<<29 - 1

// Reader fetches decoded records per chromosome region from one input file.
//
// BGZF-compressed inputs require a tabix index next to the file and are read
// with random access. Plain uncompressed VCF is accepted for small inputs and
// is scanned sequentially on every fetch. Gzip files that are not
// BGZF-compressed are rejected outright: they cannot be indexed, and silently
// scanning them would make large runs quadratic.
type Reader struct {
	path  string
	plain bool
	idx   *tabix.Index
}

// Open validates an input file and loads its index when present.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vcf: %w", err)
	}
	defer f.Close()

	var magic [2]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return nil, fmt.Errorf("vcf: read %s: %w", path, err)
	}
	if magic[0] != 0x1f || magic[1] != 0x8b {
		return &Reader{path: path, plain: true}, nil
	}

	ok, err := bgzf.HasEOF(f)
	if err != nil {
		return nil, fmt.Errorf("vcf: check %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("vcf: %s is gzip- but not bgzip-compressed; recompress with bgzip and index with tabix", path)
	}

	idxPath := path + ".tbi"
	ixf, err := os.Open(idxPath)
	if err != nil {
		return nil, fmt.Errorf("vcf: %s has no usable index: %w", path, err)
	}
	defer ixf.Close()
	dec, err := bgzf.NewReader(ixf, 1)
	if err != nil {
		return nil, fmt.Errorf("vcf: read index %s: %w", idxPath, err)
	}
	defer dec.Close()
	idx, err := tabix.ReadFrom(dec)
	if err != nil {
		return nil, fmt.Errorf("vcf: parse index %s: %w", idxPath, err)
	}
	return &Reader{path: path, idx: idx}, nil
}

// Path returns the input file path.
func (r *Reader) Path() string { return r.path }

// Fetch returns the records on chrom with beg <= POS <= end, in file order.
// end < 0 means "no upper bound". A contig missing from the index yields
// ErrUnknownContig.
func (r *Reader) Fetch(chrom string, beg, end int) ([]Record, error) {
	if beg < 0 {
		beg = 0
	}
	if end < 0 || end > MaxTargetPos {
		end = MaxTargetPos
	}
	if r.plain {
		return r.scan(chrom, beg, end)
	}
	return r.query(chrom, beg, end)
}

// region is a tabix query interval in 0-based half-open coordinates.
type region struct {
	chrom    string
	beg, end int
}

func (r region) RefName() string { return r.chrom }
func (r region) Start() int      { return r.beg }
func (r region) End() int        { return r.end }

func (r *Reader) query(chrom string, beg, end int) ([]Record, error) {
	found := false
	for _, name := range r.idx.Names() {
		if name == chrom {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s in %s", ErrUnknownContig, chrom, r.path)
	}

	qbeg := beg - 1 // POS is 1-based, the index is 0-based
	if qbeg < 0 {
		qbeg = 0
	}
	chunks, err := r.idx.Chunks(chrom, qbeg, end)
	if err != nil {
		// A contig present in the index can still have no indexed interval
		// overlapping the query; that is an empty result, not a failure.
		if errors.Is(err, index.ErrNoReference) || errors.Is(err, index.ErrInvalid) {
			return nil, nil
		}
		return nil, fmt.Errorf("vcf: query %s:%d-%d in %s: %w", chrom, beg, end, r.path, err)
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("vcf: %w", err)
	}
	defer f.Close()
	br, err := bgzf.NewReader(f, 0)
	if err != nil {
		return nil, fmt.Errorf("vcf: open %s: %w", r.path, err)
	}
	defer br.Close()
	if err := br.Seek(chunks[0].Begin); err != nil {
		return nil, fmt.Errorf("vcf: seek in %s: %w", r.path, err)
	}

	// The region's chunks are contiguous within one contig, so a linear scan
	// from the first chunk until POS passes end covers them all.
	var out []Record
	seen := false
	sc := newScanner(br)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("vcf: %s: %w", r.path, err)
		}
		if rec.Chrom != chrom {
			if seen {
				break
			}
			continue
		}
		seen = true
		if rec.Pos > end {
			break
		}
		if rec.Pos < beg {
			continue
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("vcf: read %s: %w", r.path, err)
	}
	return out, nil
}

// scan is the fallback for plain uncompressed inputs: one full pass per fetch.
func (r *Reader) scan(chrom string, beg, end int) ([]Record, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("vcf: %w", err)
	}
	defer f.Close()

	var out []Record
	sc := newScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("vcf: %s: %w", r.path, err)
		}
		if rec.Chrom != chrom || rec.Pos < beg || rec.Pos > end {
			continue
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("vcf: read %s: %w", r.path, err)
	}
	return out, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1<<16), 1<<24) // long insertion sequences
	return sc
}
