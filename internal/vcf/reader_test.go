// internal/vcf/reader_test.go
package vcf

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/tabix"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVCF = "##fileformat=VCFv4.2\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
	"chr1\t1000\tsv1\tN\t<DEL>\t0\t.\tSVTYPE=DEL;END=1200\n" +
	"chr1\t1010\tsv2\tN\t<DEL>\t0\t.\tSVTYPE=DEL;END=1195\n" +
	"chr1\t5000\tsv3\tN\t<INS>\t0\t.\tSVTYPE=INS;SVLEN=120\n" +
	"chr2\t800\tsv4\tN\t<DEL>\t0\t.\tSVTYPE=DEL;END=900\n"

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// writeIndexed writes content as a BGZF VCF plus its .tbi, indexing each data
// line's chunk the way tabix does, and returns the VCF path.
func writeIndexed(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := bgzf.NewWriter(f, 1)
	_, err = zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	rf, err := os.Open(path)
	require.NoError(t, err)
	defer rf.Close()
	br, err := bgzf.NewReader(rf, 1)
	require.NoError(t, err)
	defer br.Close()

	idx := tabix.New()
	idx.Format = 2 // VCF
	idx.NameColumn = 1
	idx.BeginColumn = 2
	idx.MetaChar = '#'
	for {
		tx := br.Begin()
		line, rerr := readLine(br)
		chunk := tx.End()
		if line != "" && !strings.HasPrefix(line, "#") {
			rec, perr := ParseLine(line)
			require.NoError(t, perr)
			require.NoError(t, idx.Add(region{rec.Chrom, rec.Pos - 1, rec.Pos}, chunk, true, true))
			// tabix.Index.Add registers new reference names but never fills
			// the name map, so later Adds for the same contig mint duplicate
			// IDs; record the mapping here to keep the index consistent.
			if _, ok := idx.IDs()[rec.Chrom]; !ok {
				idx.IDs()[rec.Chrom] = len(idx.Names()) - 1
			}
		}
		if rerr == io.EOF {
			break
		}
		require.NoError(t, rerr)
	}

	ixf, err := os.Create(path + ".tbi")
	require.NoError(t, err)
	zi := bgzf.NewWriter(ixf, 1)
	require.NoError(t, tabix.WriteTo(zi, idx))
	require.NoError(t, zi.Close())
	require.NoError(t, ixf.Close())
	return path
}

// readLine reads byte-wise so the BGZF virtual offsets stay line-accurate.
func readLine(r io.Reader) (string, error) {
	var line []byte
	var b [1]byte
	for {
		if _, err := r.Read(b[:]); err != nil {
			return string(line), err
		}
		if b[0] == '\n' {
			return string(line), nil
		}
		line = append(line, b[0])
	}
}

func TestParseLine(t *testing.T) {
	rec, err := ParseLine("chr1\t1000\tsv1\tN\t<DEL>\t0\t.\tSVTYPE=DEL;END=1200")
	require.NoError(t, err)
	assert.Equal(t, "chr1", rec.Chrom)
	assert.Equal(t, 1000, rec.Pos)
	assert.Equal(t, "sv1", rec.ID)
	assert.Equal(t, "SVTYPE=DEL;END=1200", rec.Info)

	_, err = ParseLine("chr1\t1000\tsv1")
	assert.Error(t, err)
	_, err = ParseLine("chr1\toops\tsv1\tN\t<DEL>\t0\t.\t.")
	assert.Error(t, err)
}

func TestOpenPlain(t *testing.T) {
	path := writeTemp(t, "in.vcf", testVCF)
	r, err := Open(path)
	require.NoError(t, err)

	recs, err := r.Fetch("chr1", 0, -1)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "sv1", recs[0].ID)
	assert.Equal(t, 5000, recs[2].Pos)

	recs, err = r.Fetch("chr2", 0, -1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "sv4", recs[0].ID)
}

func TestFetchRegionBounds(t *testing.T) {
	r, err := Open(writeTemp(t, "in.vcf", testVCF))
	require.NoError(t, err)

	recs, err := r.Fetch("chr1", 1005, 4000)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "sv2", recs[0].ID)

	recs, err = r.Fetch("chr1", 6000, -1)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestFetchAbsentContigPlain(t *testing.T) {
	// Plain inputs carry no index, so an absent contig is just empty.
	r, err := Open(writeTemp(t, "in.vcf", testVCF))
	require.NoError(t, err)
	recs, err := r.Fetch("chrX", 0, -1)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestFetchIndexed(t *testing.T) {
	path := writeIndexed(t, t.TempDir(), "in.vcf.gz", testVCF)
	r, err := Open(path)
	require.NoError(t, err)

	recs, err := r.Fetch("chr1", 0, -1)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "sv1", recs[0].ID)
	assert.Equal(t, "sv3", recs[2].ID)

	recs, err = r.Fetch("chr1", 1005, 4000)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "sv2", recs[0].ID)

	recs, err = r.Fetch("chr2", 0, -1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "sv4", recs[0].ID)

	// Indexed contig, no records past the region start.
	recs, err = r.Fetch("chr1", 6000, -1)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestFetchIndexedAbsentContig(t *testing.T) {
	path := writeIndexed(t, t.TempDir(), "in.vcf.gz", testVCF)
	r, err := Open(path)
	require.NoError(t, err)

	_, err = r.Fetch("chrX", 0, -1)
	assert.ErrorIs(t, err, ErrUnknownContig)
}

func TestOpenRejectsPlainGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.vcf.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(testVCF))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, err = Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bgzip")
}

func TestOpenRequiresIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.vcf.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := bgzf.NewWriter(f, 1)
	_, err = zw.Write([]byte(testVCF))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, err = Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index")
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.vcf"))
	assert.Error(t, err)
}
