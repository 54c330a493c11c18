package vcf

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openvax/varcode-go/internal/variant"
)

const sampleVCF = `##fileformat=VCFv4.2
##reference=GRCh37
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO
7	140453136	.	A	T	.	PASS	.
17	7577548	.	A	AT	60	PASS	DP=10
1	100	.	ATAC	A	.	PASS	.
1	200	rs1	G	A,C	.	PASS	.
`

func newTestParser(t *testing.T, content string) *Parser {
	t.Helper()
	p, err := NewParserFromReader(strings.NewReader(content), "GRCh37")
	require.NoError(t, err)
	return p
}

func TestParser_SNV(t *testing.T) {
	p := newTestParser(t, sampleVCF)

	v, err := p.Next()
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, "7", v.Contig)
	assert.Equal(t, int64(140453136), v.Pos)
	assert.Equal(t, "A", v.Ref)
	assert.Equal(t, "T", v.Alt)
	assert.Equal(t, "GRCh37", v.Build)
	assert.True(t, v.IsSNV())
}

func TestParser_AnchorTrimming(t *testing.T) {
	vc := mustReadAll(t, sampleVCF)
	variants := vc.Variants()
	require.Len(t, variants, 5)

	// REF=A ALT=AT is a pure insertion of T after the anchor base.
	ins := variants[1]
	assert.Equal(t, int64(7577548), ins.Pos)
	assert.Empty(t, ins.Ref)
	assert.Equal(t, "T", ins.Alt)
	assert.True(t, ins.IsInsertion())

	// REF=ATAC ALT=A deletes TAC starting one past the anchor.
	del := variants[2]
	assert.Equal(t, int64(101), del.Pos)
	assert.Equal(t, "TAC", del.Ref)
	assert.Empty(t, del.Alt)
	assert.True(t, del.IsDeletion())
}

func TestParser_MultiAllelicSplit(t *testing.T) {
	vc := mustReadAll(t, sampleVCF)
	variants := vc.Variants()
	require.Len(t, variants, 5)

	a, c := variants[3], variants[4]
	assert.Equal(t, int64(200), a.Pos)
	assert.Equal(t, "A", a.Alt)
	assert.Equal(t, int64(200), c.Pos)
	assert.Equal(t, "C", c.Alt)
	assert.Equal(t, a.Ref, c.Ref)
}

func TestParser_NoCallAltSkipped(t *testing.T) {
	// An ALT of "." states no alternate allele; the record must not turn
	// into a deletion. In a multi-allelic column only the no-call part is
	// dropped.
	content := "##fileformat=VCFv4.2\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
		"7\t100\t.\tA\t.\t.\tPASS\t.\n" +
		"7\t200\t.\tG\tA,.\t.\tPASS\t.\n" +
		"7\t300\t.\tC\tT\t.\tPASS\t.\n"

	vc := mustReadAll(t, content)
	variants := vc.Variants()
	require.Len(t, variants, 2)

	assert.Equal(t, int64(200), variants[0].Pos)
	assert.Equal(t, "A", variants[0].Alt)
	assert.Equal(t, int64(300), variants[1].Pos)
}

func TestParser_OnlyPassing(t *testing.T) {
	content := "##fileformat=VCFv4.2\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
		"7\t100\t.\tA\tT\t.\tPASS\t.\n" +
		"7\t200\t.\tG\tC\t.\tq10\t.\n" +
		"7\t300\t.\tC\tT\t.\t.\t.\n"

	p := newTestParser(t, content)
	p.SetOnlyPassing(true)
	vc, err := p.ReadAll()
	require.NoError(t, err)

	// PASS and "." survive; the q10-filtered record is dropped.
	require.Equal(t, 2, vc.Len())
	assert.Equal(t, int64(100), vc.Variants()[0].Pos)
	assert.Equal(t, int64(300), vc.Variants()[1].Pos)

	// Without the option every record is kept.
	vc = mustReadAll(t, content)
	assert.Equal(t, 3, vc.Len())
}

func TestParser_NoTrailingNewline(t *testing.T) {
	content := strings.TrimRight(sampleVCF, "\n")
	vc := mustReadAll(t, content)
	assert.Equal(t, 5, vc.Len())
}

func TestParser_Header(t *testing.T) {
	p := newTestParser(t, sampleVCF)
	header := p.Header()
	require.Len(t, header, 3)
	assert.Equal(t, "##fileformat=VCFv4.2", header[0])
	assert.True(t, strings.HasPrefix(header[2], "#CHROM"))
}

func TestParser_MissingHeader(t *testing.T) {
	_, err := NewParserFromReader(strings.NewReader("7\t100\t.\tA\tT\t.\tPASS\t.\n"), "GRCh37")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestParser_MalformedLine(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"too few columns", "7\t100\t.\tA\tT"},
		{"bad position", "7\txyz\t.\tA\tT\t.\tPASS\t."},
		{"bad allele", "7\t100\t.\tA\tT!\t.\tPASS\t."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			content := "##fileformat=VCFv4.2\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" + tc.line + "\n"
			p := newTestParser(t, content)
			_, err := p.Next()
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
		})
	}
}

func TestParser_GzippedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.vcf.gz")

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(sampleVCF))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	p, err := NewParser(path, "GRCh37")
	require.NoError(t, err)
	defer p.Close()

	vc, err := p.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, 5, vc.Len())
}

func TestParser_PlainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.vcf")
	require.NoError(t, os.WriteFile(path, []byte(sampleVCF), 0o644))

	p, err := NewParser(path, "GRCh37")
	require.NoError(t, err)
	defer p.Close()

	vc, err := p.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, 5, vc.Len())
}

func mustReadAll(t *testing.T, content string) *variant.Collection {
	t.Helper()
	p := newTestParser(t, content)
	vc, err := p.ReadAll()
	require.NoError(t, err)
	return vc
}
