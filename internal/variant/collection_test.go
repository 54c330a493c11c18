package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openvax/varcode-go/internal/genome"
)

// threeGeneProvider serves three genes: ALPHA with two overlapping
// transcripts on chr1, BETA further along chr1, and GAMMA on chr2.
func threeGeneProvider() *genome.MemoryProvider {
	p := genome.NewMemoryProvider("GRCh37")
	p.AddTranscript(&genome.Transcript{
		ID: "ENST0000000A1", GeneID: "ENSG0000000A", GeneName: "ALPHA",
		Contig: "1", Start: 100, End: 500, Strand: 1, Biotype: "lincRNA",
	}, "", "")
	p.AddTranscript(&genome.Transcript{
		ID: "ENST0000000A2", GeneID: "ENSG0000000A", GeneName: "ALPHA",
		Contig: "1", Start: 150, End: 600, Strand: 1, Biotype: "lincRNA",
	}, "", "")
	p.AddTranscript(&genome.Transcript{
		ID: "ENST0000000B1", GeneID: "ENSG0000000B", GeneName: "BETA",
		Contig: "1", Start: 1000, End: 2000, Strand: -1, Biotype: "lincRNA",
	}, "", "")
	p.AddTranscript(&genome.Transcript{
		ID: "ENST0000000C1", GeneID: "ENSG0000000C", GeneName: "GAMMA",
		Contig: "2", Start: 300, End: 900, Strand: 1, Biotype: "lincRNA",
	}, "", "")
	return p
}

func TestGroupByGeneName(t *testing.T) {
	p := threeGeneProvider()

	c := NewCollection([]*Variant{
		MustNew("1", 200, "A", "T", "GRCh37"),  // both ALPHA transcripts
		MustNew("1", 1500, "G", "C", "GRCh37"), // BETA
		MustNew("2", 400, "C", "G", "GRCh37"),  // GAMMA
		MustNew("1", 120, "T", "A", "GRCh37"),  // ALPHA, first transcript only
		MustNew("3", 50, "A", "G", "GRCh37"),   // no overlap
	})

	groups, order, err := c.GroupByGeneName(p)
	require.NoError(t, err)

	assert.Equal(t, []string{"ALPHA", "BETA", "GAMMA"}, order)
	require.Len(t, groups, 3)

	// A variant hitting several transcripts of one gene appears once.
	assert.Equal(t, 2, groups["ALPHA"].Len())
	assert.Equal(t, 1, groups["BETA"].Len())
	assert.Equal(t, 1, groups["GAMMA"].Len())
}

func TestGeneCounts_FourteenVariantsSumToFourteen(t *testing.T) {
	p := threeGeneProvider()

	// 14 distinct variants, each inside exactly one gene: 5 in ALPHA,
	// 6 in BETA, 3 in GAMMA.
	c := NewCollection(nil)
	for _, pos := range []int64{180, 220, 260, 300, 340} {
		c = c.Append(MustNew("1", pos, "A", "T", "GRCh37"))
	}
	for _, pos := range []int64{1100, 1200, 1300, 1400, 1500, 1600} {
		c = c.Append(MustNew("1", pos, "A", "T", "GRCh37"))
	}
	for _, pos := range []int64{400, 500, 600} {
		c = c.Append(MustNew("2", pos, "A", "T", "GRCh37"))
	}
	require.Equal(t, 14, c.Len())

	counts, err := c.GeneCounts(p)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"ALPHA": 5, "BETA": 6, "GAMMA": 3}, counts)

	total := 0
	for _, n := range counts {
		total += n
	}
	assert.Equal(t, 14, total)
}

func TestGeneCounts_DuplicatesCountOnce(t *testing.T) {
	p := threeGeneProvider()

	v := MustNew("1", 1500, "G", "C", "GRCh37")
	c := NewCollection([]*Variant{v, v, MustNew("1", 1500, "G", "C", "GRCh37")})

	counts, err := c.GeneCounts(p)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"BETA": 1}, counts)
}

func TestCollection_AppendDoesNotMutate(t *testing.T) {
	base := NewCollection([]*Variant{MustNew("1", 100, "A", "T", "GRCh37")})
	grown := base.Append(MustNew("1", 200, "A", "T", "GRCh37"))

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 2, grown.Len())
}
