package genome

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T) *MemoryProvider {
	t.Helper()
	p := NewMemoryProvider("GRCh37")
	p.AddTranscript(forwardTranscript(), "ATGGCTGCT", "MAA")
	p.AddTranscript(reverseTranscript(), "", "")
	return p
}

func TestMemoryProvider_Lookups(t *testing.T) {
	p := newTestProvider(t)

	assert.Equal(t, "GRCh37", p.Build())
	assert.Equal(t, 2, p.TranscriptCount())

	tr, err := p.TranscriptByID("ENST00000900001")
	require.NoError(t, err)
	assert.Equal(t, "FWD", tr.GeneName)

	cds, err := p.CodingSequence("ENST00000900001")
	require.NoError(t, err)
	assert.Equal(t, "ATGGCTGCT", cds)

	prot, err := p.ProteinSequence("ENST00000900001")
	require.NoError(t, err)
	assert.Equal(t, "MAA", prot)

	geneID, geneName, err := p.GeneOf("ENST00000900002")
	require.NoError(t, err)
	assert.Equal(t, "ENSG00000900002", geneID)
	assert.Equal(t, "REV", geneName)
}

func TestMemoryProvider_NotFound(t *testing.T) {
	p := newTestProvider(t)

	_, err := p.TranscriptByID("ENST99999999999")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "transcript", nf.Kind)

	// Registered transcript without sequences attached.
	_, err = p.CodingSequence("ENST00000900002")
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "coding sequence", nf.Kind)

	_, err = p.ProteinSequence("ENST00000900002")
	require.ErrorAs(t, err, &nf)

	_, _, err = p.GeneOf("ENST99999999999")
	require.ErrorAs(t, err, &nf)
}

func TestMemoryProvider_OverlappingTranscripts(t *testing.T) {
	p := newTestProvider(t)

	hits, err := p.OverlappingTranscripts("1", 1250)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "ENST00000900001", hits[0].ID)

	hits, err = p.OverlappingTranscripts("1", 5000)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = p.OverlappingTranscripts("X", 1250)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestMemoryProvider_AddInvalidatesOverlapMemo(t *testing.T) {
	p := newTestProvider(t)

	hits, err := p.OverlappingTranscripts("1", 1250)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	// A second isoform spanning the same position must appear in later
	// queries even though the first query was memoized.
	second := forwardTranscript()
	second.ID = "ENST00000900099"
	p.AddTranscript(second, "", "")

	hits, err = p.OverlappingTranscripts("1", 1250)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestMemoryProvider_ConcurrentQueries(t *testing.T) {
	p := newTestProvider(t)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				pos := int64(1000 + (i+w)%600)
				if _, err := p.OverlappingTranscripts("1", pos); err != nil {
					errs <- fmt.Errorf("overlap query at %d: %w", pos, err)
					return
				}
				if _, err := p.TranscriptByID("ENST00000900001"); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
}
