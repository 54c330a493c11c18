package effect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslateCodon(t *testing.T) {
	assert.Equal(t, byte('M'), TranslateCodon("ATG"))
	assert.Equal(t, byte('V'), TranslateCodon("GTG"))
	assert.Equal(t, byte('E'), TranslateCodon("GAG"))
	assert.Equal(t, byte('*'), TranslateCodon("TAA"))
	assert.Equal(t, byte('*'), TranslateCodon("TGA"))
	assert.Equal(t, byte('X'), TranslateCodon("NNN"))
	assert.Equal(t, byte('X'), TranslateCodon("AT"))
}

func TestStopAndStartCodons(t *testing.T) {
	for _, stop := range []string{"TAA", "TAG", "TGA"} {
		assert.True(t, IsStopCodon(stop), stop)
	}
	assert.False(t, IsStopCodon("TGG"))

	assert.True(t, IsStartCodon("ATG"))
	assert.False(t, IsStartCodon("GTG"))
}

func TestReverseComplement(t *testing.T) {
	assert.Equal(t, "T", ReverseComplement("A"))
	assert.Equal(t, "CAC", ReverseComplement("GTG"))
	assert.Equal(t, "AGTC", ReverseComplement("GACT"))
	assert.Empty(t, ReverseComplement(""))
	assert.Equal(t, "N", ReverseComplement("N"))
}

func TestReverseComplement_LongSequence(t *testing.T) {
	// Longer than the stack buffer used for short alleles.
	seq := ""
	for range 40 {
		seq += "ACG"
	}
	rc := ReverseComplement(seq)
	assert.Len(t, rc, 120)
	assert.Equal(t, seq, ReverseComplement(rc))
}

func TestTranslate(t *testing.T) {
	assert.Equal(t, "MAA", Translate("ATGGCTGCT"))
	// Stops at the first stop codon and drops it.
	assert.Equal(t, "MA", Translate("ATGGCTTAAGCT"))
	// Trailing partial codon is ignored.
	assert.Equal(t, "MA", Translate("ATGGCTGC"))
	assert.Empty(t, Translate("TAAATG"))
	assert.Empty(t, Translate(""))
}

func TestCodon(t *testing.T) {
	cds := "ATGGCTTAA"
	assert.Equal(t, "ATG", Codon(cds, 1))
	assert.Equal(t, "GCT", Codon(cds, 2))
	assert.Equal(t, "TAA", Codon(cds, 3))
	assert.Empty(t, Codon(cds, 0))
	assert.Empty(t, Codon(cds, 4))
}
