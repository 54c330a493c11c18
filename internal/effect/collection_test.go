package effect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCollection() *Collection {
	return NewCollection([]*Effect{
		makeEffect(CategorySilent, "ENST1", "BRAF"),
		makeEffect(CategoryStopGain, "ENST2", "BRAF"),
		makeEffect(CategoryIntronic, "ENST3", "TP53"),
		makeEffect(CategorySubstitution, "ENST4", "TP53"),
		makeEffect(CategoryNoncodingTranscript, "ENST5", "KRAS"),
	})
}

func TestCollection_Filter(t *testing.T) {
	c := sampleCollection()

	sub := c.Filter(func(e *Effect) bool { return e.GeneName == "TP53" })

	require.Equal(t, 2, sub.Len())
	assert.Equal(t, CategoryIntronic, sub.Effects()[0].Category)
	assert.Equal(t, CategorySubstitution, sub.Effects()[1].Category)
	// Filtering never mutates the source collection.
	assert.Equal(t, 5, c.Len())
}

func TestCollection_DropSilentAndNoncoding(t *testing.T) {
	c := sampleCollection().DropSilentAndNoncoding()

	require.Equal(t, 2, c.Len())
	assert.Equal(t, CategoryStopGain, c.Effects()[0].Category)
	assert.Equal(t, CategorySubstitution, c.Effects()[1].Category)
}

func TestCollection_FilterByMinimumPriority(t *testing.T) {
	c := sampleCollection().FilterByMinimumPriority(CategoryInsertion)

	require.Equal(t, 1, c.Len())
	assert.Equal(t, CategoryStopGain, c.Effects()[0].Category)
}

func TestCollection_GroupByGene(t *testing.T) {
	groups, order := sampleCollection().GroupByGene()

	require.Equal(t, []string{"BRAF", "TP53", "KRAS"}, order)
	assert.Equal(t, 2, groups["BRAF"].Len())
	assert.Equal(t, 2, groups["TP53"].Len())
	assert.Equal(t, 1, groups["KRAS"].Len())
}

func TestCollection_GeneCounts(t *testing.T) {
	counts := sampleCollection().GeneCounts()

	assert.Equal(t, map[string]int{"BRAF": 2, "TP53": 2, "KRAS": 1}, counts)
}

func TestCollection_TopPriorityEffectPerGene(t *testing.T) {
	top, order := sampleCollection().TopPriorityEffectPerGene()

	require.Equal(t, []string{"BRAF", "TP53", "KRAS"}, order)
	assert.Equal(t, CategoryStopGain, top["BRAF"].Category)
	assert.Equal(t, CategorySubstitution, top["TP53"].Category)
	assert.Equal(t, CategoryNoncodingTranscript, top["KRAS"].Category)
}

func TestCollection_Empty(t *testing.T) {
	c := NewCollection(nil)

	assert.Zero(t, c.Len())
	assert.Zero(t, c.DropSilentAndNoncoding().Len())
	assert.Empty(t, c.GeneCounts())

	groups, order := c.GroupByGene()
	assert.Empty(t, groups)
	assert.Empty(t, order)
}
