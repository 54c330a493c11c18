package variant

import (
	"fmt"

	"github.com/openvax/varcode-go/internal/genome"
)

// Collection is an ordered sequence of variants. Duplicates are permitted;
// insertion order is preserved for reproducible iteration.
type Collection struct {
	variants []*Variant
}

// NewCollection creates a collection from an ordered sequence of variants.
func NewCollection(variants []*Variant) *Collection {
	return &Collection{variants: variants}
}

// Variants returns the underlying ordered slice. Callers must not modify it.
func (c *Collection) Variants() []*Variant {
	return c.variants
}

// Len returns the number of variants in the collection.
func (c *Collection) Len() int {
	return len(c.variants)
}

// Append returns a new collection with v added at the end.
func (c *Collection) Append(v *Variant) *Collection {
	out := make([]*Variant, 0, len(c.variants)+1)
	out = append(out, c.variants...)
	out = append(out, v)
	return &Collection{variants: out}
}

// GroupByGeneName groups variants by the names of the genes they overlap.
// A variant overlapping transcripts of several genes appears under each of
// them. Gene order follows first occurrence; variants with no overlapping
// transcripts are omitted.
func (c *Collection) GroupByGeneName(p genome.Provider) (map[string]*Collection, []string, error) {
	groups := make(map[string]*Collection)
	var order []string

	for _, v := range c.variants {
		transcripts, err := v.OverlappingTranscripts(p)
		if err != nil {
			return nil, nil, fmt.Errorf("lookup transcripts for %s: %w", v.Description(), err)
		}

		seen := make(map[string]bool)
		for _, t := range transcripts {
			if seen[t.GeneName] {
				continue
			}
			seen[t.GeneName] = true

			g, ok := groups[t.GeneName]
			if !ok {
				g = &Collection{}
				groups[t.GeneName] = g
				order = append(order, t.GeneName)
			}
			g.variants = append(g.variants, v)
		}
	}

	return groups, order, nil
}

// GeneCounts returns, for each gene name, the number of distinct variants
// overlapping it. A variant counts once per gene even when several of the
// gene's transcripts overlap it.
func (c *Collection) GeneCounts(p genome.Provider) (map[string]int, error) {
	groups, _, err := c.GroupByGeneName(p)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(groups))
	for name, g := range groups {
		distinct := make(map[string]bool)
		for _, v := range g.variants {
			distinct[v.Key()] = true
		}
		counts[name] = len(distinct)
	}
	return counts, nil
}
