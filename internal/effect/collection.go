package effect

// Collection is an ordered sequence of effects from many
// (variant, transcript) pairs. Duplicates from overlapping transcripts are
// expected and meaningful; insertion order is preserved.
type Collection struct {
	effects []*Effect
}

// NewCollection creates a collection from an ordered sequence of effects.
func NewCollection(effects []*Effect) *Collection {
	return &Collection{effects: effects}
}

// Effects returns the underlying ordered slice. Callers must not modify it.
func (c *Collection) Effects() []*Effect {
	return c.effects
}

// Len returns the number of effects in the collection.
func (c *Collection) Len() int {
	return len(c.effects)
}

// Filter returns a new collection holding the effects for which pred is
// true, preserving relative order.
func (c *Collection) Filter(pred func(*Effect) bool) *Collection {
	var out []*Effect
	for _, e := range c.effects {
		if pred(e) {
			out = append(out, e)
		}
	}
	return &Collection{effects: out}
}

// DropSilentAndNoncoding removes effects with no coding impact: Silent,
// Intronic, UTR, and NoncodingTranscript.
func (c *Collection) DropSilentAndNoncoding() *Collection {
	return c.Filter(func(e *Effect) bool {
		switch e.Category {
		case CategorySilent, CategoryIntronic, CategoryFivePrimeUTR,
			CategoryThreePrimeUTR, CategoryNoncodingTranscript:
			return false
		}
		return true
	})
}

// FilterByMinimumPriority keeps only effects at least as severe as the
// given category.
func (c *Collection) FilterByMinimumPriority(min Category) *Collection {
	threshold := Severity(min)
	return c.Filter(func(e *Effect) bool {
		return Severity(e.Category) >= threshold
	})
}

// GroupByGene returns a sub-collection per gene identifier, with gene order
// stable by first occurrence.
func (c *Collection) GroupByGene() (map[string]*Collection, []string) {
	groups := make(map[string]*Collection)
	var order []string

	for _, e := range c.effects {
		g, ok := groups[e.GeneID]
		if !ok {
			g = &Collection{}
			groups[e.GeneID] = g
			order = append(order, e.GeneID)
		}
		g.effects = append(g.effects, e)
	}

	return groups, order
}

// GeneCounts returns the number of effects per gene name. Each effect
// counts once, so a variant hitting several transcripts of the same gene
// contributes once per transcript.
func (c *Collection) GeneCounts() map[string]int {
	counts := make(map[string]int)
	for _, e := range c.effects {
		counts[e.GeneName]++
	}
	return counts
}

// TopPriorityEffect returns the single most severe effect in the collection.
func (c *Collection) TopPriorityEffect() (*Effect, error) {
	return TopPriorityEffect(c.effects)
}

// TopPriorityEffectPerGene reduces each gene's effects to the single most
// severe one.
func (c *Collection) TopPriorityEffectPerGene() (map[string]*Effect, []string) {
	return TopPriorityEffectPerGene(c.effects)
}
