package effect

import "strings"

// Severity returns the relative severity rank of a category. Higher values
// are more severe. The ranking drives every priority-based reduction, so it
// must stay a total order together with the tie-breaks in Compare.
func Severity(c Category) int {
	switch c {
	case CategorySilent, CategoryIntronic, CategoryFivePrimeUTR,
		CategoryThreePrimeUTR, CategoryNoncodingTranscript:
		return 1
	case CategoryIncompleteTranscript:
		return 2
	case CategorySubstitution:
		return 4
	case CategoryInsertion, CategoryDeletion:
		return 5
	case CategoryExonicSpliceSite, CategoryIntronicSpliceSite:
		return 6
	case CategoryFrameShift, CategoryStopLoss:
		return 7
	case CategoryStopGain:
		return 8
	}
	return 0
}

// Compare defines the strict total order over effects: severity first, then
// category ordinal, then non-silent over silent, then ascending transcript
// identifier (smaller ID ranks higher). Returns a positive value when a
// outranks b, negative when b outranks a, and zero only when the tie-break
// key is identical.
func Compare(a, b *Effect) int {
	if d := Severity(a.Category) - Severity(b.Category); d != 0 {
		return d
	}
	if d := int(a.Category) - int(b.Category); d != 0 {
		return d
	}
	// Within a category, a silent change never outranks a non-silent one.
	// Only the Silent category itself is silent, so this clause matters for
	// splice-site effects whose alternates differ.
	aSilent, bSilent := isSilent(a), isSilent(b)
	if aSilent != bSilent {
		if aSilent {
			return -1
		}
		return 1
	}
	// Ascending transcript ID: the smaller identifier wins for determinism.
	return strings.Compare(b.TranscriptID, a.TranscriptID)
}

// isSilent reports whether the effect, or its embedded alternate for
// splice-site categories, leaves the protein unchanged.
func isSilent(e *Effect) bool {
	if e.Category == CategorySilent {
		return true
	}
	if e.Alternate != nil {
		return e.Alternate.Category == CategorySilent
	}
	return false
}

// TopPriorityEffect returns the single maximum effect under Compare.
// Fails with ErrEmptyEffectSet on an empty input.
func TopPriorityEffect(effects []*Effect) (*Effect, error) {
	if len(effects) == 0 {
		return nil, ErrEmptyEffectSet
	}
	best := effects[0]
	for _, e := range effects[1:] {
		if Compare(e, best) > 0 {
			best = e
		}
	}
	return best, nil
}

// TopPriorityEffectPerGene groups effects by gene identifier and reduces
// each group to its top effect. Gene iteration order is stable by first
// occurrence and returned alongside the mapping.
func TopPriorityEffectPerGene(effects []*Effect) (map[string]*Effect, []string) {
	top := make(map[string]*Effect)
	var order []string

	for _, e := range effects {
		cur, ok := top[e.GeneID]
		if !ok {
			top[e.GeneID] = e
			order = append(order, e.GeneID)
			continue
		}
		if Compare(e, cur) > 0 {
			top[e.GeneID] = e
		}
	}

	return top, order
}
