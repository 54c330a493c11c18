package effect

import (
	"errors"
	"fmt"

	"github.com/openvax/varcode-go/internal/variant"
)

// Category tags an Effect with exactly one consequence kind.
type Category int

const (
	// CategoryUnknown is the zero value; never produced by the classifier.
	CategoryUnknown Category = iota

	// No coding impact.
	CategorySilent
	CategoryIntronic
	CategoryFivePrimeUTR
	CategoryThreePrimeUTR
	CategoryNoncodingTranscript

	// Effect undeterminable.
	CategoryIncompleteTranscript

	// Coding impact, ascending severity.
	CategorySubstitution
	CategoryInsertion
	CategoryDeletion
	CategoryExonicSpliceSite
	CategoryIntronicSpliceSite
	CategoryFrameShift
	CategoryStopLoss
	CategoryStopGain
)

var categoryNames = map[Category]string{
	CategorySilent:               "silent",
	CategoryIntronic:             "intronic",
	CategoryFivePrimeUTR:         "5' UTR",
	CategoryThreePrimeUTR:        "3' UTR",
	CategoryNoncodingTranscript:  "non-coding transcript",
	CategoryIncompleteTranscript: "incomplete transcript",
	CategorySubstitution:         "substitution",
	CategoryInsertion:            "insertion",
	CategoryDeletion:             "deletion",
	CategoryExonicSpliceSite:     "exonic splice site",
	CategoryIntronicSpliceSite:   "intronic splice site",
	CategoryFrameShift:           "frameshift",
	CategoryStopLoss:             "stop-loss",
	CategoryStopGain:             "stop-gain",
}

// String returns the human-readable category name.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// IsCoding reports whether the category alters the protein sequence.
func (c Category) IsCoding() bool {
	switch c {
	case CategorySubstitution, CategoryInsertion, CategoryDeletion,
		CategoryFrameShift, CategoryStopLoss, CategoryStopGain:
		return true
	}
	return false
}

// Effect is the predicted consequence of one variant on one transcript.
// Exactly one Category applies; protein-level fields are populated only for
// coding categories. Effects are immutable once produced.
type Effect struct {
	Variant        *variant.Variant
	TranscriptID   string
	TranscriptName string
	GeneID         string
	GeneName       string
	Category       Category

	// Description is the short human-readable change, protein-level for
	// coding categories (e.g. "p.V600E", "p.G245fs") and genomic otherwise.
	Description string

	// AAPos is the 1-based offset of the first affected amino acid.
	// Zero for non-coding categories.
	AAPos int64

	// RefProtein and AltProtein are the original and mutant protein
	// sequences, stop codon excluded. Empty for non-coding categories.
	RefProtein string
	AltProtein string

	// Alternate carries, for splice-site categories only, the effect that
	// would have applied had the splice boundary not been considered.
	// Recursion depth is bounded to one by construction.
	Alternate *Effect
}

// String renders the effect as "variant transcript category description".
func (e *Effect) String() string {
	return fmt.Sprintf("%s %s %s %s", e.Variant.Description(), e.TranscriptID, e.Category, e.Description)
}

// ReferenceMismatchError reports that the provider's reference sequence
// disagrees with a variant's stated reference allele. This guards against
// genome build or coordinate mismatches and is surfaced per
// (variant, transcript) pair, never silently corrected.
type ReferenceMismatchError struct {
	Variant      *variant.Variant
	TranscriptID string
	Expected     string // variant's ref allele on the coding strand
	Found        string // provider's sequence at that offset
}

func (e *ReferenceMismatchError) Error() string {
	return fmt.Sprintf("reference mismatch for %s on %s: variant ref %q, transcript sequence %q",
		e.Variant.Description(), e.TranscriptID, e.Expected, e.Found)
}

// ErrEmptyEffectSet is returned when a priority reduction is requested over
// zero effects.
var ErrEmptyEffectSet = errors.New("top priority effect requested over empty effect set")
