package effect

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/openvax/varcode-go/internal/genome"
	"github.com/openvax/varcode-go/internal/variant"
)

// Default splice-site window: 2 bases into the intron, 3 into the exon.
const (
	DefaultIntronicSpliceWindow = 2
	DefaultExonicSpliceWindow   = 3
)

// Classifier predicts the consequence of a (variant, transcript) pair.
// Classification is a pure function of its inputs; a single Classifier is
// safe for concurrent use.
type Classifier struct {
	provider       genome.Provider
	intronicWindow int64
	exonicWindow   int64
	logger         *zap.Logger
}

// NewClassifier creates a classifier backed by the given annotation provider.
func NewClassifier(p genome.Provider) *Classifier {
	return &Classifier{
		provider:       p,
		intronicWindow: DefaultIntronicSpliceWindow,
		exonicWindow:   DefaultExonicSpliceWindow,
		logger:         zap.NewNop(),
	}
}

// SetSpliceWindows overrides the splice-site window widths. The intronic
// window counts bases into the intron from an exon boundary, the exonic
// window bases into the exon.
func (c *Classifier) SetSpliceWindows(intronic, exonic int64) {
	c.intronicWindow = intronic
	c.exonicWindow = exonic
}

// SetLogger sets the logger used for batch warnings.
func (c *Classifier) SetLogger(l *zap.Logger) {
	c.logger = l
}

// Classify computes the single Effect of a variant on one transcript the
// variant is known to overlap. The decision sequence is first-match-wins:
// incomplete annotation, non-coding biotype, intronic, UTR, splice site,
// then direct CDS consequence.
func (c *Classifier) Classify(v *variant.Variant, t *genome.Transcript) (*Effect, error) {
	e := &Effect{
		Variant:        v,
		TranscriptID:   t.ID,
		TranscriptName: t.Name,
		GeneID:         t.GeneID,
		GeneName:       t.GeneName,
	}

	// Incomplete annotation: protein-level consequences are not derivable
	// when the CDS lacks a known start or stop codon.
	if t.IsProteinCoding() && !t.IsComplete() && overlapsCDS(v, t) {
		e.Category = CategoryIncompleteTranscript
		e.Description = "incomplete transcript annotation"
		return e, nil
	}

	if !t.IsProteinCoding() {
		e.Category = CategoryNoncodingTranscript
		e.Description = "non-coding transcript"
		return e, nil
	}

	return c.classifyPosition(v, t, e, false)
}

// classifyPosition handles rules 3-6 of the decision sequence. When
// ignoreSplice is set, splice-site detection is skipped; this computes the
// "alternate effect" embedded in splice-site results, so the recursion is
// bounded to one level.
func (c *Classifier) classifyPosition(v *variant.Variant, t *genome.Transcript, e *Effect, ignoreSplice bool) (*Effect, error) {
	exon := t.FindExon(v.Pos)

	if exon == nil {
		// Intronic. Positions within the intronic window of a coding exon
		// boundary disrupt splicing.
		if !ignoreSplice && c.inIntronicSpliceWindow(v, t) {
			alt := *e
			e.Category = CategoryIntronicSpliceSite
			e.Description = "intronic splice site"
			alt.Category = CategoryIntronic
			alt.Description = "intronic"
			e.Alternate = &alt
			return e, nil
		}
		e.Category = CategoryIntronic
		e.Description = "intronic"
		return e, nil
	}

	// Exonic but outside the CDS: UTR, unless the reference span reaches
	// into the CDS (a deletion starting in the 5' UTR can remove the start
	// codon). Splice variants confined to a UTR are reported as UTR since
	// they do not affect the CDS.
	if !t.ContainsCDS(v.Pos) && !overlapsCDS(v, t) {
		fivePrime := v.Pos < t.CDSStart
		if t.IsReverseStrand() {
			fivePrime = v.Pos > t.CDSEnd
		}
		if fivePrime {
			e.Category = CategoryFivePrimeUTR
			e.Description = "5' UTR"
		} else {
			e.Category = CategoryThreePrimeUTR
			e.Description = "3' UTR"
		}
		return e, nil
	}

	// Exonic splice window: last few bases of an exon adjacent to an
	// intron, when the variant also affects the CDS.
	if !ignoreSplice && c.inExonicSpliceWindow(v, t, exon) {
		alt := *e
		altEffect, err := c.codingEffect(v, t, &alt)
		if err != nil {
			return nil, err
		}
		e.Category = CategoryExonicSpliceSite
		e.Description = "exonic splice site"
		e.Alternate = altEffect
		return e, nil
	}

	return c.codingEffect(v, t, e)
}

// overlapsCDS reports whether the variant's reference span touches the
// transcript's annotated CDS bounds.
func overlapsCDS(v *variant.Variant, t *genome.Transcript) bool {
	return v.Pos <= t.CDSEnd && v.End() >= t.CDSStart
}

// inIntronicSpliceWindow reports whether any base of the variant's span lies
// within the intronic splice window of a coding exon boundary.
func (c *Classifier) inIntronicSpliceWindow(v *variant.Variant, t *genome.Transcript) bool {
	idx := t.FindNearestExonIdx(v.Pos)
	if idx < 0 {
		return false
	}
	for _, i := range [3]int{idx - 1, idx, idx + 1} {
		if i < 0 || i >= len(t.Exons) {
			continue
		}
		exon := &t.Exons[i]
		if !exon.IsCoding() {
			continue
		}
		// Window on the intron side of each boundary that adjoins an intron.
		if i < len(t.Exons)-1 && spansOverlap(v.Pos, v.End(), exon.End+1, exon.End+c.intronicWindow) {
			return true
		}
		if i > 0 && spansOverlap(v.Pos, v.End(), exon.Start-c.intronicWindow, exon.Start-1) {
			return true
		}
	}
	return false
}

// inExonicSpliceWindow reports whether the variant's span reaches the exonic
// splice window of a boundary between this exon and an intron.
func (c *Classifier) inExonicSpliceWindow(v *variant.Variant, t *genome.Transcript, exon *genome.Exon) bool {
	idx := -1
	for i := range t.Exons {
		if &t.Exons[i] == exon || (t.Exons[i].Start == exon.Start && t.Exons[i].End == exon.End) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	// End boundary adjoins an intron unless this is the final exon in
	// genomic order; same for the start boundary and the first exon.
	if idx < len(t.Exons)-1 && spansOverlap(v.Pos, v.End(), exon.End-c.exonicWindow+1, exon.End) {
		return true
	}
	if idx > 0 && spansOverlap(v.Pos, v.End(), exon.Start, exon.Start+c.exonicWindow-1) {
		return true
	}
	return false
}

func spansOverlap(aStart, aEnd, bStart, bEnd int64) bool {
	return aStart <= bEnd && aEnd >= bStart
}

// codingEffect computes the consequence of a variant that changes the CDS
// directly: substitute the strand-corrected alleles into the reference
// coding sequence, translate, and compare proteins.
func (c *Classifier) codingEffect(v *variant.Variant, t *genome.Transcript, e *Effect) (*Effect, error) {
	// A reference span crossing an exon or CDS boundary picks up intron or
	// UTR bases, so the genomic alleles cannot be substituted into the
	// spliced coding sequence. Fall back to length arithmetic instead of
	// reporting a spurious sequence mismatch.
	if !cdsMappable(v, t) {
		classifySpanning(e, v)
		return e, nil
	}

	cds, err := c.provider.CodingSequence(t.ID)
	if err != nil {
		return nil, fmt.Errorf("coding sequence for %s: %w", t.ID, err)
	}

	refProtein, err := c.provider.ProteinSequence(t.ID)
	if err != nil {
		var nf *genome.NotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("protein sequence for %s: %w", t.ID, err)
		}
		refProtein = Translate(cds)
	}

	// Strand-correct the alleles onto the coding strand.
	ref, alt := v.Ref, v.Alt
	if t.IsReverseStrand() {
		ref = ReverseComplement(ref)
		alt = ReverseComplement(alt)
	}

	idx := codingIndex(v, t)

	end := idx + int64(len(ref))
	if end > int64(len(cds)) {
		end = int64(len(cds))
		ref = ref[:end-idx]
	}

	// Guard against build/coordinate mismatches before any frame arithmetic.
	if len(ref) > 0 {
		found := cds[idx:end]
		if found != ref {
			return nil, &ReferenceMismatchError{
				Variant:      v,
				TranscriptID: t.ID,
				Expected:     ref,
				Found:        found,
			}
		}
	}

	mutantCDS := cds[:idx] + alt + cds[end:]
	mutProtein := Translate(mutantCDS)

	e.RefProtein = refProtein
	e.AltProtein = mutProtein

	diff := len(v.Alt) - len(v.Ref)
	switch {
	case diff == 0:
		classifySameLength(e, refProtein, mutProtein, idx)
	case diff%3 == 0:
		classifyInFrame(e, refProtein, mutProtein, diff)
	default:
		classifyFrameShift(e, refProtein, mutProtein)
	}

	return e, nil
}

// cdsMappable reports whether the variant's reference span lies within a
// single exon's coding portion, so that the strand-corrected alleles
// substitute cleanly into the spliced coding sequence. A pure insertion
// only needs a coding flank.
func cdsMappable(v *variant.Variant, t *genome.Transcript) bool {
	if v.Ref == "" {
		return t.ContainsCDS(v.Pos) || t.ContainsCDS(v.Pos+1)
	}
	exon := t.FindExon(v.Pos)
	if exon == nil || !exon.IsCoding() {
		return false
	}
	return v.Pos >= exon.CDSStart && v.End() <= exon.CDSEnd
}

// classifySpanning assigns a consequence from allele lengths alone, for
// variants whose reference span crosses a CDS or exon boundary. No protein
// fields are populated: the downstream protein is not derivable when intron
// or UTR bases are part of the change.
func classifySpanning(e *Effect, v *variant.Variant) {
	diff := len(v.Alt) - len(v.Ref)
	switch {
	case diff == 0:
		e.Category = CategorySubstitution
		e.Description = "substitution across a coding boundary"
	case diff%3 != 0:
		e.Category = CategoryFrameShift
		e.Description = "frameshift across a coding boundary"
	case diff > 0:
		e.Category = CategoryInsertion
		e.Description = "in-frame insertion across a coding boundary"
	default:
		e.Category = CategoryDeletion
		e.Description = "in-frame deletion across a coding boundary"
	}
}

// codingIndex returns the 0-based offset in the coding sequence where the
// strand-corrected alternate allele replaces the reference allele. For a
// pure insertion the offset is the point between the two flanking bases.
func codingIndex(v *variant.Variant, t *genome.Transcript) int64 {
	if v.Ref == "" {
		// Insertion between Pos and Pos+1. On the forward strand the left
		// flank is Pos; on the reverse strand the left flank in coding
		// orientation is Pos+1.
		flank := v.Pos
		if t.IsReverseStrand() {
			flank = v.Pos + 1
		}
		if cp := t.GenomicToCDS(flank); cp > 0 {
			return cp
		}
		// Flank maps outside the CDS (insertion at the CDS edge).
		if cp := t.GenomicToCDS(v.Pos); cp > 0 {
			return cp
		}
		return 0
	}

	anchor := v.Pos
	if t.IsReverseStrand() {
		anchor = v.End()
	}
	if cp := t.GenomicToCDS(anchor); cp > 0 {
		return cp - 1
	}
	// Deletions spanning past the CDS edge anchor at the variant position.
	if cp := t.GenomicToCDS(v.Pos); cp > 0 {
		return cp - 1
	}
	return 0
}

// classifySameLength handles equal-length, nonzero allele changes:
// Silent, Substitution, StopGain, or StopLoss.
func classifySameLength(e *Effect, refProt, mutProt string, idx int64) {
	if refProt == mutProt {
		e.Category = CategorySilent
		e.AAPos = idx/3 + 1
		e.Description = "silent"
		return
	}

	switch {
	case len(mutProt) < len(refProt):
		// Premature stop introduced.
		e.Category = CategoryStopGain
		e.AAPos = int64(len(mutProt)) + 1
		e.Description = fmt.Sprintf("p.%c%d*", refProt[e.AAPos-1], e.AAPos)
	case len(mutProt) > len(refProt):
		// Original stop codon altered, translation extends.
		e.Category = CategoryStopLoss
		e.AAPos = int64(len(refProt)) + 1
		e.Description = fmt.Sprintf("p.*%d%c", e.AAPos, mutProt[e.AAPos-1])
	default:
		first := firstDifference(refProt, mutProt)
		e.Category = CategorySubstitution
		e.AAPos = int64(first) + 1
		e.Description = fmt.Sprintf("p.%c%d%c", refProt[first], e.AAPos, mutProt[first])
	}
}

// classifyInFrame handles indels whose length difference is a multiple of 3.
func classifyInFrame(e *Effect, refProt, mutProt string, diff int) {
	first := firstDifference(refProt, mutProt)
	e.AAPos = int64(first) + 1

	if diff > 0 {
		e.Category = CategoryInsertion
		n := len(mutProt) - len(refProt)
		if n < 1 {
			// Insertion that truncates translation (introduced stop).
			n = 0
		}
		inserted := ""
		if first+n <= len(mutProt) {
			inserted = mutProt[first : first+n]
		}
		e.Description = fmt.Sprintf("p.%d_%dins%s", e.AAPos-1, e.AAPos, inserted)
		return
	}

	e.Category = CategoryDeletion
	n := len(refProt) - len(mutProt)
	last := first + n - 1
	if last >= len(refProt) {
		last = len(refProt) - 1
	}
	if n <= 1 || last <= first {
		if first < len(refProt) {
			e.Description = fmt.Sprintf("p.%c%ddel", refProt[first], e.AAPos)
		} else {
			e.Description = fmt.Sprintf("p.%ddel", e.AAPos)
		}
		return
	}
	e.Description = fmt.Sprintf("p.%c%d_%c%ddel", refProt[first], e.AAPos, refProt[last], int64(last)+1)
}

// classifyFrameShift handles indels that disrupt the reading frame. The
// entire downstream protein was recomputed from the mutation point; the
// description encodes the first changed amino acid.
func classifyFrameShift(e *Effect, refProt, mutProt string) {
	first := firstDifference(refProt, mutProt)
	e.Category = CategoryFrameShift
	e.AAPos = int64(first) + 1

	if first < len(refProt) {
		e.Description = fmt.Sprintf("p.%c%dfs", refProt[first], e.AAPos)
	} else {
		// Frame disrupted at or beyond the original stop.
		e.Description = fmt.Sprintf("p.%dfs", e.AAPos)
	}
}

// firstDifference returns the first index at which two protein sequences
// differ. If one is a prefix of the other, the shorter length is returned.
func firstDifference(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
