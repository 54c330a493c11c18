// Package genome provides the annotation provider boundary: transcript and
// gene structures plus position-indexed lookup with memoized queries.
package genome

// Transcript describes a specific gene isoform: its genomic span, ordered
// exons, CDS bounds and annotation completeness. Reference sequences are
// not stored here; they are served on demand by a Provider.
type Transcript struct {
	ID       string `json:"id"`        // Transcript ID (e.g., ENST00000288602)
	Name     string `json:"name"`      // Transcript name (e.g., BRAF-001)
	GeneID   string `json:"gene_id"`   // Parent gene ID
	GeneName string `json:"gene_name"` // Parent gene symbol
	Contig   string `json:"contig"`    // Chromosome
	Start    int64  `json:"start"`     // Transcript start (1-based)
	End      int64  `json:"end"`       // Transcript end (1-based, inclusive)
	Strand   int8   `json:"strand"`    // +1 or -1
	Biotype  string `json:"biotype"`   // Transcript biotype (e.g., protein_coding)
	Exons    []Exon `json:"exons"`     // Exons ordered by genomic coordinate
	CDSStart int64  `json:"cds_start"` // CDS start (genomic, 1-based), 0 if non-coding
	CDSEnd   int64  `json:"cds_end"`   // CDS end (genomic, 1-based), 0 if non-coding

	// Annotation completeness. A transcript whose annotated CDS lacks a
	// known start or stop codon cannot support protein-level predictions.
	HasStartCodon bool `json:"has_start_codon"`
	HasStopCodon  bool `json:"has_stop_codon"`
}

// Exon represents a single exon within a transcript.
type Exon struct {
	Number   int   `json:"number"`    // Exon number in transcription order (1-based)
	Start    int64 `json:"start"`     // Genomic start (1-based)
	End      int64 `json:"end"`       // Genomic end (1-based, inclusive)
	CDSStart int64 `json:"cds_start"` // CDS portion start, 0 if entirely non-coding
	CDSEnd   int64 `json:"cds_end"`   // CDS portion end, 0 if entirely non-coding
}

// IsCoding returns true if the exon contains coding sequence.
func (e *Exon) IsCoding() bool {
	return e.CDSStart > 0 && e.CDSEnd > 0
}

// IsProteinCoding returns true if the transcript has an annotated CDS.
func (t *Transcript) IsProteinCoding() bool {
	return t.CDSStart > 0 && t.CDSEnd > 0
}

// IsComplete returns true if both the start and stop codon are annotated.
func (t *Transcript) IsComplete() bool {
	return t.HasStartCodon && t.HasStopCodon
}

// IsForwardStrand returns true if the transcript is on the forward strand.
func (t *Transcript) IsForwardStrand() bool {
	return t.Strand == 1
}

// IsReverseStrand returns true if the transcript is on the reverse strand.
func (t *Transcript) IsReverseStrand() bool {
	return t.Strand == -1
}

// Contains returns true if pos is within the transcript's genomic span.
func (t *Transcript) Contains(pos int64) bool {
	return pos >= t.Start && pos <= t.End
}

// ContainsCDS returns true if pos is within the annotated CDS bounds.
func (t *Transcript) ContainsCDS(pos int64) bool {
	if !t.IsProteinCoding() {
		return false
	}
	return pos >= t.CDSStart && pos <= t.CDSEnd
}

// FindExon returns the exon containing pos, or nil if pos is intronic or
// outside the transcript. Binary search over coordinate-sorted exons;
// handles both ascending and descending exon ordering.
func (t *Transcript) FindExon(pos int64) *Exon {
	n := len(t.Exons)
	if n == 0 {
		return nil
	}
	ascending := n < 2 || t.Exons[0].Start <= t.Exons[n-1].Start
	lo, hi := 0, n-1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		e := &t.Exons[mid]
		if pos >= e.Start && pos <= e.End {
			return e
		}
		if ascending {
			if pos < e.Start {
				hi = mid - 1
			} else {
				lo = mid + 1
			}
		} else {
			if pos > e.End {
				hi = mid - 1
			} else {
				lo = mid + 1
			}
		}
	}
	return nil
}

// FindNearestExonIdx returns the index of the exon containing pos, or the
// index of the closest exon when pos lies in an intron.
func (t *Transcript) FindNearestExonIdx(pos int64) int {
	n := len(t.Exons)
	if n == 0 {
		return -1
	}
	ascending := n < 2 || t.Exons[0].Start <= t.Exons[n-1].Start
	lo, hi := 0, n-1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		e := &t.Exons[mid]
		if pos >= e.Start && pos <= e.End {
			return mid
		}
		if ascending {
			if pos < e.Start {
				hi = mid - 1
			} else {
				lo = mid + 1
			}
		} else {
			if pos > e.End {
				hi = mid - 1
			} else {
				lo = mid + 1
			}
		}
	}
	if lo >= n {
		return n - 1
	}
	if hi < 0 {
		return 0
	}
	distHi := abs64(pos - t.Exons[hi].End)
	distLo := abs64(t.Exons[lo].Start - pos)
	if distHi <= distLo {
		return hi
	}
	return lo
}

// GenomicToCDS converts a genomic position to a 1-based CDS offset.
// Returns 0 if the position is not within the CDS. The offset is computed
// from each exon's coding span independently, so exons may be stored in
// either ascending or descending coordinate order.
func (t *Transcript) GenomicToCDS(pos int64) int64 {
	if !t.ContainsCDS(pos) {
		return 0
	}

	// within is the offset inside the containing exon; upstream accumulates
	// the coding length of exons transcribed before it. On the reverse
	// strand coding order runs from high to low genomic coordinates.
	var within, upstream int64
	found := false

	for i := range t.Exons {
		e := &t.Exons[i]
		if !e.IsCoding() {
			continue
		}
		if pos >= e.CDSStart && pos <= e.CDSEnd {
			found = true
			if t.IsForwardStrand() {
				within = pos - e.CDSStart + 1
			} else {
				within = e.CDSEnd - pos + 1
			}
			continue
		}
		if t.IsForwardStrand() && e.CDSEnd < pos {
			upstream += e.CDSEnd - e.CDSStart + 1
		}
		if t.IsReverseStrand() && e.CDSStart > pos {
			upstream += e.CDSEnd - e.CDSStart + 1
		}
	}

	if !found {
		return 0
	}
	return upstream + within
}

// Gene is a genomic region owning one or more transcripts.
type Gene struct {
	ID          string
	Name        string
	Contig      string
	Start       int64
	End         int64
	Strand      int8
	Biotype     string
	Transcripts []*Transcript
}

// Contains returns true if pos is within the gene boundaries.
func (g *Gene) Contains(pos int64) bool {
	return pos >= g.Start && pos <= g.End
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
