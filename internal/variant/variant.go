// Package variant provides the normalized, immutable representation of a
// single genomic change.
package variant

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openvax/varcode-go/internal/genome"
)

// Variant represents a single genomic change interpreted against exactly one
// reference genome build. Ref and Alt are uppercase nucleotide strings; a
// pure insertion has an empty Ref, a pure deletion an empty Alt.
//
// A Variant is immutable once constructed. Equality and ordering are defined
// by (Contig, Pos, Ref, Alt, Build) only.
type Variant struct {
	Contig string // Chromosome or sequence name, without "chr" prefix
	Pos    int64  // 1-based genomic position
	Ref    string // Reference allele, possibly empty
	Alt    string // Alternate allele, possibly empty
	Build  string // Reference genome build (e.g., "GRCh37")
}

// InvalidVariantError reports a malformed variant construction input.
type InvalidVariantError struct {
	Contig string
	Pos    int64
	Ref    string
	Alt    string
	Reason string
}

func (e *InvalidVariantError) Error() string {
	return fmt.Sprintf("invalid variant %s:%d %s>%s: %s", e.Contig, e.Pos, e.Ref, e.Alt, e.Reason)
}

// New constructs a Variant from its components.
// The "." marker and "-" are accepted as placeholders for an unspecified
// allele and mapped to the empty string. Alleles are uppercased.
func New(contig string, pos int64, ref, alt, build string) (*Variant, error) {
	ref = normalizeAllele(ref)
	alt = normalizeAllele(alt)

	fail := func(reason string) (*Variant, error) {
		return nil, &InvalidVariantError{Contig: contig, Pos: pos, Ref: ref, Alt: alt, Reason: reason}
	}

	if contig == "" {
		return fail("empty contig")
	}
	if pos < 1 {
		return fail("non-positive position")
	}
	if ref == "" && alt == "" {
		return fail("both ref and alt are empty")
	}
	if !validAllele(ref) {
		return fail(fmt.Sprintf("ref %q contains non-nucleotide characters", ref))
	}
	if !validAllele(alt) {
		return fail(fmt.Sprintf("alt %q contains non-nucleotide characters", alt))
	}

	return &Variant{
		Contig: normalizeContig(contig),
		Pos:    pos,
		Ref:    ref,
		Alt:    alt,
		Build:  build,
	}, nil
}

// MustNew is like New but panics on invalid input. Intended for fixtures.
func MustNew(contig string, pos int64, ref, alt, build string) *Variant {
	v, err := New(contig, pos, ref, alt, build)
	if err != nil {
		panic(err)
	}
	return v
}

// normalizeAllele uppercases an allele and maps the unspecified markers
// "." and "-" to the empty string.
func normalizeAllele(a string) string {
	a = strings.ToUpper(strings.TrimSpace(a))
	if a == "." || a == "-" {
		return ""
	}
	return a
}

// validAllele reports whether every character is in the nucleotide alphabet.
func validAllele(a string) bool {
	for i := 0; i < len(a); i++ {
		switch a[i] {
		case 'A', 'C', 'G', 'T', 'N':
		default:
			return false
		}
	}
	return true
}

// normalizeContig strips a leading "chr" prefix so "chr7" and "7" compare equal.
func normalizeContig(contig string) string {
	if len(contig) > 3 && strings.EqualFold(contig[:3], "chr") {
		return contig[3:]
	}
	return contig
}

// IsSNV reports whether the variant substitutes a single base.
func (v *Variant) IsSNV() bool {
	return len(v.Ref) == 1 && len(v.Alt) == 1
}

// IsInsertion reports whether the variant adds bases.
func (v *Variant) IsInsertion() bool {
	return len(v.Alt) > len(v.Ref)
}

// IsDeletion reports whether the variant removes bases.
func (v *Variant) IsDeletion() bool {
	return len(v.Ref) > len(v.Alt)
}

// IsIndel reports whether ref and alt lengths differ.
func (v *Variant) IsIndel() bool {
	return len(v.Ref) != len(v.Alt)
}

// End returns the last genomic position covered by the reference allele.
// For a pure insertion this equals Pos.
func (v *Variant) End() int64 {
	if len(v.Ref) == 0 {
		return v.Pos
	}
	return v.Pos + int64(len(v.Ref)) - 1
}

// Description returns the canonical short textual form of the variant:
//
//	chr7 g.140453136A>T           substitution
//	chr17 g.7577548_7577549insA   pure insertion
//	chr1 g.100_102delACT          deletion
func (v *Variant) Description() string {
	var b strings.Builder
	b.WriteString("chr")
	b.WriteString(v.Contig)
	b.WriteString(" g.")

	switch {
	case v.Ref == "":
		// Insertion between Pos and Pos+1
		b.WriteString(strconv.FormatInt(v.Pos, 10))
		b.WriteByte('_')
		b.WriteString(strconv.FormatInt(v.Pos+1, 10))
		b.WriteString("ins")
		b.WriteString(v.Alt)
	case v.Alt == "":
		b.WriteString(strconv.FormatInt(v.Pos, 10))
		if len(v.Ref) > 1 {
			b.WriteByte('_')
			b.WriteString(strconv.FormatInt(v.End(), 10))
		}
		b.WriteString("del")
		b.WriteString(v.Ref)
	default:
		b.WriteString(strconv.FormatInt(v.Pos, 10))
		b.WriteString(v.Ref)
		b.WriteByte('>')
		b.WriteString(v.Alt)
	}

	return b.String()
}

// Key returns a string that orders and identifies variants by
// (contig, position, ref, alt, build).
func (v *Variant) Key() string {
	return v.Contig + ":" + strconv.FormatInt(v.Pos, 10) + ":" + v.Ref + ":" + v.Alt + ":" + v.Build
}

// Equal reports whether two variants describe the same change on the same build.
func (v *Variant) Equal(o *Variant) bool {
	return v.Contig == o.Contig && v.Pos == o.Pos &&
		v.Ref == o.Ref && v.Alt == o.Alt && v.Build == o.Build
}

// Compare orders variants by (contig, position, ref, alt, build).
// Returns -1, 0, or 1.
func (v *Variant) Compare(o *Variant) int {
	if c := strings.Compare(v.Contig, o.Contig); c != 0 {
		return c
	}
	if v.Pos != o.Pos {
		if v.Pos < o.Pos {
			return -1
		}
		return 1
	}
	if c := strings.Compare(v.Ref, o.Ref); c != 0 {
		return c
	}
	if c := strings.Compare(v.Alt, o.Alt); c != 0 {
		return c
	}
	return strings.Compare(v.Build, o.Build)
}

// OverlappingTranscripts returns the transcripts whose genomic span contains
// the variant's position. The lookup is delegated to the provider, which
// memoizes results per (contig, position, build).
func (v *Variant) OverlappingTranscripts(p genome.Provider) ([]*genome.Transcript, error) {
	return p.OverlappingTranscripts(v.Contig, v.Pos)
}
