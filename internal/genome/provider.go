package genome

import (
	"fmt"
	"strconv"
	"sync"
)

// Provider is the annotation collaborator consumed by the effect engine.
// Implementations must be safe for concurrent use: annotation data is
// immutable, so a read-through cache fill may race with "last write wins"
// semantics instead of exclusive locking.
type Provider interface {
	// OverlappingTranscripts returns the transcripts whose genomic span
	// contains pos on the given contig. The result may be empty.
	OverlappingTranscripts(contig string, pos int64) ([]*Transcript, error)

	// TranscriptByID returns a transcript's structure by identifier.
	TranscriptByID(id string) (*Transcript, error)

	// CodingSequence returns the spliced reference coding sequence
	// (start codon through stop codon) for a transcript.
	CodingSequence(id string) (string, error)

	// ProteinSequence returns the reference protein sequence for a transcript.
	ProteinSequence(id string) (string, error)

	// GeneOf returns the gene identifier and symbol owning a transcript.
	GeneOf(id string) (geneID, geneName string, err error)

	// Build returns the reference genome build this provider serves.
	Build() string
}

// NotFoundError reports a lookup for an unknown transcript or sequence.
type NotFoundError struct {
	Kind string // "transcript", "coding sequence", "protein sequence"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// MemoryProvider serves annotation from in-memory tables with per-contig
// interval trees. Overlap queries are memoized by (contig, position, build)
// in a sync.Map: concurrent cold-key fills race benignly because every
// writer computes the same value.
type MemoryProvider struct {
	build string

	mu          sync.RWMutex
	byContig    map[string][]*Transcript
	byID        map[string]*Transcript
	trees       map[string]*IntervalTree
	coding      map[string]string
	protein     map[string]string
	treesStale  bool
	overlapMemo sync.Map // "contig:pos" -> []*Transcript
}

// NewMemoryProvider creates an empty provider for the given genome build.
func NewMemoryProvider(build string) *MemoryProvider {
	return &MemoryProvider{
		build:    build,
		byContig: make(map[string][]*Transcript),
		byID:     make(map[string]*Transcript),
		trees:    make(map[string]*IntervalTree),
		coding:   make(map[string]string),
		protein:  make(map[string]string),
	}
}

// Build returns the reference genome build this provider serves.
func (p *MemoryProvider) Build() string {
	return p.build
}

// AddTranscript registers a transcript with its reference sequences.
// Loading happens before queries; adding a transcript invalidates the
// interval trees and the overlap memo.
func (p *MemoryProvider) AddTranscript(t *Transcript, codingSeq, proteinSeq string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.byContig[t.Contig] = append(p.byContig[t.Contig], t)
	p.byID[t.ID] = t
	if codingSeq != "" {
		p.coding[t.ID] = codingSeq
	}
	if proteinSeq != "" {
		p.protein[t.ID] = proteinSeq
	}
	p.treesStale = true
	p.overlapMemo.Clear()
}

// TranscriptCount returns the number of registered transcripts.
func (p *MemoryProvider) TranscriptCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byID)
}

// OverlappingTranscripts returns the transcripts containing pos, memoized
// per (contig, position).
func (p *MemoryProvider) OverlappingTranscripts(contig string, pos int64) ([]*Transcript, error) {
	key := contig + ":" + strconv.FormatInt(pos, 10)
	if cached, ok := p.overlapMemo.Load(key); ok {
		return cached.([]*Transcript), nil
	}

	tree := p.tree(contig)
	var result []*Transcript
	if tree != nil {
		result = tree.FindOverlaps(pos)
	}

	// Last write wins; all writers computed the same value.
	p.overlapMemo.Store(key, result)
	return result, nil
}

// tree returns the interval tree for a contig, rebuilding stale trees first.
func (p *MemoryProvider) tree(contig string) *IntervalTree {
	p.mu.RLock()
	if !p.treesStale {
		t := p.trees[contig]
		p.mu.RUnlock()
		return t
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.treesStale {
		for c, transcripts := range p.byContig {
			p.trees[c] = BuildIntervalTree(transcripts)
		}
		p.treesStale = false
	}
	return p.trees[contig]
}

// TranscriptByID returns a transcript's structure by identifier.
func (p *MemoryProvider) TranscriptByID(id string) (*Transcript, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	t, ok := p.byID[id]
	if !ok {
		return nil, &NotFoundError{Kind: "transcript", ID: id}
	}
	return t, nil
}

// CodingSequence returns the reference coding sequence for a transcript.
func (p *MemoryProvider) CodingSequence(id string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	seq, ok := p.coding[id]
	if !ok {
		return "", &NotFoundError{Kind: "coding sequence", ID: id}
	}
	return seq, nil
}

// ProteinSequence returns the reference protein sequence for a transcript.
func (p *MemoryProvider) ProteinSequence(id string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	seq, ok := p.protein[id]
	if !ok {
		return "", &NotFoundError{Kind: "protein sequence", ID: id}
	}
	return seq, nil
}

// GeneOf returns the gene identifier and symbol owning a transcript.
func (p *MemoryProvider) GeneOf(id string) (string, string, error) {
	t, err := p.TranscriptByID(id)
	if err != nil {
		return "", "", err
	}
	return t.GeneID, t.GeneName, nil
}
