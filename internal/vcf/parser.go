// Package vcf reads VCF files into normalized variants.
package vcf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/openvax/varcode-go/internal/variant"
)

// ParseError reports a malformed VCF line.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf line %d: %s", e.Line, e.Message)
}

// Parser streams variants from a VCF file. Multi-allelic records are split
// into one variant per alternate allele, and the shared VCF anchor base is
// trimmed so that pure insertions and deletions carry empty ref/alt alleles.
type Parser struct {
	reader      *bufio.Reader
	file        *os.File
	gzipReader  *gzip.Reader
	build       string
	onlyPassing bool
	lineNumber  int
	header      []string
	queue       []*variant.Variant // remaining alleles of a multi-allelic record
}

// NewParser creates a parser for the given file, tagging every variant with
// the stated genome build. Plain and gzipped VCF are both supported; "-"
// reads from stdin.
func NewParser(path, build string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin, build)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	p := &Parser{file: file, build: build}

	// Sniff gzip magic bytes.
	buf := make([]byte, 2)
	if _, err := file.Read(buf); err != nil {
		file.Close()
		return nil, fmt.Errorf("read vcf header: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek vcf file: %w", err)
	}

	if buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = bufio.NewReader(file)
	}

	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader.
func NewParserFromReader(r io.Reader, build string) (*Parser, error) {
	p := &Parser{
		reader: bufio.NewReader(r),
		build:  build,
	}

	if err := p.parseHeader(); err != nil {
		return nil, err
	}

	return p, nil
}

// parseHeader reads and stores VCF header lines through #CHROM.
func (p *Parser) parseHeader() error {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("read header: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")

		if strings.HasPrefix(line, "##") {
			p.header = append(p.header, line)
			continue
		}

		if strings.HasPrefix(line, "#CHROM") {
			p.header = append(p.header, line)
			return nil
		}

		return &ParseError{Line: p.lineNumber, Message: "expected #CHROM header line"}
	}

	return &ParseError{Line: p.lineNumber, Message: "no #CHROM header line found"}
}

// SetOnlyPassing makes the parser drop records whose FILTER column is
// anything other than "PASS" or ".".
func (p *Parser) SetOnlyPassing(only bool) {
	p.onlyPassing = only
}

// Next returns the next variant, or nil, nil at end of input.
func (p *Parser) Next() (*variant.Variant, error) {
	if len(p.queue) > 0 {
		v := p.queue[0]
		p.queue = p.queue[1:]
		return v, nil
	}

	line, err := p.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read variant line: %w", err)
	}
	p.lineNumber++

	// A final line without a trailing newline arrives together with EOF.
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err == io.EOF {
			return nil, nil
		}
		return p.Next()
	}

	variants, err := p.parseLine(line)
	if err != nil {
		return nil, err
	}
	// Filtered records and all-no-call ALT columns yield nothing.
	if len(variants) == 0 {
		return p.Next()
	}
	p.queue = variants[1:]
	return variants[0], nil
}

// ReadAll drains the parser into a collection.
func (p *Parser) ReadAll() (*variant.Collection, error) {
	var variants []*variant.Variant
	for {
		v, err := p.Next()
		if err != nil {
			return nil, err
		}
		if v == nil {
			break
		}
		variants = append(variants, v)
	}
	return variant.NewCollection(variants), nil
}

// parseLine parses one VCF data line into one variant per alternate allele.
func (p *Parser) parseLine(line string) ([]*variant.Variant, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least 8 columns, found %d", len(fields)),
		}
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid position: %s", fields[1]),
		}
	}

	if p.onlyPassing {
		if filter := fields[6]; filter != "PASS" && filter != "." {
			return nil, nil
		}
	}

	ref := fields[3]
	var variants []*variant.Variant

	for _, alt := range strings.Split(fields[4], ",") {
		if alt == "." {
			// No-call allele: the record states no alternate here.
			continue
		}
		nPos, nRef, nAlt := trimAnchor(pos, ref, alt)
		v, err := variant.New(fields[0], nPos, nRef, nAlt, p.build)
		if err != nil {
			return nil, &ParseError{Line: p.lineNumber, Message: err.Error()}
		}
		variants = append(variants, v)
	}

	return variants, nil
}

// trimAnchor removes the shared leading base carried by VCF indel records
// (REF=A ALT=AT describes a pure insertion of T after pos), adjusting the
// position so pure insertions and deletions have an empty ref or alt.
func trimAnchor(pos int64, ref, alt string) (int64, string, string) {
	for len(ref) > 0 && len(alt) > 0 && ref[0] == alt[0] && ref != alt {
		ref = ref[1:]
		alt = alt[1:]
		pos++
	}
	if len(ref) == 0 {
		// Pure insertion: report the base before the inserted sequence.
		pos--
	}
	return pos, ref, alt
}

// Header returns the VCF header lines.
func (p *Parser) Header() []string {
	return p.header
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}
