package genotype

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	commentPrefix = "#"
	fieldCount    = 4
)

// Parser reads variants from a raw genotype export.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	skipped    int
}

// NewParser creates a new parser for the given file.
// Supports plain and gzipped exports; "-" reads stdin.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open genotype file: %w", err)
	}

	p := &Parser{file: file}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read genotype file: %w", err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek genotype file: %w", err)
	}

	if n == 2 && buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = bufio.NewReader(file)
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., an upload body).
func NewParserFromReader(r io.Reader) *Parser {
	return &Parser{reader: bufio.NewReader(r)}
}

// Next reads the next well-formed variant, skipping comments and malformed lines.
// Returns nil, nil when there are no more variants.
func (p *Parser) Next() (*Variant, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if line == "" && err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("read genotype line: %w", err)
		}
		p.lineNumber++

		v, ok, malformed := parseLine(line)
		if malformed {
			p.skipped++
		}
		if ok {
			return v, nil
		}
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read genotype line: %w", err)
		}
	}
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Skipped returns the number of non-blank, non-comment lines dropped
// because they did not have exactly four tab-separated fields.
func (p *Parser) Skipped() int {
	return p.skipped
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

// ParseAll reads every well-formed variant from r.
func ParseAll(r io.Reader) ([]Variant, error) {
	return Collect(NewParserFromReader(r))
}

// Collect drains a parser into a slice. An input without well-formed
// lines yields an empty slice, not an error.
func Collect(p VariantParser) ([]Variant, error) {
	variants := []Variant{}
	for {
		v, err := p.Next()
		if err != nil {
			return nil, err
		}
		if v == nil {
			return variants, nil
		}
		variants = append(variants, *v)
	}
}

// Parse converts raw byte lines into variants, dropping comments and
// malformed lines.
func Parse(lines [][]byte) []Variant {
	variants := []Variant{}
	for _, raw := range lines {
		if v, ok, _ := parseLine(string(raw)); ok {
			variants = append(variants, *v)
		}
	}
	return variants
}

// parseLine maps one export line to a Variant. ok reports a well-formed
// data line; malformed reports a data line with the wrong field count.
func parseLine(line string) (v *Variant, ok, malformed bool) {
	line = strings.ToValidUTF8(line, "�")
	if strings.HasPrefix(line, commentPrefix) {
		return nil, false, false
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return nil, false, false
	}

	fields := strings.Split(line, "\t")
	if len(fields) != fieldCount {
		return nil, false, true
	}

	return &Variant{
		RSID:       NormalizeID(fields[0]),
		Chromosome: fields[1],
		Position:   fields[2],
		Genotype:   fields[3],
	}, true, false
}
