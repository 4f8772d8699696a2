// Package sheets reads published spreadsheet tabs through their CSV export.
package sheets

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/homecooks/profitability/internal/domain/integration"
)

// TableParser reads a CSV export into a positional table.
// Unlike a record importer it keeps rows whose cells are all empty, because
// dashboard tabs are addressed by row index.
type TableParser struct {
	delimiter  rune
	lazyQuotes bool
	trimSpace  bool
	reader     *csv.Reader
	bufReader  *bufio.Reader
}

// ParserOption is a functional option for TableParser configuration
type ParserOption func(*TableParser)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) ParserOption {
	return func(p *TableParser) {
		p.delimiter = d
	}
}

// WithTrimSpace enables trimming of leading/trailing spaces from header names
func WithTrimSpace(trim bool) ParserOption {
	return func(p *TableParser) {
		p.trimSpace = trim
	}
}

// NewTableParser creates a parser from a reader, stripping a UTF-8 BOM
func NewTableParser(r io.Reader, opts ...ParserOption) (*TableParser, error) {
	parser := &TableParser{
		delimiter:  ',',
		lazyQuotes: true,
		trimSpace:  true,
	}
	for _, opt := range opts {
		opt(parser)
	}

	parser.bufReader = bufio.NewReader(r)

	content, err := parser.bufReader.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		_, _ = parser.bufReader.Discard(3)
	}

	if err := validateUTF8(parser.bufReader); err != nil {
		return nil, err
	}

	parser.reader = csv.NewReader(parser.bufReader)
	parser.reader.Comma = parser.delimiter
	parser.reader.LazyQuotes = parser.lazyQuotes
	parser.reader.FieldsPerRecord = -1
	return parser, nil
}

func validateUTF8(r *bufio.Reader) error {
	const checkSize = 4096
	content, err := r.Peek(checkSize)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read export for encoding validation: %w", err)
	}
	if len(content) == 0 {
		return ErrEmptyFile
	}
	// a multi-byte rune may straddle the peek boundary
	if len(content) == checkSize {
		for i := 0; i < utf8.UTFMax && len(content) > 0 && !utf8.Valid(content); i++ {
			content = content[:len(content)-1]
		}
	}
	if !utf8.Valid(content) {
		return ErrInvalidEncoding
	}
	return nil
}

// ParseTable reads the header row and every data row
func (p *TableParser) ParseTable() (*integration.SheetTable, error) {
	header, err := p.reader.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if p.trimSpace {
		for i := range header {
			header[i] = trimSpaces(header[i])
		}
	}

	table := &integration.SheetTable{Header: header, Rows: make([][]string, 0)}
	line := 1
	for {
		record, err := p.reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("error reading row %d: %w", line, err)
		}
		table.Rows = append(table.Rows, record)
	}
	return table, nil
}

// ParseTableBytes parses a CSV export held in memory
func ParseTableBytes(data []byte, opts ...ParserOption) (*integration.SheetTable, error) {
	parser, err := NewTableParser(bytes.NewReader(data), opts...)
	if err != nil {
		return nil, err
	}
	return parser.ParseTable()
}

func trimSpaces(s string) string {
	start := 0
	end := len(s)

	for start < end {
		r, size := utf8.DecodeRuneInString(s[start:])
		if !isWhitespace(r) {
			break
		}
		start += size
	}
	for end > start {
		r, size := utf8.DecodeLastRuneInString(s[:end])
		if !isWhitespace(r) {
			break
		}
		end -= size
	}
	return s[start:end]
}

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
