package spreadsheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Reader decodes one tabular input into RawRows. The stock report and item
// directory both reserve the first rows for title banners, so the reader
// discards a configurable banner region before treating the next row as the
// header.
type Reader struct {
	delimiter  rune
	lazyQuotes bool
	skipRows   int
	headers    []string
	headerMap  map[string]int
	currentRow int
	reader     *csv.Reader
}

// Option is a functional option for Reader configuration
type Option func(*Reader)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) Option {
	return func(r *Reader) {
		r.delimiter = d
	}
}

// WithBannerRows sets how many leading rows to discard before the header
func WithBannerRows(n int) Option {
	return func(r *Reader) {
		r.skipRows = n
	}
}

// NewReader creates a reader over raw file content. It validates the
// encoding, strips a UTF-8 BOM when present, discards the banner region and
// reads the header row.
func NewReader(data []byte, opts ...Option) (*Reader, error) {
	r := &Reader{
		delimiter:  ',',
		lazyQuotes: true,
		headerMap:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(r)
	}

	buf := bufio.NewReader(bytes.NewReader(data))

	// UTF-8 BOM: 0xEF, 0xBB, 0xBF
	if peek, err := buf.Peek(3); err == nil && len(peek) == 3 &&
		peek[0] == 0xEF && peek[1] == 0xBB && peek[2] == 0xBF {
		_, _ = buf.Discard(3)
	}

	if err := validateUTF8(buf); err != nil {
		return nil, err
	}

	r.reader = csv.NewReader(buf)
	r.reader.Comma = r.delimiter
	r.reader.LazyQuotes = r.lazyQuotes
	r.reader.TrimLeadingSpace = true
	r.reader.FieldsPerRecord = -1

	for i := 0; i < r.skipRows; i++ {
		if _, err := r.reader.Read(); err == io.EOF {
			return nil, ErrMissingHeader
		} else if err != nil {
			return nil, fmt.Errorf("spreadsheet: failed to skip banner row %d: %w", i+1, err)
		}
		r.currentRow++
	}

	if err := r.parseHeader(); err != nil {
		return nil, err
	}

	return r, nil
}

// validateUTF8 checks that the content is valid UTF-8
func validateUTF8(buf *bufio.Reader) error {
	const checkSize = 4096
	content, err := buf.Peek(checkSize)
	if err != nil && err != io.EOF {
		return fmt.Errorf("spreadsheet: failed to read file: %w", err)
	}
	if len(content) == 0 {
		return ErrEmptyFile
	}
	if !utf8.Valid(content) {
		return ErrInvalidEncoding
	}
	return nil
}

// parseHeader reads the header row following the banner region
func (r *Reader) parseHeader() error {
	record, err := r.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("spreadsheet: failed to read header: %w", err)
	}

	r.currentRow++
	r.headers = make([]string, len(record))
	for i, h := range record {
		header := strings.TrimSpace(h)
		r.headers[i] = header
		r.headerMap[header] = i
	}
	if len(r.headers) == 0 {
		return ErrMissingHeader
	}
	return nil
}

// Headers returns the parsed header names
func (r *Reader) Headers() []string {
	return r.headers
}

// HasHeader checks if a column exists
func (r *Reader) HasHeader(name string) bool {
	_, ok := r.headerMap[name]
	return ok
}

// RawRow is one decoded data row: an open mapping from column name to its
// untyped cell value, immutable once read.
type RawRow struct {
	LineNumber int
	Data       map[string]string
}

// Get returns the value for a column by header name
func (r *RawRow) Get(header string) string {
	return r.Data[header]
}

// IsEmpty returns true if the row has no non-empty values
func (r *RawRow) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow reads the next data row
func (r *Reader) ReadRow() (*RawRow, error) {
	record, err := r.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	r.currentRow++
	if err != nil {
		return nil, fmt.Errorf("spreadsheet: error reading row %d: %w", r.currentRow, err)
	}

	row := &RawRow{
		LineNumber: r.currentRow,
		Data:       make(map[string]string, len(r.headers)),
	}
	for i, header := range r.headers {
		if i < len(record) {
			row.Data[header] = strings.TrimSpace(record[i])
		} else {
			row.Data[header] = ""
		}
	}
	return row, nil
}

// ReadAll reads all remaining data rows, skipping completely empty ones.
func (r *Reader) ReadAll() ([]*RawRow, error) {
	var rows []*RawRow
	for {
		row, err := r.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, err
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
