package parser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
)

// CSVProcessor wraps a csv.Reader with streaming capabilities.
type CSVProcessor struct {
	reader  *csv.Reader
	lineNum int
}

// NewCSVProcessor creates a new CSV processor from the given reader.
// If skipHeader is true, the first row will be read and discarded.
// The delimiter parameter specifies the field separator (e.g., ',' for CSV, '\t' for TSV).
func NewCSVProcessor(r io.Reader, skipHeader bool, delimiter rune) (*CSVProcessor, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1 // Allow variable field counts (we validate later)
	reader.LazyQuotes = true    // Be lenient with quotes

	p := &CSVProcessor{reader: reader}

	if skipHeader {
		if _, err := reader.Read(); err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("CSV file is empty")
			}
			return nil, fmt.Errorf("failed to skip header: %w", err)
		}
		p.lineNum = 1
	}

	return p, nil
}

// Next reads and returns the next record from the CSV.
// Returns io.EOF when there are no more records.
func (p *CSVProcessor) Next() ([]string, int, error) {
	record, err := p.reader.Read()
	if err != nil {
		return nil, p.lineNum, err
	}

	p.lineNum++
	return record, p.lineNum, nil
}

// LineNum returns the current line number (1-indexed).
func (p *CSVProcessor) LineNum() int {
	return p.lineNum
}
