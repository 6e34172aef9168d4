package parse

import (
	"bufio"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/spkg/bom"
)

const maxLineLength = 16 << 20

var _ gocsv.CSVReader = (*Reader)(nil)

// Reads GTFS style CSV, one record per line.
//
// Fields are split on commas outside of double quotes. Every quote
// character toggles the quoted state and is dropped from the value,
// and values are trimmed of surrounding whitespace. Records with a
// different number of fields than the header are skipped and
// counted in Dropped.
type Reader struct {
	Dropped int

	scanner *bufio.Scanner
	fields  int
}

func NewReader(in io.Reader) *Reader {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	return &Reader{
		scanner: scanner,
		fields:  -1,
	}
}

// Returns the next record. The first record is the header.
func (r *Reader) Read() ([]string, error) {
	for r.scanner.Scan() {
		line := r.scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		record := SplitLine(line)
		if r.fields < 0 {
			r.fields = len(record)
			return record, nil
		}
		if len(record) != r.fields {
			r.Dropped++
			continue
		}
		return record, nil
	}

	if err := r.scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scanning csv")
	}
	return nil, io.EOF
}

func (r *Reader) ReadAll() ([][]string, error) {
	records := [][]string{}
	for {
		record, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

// Splits a single CSV line into trimmed, unquoted fields.
func SplitLine(line string) []string {
	fields := []string{}
	var current strings.Builder
	inQuotes := false

	for _, c := range line {
		switch {
		case c == '"':
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(c)
		}
	}

	return append(fields, strings.TrimSpace(current.String()))
}

// Parses a CSV table into rows keyed by header.
//
// Returns the rows along with the number of malformed records that
// were dropped. A leading UTF-8 BOM is ignored.
func ParseTable(data io.Reader) ([]Row, int, error) {
	reader := NewReader(bom.NewReader(data))

	header, err := reader.Read()
	if err == io.EOF {
		return []Row{}, 0, nil
	}
	if err != nil {
		return nil, 0, errors.Wrap(err, "reading header")
	}

	rows := []Row{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, reader.Dropped, errors.Wrapf(err, "reading row %d", len(rows)+1)
		}

		row := make(Row, len(header))
		for i, column := range header {
			row[column] = record[i]
		}
		rows = append(rows, row)
	}

	return rows, reader.Dropped, nil
}

// Convenience wrapper around ParseTable for in-memory text.
func ParseString(text string) []Row {
	rows, _, err := ParseTable(strings.NewReader(text))
	if err != nil {
		return []Row{}
	}
	return rows
}

// Decodes a CSV table into a slice of structs with csv tags, using
// the same tolerant tokenizer as ParseTable.
func Unmarshal(in io.Reader, out interface{}) error {
	err := gocsv.UnmarshalCSV(NewReader(bom.NewReader(in)), out)
	if err != nil {
		return errors.Wrap(err, "unmarshaling csv")
	}
	return nil
}
