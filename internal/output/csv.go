package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrDecode = errors.New("wmic: output decode failed")

// Record maps column header to cell text.
type Record map[string]string

// ResultSet is the decoded output of one query. Raw keeps the text the
// records were decoded from.
type ResultSet struct {
	Columns []string `json:"columns"`
	Records []Record `json:"records"`
	Raw     string   `json:"raw"`
}

// Normalize collapses the tool's doubled carriage returns into newlines.
func Normalize(raw string) string {
	return strings.ReplaceAll(raw, "\r\r", "\n")
}

// Parse decodes raw as CSV whose first row holds the column headers.
// Blank lines are skipped; short rows leave trailing columns out of the
// record and cells past the header width are dropped.
func Parse(raw string) (ResultSet, error) {
	set := ResultSet{Raw: raw, Records: []Record{}}

	r := csv.NewReader(strings.NewReader(Normalize(raw)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ResultSet{Raw: raw, Records: []Record{}}, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		if set.Columns == nil {
			set.Columns = trimCells(row)
			continue
		}
		rec := make(Record, len(set.Columns))
		for i, col := range set.Columns {
			if i < len(row) {
				rec[col] = strings.TrimRight(row[i], "\r")
			}
		}
		set.Records = append(set.Records, rec)
	}
	return set, nil
}

// ParseResult passes a prior execution error through with an empty set and
// the raw text, and decodes raw otherwise.
func ParseResult(prior error, raw string) (ResultSet, error) {
	if prior != nil {
		return ResultSet{Raw: raw, Records: []Record{}}, prior
	}
	return Parse(raw)
}

func trimCells(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = strings.TrimRight(cell, "\r")
	}
	return out
}
