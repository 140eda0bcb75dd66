package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/hazyhaar/agrocota/pkg/quote"
)

func init() {
	Register(csvFormat{})
}

// candidateDelimiters are tried in order; ties go to the earlier one.
var candidateDelimiters = []rune{',', ';', '\t', '|'}

// sniffLines is how many lines delimiter detection looks at.
const sniffLines = 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type csvFormat struct{}

func (csvFormat) Name() string         { return "csv" }
func (csvFormat) Extensions() []string { return []string{".csv", ".txt", ".tsv"} }

func (csvFormat) Read(r io.Reader, opts Options) (quote.RawGrid, error) {
	// Transcode non-UTF-8 encodings.
	if enc := opts.Encoding; enc != "" && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return quote.RawGrid{}, fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		r = transform.NewReader(r, e.NewDecoder())
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return quote.RawGrid{}, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return quote.RawGrid{}, ErrEmptyFile
	}

	comma := opts.Delimiter
	if comma == 0 {
		comma = DetectDelimiter(data)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = comma
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	var rows [][]quote.Cell
	nonBlank := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return quote.RawGrid{}, fmt.Errorf("parse csv: %w", err)
		}
		row := make([]quote.Cell, len(rec))
		for i, field := range rec {
			row[i] = quote.Text(field)
		}
		if !blankRow(row) {
			nonBlank++
		}
		rows = append(rows, row)
		// Header plus MaxRows data rows is all buildGrid keeps.
		if opts.MaxRows > 0 && nonBlank > opts.MaxRows {
			break
		}
	}
	return buildGrid(rows, opts.MaxRows)
}

// DetectDelimiter guesses the field separator of CSV data. Each candidate is
// scored by how many of the first lines split into the same number (>1) of
// fields as the first line; the highest score wins, ',' when nothing splits.
func DetectDelimiter(data []byte) rune {
	sample := sampleLines(data, sniffLines)
	best, bestScore := candidateDelimiters[0], 0
	for _, d := range candidateDelimiters {
		score := delimiterScore(sample, d)
		if score > bestScore {
			best, bestScore = d, score
		}
	}
	return best
}

func delimiterScore(sample string, d rune) int {
	cr := csv.NewReader(strings.NewReader(sample))
	cr.Comma = d
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	want, score := 0, 0
	for {
		rec, err := cr.Read()
		if err != nil {
			// EOF or a line cut by the sample boundary.
			break
		}
		if want == 0 {
			want = len(rec)
			if want < 2 {
				return 0
			}
		}
		if len(rec) == want {
			score++
		}
	}
	return score
}

func sampleLines(data []byte, n int) string {
	end := 0
	for i := 0; i < n && end < len(data); i++ {
		next := bytes.IndexByte(data[end:], '\n')
		if next < 0 {
			end = len(data)
			break
		}
		end += next + 1
	}
	return string(data[:end])
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
