// Package sheet reads supplier spreadsheets (CSV, XLSX) into quote.RawGrid
// values: one header row followed by data rows, fully blank rows removed.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hazyhaar/agrocota/pkg/quote"
)

var (
	// ErrEmptyFile is returned when a spreadsheet holds no non-blank row.
	ErrEmptyFile = errors.New("spreadsheet is empty")
	// ErrUnknownFormat is returned when no registered format handles a file.
	ErrUnknownFormat = errors.New("unknown spreadsheet format")
	// ErrUnreadable wraps every parse failure of a registered format.
	ErrUnreadable = errors.New("unreadable spreadsheet")
)

// Options tunes how a spreadsheet is read. The zero value is valid.
type Options struct {
	// Delimiter forces the CSV field separator. Zero means auto-detect.
	Delimiter rune
	// Encoding is the CSV charset (e.g. "windows-1252"). Empty means UTF-8.
	Encoding string
	// Sheet selects a workbook sheet by name. Empty means the first sheet.
	Sheet string
	// MaxRows caps the number of data rows read. Zero means unlimited.
	MaxRows int
}

// Format reads one spreadsheet file type.
type Format interface {
	// Name returns the format identifier (e.g. "csv").
	Name() string
	// Extensions returns the lowercase file extensions handled, dot included.
	Extensions() []string
	// Read parses r into a grid. The first non-blank row becomes the headers.
	Read(r io.Reader, opts Options) (quote.RawGrid, error)
}

var (
	registryMu sync.RWMutex
	formats    = make(map[string]Format)
)

// Register adds a format to the global registry.
func Register(f Format) {
	registryMu.Lock()
	defer registryMu.Unlock()
	formats[f.Name()] = f
}

// Get returns a registered format by name.
func Get(name string) (Format, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := formats[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return f, nil
}

// ForFile returns the format handling the extension of name.
func ForFile(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, f := range formats {
		for _, e := range f.Extensions() {
			if e == ext {
				return f, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Base(name))
}

// All returns all registered formats sorted by name.
func All() []Format {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make([]Format, 0, len(formats))
	for _, f := range formats {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result
}

// Read picks the format from name's extension and parses r.
func Read(name string, r io.Reader, opts Options) (quote.RawGrid, error) {
	f, err := ForFile(name)
	if err != nil {
		return quote.RawGrid{}, err
	}
	grid, err := f.Read(r, opts)
	if err != nil {
		return quote.RawGrid{}, fmt.Errorf("%w: %s: %w", ErrUnreadable, f.Name(), err)
	}
	return grid, nil
}

// ReadFile opens path and parses it with the format matching its extension.
func ReadFile(path string, opts Options) (quote.RawGrid, error) {
	fh, err := os.Open(path)
	if err != nil {
		return quote.RawGrid{}, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer fh.Close()
	return Read(path, fh, opts)
}

// buildGrid turns string-level rows into a grid: blank rows are dropped, the
// first remaining row becomes trimmed headers and at most maxRows data rows
// follow.
func buildGrid(rows [][]quote.Cell, maxRows int) (quote.RawGrid, error) {
	var grid quote.RawGrid
	haveHeader := false
	for _, row := range rows {
		if blankRow(row) {
			continue
		}
		if !haveHeader {
			grid.Headers = make([]string, len(row))
			for i, c := range row {
				grid.Headers[i] = strings.TrimSpace(c.String())
			}
			haveHeader = true
			continue
		}
		if maxRows > 0 && len(grid.Rows) >= maxRows {
			break
		}
		grid.Rows = append(grid.Rows, row)
	}
	if !haveHeader {
		return quote.RawGrid{}, ErrEmptyFile
	}
	return grid, nil
}

func blankRow(row []quote.Cell) bool {
	for _, c := range row {
		if strings.TrimSpace(c.String()) != "" {
			return false
		}
	}
	return true
}
