package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Options controls how a source is read.
type Options struct {
	// Delimiter for CSV. If 0, ',' is used except for .tsv files.
	Delimiter rune
	// SheetName selects an XLSX sheet by name (case-insensitive).
	SheetName string
	// SheetIndex is the 1-based sheet used when SheetName is empty.
	SheetIndex int
}

// DefaultOptions returns the options used for the bundled tips dataset.
func DefaultOptions() Options {
	return Options{SheetIndex: 1}
}

// LoadError reports a failed load together with the source it came from.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads a CSV/TSV or XLSX file depending on its extension.
func Load(path string, opt Options) (*Table, error) {
	var (
		t   *Table
		err error
	)
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		t, err = LoadXLSX(path, opt)
	} else {
		t, err = LoadCSV(path, opt)
	}
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return t, nil
}

// LoadCSV reads a delimited text file.
func LoadCSV(path string, opt Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	return ReadCSV(f, filepath.Base(path), opt)
}

// ReadCSV parses delimited text from r. The first row is the header.
func ReadCSV(r io.Reader, name string, opt Options) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		if isBlank(rec) {
			continue
		}
		rows = append(rows, rec)
	}
	return New(name, header, rows)
}

// LoadXLSX reads the selected worksheet of an Excel workbook. The first row
// of the sheet is the header.
func LoadXLSX(path string, opt Options) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet, err := pickSheet(f.GetSheetList(), opt)
	if err != nil {
		return nil, fmt.Errorf("%w in workbook %s", err, filepath.Base(path))
	}
	all, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(all) == 0 {
		return nil, ErrNoHeader
	}
	rows := make([][]string, 0, len(all)-1)
	for _, rec := range all[1:] {
		if isBlank(rec) {
			continue
		}
		rows = append(rows, rec)
	}
	name := filepath.Base(path)
	if opt.SheetName != "" {
		name = fmt.Sprintf("%s (sheet: %s)", name, sheet)
	}
	return New(name, all[0], rows)
}

func pickSheet(sheets []string, opt Options) (string, error) {
	if len(sheets) == 0 {
		return "", errors.New("no sheets")
	}
	if opt.SheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, opt.SheetName) {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet '%s' not found (available: %s)", opt.SheetName, strings.Join(sheets, ", "))
	}
	idx := opt.SheetIndex
	if idx <= 0 {
		idx = 1
	}
	if idx > len(sheets) {
		return "", fmt.Errorf("sheet index %d out of range (have %d)", idx, len(sheets))
	}
	return sheets[idx-1], nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
