// Package batchfile reads and writes the spreadsheets suppliers upload.
package batchfile

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/alima/supply/internal/shared"
)

// RequiredSheet is the sheet name demanded when a workbook has several.
const RequiredSheet = "Sheet1"

var (
	// ErrUnsupportedFormat rejects anything that is not an xlsx workbook.
	ErrUnsupportedFormat = fmt.Errorf("%w: formato de archivo no soportado, se espera .xlsx", shared.ErrStructural)
	// ErrMissingSheet is returned when a multi-sheet workbook lacks Sheet1.
	ErrMissingSheet = fmt.Errorf("%w: El archivo debe contener una hoja llamada Sheet1", shared.ErrStructural)
	// ErrEmptySheet is returned when no usable rows remain.
	ErrEmptySheet = fmt.Errorf("%w: el archivo no contiene filas válidas", shared.ErrStructural)
)

// Row is one data row keyed by normalised column name.
type Row struct {
	Line   int
	Values map[string]string
}

// Get returns the trimmed value of col, or "".
func (r Row) Get(col string) string {
	return strings.TrimSpace(r.Values[col])
}

// Has reports whether col holds a non-blank value.
func (r Row) Has(col string) bool {
	return r.Get(col) != ""
}

// Sheet is a parsed worksheet.
type Sheet struct {
	Name   string
	Header []string
	rows   []Row
}

// Open parses an uploaded workbook.
func Open(filename string, data []byte) (*Sheet, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
	default:
		return nil, ErrUnsupportedFormat
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: no se pudo leer el archivo: %v", shared.ErrStructural, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	var name string
	switch {
	case len(sheets) == 0:
		return nil, ErrEmptySheet
	case len(sheets) == 1:
		name = sheets[0]
	default:
		for _, s := range sheets {
			if s == RequiredSheet {
				name = s
				break
			}
		}
		if name == "" {
			return nil, ErrMissingSheet
		}
	}

	raw, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("%w: no se pudo leer la hoja %s: %v", shared.ErrStructural, name, err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptySheet
	}
	return fromRecords(name, raw), nil
}

func fromRecords(name string, raw [][]string) *Sheet {
	header := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		header[i] = normalizeHeader(h)
	}
	sheet := &Sheet{Name: name, Header: header}
	for idx, rec := range raw[1:] {
		values := make(map[string]string, len(header))
		blank := true
		for i, v := range rec {
			if i >= len(header) || header[i] == "" {
				continue
			}
			v = strings.TrimSpace(v)
			if v != "" {
				blank = false
			}
			values[header[i]] = v
		}
		if blank {
			continue
		}
		sheet.rows = append(sheet.rows, Row{Line: idx + 2, Values: values})
	}
	return sheet
}

func normalizeHeader(h string) string {
	h = strings.TrimSpace(strings.ToLower(h))
	h = strings.TrimSuffix(h, "*")
	return strings.TrimSpace(h)
}

// MissingColumns returns the required columns absent from the header, sorted.
func (s *Sheet) MissingColumns(required []string) []string {
	present := make(map[string]struct{}, len(s.Header))
	for _, h := range s.Header {
		present[h] = struct{}{}
	}
	var missing []string
	for _, col := range required {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}
	sort.Strings(missing)
	return missing
}

// Rows returns the non-blank data rows in file order.
func (s *Sheet) Rows() []Row {
	return s.rows
}

// Clean drops rows without description or sell unit, then removes
// duplicates by (description, sell_unit) and by SKU, keeping the first
// occurrence of each.
func Clean(rows []Row) ([]Row, error) {
	seenDesc := make(map[string]struct{}, len(rows))
	seenSKU := make(map[string]struct{}, len(rows))
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if !r.Has(ColDescription) || !r.Has(ColSellUnit) {
			continue
		}
		key := Normalize(r.Get(ColDescription)) + "|" + Normalize(r.Get(ColSellUnit))
		if _, dup := seenDesc[key]; dup {
			continue
		}
		seenDesc[key] = struct{}{}
		out = append(out, r)
	}
	deduped := out[:0]
	for _, r := range out {
		if sku := r.Get(ColSKU); sku != "" {
			if _, dup := seenSKU[sku]; dup {
				continue
			}
			seenSKU[sku] = struct{}{}
		}
		deduped = append(deduped, r)
	}
	if len(deduped) == 0 {
		return nil, ErrEmptySheet
	}
	return deduped, nil
}
