// Package batchfiletest builds in-memory workbooks for tests.
package batchfiletest

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

// Sheet is a named grid of cell values; the first record is the header.
type Sheet struct {
	Name    string
	Records [][]any
}

// Workbook returns xlsx bytes holding the given sheets in order.
func Workbook(t testing.TB, sheets ...Sheet) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, s := range sheets {
		switch {
		case i == 0 && s.Name != "Sheet1":
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		case i > 0:
			if _, err := f.NewSheet(s.Name); err != nil {
				t.Fatalf("new sheet: %v", err)
			}
		}
		for r, rec := range s.Records {
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			row := rec
			if err := f.SetSheetRow(s.Name, cell, &row); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// Records turns a header and maps into a grid in header order.
func Records(header []string, rows ...map[string]any) [][]any {
	out := make([][]any, 0, len(rows)+1)
	h := make([]any, len(header))
	for i, c := range header {
		h[i] = c
	}
	out = append(out, h)
	for _, r := range rows {
		rec := make([]any, len(header))
		for i, c := range header {
			if v, ok := r[c]; ok {
				rec[i] = v
			} else {
				rec[i] = ""
			}
		}
		out = append(out, rec)
	}
	return out
}
