package batchfile

import (
	"io"

	"github.com/xuri/excelize/v2"
)

// PriceLine is one exported price list entry.
type PriceLine struct {
	SKU          string
	Description  string
	SellUnit     string
	Price        string
	Currency     string
	ValidUpto    string
	TaxCode      string
	IVA          float64
	UnitMultiple float64
	MinQuantity  float64
}

// WriteTemplate writes an empty upload template. Required columns are
// highlighted and suffixed with " *"; the data sheet keeps the name
// Sheet1 so the template can be uploaded back as-is.
func WriteTemplate(w io.Writer, required, optional []string) error {
	f := excelize.NewFile()
	defer f.Close()

	requiredStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	optionalStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	col := 1
	write := func(name string, style int, suffix string) error {
		cell, err := excelize.CoordinatesToCellName(col, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(RequiredSheet, cell, name+suffix); err != nil {
			return err
		}
		if err := f.SetCellStyle(RequiredSheet, cell, cell, style); err != nil {
			return err
		}
		colName, _ := excelize.ColumnNumberToName(col)
		_ = f.SetColWidth(RequiredSheet, colName, colName, 20)
		col++
		return nil
	}
	for _, name := range required {
		if err := write(name, requiredStyle, " *"); err != nil {
			return err
		}
	}
	for _, name := range optional {
		if err := write(name, optionalStyle, ""); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet("Instrucciones"); err != nil {
		return err
	}
	notes := []string{
		"Las columnas marcadas con * son obligatorias.",
		"sell_unit y buy_unit aceptan: kg, pieza, paquete, docena, domo, litro, gramo, caja.",
		"tax_iva_percent e ieps_percent se expresan como fracción, p. ej. 0.16.",
		"tag_key y tag_value deben capturarse juntos.",
	}
	for i, n := range notes {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetCellValue("Instrucciones", cell, n); err != nil {
			return err
		}
	}
	_, err = f.WriteTo(w)
	return err
}

// WritePriceList exports price list lines to a single-sheet workbook.
func WritePriceList(w io.Writer, lines []PriceLine) error {
	f := excelize.NewFile()
	defer f.Close()

	header := []any{ColSKU, ColDescription, ColSellUnit, ColPrice, "currency", "valid_upto", ColTaxCode, ColIVA, ColUnitMultiple, ColMinQuantity}
	if err := f.SetSheetRow(RequiredSheet, "A1", &header); err != nil {
		return err
	}
	for i, l := range lines {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{l.SKU, l.Description, l.SellUnit, l.Price, l.Currency, l.ValidUpto, l.TaxCode, l.IVA, l.UnitMultiple, l.MinQuantity}
		if err := f.SetSheetRow(RequiredSheet, cell, &row); err != nil {
			return err
		}
	}
	_, err := f.WriteTo(w)
	return err
}
