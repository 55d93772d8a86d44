package products

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alima/supply/internal/batchfile"
	"github.com/alima/supply/internal/taxcodes"
	"github.com/alima/supply/internal/uom"
)

const minDescriptionLen = 3

// Lookup carries the per-request reference data rows are checked against.
type Lookup struct {
	TaxCodes taxcodes.Set
	Products *Index
}

// ValidateOptions tunes row validation.
type ValidateOptions struct {
	// SkipTaxValidation accepts rows without a known SAT product code.
	SkipTaxValidation bool
	// RequirePrice demands a positive product_price.
	RequirePrice bool
}

// RowData is the typed content of a valid row.
type RowData struct {
	Fields   FieldMask
	Product  Product
	Price    *decimal.Decimal
	Existing *Product
}

// RowResult is the outcome of validating one row.
type RowResult struct {
	Status   bool
	Data     RowData
	Feedback Feedback
}

type rowErrors []string

func (e *rowErrors) add(format string, args ...any) {
	*e = append(*e, fmt.Sprintf(format, args...))
}

func (e rowErrors) message(line int) string {
	return fmt.Sprintf("Fila %d: %s", line, strings.Join(e, "; "))
}

// ValidateRow checks one upload row and resolves it against the supplier's
// existing products. A row matches an existing product first by explicit
// id, then by exact SKU, then by normalised description and sell unit.
func ValidateRow(row batchfile.Row, lookup Lookup, opts ValidateOptions) RowResult {
	var (
		errs rowErrors
		data RowData
		p    = &data.Product
	)
	res := RowResult{Feedback: Feedback{SKU: row.Get(batchfile.ColSKU), Description: row.Get(batchfile.ColDescription)}}

	p.Description = row.Get(batchfile.ColDescription)
	if utf8.RuneCountInString(p.Description) < minDescriptionLen {
		errs.add("la descripción debe tener al menos %d caracteres", minDescriptionLen)
	} else {
		data.Fields |= FieldDescription
	}

	if u, ok := parseUnit(row, batchfile.ColSellUnit, &errs); ok {
		p.SellUnit = u
		data.Fields |= FieldSellUnit
	}
	if u, ok := parseUnit(row, batchfile.ColBuyUnit, &errs); ok {
		p.BuyUnit = u
		data.Fields |= FieldBuyUnit
	}

	if v, ok := requiredPositive(row, batchfile.ColConversion, &errs); ok {
		p.ConversionFactor = v
		data.Fields |= FieldConversionFactor
	}
	if v, ok := requiredPositive(row, batchfile.ColUnitMultiple, &errs); ok {
		p.UnitMultiple = v
		data.Fields |= FieldUnitMultiple
	}
	if v, ok := requiredPositive(row, batchfile.ColMinQuantity, &errs); ok {
		p.MinQuantity = v
		data.Fields |= FieldMinQuantity
	}
	if p.SellUnit.IsInteger() {
		checkIntegerFloor(p.SellUnit, data.Fields, p.UnitMultiple, p.MinQuantity, &errs)
	}
	if v, ok := optionalPositive(row, batchfile.ColEstimatedWeight, &errs); ok {
		p.EstimatedWeight = v
		data.Fields |= FieldEstimatedWeight
	}
	if v, ok := optionalPositive(row, batchfile.ColMaxDailyStock, &errs); ok {
		p.MaxDailyStock = v
		data.Fields |= FieldMaxDailyStock
	}

	if code := row.Get(batchfile.ColTaxCode); code != "" {
		if !opts.SkipTaxValidation && !lookup.TaxCodes.Contains(code) {
			errs.add("sat_product_code %q no es una clave SAT válida", code)
		} else {
			p.TaxCode = code
			data.Fields |= FieldTaxCode
		}
	} else if !opts.SkipTaxValidation {
		errs.add("sat_product_code es obligatorio")
	}
	if rate, ok := parseRate(row, batchfile.ColIVA, &errs); ok && rate != nil {
		p.TaxRate = *rate
		data.Fields |= FieldTaxRate
	}
	if rate, ok := parseRate(row, batchfile.ColIEPS, &errs); ok && rate != nil {
		p.IEPSRate = rate
		data.Fields |= FieldIEPSRate
	}

	if tags, ok := parseTags(row, &errs); ok && tags != nil {
		p.Tags = tags
		data.Fields |= FieldTags
	}

	if v := row.Get(batchfile.ColSKU); v != "" {
		p.SKU = v
		data.Fields |= FieldSKU
	}
	if v := row.Get(batchfile.ColUPC); v != "" {
		p.UPC = v
		data.Fields |= FieldUPC
	}
	if v := row.Get(batchfile.ColLongDescription); v != "" {
		p.LongDescription = v
		data.Fields |= FieldLongDescription
	}
	if v := row.Get(batchfile.ColProductID); v != "" {
		ref, err := uuid.Parse(v)
		if err != nil {
			errs.add("product_id %q no es un identificador válido", v)
		} else {
			p.ProductID = &ref
			data.Fields |= FieldProductID
		}
	}

	price, priceErr := ParsePrice(row.Get(batchfile.ColPrice))
	switch {
	case priceErr != nil:
		errs.add("product_price: %v", priceErr)
	case price != nil:
		data.Price = price
	case opts.RequirePrice:
		errs.add("product_price es obligatorio")
	}

	existing, reason := match(row, p, lookup.Products)
	if reason != "" {
		errs.add("%s", reason)
	}
	data.Existing = existing

	if len(errs) > 0 {
		res.Feedback.Msg = errs.message(row.Line)
		return res
	}
	res.Status = true
	res.Data = data
	res.Feedback.Msg = "Fila válida"
	if existing != nil {
		id := existing.ID
		res.Feedback.SupplierProductID = &id
	}
	return res
}

func match(row batchfile.Row, p *Product, idx *Index) (*Product, string) {
	if idx == nil {
		return nil, ""
	}
	if v := row.Get(batchfile.ColID); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Sprintf("id %q no es un identificador válido", v)
		}
		found, ok := idx.Get(id)
		if !ok {
			return nil, fmt.Sprintf("el producto %s no existe", v)
		}
		return &found, ""
	}
	if p.SKU != "" {
		if found, ok := idx.BySKU(p.SKU); ok {
			return &found, ""
		}
	}
	if p.Description != "" && p.SellUnit != "" {
		if found, ok := idx.ByDescription(p.Description, p.SellUnit); ok {
			return &found, ""
		}
	}
	return nil, ""
}

func parseUnit(row batchfile.Row, col string, errs *rowErrors) (uom.Unit, bool) {
	v := row.Get(col)
	if v == "" {
		errs.add("%s es obligatorio", col)
		return "", false
	}
	u, err := uom.Parse(v)
	if err != nil {
		errs.add("%s: %v", col, err)
		return "", false
	}
	return u, true
}

var errNotFinite = errors.New("value is not finite")

// parseNumber accepts "1,250.5" style thousands separators. NaN and
// infinities are rejected.
func parseNumber(s string) (float64, error) {
	n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, errNotFinite
	}
	return n, nil
}

func requiredPositive(row batchfile.Row, col string, errs *rowErrors) (float64, bool) {
	v := row.Get(col)
	if v == "" {
		errs.add("%s es obligatorio", col)
		return 0, false
	}
	n, err := parseNumber(v)
	if err != nil {
		errs.add("%s %q no es un número", col, v)
		return 0, false
	}
	if n <= 0 {
		errs.add("%s debe ser mayor a 0", col)
		return 0, false
	}
	return n, true
}

func optionalPositive(row batchfile.Row, col string, errs *rowErrors) (*float64, bool) {
	v := row.Get(col)
	if v == "" {
		return nil, false
	}
	n, err := parseNumber(v)
	if err != nil {
		errs.add("%s %q no es un número", col, v)
		return nil, false
	}
	if n <= 0 {
		errs.add("%s debe ser mayor a 0", col)
		return nil, false
	}
	return &n, true
}

func checkIntegerFloor(unit uom.Unit, fields FieldMask, multiple, minQty float64, errs *rowErrors) {
	if fields.Has(FieldUnitMultiple) && multiple < 1 {
		errs.add("unit_multiple debe ser al menos 1 para la unidad %s", unit.Label())
	}
	if fields.Has(FieldMinQuantity) && minQty < 1 {
		errs.add("min_quantity debe ser al menos 1 para la unidad %s", unit.Label())
	}
}

// parseRate reads a fractional tax rate. "16%" is accepted as 0.16.
// A blank cell yields (nil, true).
func parseRate(row batchfile.Row, col string, errs *rowErrors) (*float64, bool) {
	v := row.Get(col)
	if v == "" {
		return nil, true
	}
	pct := strings.HasSuffix(v, "%")
	n, err := parseNumber(strings.TrimSpace(strings.TrimSuffix(v, "%")))
	if err != nil {
		errs.add("%s %q no es un número", col, v)
		return nil, false
	}
	if pct {
		n /= 100
	}
	if err := uom.ValidateRate(n); err != nil {
		errs.add("%s: %v", col, err)
		return nil, false
	}
	return &n, true
}

func parseTags(row batchfile.Row, errs *rowErrors) ([]Tag, bool) {
	key, value := row.Get(batchfile.ColTagKey), row.Get(batchfile.ColTagValue)
	switch {
	case key == "" && value == "":
		return nil, true
	case value == "":
		errs.add("falta %s para la etiqueta %q", batchfile.ColTagValue, key)
		return nil, false
	case key == "":
		errs.add("falta %s para el valor %q", batchfile.ColTagKey, value)
		return nil, false
	}
	return []Tag{{Key: key, Value: value}}, true
}

// ParsePrice parses a price cell. Blank yields nil. Currency symbols and
// thousands separators are ignored; the value must be positive.
func ParsePrice(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return nil, fmt.Errorf("%q no es un precio válido", s)
	}
	if !d.IsPositive() {
		return nil, fmt.Errorf("el precio debe ser mayor a 0")
	}
	return &d, nil
}
