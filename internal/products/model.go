// Package products validates and reconciles supplier product rows against
// the supplier's own catalog and the canonical reference catalog.
package products

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alima/supply/internal/uom"
)

// Tag is a free-form key/value pair attached to a product.
type Tag struct {
	Key   string `json:"tag_key"`
	Value string `json:"tag_value"`
}

// Product is a supplier-owned product.
type Product struct {
	ID               uuid.UUID  `json:"id"`
	BusinessID       uuid.UUID  `json:"supplier_business_id"`
	ProductID        *uuid.UUID `json:"product_id,omitempty"`
	SKU              string     `json:"sku"`
	UPC              string     `json:"upc,omitempty"`
	Description      string     `json:"description"`
	LongDescription  string     `json:"long_description,omitempty"`
	SellUnit         uom.Unit   `json:"sell_unit"`
	BuyUnit          uom.Unit   `json:"buy_unit"`
	ConversionFactor float64    `json:"conversion_factor"`
	UnitMultiple     float64    `json:"unit_multiple"`
	MinQuantity      float64    `json:"min_quantity"`
	EstimatedWeight  *float64   `json:"estimated_weight,omitempty"`
	MaxDailyStock    *float64   `json:"max_daily_stock,omitempty"`
	TaxCode          string     `json:"sat_product_code"`
	TaxRate          float64    `json:"tax_iva_percent"`
	IEPSRate         *float64   `json:"ieps_percent,omitempty"`
	Tags             []Tag      `json:"tags,omitempty"`
	IsActive         bool       `json:"is_active"`
	CreatedBy        uuid.UUID  `json:"created_by"`
	CreatedAt        time.Time  `json:"created_at"`
	LastUpdated      time.Time  `json:"last_updated"`
}

// TaxUnit is the SAT unit key derived from the sell unit.
func (p Product) TaxUnit() string {
	return p.SellUnit.SATCode()
}

// FieldMask records which product fields a payload carries. It drives
// which columns an update touches.
type FieldMask uint32

const (
	FieldSKU FieldMask = 1 << iota
	FieldUPC
	FieldDescription
	FieldLongDescription
	FieldSellUnit
	FieldBuyUnit
	FieldConversionFactor
	FieldUnitMultiple
	FieldMinQuantity
	FieldEstimatedWeight
	FieldMaxDailyStock
	FieldTaxCode
	FieldTaxRate
	FieldIEPSRate
	FieldTags
	FieldProductID
)

// CatalogFields are the fields copied from a canonical catalog entry.
const CatalogFields = FieldUPC | FieldDescription | FieldLongDescription | FieldSellUnit | FieldBuyUnit |
	FieldConversionFactor | FieldUnitMultiple | FieldMinQuantity | FieldEstimatedWeight |
	FieldTaxCode | FieldTaxRate | FieldIEPSRate | FieldProductID

// Has reports whether every bit of f is set.
func (m FieldMask) Has(f FieldMask) bool { return m&f == f && f != 0 }

// Apply copies the fields named by mask from src into p.
func (p *Product) Apply(src Product, mask FieldMask) {
	if mask.Has(FieldSKU) {
		p.SKU = src.SKU
	}
	if mask.Has(FieldUPC) {
		p.UPC = src.UPC
	}
	if mask.Has(FieldDescription) {
		p.Description = src.Description
	}
	if mask.Has(FieldLongDescription) {
		p.LongDescription = src.LongDescription
	}
	if mask.Has(FieldSellUnit) {
		p.SellUnit = src.SellUnit
	}
	if mask.Has(FieldBuyUnit) {
		p.BuyUnit = src.BuyUnit
	}
	if mask.Has(FieldConversionFactor) {
		p.ConversionFactor = src.ConversionFactor
	}
	if mask.Has(FieldUnitMultiple) {
		p.UnitMultiple = src.UnitMultiple
	}
	if mask.Has(FieldMinQuantity) {
		p.MinQuantity = src.MinQuantity
	}
	if mask.Has(FieldEstimatedWeight) {
		p.EstimatedWeight = src.EstimatedWeight
	}
	if mask.Has(FieldMaxDailyStock) {
		p.MaxDailyStock = src.MaxDailyStock
	}
	if mask.Has(FieldTaxCode) {
		p.TaxCode = src.TaxCode
	}
	if mask.Has(FieldTaxRate) {
		p.TaxRate = src.TaxRate
	}
	if mask.Has(FieldIEPSRate) {
		p.IEPSRate = src.IEPSRate
	}
	if mask.Has(FieldTags) {
		p.Tags = src.Tags
	}
	if mask.Has(FieldProductID) {
		p.ProductID = src.ProductID
	}
}

// Feedback is the per-row result returned to the uploader.
type Feedback struct {
	ProductID         *uuid.UUID `json:"product_id,omitempty"`
	SupplierProductID *uuid.UUID `json:"supplier_product_id,omitempty"`
	SKU               string     `json:"sku,omitempty"`
	Description       string     `json:"description,omitempty"`
	Status            bool       `json:"status"`
	Msg               string     `json:"msg"`
}

// BatchResult summarises a batch upload.
type BatchResult struct {
	Feedback  []Feedback `json:"feedback"`
	Succeeded int        `json:"succeeded"`
	Total     int        `json:"total"`
	Msg       string     `json:"msg"`
}

// Summarize computes counts and the summary message for feedback.
func Summarize(feedback []Feedback) BatchResult {
	res := BatchResult{Feedback: feedback, Total: len(feedback)}
	for _, f := range feedback {
		if f.Status {
			res.Succeeded++
		}
	}
	res.Msg = fmt.Sprintf("%d de %d productos procesados correctamente", res.Succeeded, res.Total)
	return res
}

// MissingColumnsResult is the single-entry result returned when an upload
// lacks required columns.
func MissingColumnsResult(missing []string) BatchResult {
	msg := fmt.Sprintf("Faltan columnas requeridas en el archivo: %v", missing)
	return BatchResult{
		Feedback: []Feedback{{Status: false, Msg: msg}},
		Total:    1,
		Msg:      msg,
	}
}
