package products

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alima/supply/internal/batchfile"
	"github.com/alima/supply/internal/refcatalog"
	"github.com/alima/supply/internal/shared"
)

const (
	msgCreated = "Producto creado correctamente"
	msgUpdated = "Producto actualizado correctamente"
)

// DefaultSKUPrefix prefixes generated SKUs.
const DefaultSKUPrefix = "ALM-"

// Store persists reconciled products.
type Store interface {
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, p Product, mask FieldMask) (Product, error)
}

// ReconcileInput is one batch of cleaned rows for a supplier.
type ReconcileInput struct {
	BusinessID uuid.UUID
	ActorID    uuid.UUID
	Rows       []batchfile.Row
	Lookup     Lookup
	Catalog    refcatalog.Index
	Options    ValidateOptions
	// LenientKnownSKU skips tax validation for rows with a blank
	// sat_product_code whose SKU matches an existing product.
	LenientKnownSKU bool
}

// Outcome is the result of reconciling one row.
type Outcome struct {
	Feedback Feedback
	Product  Product
	Price    *decimal.Decimal
	OK       bool
}

// Feedbacks extracts the feedback entries in row order.
func Feedbacks(outcomes []Outcome) []Feedback {
	out := make([]Feedback, len(outcomes))
	for i, o := range outcomes {
		out[i] = o.Feedback
	}
	return out
}

// Reconciler creates or updates supplier products from validated rows.
type Reconciler struct {
	store     Store
	skuPrefix string
	logger    *slog.Logger
	now       func() time.Time
}

// NewReconciler constructs a Reconciler.
func NewReconciler(store Store, skuPrefix string, logger *slog.Logger) *Reconciler {
	if skuPrefix == "" {
		skuPrefix = DefaultSKUPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{store: store, skuPrefix: skuPrefix, logger: logger, now: time.Now}
}

// batch is one Reconcile call. claimed maps each product written so far
// to the line that wrote it.
type batch struct {
	ReconcileInput
	claimed map[uuid.UUID]int
}

// Reconcile processes every row and returns one outcome per row in input
// order. Rows linked to the canonical catalog are handled before the rest;
// products created along the way are visible to later rows. A product is
// written by at most one row per batch; later rows resolving to it fail.
// A failed row never stops the batch.
func (r *Reconciler) Reconcile(ctx context.Context, input ReconcileInput) []Outcome {
	if input.Lookup.Products == nil {
		input.Lookup.Products = NewIndex(nil)
	}
	in := &batch{ReconcileInput: input, claimed: make(map[uuid.UUID]int, len(input.Rows))}
	out := make([]Outcome, len(in.Rows))
	var plain []int
	for i, row := range in.Rows {
		if !row.Has(batchfile.ColProductID) {
			plain = append(plain, i)
			continue
		}
		out[i] = r.reconcileReference(ctx, in, row)
	}
	for _, i := range plain {
		out[i] = r.reconcilePlain(ctx, in, in.Rows[i])
	}
	return out
}

func (r *Reconciler) reconcilePlain(ctx context.Context, in *batch, row batchfile.Row) Outcome {
	opts := in.Options
	if in.LenientKnownSKU && !row.Has(batchfile.ColTaxCode) {
		if _, ok := in.Lookup.Products.BySKU(row.Get(batchfile.ColSKU)); ok {
			opts.SkipTaxValidation = true
		}
	}
	res := ValidateRow(row, in.Lookup, opts)
	if !res.Status {
		return Outcome{Feedback: res.Feedback}
	}
	data := res.Data
	if data.Existing != nil {
		merged := *data.Existing
		merged.Apply(data.Product, data.Fields)
		return r.update(ctx, in, row, merged, data.Fields, data.Price)
	}
	p := data.Product
	return r.create(ctx, in, row, p, data.Price)
}

func (r *Reconciler) reconcileReference(ctx context.Context, in *batch, row batchfile.Row) Outcome {
	fail := func(msg string) Outcome {
		return Outcome{Feedback: Feedback{
			SKU:         row.Get(batchfile.ColSKU),
			Description: row.Get(batchfile.ColDescription),
			Msg:         fmt.Sprintf("Fila %d: %s", row.Line, msg),
		}}
	}
	raw := row.Get(batchfile.ColProductID)
	ref, err := uuid.Parse(raw)
	if err != nil {
		return fail(fmt.Sprintf("product_id %q no es un identificador válido", raw))
	}
	canonical, ok := in.Catalog.Lookup(ref)
	if !ok {
		return fail(fmt.Sprintf("product_id %s no existe en el catálogo de Alima", ref))
	}
	var explicit *Product
	if v := row.Get(batchfile.ColID); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return fail(fmt.Sprintf("id %q no es un identificador válido", v))
		}
		found, ok := in.Lookup.Products.Get(id)
		if !ok {
			return fail(fmt.Sprintf("el producto %s no existe", v))
		}
		explicit = &found
	}

	p := fromCatalog(canonical)
	mask := CatalogFields
	var errs rowErrors
	if v := row.Get(batchfile.ColSKU); v != "" {
		p.SKU = v
		mask |= FieldSKU
	}
	if v, ok := optionalPositive(row, batchfile.ColUnitMultiple, &errs); ok {
		p.UnitMultiple = *v
	}
	if v, ok := optionalPositive(row, batchfile.ColMinQuantity, &errs); ok {
		p.MinQuantity = *v
	}
	if v, ok := optionalPositive(row, batchfile.ColEstimatedWeight, &errs); ok {
		p.EstimatedWeight = v
	}
	if v, ok := optionalPositive(row, batchfile.ColMaxDailyStock, &errs); ok {
		p.MaxDailyStock = v
		mask |= FieldMaxDailyStock
	}
	if p.SellUnit.IsInteger() {
		checkIntegerFloor(p.SellUnit, mask, p.UnitMultiple, p.MinQuantity, &errs)
	}
	if tags, ok := parseTags(row, &errs); ok && tags != nil {
		p.Tags = tags
		mask |= FieldTags
	}
	price, priceErr := ParsePrice(row.Get(batchfile.ColPrice))
	switch {
	case priceErr != nil:
		errs.add("product_price: %v", priceErr)
	case price == nil && in.Options.RequirePrice:
		errs.add("product_price es obligatorio")
	}
	if len(errs) > 0 {
		return fail(strings.Join(errs, "; "))
	}

	var (
		existing Product
		found    bool
	)
	if explicit != nil {
		existing, found = *explicit, true
	} else {
		existing, found = in.Lookup.Products.ByReference(ref)
	}
	if !found && p.SKU != "" {
		existing, found = in.Lookup.Products.BySKU(p.SKU)
	}
	if found {
		merged := existing
		merged.Apply(p, mask)
		return r.update(ctx, in, row, merged, mask, price)
	}
	return r.create(ctx, in, row, p, price)
}

func fromCatalog(c refcatalog.Product) Product {
	ref := c.ID
	return Product{
		ProductID:        &ref,
		UPC:              c.UPC,
		Description:      c.Description,
		LongDescription:  c.LongDescription,
		SellUnit:         c.SellUnit,
		BuyUnit:          c.BuyUnit,
		ConversionFactor: c.ConversionFactor,
		UnitMultiple:     c.UnitMultiple,
		MinQuantity:      c.MinQuantity,
		EstimatedWeight:  c.EstimatedWeight,
		TaxCode:          c.TaxCode,
		TaxRate:          c.TaxRate,
		IEPSRate:         c.IEPSRate,
	}
}

func (r *Reconciler) create(ctx context.Context, in *batch, row batchfile.Row, p Product, price *decimal.Decimal) Outcome {
	now := r.now().UTC()
	p.ID = uuid.New()
	p.BusinessID = in.BusinessID
	if p.SKU == "" {
		p.SKU = in.Lookup.Products.NextSKU(r.skuPrefix)
	}
	p.IsActive = true
	p.CreatedBy = in.ActorID
	p.CreatedAt = now
	p.LastUpdated = now
	saved, err := r.store.Create(ctx, p)
	if err != nil {
		return r.storeFailure(row, p, err)
	}
	in.Lookup.Products.Put(saved)
	in.claimed[saved.ID] = row.Line
	return success(row, saved, price, msgCreated)
}

func (r *Reconciler) update(ctx context.Context, in *batch, row batchfile.Row, p Product, mask FieldMask, price *decimal.Decimal) Outcome {
	if line, dup := in.claimed[p.ID]; dup {
		return Outcome{Feedback: Feedback{
			SKU:         p.SKU,
			Description: row.Get(batchfile.ColDescription),
			Msg:         fmt.Sprintf("Fila %d: El producto ya aparece en la fila %d", row.Line, line),
		}}
	}
	if mask.Has(FieldSKU) {
		if other, ok := in.Lookup.Products.BySKU(p.SKU); ok && other.ID != p.ID {
			return r.storeFailure(row, p, ErrSKUTaken)
		}
	}
	p.LastUpdated = r.now().UTC()
	saved, err := r.store.Update(ctx, p, mask)
	if err != nil {
		return r.storeFailure(row, p, err)
	}
	in.Lookup.Products.Put(saved)
	in.claimed[saved.ID] = row.Line
	return success(row, saved, price, msgUpdated)
}

func (r *Reconciler) storeFailure(row batchfile.Row, p Product, err error) Outcome {
	msg := "No se pudo guardar el producto"
	switch {
	case errors.Is(err, ErrSKUTaken):
		msg = fmt.Sprintf("El SKU %s ya pertenece a otro producto", p.SKU)
	case errors.Is(err, shared.ErrNotFound):
		msg = "El producto ya no existe"
	default:
		r.logger.Error("persist supplier product", slog.Any("error", err), slog.String("sku", p.SKU), slog.Int("line", row.Line))
	}
	return Outcome{Feedback: Feedback{
		SKU:         p.SKU,
		Description: row.Get(batchfile.ColDescription),
		Msg:         fmt.Sprintf("Fila %d: %s", row.Line, msg),
	}}
}

func success(row batchfile.Row, p Product, price *decimal.Decimal, msg string) Outcome {
	id := p.ID
	return Outcome{
		OK:      true,
		Product: p,
		Price:   price,
		Feedback: Feedback{
			ProductID:         p.ProductID,
			SupplierProductID: &id,
			SKU:               p.SKU,
			Description:       row.Get(batchfile.ColDescription),
			Status:            true,
			Msg:               msg,
		},
	}
}
