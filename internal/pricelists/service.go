package pricelists

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alima/supply/internal/batchfile"
	"github.com/alima/supply/internal/products"
	"github.com/alima/supply/internal/refcatalog"
	"github.com/alima/supply/internal/shared"
	"github.com/alima/supply/internal/suppliers"
)

const msgPriceCreated = "Precio registrado correctamente"

// ProductsPort is the part of the products service price lists depend on.
type ProductsPort interface {
	LoadLookup(ctx context.Context, businessID uuid.UUID) (products.Lookup, refcatalog.Index, error)
	Reconcile(ctx context.Context, in products.ReconcileInput) []products.Outcome
	GetMany(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]products.Product, error)
}

// ScopePort validates supplier units and restaurant branches.
type ScopePort interface {
	ValidateScope(ctx context.Context, businessID uuid.UUID, unitIDs, branchIDs []uuid.UUID) error
	ListUnits(ctx context.Context, businessID uuid.UUID) ([]suppliers.Unit, error)
}

// Service implements price list uploads, edits and single-price updates.
type Service struct {
	store     Store
	products  ProductsPort
	scope     ScopePort
	publisher Publisher
	logger    *slog.Logger
	metrics   products.BatchRecorder
	currency  string
	now       func() time.Time
}

// NewService constructs a Service.
func NewService(store Store, productsPort ProductsPort, scope ScopePort, publisher Publisher, currency string, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if currency == "" {
		currency = "MXN"
	}
	return &Service{
		store:     store,
		products:  productsPort,
		scope:     scope,
		publisher: publisher,
		logger:    logger,
		metrics:   noMetrics{},
		currency:  currency,
		now:       time.Now,
	}
}

type noMetrics struct{}

func (noMetrics) ObserveBatch(string, int, int) {}

// WithMetrics attaches a batch recorder.
func (s *Service) WithMetrics(m products.BatchRecorder) *Service {
	if m != nil {
		s.metrics = m
	}
	return s
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Result is the outcome of a batch publish.
type Result struct {
	products.BatchResult
	PriceLists []PriceList `json:"price_lists"`
}

// FileInput is a price list workbook upload.
type FileInput struct {
	Actor    shared.Actor
	Filename string
	Data     []byte
	Meta     ListMeta
}

// StructuredInput creates a list from explicit prices.
type StructuredInput struct {
	Actor  shared.Actor
	Meta   ListMeta
	Prices []PriceInput
}

// EditInput publishes a new version of an existing list.
type EditInput struct {
	Actor       shared.Actor
	PriceListID uuid.UUID
	BranchIDs   []uuid.UUID
	IsDefault   bool
	ValidUpto   *time.Time
	Prices      []PriceInput
}

// AddPriceInput replaces one product's price in a list.
type AddPriceInput struct {
	Actor             shared.Actor
	PriceListID       uuid.UUID
	SupplierProductID uuid.UUID
	Price             decimal.Decimal
	ValidUpto         *time.Time
}

// DefaultPriceInput sets a product's price in every default list of the business.
type DefaultPriceInput struct {
	Actor             shared.Actor
	SupplierProductID uuid.UUID
	Price             decimal.Decimal
	ValidUpto         *time.Time
}

// AddPriceResult reports a single-price update.
type AddPriceResult struct {
	Feedback  products.Feedback `json:"feedback"`
	PriceList *PriceList        `json:"price_list,omitempty"`
}

// publishPlan is the per-unit decision taken before any mutation.
type publishPlan struct {
	unitID    uuid.UUID
	latest    *PriceList
	validUpto time.Time
}

func (s *Service) validateMeta(ctx context.Context, actor shared.Actor, meta *ListMeta) error {
	if actor.BusinessID == uuid.Nil {
		return fmt.Errorf("%w: supplier business is required", shared.ErrValidation)
	}
	meta.Name = strings.TrimSpace(meta.Name)
	if meta.Name == "" {
		return ErrNameRequired
	}
	if meta.ValidUpto != nil && !meta.ValidUpto.After(s.now()) {
		return ErrInvalidWindow
	}
	return s.scope.ValidateScope(ctx, actor.BusinessID, meta.UnitIDs, meta.BranchIDs)
}

// checkDefault rejects making name the default of unitID when another list
// already is.
func (s *Service) checkDefault(ctx context.Context, unitID uuid.UUID, name string) error {
	current, err := s.store.FindDefault(ctx, unitID)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil
	case err != nil:
		return err
	case current.Name != name:
		return ErrDefaultExists
	}
	return nil
}

// planCreate applies the creation preconditions for every unit.
func (s *Service) planCreate(ctx context.Context, meta ListMeta) ([]publishPlan, error) {
	plans := make([]publishPlan, 0, len(meta.UnitIDs))
	for _, unitID := range meta.UnitIDs {
		_, err := s.store.FetchLatest(ctx, meta.Name, unitID)
		switch {
		case err == nil:
			return nil, ErrNameTaken
		case !errors.Is(err, ErrNotFound):
			return nil, err
		}
		if meta.IsDefault {
			if err := s.checkDefault(ctx, unitID, meta.Name); err != nil {
				return nil, err
			}
		}
		plans = append(plans, publishPlan{unitID: unitID})
	}
	return plans, nil
}

// planUpsert appends to lists that already exist and applies the creation
// checks for the rest.
func (s *Service) planUpsert(ctx context.Context, meta ListMeta) ([]publishPlan, error) {
	plans := make([]publishPlan, 0, len(meta.UnitIDs))
	for _, unitID := range meta.UnitIDs {
		latest, err := s.store.FetchLatest(ctx, meta.Name, unitID)
		switch {
		case err == nil:
		case errors.Is(err, ErrNotFound):
		default:
			return nil, err
		}
		if meta.IsDefault {
			if err := s.checkDefault(ctx, unitID, meta.Name); err != nil {
				return nil, err
			}
		}
		plan := publishPlan{unitID: unitID}
		if err == nil {
			l := latest
			plan.latest = &l
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// validUpto resolves the list expiry: explicit, else the existing list's
// while still in the future, else tomorrow.
func (s *Service) validUpto(explicit *time.Time, existing *PriceList) time.Time {
	now := s.now().UTC()
	switch {
	case explicit != nil:
		return explicit.UTC()
	case existing != nil && existing.ValidUpto.After(now):
		return existing.ValidUpto
	default:
		return now.AddDate(0, 0, 1)
	}
}

// resolveExpiry fixes each plan's list expiry from its own current version
// and returns the latest of them for the price records the plans share.
func (s *Service) resolveExpiry(explicit *time.Time, plans []publishPlan) time.Time {
	var latest time.Time
	for i := range plans {
		plans[i].validUpto = s.validUpto(explicit, plans[i].latest)
		if plans[i].validUpto.After(latest) {
			latest = plans[i].validUpto
		}
	}
	if latest.IsZero() {
		return s.validUpto(explicit, nil)
	}
	return latest
}

func (s *Service) createPrice(ctx context.Context, actor shared.Actor, productID uuid.UUID, amount decimal.Decimal, validUpto time.Time) (Price, error) {
	now := s.now().UTC()
	return s.store.CreatePrice(ctx, Price{
		ID:                uuid.New(),
		SupplierProductID: productID,
		Price:             amount,
		Currency:          s.currency,
		ValidFrom:         now,
		ValidUpto:         validUpto,
		CreatedBy:         actor.UserID,
		CreatedAt:         now,
	})
}

// appendVersion publishes a new version and announces it.
func (s *Service) appendVersion(ctx context.Context, list PriceList) (PriceList, error) {
	now := s.now().UTC()
	list.ID = uuid.New()
	list.ValidFrom = now
	list.LastUpdated = now
	if list.PriceIDs == nil {
		list.PriceIDs = []uuid.UUID{}
	}
	if list.BranchIDs == nil {
		list.BranchIDs = []uuid.UUID{}
	}
	saved, err := s.store.AppendVersion(ctx, list)
	if err != nil {
		return PriceList{}, err
	}
	evt := PublishedEvent{
		PriceListID:    saved.ID,
		Name:           saved.Name,
		SupplierUnitID: saved.SupplierUnitID,
		Version:        saved.Version,
		BranchIDs:      saved.BranchIDs,
		PriceCount:     len(saved.PriceIDs),
		PublishedAt:    now,
	}
	if err := s.publisher.PriceListPublished(ctx, evt); err != nil {
		s.logger.Warn("enqueue price list published", slog.Any("error", err), slog.String("price_list_id", saved.ID.String()))
	}
	return saved, nil
}

func (s *Service) publishAll(ctx context.Context, actor shared.Actor, meta ListMeta, plans []publishPlan, priceIDs []uuid.UUID, validUpto time.Time) ([]PriceList, error) {
	out := make([]PriceList, 0, len(plans))
	for _, plan := range plans {
		upto := validUpto
		if !plan.validUpto.IsZero() {
			upto = plan.validUpto
		}
		saved, err := s.appendVersion(ctx, PriceList{
			Name:           meta.Name,
			SupplierUnitID: plan.unitID,
			IsDefault:      meta.IsDefault,
			PriceIDs:       priceIDs,
			BranchIDs:      meta.BranchIDs,
			ValidUpto:      upto,
			CreatedBy:      actor.UserID,
		})
		if err != nil {
			return out, fmt.Errorf("publish price list for unit %s: %w", plan.unitID, err)
		}
		out = append(out, saved)
	}
	return out, nil
}

// UpsertFromFile reconciles a price list workbook and publishes one new
// version per requested unit, all sharing the same price records.
func (s *Service) UpsertFromFile(ctx context.Context, in FileInput) (Result, error) {
	if err := s.validateMeta(ctx, in.Actor, &in.Meta); err != nil {
		return Result{}, err
	}
	sheet, err := batchfile.Open(in.Filename, in.Data)
	if err != nil {
		return Result{}, err
	}
	if missing := sheet.MissingColumns(batchfile.PriceListColumns); len(missing) > 0 {
		return Result{BatchResult: products.MissingColumnsResult(missing)}, nil
	}
	rows, err := batchfile.Clean(sheet.Rows())
	if err != nil {
		return Result{}, err
	}
	plans, err := s.planUpsert(ctx, in.Meta)
	if err != nil {
		return Result{}, err
	}
	validUpto := s.resolveExpiry(in.Meta.ValidUpto, plans)

	lookup, catalog, err := s.products.LoadLookup(ctx, in.Actor.BusinessID)
	if err != nil {
		return Result{}, err
	}
	outcomes := s.products.Reconcile(ctx, products.ReconcileInput{
		BusinessID:      in.Actor.BusinessID,
		ActorID:         in.Actor.UserID,
		Rows:            rows,
		Lookup:          lookup,
		Catalog:         catalog,
		Options:         products.ValidateOptions{RequirePrice: true},
		LenientKnownSKU: true,
	})

	feedback := make([]products.Feedback, len(outcomes))
	var priceIDs []uuid.UUID
	for i, o := range outcomes {
		feedback[i] = o.Feedback
		if !o.OK || o.Price == nil {
			continue
		}
		price, err := s.createPrice(ctx, in.Actor, o.Product.ID, *o.Price, validUpto)
		if err != nil {
			s.logger.Error("create supplier price", slog.Any("error", err), slog.String("supplier_product_id", o.Product.ID.String()))
			feedback[i].Status = false
			feedback[i].Msg = "No se pudo registrar el precio del producto"
			continue
		}
		priceIDs = append(priceIDs, price.ID)
	}
	res := products.Summarize(feedback)
	s.metrics.ObserveBatch("pricelists", res.Succeeded, res.Total-res.Succeeded)
	if len(priceIDs) == 0 {
		return Result{}, ErrNoValidPrices
	}

	lists, err := s.publishAll(ctx, in.Actor, in.Meta, plans, priceIDs, validUpto)
	if err != nil {
		return Result{}, err
	}
	s.logger.Info("price list uploaded",
		slog.String("name", in.Meta.Name),
		slog.Int("units", len(lists)),
		slog.Int("prices", len(priceIDs)),
		slog.Int("rows", res.Total))
	return Result{BatchResult: res, PriceLists: lists}, nil
}

// structuredPrices creates price records for explicit inputs, one
// feedback entry per input.
func (s *Service) structuredPrices(ctx context.Context, actor shared.Actor, inputs []PriceInput, validUpto time.Time) ([]products.Feedback, []uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.SupplierProductID)
	}
	known, err := s.products.GetMany(ctx, actor.BusinessID, ids)
	if err != nil {
		return nil, nil, err
	}
	feedback := make([]products.Feedback, len(inputs))
	var priceIDs []uuid.UUID
	seen := make(map[uuid.UUID]struct{}, len(inputs))
	for i, in := range inputs {
		pid := in.SupplierProductID
		fb := products.Feedback{SupplierProductID: &pid}
		p, ok := known[pid]
		if ok {
			fb.ProductID = p.ProductID
			fb.SKU = p.SKU
			fb.Description = p.Description
		}
		_, dup := seen[pid]
		switch {
		case !ok:
			fb.Msg = fmt.Sprintf("El producto %s no existe", pid)
		case dup:
			fb.Msg = "El producto aparece más de una vez"
		case !in.Price.IsPositive():
			fb.Msg = "El precio debe ser mayor a 0"
		default:
			price, err := s.createPrice(ctx, actor, pid, in.Price, validUpto)
			if err != nil {
				s.logger.Error("create supplier price", slog.Any("error", err), slog.String("supplier_product_id", pid.String()))
				fb.Msg = "No se pudo registrar el precio del producto"
				break
			}
			seen[pid] = struct{}{}
			priceIDs = append(priceIDs, price.ID)
			fb.Status = true
			fb.Msg = msgPriceCreated
		}
		feedback[i] = fb
	}
	return feedback, priceIDs, nil
}

// NewFromStructured creates a new list from explicit prices.
func (s *Service) NewFromStructured(ctx context.Context, in StructuredInput) (Result, error) {
	if err := s.validateMeta(ctx, in.Actor, &in.Meta); err != nil {
		return Result{}, err
	}
	plans, err := s.planCreate(ctx, in.Meta)
	if err != nil {
		return Result{}, err
	}
	validUpto := s.validUpto(in.Meta.ValidUpto, nil)
	feedback, priceIDs, err := s.structuredPrices(ctx, in.Actor, in.Prices, validUpto)
	if err != nil {
		return Result{}, err
	}
	res := products.Summarize(feedback)
	s.metrics.ObserveBatch("pricelists", res.Succeeded, res.Total-res.Succeeded)
	if len(priceIDs) == 0 {
		return Result{}, ErrNoValidPrices
	}
	lists, err := s.publishAll(ctx, in.Actor, in.Meta, plans, priceIDs, validUpto)
	if err != nil {
		return Result{}, err
	}
	return Result{BatchResult: res, PriceLists: lists}, nil
}

// current resolves any version id to the current version of its list.
func (s *Service) current(ctx context.Context, id uuid.UUID) (PriceList, error) {
	row, err := s.store.GetByID(ctx, id)
	if err != nil {
		return PriceList{}, err
	}
	return s.store.FetchLatest(ctx, row.Name, row.SupplierUnitID)
}

// Edit publishes a new version of an existing list with a fresh set of
// prices.
func (s *Service) Edit(ctx context.Context, in EditInput) (Result, error) {
	latest, err := s.current(ctx, in.PriceListID)
	if err != nil {
		return Result{}, err
	}
	meta := ListMeta{
		Name:      latest.Name,
		UnitIDs:   []uuid.UUID{latest.SupplierUnitID},
		BranchIDs: in.BranchIDs,
		IsDefault: in.IsDefault,
		ValidUpto: in.ValidUpto,
	}
	if err := s.validateMeta(ctx, in.Actor, &meta); err != nil {
		return Result{}, err
	}
	if meta.IsDefault {
		if err := s.checkDefault(ctx, latest.SupplierUnitID, latest.Name); err != nil {
			return Result{}, err
		}
	}
	validUpto := s.validUpto(in.ValidUpto, &latest)
	feedback, priceIDs, err := s.structuredPrices(ctx, in.Actor, in.Prices, validUpto)
	if err != nil {
		return Result{}, err
	}
	res := products.Summarize(feedback)
	if len(priceIDs) == 0 {
		return Result{}, ErrNoValidPrices
	}
	lists, err := s.publishAll(ctx, in.Actor, meta, []publishPlan{{unitID: latest.SupplierUnitID, latest: &latest}}, priceIDs, validUpto)
	if err != nil {
		return Result{}, err
	}
	return Result{BatchResult: res, PriceLists: lists}, nil
}

// AddPrice records a new price for one product and publishes a version of
// the list where it replaces that product's previous price. A missing list
// is reported in the result, not as an error.
func (s *Service) AddPrice(ctx context.Context, in AddPriceInput) (AddPriceResult, error) {
	pid := in.SupplierProductID
	latest, err := s.current(ctx, in.PriceListID)
	if errors.Is(err, ErrNotFound) {
		return AddPriceResult{Feedback: products.Feedback{
			SupplierProductID: &pid,
			Msg:               "La lista de precios no existe",
		}}, nil
	}
	if err != nil {
		return AddPriceResult{}, err
	}
	if err := s.scope.ValidateScope(ctx, in.Actor.BusinessID, []uuid.UUID{latest.SupplierUnitID}, nil); err != nil {
		return AddPriceResult{}, err
	}
	if in.ValidUpto != nil && !in.ValidUpto.After(s.now()) {
		return AddPriceResult{}, ErrInvalidWindow
	}
	if !in.Price.IsPositive() {
		return AddPriceResult{}, fmt.Errorf("%w: el precio debe ser mayor a 0", shared.ErrValidation)
	}
	known, err := s.products.GetMany(ctx, in.Actor.BusinessID, []uuid.UUID{pid})
	if err != nil {
		return AddPriceResult{}, err
	}
	product, ok := known[pid]
	if !ok {
		return AddPriceResult{}, fmt.Errorf("%w: producto %s", products.ErrNotFound, pid)
	}

	validUpto := s.validUpto(in.ValidUpto, &latest)
	price, err := s.createPrice(ctx, in.Actor, pid, in.Price, validUpto)
	if err != nil {
		return AddPriceResult{}, err
	}
	members, err := s.replaceMember(ctx, latest.PriceIDs, pid, price.ID)
	if err != nil {
		return AddPriceResult{}, err
	}
	saved, err := s.appendVersion(ctx, PriceList{
		Name:           latest.Name,
		SupplierUnitID: latest.SupplierUnitID,
		IsDefault:      latest.IsDefault,
		PriceIDs:       members,
		BranchIDs:      latest.BranchIDs,
		ValidUpto:      validUpto,
		CreatedBy:      in.Actor.UserID,
	})
	if err != nil {
		return AddPriceResult{}, err
	}
	return AddPriceResult{
		Feedback: products.Feedback{
			ProductID:         product.ProductID,
			SupplierProductID: &pid,
			SKU:               product.SKU,
			Description:       product.Description,
			Status:            true,
			Msg:               msgPriceCreated,
		},
		PriceList: &saved,
	}, nil
}

// replaceMember drops every price of productID from ids and appends priceID.
func (s *Service) replaceMember(ctx context.Context, ids []uuid.UUID, productID, priceID uuid.UUID) ([]uuid.UUID, error) {
	prices, err := s.store.GetPrices(ctx, ids)
	if err != nil {
		return nil, err
	}
	owner := make(map[uuid.UUID]uuid.UUID, len(prices))
	for _, p := range prices {
		owner[p.ID] = p.SupplierProductID
	}
	out := make([]uuid.UUID, 0, len(ids)+1)
	for _, id := range ids {
		if pid, ok := owner[id]; ok && pid == productID {
			continue
		}
		out = append(out, id)
	}
	return append(out, priceID), nil
}

// AddPriceToDefaultLists sets the product's price in the default list of
// every unit of the business, creating an empty default list first for
// units that have none.
func (s *Service) AddPriceToDefaultLists(ctx context.Context, in DefaultPriceInput) ([]AddPriceResult, error) {
	units, err := s.scope.ListUnits(ctx, in.Actor.BusinessID)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, fmt.Errorf("%w: el negocio no tiene unidades", shared.ErrValidation)
	}
	defaults := make([]PriceList, 0, len(units))
	for _, u := range units {
		list, err := s.store.FindDefault(ctx, u.ID)
		switch {
		case err == nil:
		case errors.Is(err, ErrNotFound):
			list, err = s.bootstrapDefault(ctx, in.Actor, u.ID, in.ValidUpto)
			if err != nil {
				return nil, err
			}
		default:
			return nil, err
		}
		defaults = append(defaults, list)
	}
	out := make([]AddPriceResult, 0, len(defaults))
	for _, list := range defaults {
		res, err := s.AddPrice(ctx, AddPriceInput{
			Actor:             in.Actor,
			PriceListID:       list.ID,
			SupplierProductID: in.SupplierProductID,
			Price:             in.Price,
			ValidUpto:         in.ValidUpto,
		})
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (s *Service) bootstrapDefault(ctx context.Context, actor shared.Actor, unitID uuid.UUID, validUpto *time.Time) (PriceList, error) {
	list := PriceList{
		Name:           DefaultListName,
		SupplierUnitID: unitID,
		IsDefault:      true,
		CreatedBy:      actor.UserID,
	}
	existing, err := s.store.FetchLatest(ctx, DefaultListName, unitID)
	switch {
	case err == nil:
		list.PriceIDs = existing.PriceIDs
		list.BranchIDs = existing.BranchIDs
		list.ValidUpto = s.validUpto(validUpto, &existing)
	case errors.Is(err, ErrNotFound):
		list.ValidUpto = s.validUpto(validUpto, nil)
	default:
		return PriceList{}, err
	}
	s.logger.Info("bootstrapping default price list", slog.String("supplier_unit_id", unitID.String()))
	return s.appendVersion(ctx, list)
}

// ListCurrent returns the current version of every list of a unit.
func (s *Service) ListCurrent(ctx context.Context, actor shared.Actor, unitID uuid.UUID) ([]PriceList, error) {
	if err := s.scope.ValidateScope(ctx, actor.BusinessID, []uuid.UUID{unitID}, nil); err != nil {
		return nil, err
	}
	return s.store.ListCurrent(ctx, unitID)
}

// History returns every version of the list id belongs to, newest first.
func (s *Service) History(ctx context.Context, actor shared.Actor, id uuid.UUID) ([]PriceList, error) {
	row, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.scope.ValidateScope(ctx, actor.BusinessID, []uuid.UUID{row.SupplierUnitID}, nil); err != nil {
		return nil, err
	}
	return s.store.History(ctx, row.Name, row.SupplierUnitID)
}

// Get returns a version with its prices.
func (s *Service) Get(ctx context.Context, actor shared.Actor, id uuid.UUID) (Detail, error) {
	row, err := s.store.GetByID(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	if err := s.scope.ValidateScope(ctx, actor.BusinessID, []uuid.UUID{row.SupplierUnitID}, nil); err != nil {
		return Detail{}, err
	}
	prices, err := s.store.GetPrices(ctx, row.PriceIDs)
	if err != nil {
		return Detail{}, err
	}
	return Detail{PriceList: row, Prices: prices}, nil
}

// Export writes the version id as a workbook.
func (s *Service) Export(ctx context.Context, actor shared.Actor, id uuid.UUID, w io.Writer) error {
	detail, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	ids := make([]uuid.UUID, 0, len(detail.Prices))
	for _, p := range detail.Prices {
		ids = append(ids, p.SupplierProductID)
	}
	known, err := s.products.GetMany(ctx, actor.BusinessID, ids)
	if err != nil {
		return err
	}
	lines := make([]batchfile.PriceLine, 0, len(detail.Prices))
	for _, price := range detail.Prices {
		p := known[price.SupplierProductID]
		lines = append(lines, batchfile.PriceLine{
			SKU:          p.SKU,
			Description:  p.Description,
			SellUnit:     p.SellUnit.Label(),
			Price:        price.Price.StringFixed(2),
			Currency:     price.Currency,
			ValidUpto:    price.ValidUpto.Format(time.DateOnly),
			TaxCode:      p.TaxCode,
			IVA:          p.TaxRate,
			UnitMultiple: p.UnitMultiple,
			MinQuantity:  p.MinQuantity,
		})
	}
	return batchfile.WritePriceList(w, lines)
}
