package products

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alima/supply/internal/batchfile"
	"github.com/alima/supply/internal/refcatalog"
	"github.com/alima/supply/internal/shared"
	"github.com/alima/supply/internal/taxcodes"
)

// CatalogSource lists the canonical reference catalog.
type CatalogSource interface {
	ListAll(ctx context.Context) ([]refcatalog.Product, error)
}

// TaxCodeSource serves the valid SAT product code set.
type TaxCodeSource interface {
	Valid(ctx context.Context) (taxcodes.Set, error)
}

// BatchRecorder observes batch outcomes.
type BatchRecorder interface {
	ObserveBatch(kind string, succeeded, failed int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveBatch(string, int, int) {}

// Service orchestrates supplier product uploads.
type Service struct {
	repo       Repository
	catalog    CatalogSource
	taxes      TaxCodeSource
	reconciler *Reconciler
	logger     *slog.Logger
	metrics    BatchRecorder
}

// NewService constructs a Service.
func NewService(repo Repository, catalog CatalogSource, taxes TaxCodeSource, skuPrefix string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		catalog:    catalog,
		taxes:      taxes,
		reconciler: NewReconciler(repo, skuPrefix, logger),
		logger:     logger,
		metrics:    nopRecorder{},
	}
}

// WithMetrics attaches a batch recorder.
func (s *Service) WithMetrics(m BatchRecorder) *Service {
	if m != nil {
		s.metrics = m
	}
	return s
}

// LoadLookup loads the supplier's products, the SAT code set and the
// reference catalog concurrently.
func (s *Service) LoadLookup(ctx context.Context, businessID uuid.UUID) (Lookup, refcatalog.Index, error) {
	var (
		existing []Product
		codes    taxcodes.Set
		catalog  []refcatalog.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		existing, _, err = s.repo.ListByBusiness(gctx, businessID, ListFilters{})
		if err != nil {
			return fmt.Errorf("load supplier products: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		codes, err = s.taxes.Valid(gctx)
		if err != nil {
			return fmt.Errorf("load tax codes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		catalog, err = s.catalog.ListAll(gctx)
		if err != nil {
			return fmt.Errorf("load reference catalog: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Lookup{}, nil, err
	}
	return Lookup{TaxCodes: codes, Products: NewIndex(existing)}, refcatalog.NewIndex(catalog), nil
}

// Reconcile runs the reconciliation engine over cleaned rows.
func (s *Service) Reconcile(ctx context.Context, in ReconcileInput) []Outcome {
	return s.reconciler.Reconcile(ctx, in)
}

// FileInput is an uploaded product workbook.
type FileInput struct {
	Actor    shared.Actor
	Filename string
	Data     []byte
}

// UpsertFromFile creates or updates the supplier's products from a
// workbook. Structural problems return an error; row problems are
// reported in the result.
func (s *Service) UpsertFromFile(ctx context.Context, in FileInput) (BatchResult, error) {
	if in.Actor.BusinessID == uuid.Nil {
		return BatchResult{}, fmt.Errorf("%w: supplier business is required", shared.ErrValidation)
	}
	sheet, err := batchfile.Open(in.Filename, in.Data)
	if err != nil {
		return BatchResult{}, err
	}
	if missing := sheet.MissingColumns(batchfile.ProductColumns); len(missing) > 0 {
		return MissingColumnsResult(missing), nil
	}
	rows, err := batchfile.Clean(sheet.Rows())
	if err != nil {
		return BatchResult{}, err
	}
	lookup, catalog, err := s.LoadLookup(ctx, in.Actor.BusinessID)
	if err != nil {
		return BatchResult{}, err
	}
	outcomes := s.reconciler.Reconcile(ctx, ReconcileInput{
		BusinessID: in.Actor.BusinessID,
		ActorID:    in.Actor.UserID,
		Rows:       rows,
		Lookup:     lookup,
		Catalog:    catalog,
	})
	res := Summarize(Feedbacks(outcomes))
	s.metrics.ObserveBatch("products", res.Succeeded, res.Total-res.Succeeded)
	s.logger.Info("product batch processed",
		slog.String("business_id", in.Actor.BusinessID.String()),
		slog.Int("rows", res.Total),
		slog.Int("succeeded", res.Succeeded))
	return res, nil
}

// ListByBusiness returns the supplier's products.
func (s *Service) ListByBusiness(ctx context.Context, businessID uuid.UUID, filters ListFilters) ([]Product, int, error) {
	if businessID == uuid.Nil {
		return nil, 0, fmt.Errorf("%w: supplier business is required", shared.ErrValidation)
	}
	return s.repo.ListByBusiness(ctx, businessID, filters)
}

// GetMany returns the supplier's products keyed by id. Unknown ids are
// omitted.
func (s *Service) GetMany(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]Product, error) {
	out := make(map[uuid.UUID]Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	list, err := s.repo.GetMany(ctx, businessID, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		out[p.ID] = p
	}
	return out, nil
}

// Get returns one of the supplier's products.
func (s *Service) Get(ctx context.Context, businessID, id uuid.UUID) (Product, error) {
	found, err := s.GetMany(ctx, businessID, []uuid.UUID{id})
	if err != nil {
		return Product{}, err
	}
	p, ok := found[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}
