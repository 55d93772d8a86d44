package products_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/alima/supply/internal/batchfile"
	"github.com/alima/supply/internal/batchfile/batchfiletest"
	"github.com/alima/supply/internal/products"
	"github.com/alima/supply/internal/products/productstest"
	"github.com/alima/supply/internal/refcatalog"
	"github.com/alima/supply/internal/shared"
	"github.com/alima/supply/internal/uom"
)

var productHeader = append(append([]string{}, batchfile.ProductColumns...), batchfile.ColSKU, batchfile.ColProductID)

func tomatoRow() map[string]any {
	return map[string]any{
		batchfile.ColDescription:  "Tomate",
		batchfile.ColSellUnit:     "kg",
		batchfile.ColConversion:   1,
		batchfile.ColBuyUnit:      "kg",
		batchfile.ColUnitMultiple: 1,
		batchfile.ColMinQuantity:  1,
		batchfile.ColTaxCode:      validTaxCode,
		batchfile.ColIVA:          0.16,
	}
}

func newService(repo *productstest.Repository, catalog ...refcatalog.Product) *products.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return products.NewService(repo, productstest.Catalog(catalog), productstest.TaxCodes{validTaxCode}, "", logger)
}

func upload(t *testing.T, svc *products.Service, actor shared.Actor, rows ...map[string]any) products.BatchResult {
	t.Helper()
	data := batchfiletest.Workbook(t, batchfiletest.Sheet{Name: "Sheet1", Records: batchfiletest.Records(productHeader, rows...)})
	res, err := svc.UpsertFromFile(context.Background(), products.FileInput{Actor: actor, Filename: "productos.xlsx", Data: data})
	require.NoError(t, err)
	return res
}

func TestUpsertFromFileCreatesProduct(t *testing.T) {
	repo := productstest.NewRepository()
	actor := shared.Actor{UserID: uuid.New(), BusinessID: uuid.New()}

	res := upload(t, newService(repo), actor, tomatoRow())
	require.Len(t, res.Feedback, 1)
	fb := res.Feedback[0]
	require.True(t, fb.Status, fb.Msg)
	require.Equal(t, "ALM-00001", fb.SKU)
	require.Contains(t, fb.Msg, "creado")
	require.Equal(t, "Tomate", fb.Description)
	require.Equal(t, "1 de 1 productos procesados correctamente", res.Msg)

	stored := repo.All()
	require.Len(t, stored, 1)
	require.Equal(t, uom.KG, stored[0].SellUnit)
	require.Equal(t, actor.BusinessID, stored[0].BusinessID)
	require.Equal(t, actor.UserID, stored[0].CreatedBy)
	require.Equal(t, *fb.SupplierProductID, stored[0].ID)
	require.True(t, stored[0].IsActive)
}

func TestUpsertFromFileIsIdempotentOnSKU(t *testing.T) {
	repo := productstest.NewRepository()
	svc := newService(repo)
	actor := shared.Actor{UserID: uuid.New(), BusinessID: uuid.New()}

	onion := tomatoRow()
	onion[batchfile.ColDescription] = "Cebolla blanca"
	onion[batchfile.ColSKU] = "CEB-01"
	first := upload(t, svc, actor, tomatoRow(), onion)
	require.Equal(t, 2, first.Succeeded)
	require.Equal(t, 2, repo.Creates)

	tomato := tomatoRow()
	tomato[batchfile.ColSKU] = first.Feedback[0].SKU
	second := upload(t, svc, actor, tomato, onion)
	require.Equal(t, 2, second.Succeeded)
	require.Equal(t, 2, repo.Creates, "second upload must not create products")
	require.Equal(t, 2, repo.Updates)
	for i := range second.Feedback {
		require.Equal(t, *first.Feedback[i].SupplierProductID, *second.Feedback[i].SupplierProductID)
		require.Contains(t, second.Feedback[i].Msg, "actualizado")
	}
}

func TestUpsertFromFileAccountsForEveryRow(t *testing.T) {
	repo := productstest.NewRepository()
	actor := shared.Actor{UserID: uuid.New(), BusinessID: uuid.New()}

	var rows []map[string]any
	for i := 0; i < 6; i++ {
		r := tomatoRow()
		r[batchfile.ColDescription] = fmt.Sprintf("Producto %d", i)
		switch i {
		case 1:
			r[batchfile.ColSellUnit] = "barril"
		case 3:
			r[batchfile.ColTaxCode] = "00000000"
		case 4:
			r[batchfile.ColSellUnit] = "pieza"
			r[batchfile.ColUnitMultiple] = 0.5
		}
		rows = append(rows, r)
	}
	res := upload(t, newService(repo), actor, rows...)
	require.Len(t, res.Feedback, len(rows))
	for i, fb := range res.Feedback {
		require.Equal(t, rows[i][batchfile.ColDescription], fb.Description)
	}
	require.Equal(t, 3, res.Succeeded)
	require.Equal(t, "3 de 6 productos procesados correctamente", res.Msg)
	require.Len(t, repo.All(), 3)
}

func TestUpsertFromFileDuplicateRowsCreateOnce(t *testing.T) {
	repo := productstest.NewRepository()
	actor := shared.Actor{UserID: uuid.New(), BusinessID: uuid.New()}

	dup := tomatoRow()
	dup[batchfile.ColDescription] = "  tomate "
	res := upload(t, newService(repo), actor, tomatoRow(), dup)
	require.Len(t, res.Feedback, 1, "cleaning drops the duplicate description")
	require.Len(t, repo.All(), 1)
}

func TestUpsertFromFileMissingColumns(t *testing.T) {
	repo := productstest.NewRepository()
	actor := shared.Actor{UserID: uuid.New(), BusinessID: uuid.New()}
	data := batchfiletest.Workbook(t, batchfiletest.Sheet{Name: "Sheet1", Records: [][]any{
		{"description", "sell_unit"},
		{"Tomate", "kg"},
	}})
	res, err := newService(repo).UpsertFromFile(context.Background(), products.FileInput{Actor: actor, Filename: "p.xlsx", Data: data})
	require.NoError(t, err)
	require.Len(t, res.Feedback, 1)
	require.False(t, res.Feedback[0].Status)
	require.Contains(t, res.Feedback[0].Msg, batchfile.ColConversion)
	require.Empty(t, repo.All())
}

func TestUpsertFromFileStructuralErrors(t *testing.T) {
	svc := newService(productstest.NewRepository())
	actor := shared.Actor{UserID: uuid.New(), BusinessID: uuid.New()}

	_, err := svc.UpsertFromFile(context.Background(), products.FileInput{Actor: actor, Filename: "p.csv", Data: []byte("x")})
	require.ErrorIs(t, err, shared.ErrStructural)

	data := batchfiletest.Workbook(t, batchfiletest.Sheet{Name: "Sheet1", Records: batchfiletest.Records(productHeader,
		map[string]any{batchfile.ColConversion: 1},
	)})
	_, err = svc.UpsertFromFile(context.Background(), products.FileInput{Actor: actor, Filename: "p.xlsx", Data: data})
	require.ErrorIs(t, err, batchfile.ErrEmptySheet)

	_, err = svc.UpsertFromFile(context.Background(), products.FileInput{Filename: "p.xlsx", Data: data})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestReconcileReferenceCatalogRows(t *testing.T) {
	weight := 0.25
	canonical := refcatalog.Product{
		ID: uuid.New(), SKU: "ALIMA-AGU", Description: "Aguacate Hass", SellUnit: uom.Piece, BuyUnit: uom.Box,
		ConversionFactor: 40, UnitMultiple: 1, MinQuantity: 1, EstimatedWeight: &weight,
		TaxCode: validTaxCode, TaxRate: 0,
	}
	repo := productstest.NewRepository()
	svc := newService(repo, canonical)
	actor := shared.Actor{UserID: uuid.New(), BusinessID: uuid.New()}

	linked := tomatoRow()
	linked[batchfile.ColDescription] = "Aguacate"
	linked[batchfile.ColProductID] = canonical.ID.String()
	linked[batchfile.ColMinQuantity] = 5
	unknown := tomatoRow()
	unknown[batchfile.ColDescription] = "Mango"
	unknown[batchfile.ColProductID] = uuid.NewString()

	res := upload(t, svc, actor, linked, unknown, tomatoRow())
	require.Len(t, res.Feedback, 3)
	require.True(t, res.Feedback[0].Status, res.Feedback[0].Msg)
	require.Equal(t, canonical.ID, *res.Feedback[0].ProductID)
	require.Equal(t, "Aguacate", res.Feedback[0].Description)
	require.False(t, res.Feedback[1].Status)
	require.Contains(t, res.Feedback[1].Msg, "catálogo")
	require.True(t, res.Feedback[2].Status)

	created, err := svc.Get(context.Background(), actor.BusinessID, *res.Feedback[0].SupplierProductID)
	require.NoError(t, err)
	require.Equal(t, "Aguacate Hass", created.Description)
	require.Equal(t, uom.Box, created.BuyUnit)
	require.Equal(t, 5.0, created.MinQuantity)
	require.Equal(t, 40.0, created.ConversionFactor)

	linked[batchfile.ColMinQuantity] = 10
	again := upload(t, svc, actor, linked)
	require.True(t, again.Feedback[0].Status)
	require.Equal(t, created.ID, *again.Feedback[0].SupplierProductID)
	require.Contains(t, again.Feedback[0].Msg, "actualizado")

	updated, err := svc.Get(context.Background(), actor.BusinessID, created.ID)
	require.NoError(t, err)
	require.Equal(t, 10.0, updated.MinQuantity)
	require.Equal(t, created.SKU, updated.SKU)
}

func TestReconcileRejectsSKUOwnedByAnotherProduct(t *testing.T) {
	business := uuid.New()
	other := products.Product{ID: uuid.New(), BusinessID: business, SKU: "OCUPADO", Description: "Lechuga", SellUnit: uom.Piece}
	tomato := products.Product{ID: uuid.New(), BusinessID: business, SKU: "TOM", Description: "Tomate", SellUnit: uom.KG}
	repo := productstest.NewRepository(other, tomato)
	svc := newService(repo)

	lk, catalog, err := svc.LoadLookup(context.Background(), business)
	require.NoError(t, err)
	row := baseRow(map[string]string{batchfile.ColID: tomato.ID.String(), batchfile.ColSKU: "OCUPADO"})

	out := svc.Reconcile(context.Background(), products.ReconcileInput{
		BusinessID: business,
		Rows:       []batchfile.Row{row},
		Lookup:     lk,
		Catalog:    catalog,
	})
	require.Len(t, out, 1)
	require.False(t, out[0].OK)
	require.Contains(t, out[0].Feedback.Msg, "OCUPADO")
	require.Zero(t, repo.Updates)
}

func TestReconcileLenientKnownSKU(t *testing.T) {
	business := uuid.New()
	tomato := products.Product{ID: uuid.New(), BusinessID: business, SKU: "TOM", Description: "Tomate", SellUnit: uom.KG, TaxCode: validTaxCode}
	svc := newService(productstest.NewRepository(tomato))
	lk, catalog, err := svc.LoadLookup(context.Background(), business)
	require.NoError(t, err)

	row := baseRow(map[string]string{batchfile.ColSKU: "TOM", batchfile.ColTaxCode: "", batchfile.ColPrice: "25"})
	in := products.ReconcileInput{
		BusinessID: business,
		Rows:       []batchfile.Row{row},
		Lookup:     lk,
		Catalog:    catalog,
		Options:    products.ValidateOptions{RequirePrice: true},
	}
	out := svc.Reconcile(context.Background(), in)
	require.False(t, out[0].OK, "strict mode requires a tax code")

	in.LenientKnownSKU = true
	out = svc.Reconcile(context.Background(), in)
	require.True(t, out[0].OK, out[0].Feedback.Msg)
	require.Equal(t, tomato.ID, out[0].Product.ID)
	require.Equal(t, validTaxCode, out[0].Product.TaxCode)
	require.Equal(t, "25", out[0].Price.String())
}

func TestReconcileWritesEachProductOnce(t *testing.T) {
	business := uuid.New()
	tomato := products.Product{ID: uuid.New(), BusinessID: business, SKU: "TOM-01", Description: "Tomate", SellUnit: uom.KG, TaxCode: validTaxCode}
	repo := productstest.NewRepository(tomato)
	svc := newService(repo)
	lk, catalog, err := svc.LoadLookup(context.Background(), business)
	require.NoError(t, err)

	byDescription := baseRow(nil)
	bySKU := baseRow(map[string]string{batchfile.ColDescription: "Jitomate saladet", batchfile.ColSKU: "TOM-01"})
	bySKU.Line = 3
	out := svc.Reconcile(context.Background(), products.ReconcileInput{
		BusinessID: business,
		Rows:       []batchfile.Row{byDescription, bySKU},
		Lookup:     lk,
		Catalog:    catalog,
	})
	require.Len(t, out, 2)
	require.True(t, out[0].OK, out[0].Feedback.Msg)
	require.Equal(t, tomato.ID, out[0].Product.ID)
	require.False(t, out[1].OK)
	require.Contains(t, out[1].Feedback.Msg, "ya aparece en la fila 2")
	require.Equal(t, 1, repo.Updates)

	saved, err := svc.Get(context.Background(), business, tomato.ID)
	require.NoError(t, err)
	require.Equal(t, "Tomate", saved.Description)
}

func TestReconcileReferenceRowHonoursExplicitID(t *testing.T) {
	canonical := refcatalog.Product{
		ID: uuid.New(), Description: "Cebolla blanca", SellUnit: uom.KG, BuyUnit: uom.KG,
		ConversionFactor: 1, UnitMultiple: 1, MinQuantity: 1, TaxCode: validTaxCode,
	}
	business := uuid.New()
	onion := products.Product{ID: uuid.New(), BusinessID: business, SKU: "CEB-01", Description: "Cebolla", SellUnit: uom.KG}
	repo := productstest.NewRepository(onion)
	svc := newService(repo, canonical)
	lk, catalog, err := svc.LoadLookup(context.Background(), business)
	require.NoError(t, err)

	linked := baseRow(map[string]string{batchfile.ColProductID: canonical.ID.String(), batchfile.ColID: onion.ID.String()})
	unknown := baseRow(map[string]string{batchfile.ColProductID: canonical.ID.String(), batchfile.ColID: uuid.NewString()})
	unknown.Line = 3
	out := svc.Reconcile(context.Background(), products.ReconcileInput{
		BusinessID: business,
		Rows:       []batchfile.Row{linked, unknown},
		Lookup:     lk,
		Catalog:    catalog,
	})
	require.True(t, out[0].OK, out[0].Feedback.Msg)
	require.Equal(t, onion.ID, out[0].Product.ID)
	require.Equal(t, canonical.ID, *out[0].Product.ProductID)
	require.Equal(t, "CEB-01", out[0].Product.SKU)
	require.False(t, out[1].OK)
	require.Contains(t, out[1].Feedback.Msg, "no existe")
	require.Zero(t, repo.Creates)
	require.Equal(t, 1, repo.Updates)
}
