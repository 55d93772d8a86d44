package products_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/alima/supply/internal/batchfile"
	"github.com/alima/supply/internal/products"
	"github.com/alima/supply/internal/taxcodes"
	"github.com/alima/supply/internal/uom"
)

const validTaxCode = "50401500"

func baseRow(overrides map[string]string) batchfile.Row {
	values := map[string]string{
		batchfile.ColDescription:  "Tomate",
		batchfile.ColSellUnit:     "kg",
		batchfile.ColConversion:   "1",
		batchfile.ColBuyUnit:      "kg",
		batchfile.ColUnitMultiple: "1",
		batchfile.ColMinQuantity:  "1",
		batchfile.ColTaxCode:      validTaxCode,
		batchfile.ColIVA:          "0.16",
	}
	for k, v := range overrides {
		values[k] = v
	}
	return batchfile.Row{Line: 2, Values: values}
}

func lookup(existing ...products.Product) products.Lookup {
	return products.Lookup{TaxCodes: taxcodes.NewSet(validTaxCode), Products: products.NewIndex(existing)}
}

func TestValidateRowAcceptsCompleteRow(t *testing.T) {
	res := products.ValidateRow(baseRow(nil), lookup(), products.ValidateOptions{})
	require.True(t, res.Status, res.Feedback.Msg)
	require.Nil(t, res.Data.Existing)
	require.Equal(t, uom.KG, res.Data.Product.SellUnit)
	require.Equal(t, 0.16, res.Data.Product.TaxRate)
	require.True(t, res.Data.Fields.Has(products.FieldDescription|products.FieldSellUnit|products.FieldTaxRate))
	require.False(t, res.Data.Fields.Has(products.FieldEstimatedWeight))
	require.False(t, res.Data.Fields.Has(products.FieldTags))
}

func TestValidateRowDescriptionTooShort(t *testing.T) {
	res := products.ValidateRow(baseRow(map[string]string{batchfile.ColDescription: "Ajo"}), lookup(), products.ValidateOptions{})
	require.True(t, res.Status)

	res = products.ValidateRow(baseRow(map[string]string{batchfile.ColDescription: "Té"}), lookup(), products.ValidateOptions{})
	require.False(t, res.Status)
	require.Contains(t, res.Feedback.Msg, "descripción")
	require.Equal(t, "Té", res.Feedback.Description)
}

func TestValidateRowUnknownUnitListsAcceptedValues(t *testing.T) {
	res := products.ValidateRow(baseRow(map[string]string{batchfile.ColSellUnit: "barril"}), lookup(), products.ValidateOptions{})
	require.False(t, res.Status)
	for _, v := range uom.Accepted() {
		require.Contains(t, res.Feedback.Msg, v)
	}
}

func TestValidateRowNumericFields(t *testing.T) {
	cases := map[string]map[string]string{
		"zero conversion":    {batchfile.ColConversion: "0"},
		"text multiple":      {batchfile.ColUnitMultiple: "uno"},
		"negative weight":    {batchfile.ColEstimatedWeight: "-2"},
		"missing min":        {batchfile.ColMinQuantity: ""},
		"iva out of range":   {batchfile.ColIVA: "1"},
		"ieps out of range":  {batchfile.ColIEPS: "1.5"},
		"non positive price": {batchfile.ColPrice: "0"},
	}
	for name, o := range cases {
		res := products.ValidateRow(baseRow(o), lookup(), products.ValidateOptions{})
		require.False(t, res.Status, name)
	}

	res := products.ValidateRow(baseRow(map[string]string{batchfile.ColIVA: "16%", batchfile.ColEstimatedWeight: "1,250.5"}), lookup(), products.ValidateOptions{})
	require.True(t, res.Status, res.Feedback.Msg)
	require.InDelta(t, 0.16, res.Data.Product.TaxRate, 1e-9)
	require.NotNil(t, res.Data.Product.EstimatedWeight)
	require.Equal(t, 1250.5, *res.Data.Product.EstimatedWeight)
}

func TestValidateRowIntegerUnitFloor(t *testing.T) {
	for _, unit := range []string{"pieza", "paquete", "docena", "domo"} {
		res := products.ValidateRow(baseRow(map[string]string{
			batchfile.ColSellUnit:     unit,
			batchfile.ColUnitMultiple: "0.5",
		}), lookup(), products.ValidateOptions{})
		require.False(t, res.Status, unit)
		require.Contains(t, res.Feedback.Msg, "unit_multiple")

		res = products.ValidateRow(baseRow(map[string]string{
			batchfile.ColSellUnit:     unit,
			batchfile.ColUnitMultiple: "1",
		}), lookup(), products.ValidateOptions{})
		require.True(t, res.Status, res.Feedback.Msg)
	}

	res := products.ValidateRow(baseRow(map[string]string{batchfile.ColUnitMultiple: "0.5"}), lookup(), products.ValidateOptions{})
	require.True(t, res.Status, "kg allows fractional multiples")
}

func TestValidateRowRejectsNonFiniteNumbers(t *testing.T) {
	cases := map[string]map[string]string{
		"nan conversion":        {batchfile.ColConversion: "NaN"},
		"inf conversion":        {batchfile.ColConversion: "Inf"},
		"infinity multiple":     {batchfile.ColUnitMultiple: "Infinity"},
		"nan multiple on pieza": {batchfile.ColSellUnit: "pieza", batchfile.ColUnitMultiple: "NaN"},
		"nan min on pieza":      {batchfile.ColSellUnit: "pieza", batchfile.ColMinQuantity: "NaN"},
		"nan weight":            {batchfile.ColEstimatedWeight: "nan"},
		"nan iva":               {batchfile.ColIVA: "NaN"},
		"inf iva":               {batchfile.ColIVA: "Inf"},
		"nan ieps percent":      {batchfile.ColIEPS: "NaN%"},
	}
	for name, o := range cases {
		res := products.ValidateRow(baseRow(o), lookup(), products.ValidateOptions{})
		require.False(t, res.Status, name)
		require.Contains(t, res.Feedback.Msg, "no es un número", name)
	}
}

func TestValidateRowTagPairing(t *testing.T) {
	res := products.ValidateRow(baseRow(map[string]string{batchfile.ColTagKey: "origen"}), lookup(), products.ValidateOptions{})
	require.False(t, res.Status)
	require.Contains(t, res.Feedback.Msg, batchfile.ColTagValue)

	res = products.ValidateRow(baseRow(map[string]string{batchfile.ColTagValue: "Sinaloa"}), lookup(), products.ValidateOptions{})
	require.False(t, res.Status)
	require.Contains(t, res.Feedback.Msg, batchfile.ColTagKey)

	res = products.ValidateRow(baseRow(nil), lookup(), products.ValidateOptions{})
	require.True(t, res.Status)
	require.Empty(t, res.Data.Product.Tags)

	res = products.ValidateRow(baseRow(map[string]string{batchfile.ColTagKey: "origen", batchfile.ColTagValue: "Sinaloa"}), lookup(), products.ValidateOptions{})
	require.True(t, res.Status)
	require.Equal(t, []products.Tag{{Key: "origen", Value: "Sinaloa"}}, res.Data.Product.Tags)
}

func TestValidateRowTaxCode(t *testing.T) {
	res := products.ValidateRow(baseRow(map[string]string{batchfile.ColTaxCode: "99999999"}), lookup(), products.ValidateOptions{})
	require.False(t, res.Status)
	require.Contains(t, res.Feedback.Msg, "99999999")

	res = products.ValidateRow(baseRow(map[string]string{batchfile.ColTaxCode: ""}), lookup(), products.ValidateOptions{SkipTaxValidation: true})
	require.True(t, res.Status, res.Feedback.Msg)
	require.False(t, res.Data.Fields.Has(products.FieldTaxCode))
}

func TestValidateRowRequirePrice(t *testing.T) {
	res := products.ValidateRow(baseRow(nil), lookup(), products.ValidateOptions{RequirePrice: true})
	require.False(t, res.Status)
	require.Contains(t, res.Feedback.Msg, batchfile.ColPrice)

	res = products.ValidateRow(baseRow(map[string]string{batchfile.ColPrice: "$1,234.50"}), lookup(), products.ValidateOptions{RequirePrice: true})
	require.True(t, res.Status, res.Feedback.Msg)
	require.Equal(t, "1234.5", res.Data.Price.String())
}

func TestValidateRowMatchesBySKUThenDescription(t *testing.T) {
	business := uuid.New()
	bySKU := products.Product{ID: uuid.New(), BusinessID: business, SKU: "TOM-1", Description: "Jitomate saladet", SellUnit: uom.KG}
	byDesc := products.Product{ID: uuid.New(), BusinessID: business, SKU: "TOM-2", Description: "Tomate", SellUnit: uom.KG}
	lk := lookup(bySKU, byDesc)

	res := products.ValidateRow(baseRow(map[string]string{batchfile.ColSKU: "TOM-1"}), lk, products.ValidateOptions{})
	require.True(t, res.Status)
	require.Equal(t, bySKU.ID, res.Data.Existing.ID)
	require.Equal(t, bySKU.ID, *res.Feedback.SupplierProductID)

	res = products.ValidateRow(baseRow(map[string]string{batchfile.ColDescription: "  TOMATE "}), lk, products.ValidateOptions{})
	require.True(t, res.Status)
	require.Equal(t, byDesc.ID, res.Data.Existing.ID)

	res = products.ValidateRow(baseRow(map[string]string{batchfile.ColSellUnit: "pieza"}), lk, products.ValidateOptions{})
	require.True(t, res.Status)
	require.Nil(t, res.Data.Existing, "description matches only within the same sell unit")
}

func TestIndexNextSKUSkipsTaken(t *testing.T) {
	idx := products.NewIndex([]products.Product{
		{ID: uuid.New(), SKU: "ALM-00002"},
		{ID: uuid.New(), SKU: "X"},
	})
	require.Equal(t, "ALM-00003", idx.NextSKU("ALM-"))
	idx.Put(products.Product{ID: uuid.New(), SKU: "ALM-00003"})
	require.Equal(t, "ALM-00004", idx.NextSKU("ALM-"))
}
