package batchfile

// Column names recognised in supplier uploads.
const (
	ColID              = "id"
	ColProductID       = "product_id"
	ColSKU             = "sku"
	ColUPC             = "upc"
	ColDescription     = "description"
	ColLongDescription = "long_description"
	ColSellUnit        = "sell_unit"
	ColBuyUnit         = "buy_unit"
	ColConversion      = "conversion_factor"
	ColUnitMultiple    = "unit_multiple"
	ColMinQuantity     = "min_quantity"
	ColEstimatedWeight = "estimated_weight"
	ColMaxDailyStock   = "max_daily_stock"
	ColPrice           = "product_price"
	ColTaxCode         = "sat_product_code"
	ColIVA             = "tax_iva_percent"
	ColIEPS            = "ieps_percent"
	ColTagKey          = "tag_key"
	ColTagValue        = "tag_value"
)

// PriceListColumns must all be present in a price list upload.
var PriceListColumns = []string{
	ColDescription,
	ColSellUnit,
	ColConversion,
	ColBuyUnit,
	ColUnitMultiple,
	ColMinQuantity,
	ColEstimatedWeight,
	ColMaxDailyStock,
	ColPrice,
	ColTaxCode,
	ColIVA,
}

// ProductColumns must all be present in a product-only upload.
var ProductColumns = []string{
	ColDescription,
	ColSellUnit,
	ColConversion,
	ColBuyUnit,
	ColUnitMultiple,
	ColMinQuantity,
	ColEstimatedWeight,
	ColMaxDailyStock,
	ColTaxCode,
	ColIVA,
}

// OptionalColumns may appear in either upload.
var OptionalColumns = []string{
	ColID,
	ColProductID,
	ColSKU,
	ColUPC,
	ColLongDescription,
	ColIEPS,
	ColTagKey,
	ColTagValue,
}
