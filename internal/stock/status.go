package stock

// Status classifies a stock level relative to the low stock threshold.
type Status string

const (
	InStock    Status = "in_stock"
	LowStock   Status = "low_stock"
	OutOfStock Status = "out_of_stock"
)

// DefaultThreshold is the process-wide low stock boundary. Deployments
// override it via LOW_STOCK_THRESHOLD; call sites that care pass the
// configured value explicitly.
const DefaultThreshold = 10

// Calculate maps a raw quantity to a Status. A nil quantity means the stock
// level is unknown and counts as out of stock, as do zero and negative
// values. The threshold boundary is inclusive: qty == threshold is low_stock.
func Calculate(quantity *int, threshold int) Status {
	if quantity == nil || *quantity <= 0 {
		return OutOfStock
	}
	if *quantity > threshold {
		return InStock
	}
	return LowStock
}

// Available reports whether a variant can be purchased at all. The threshold
// is irrelevant here: anything not out of stock is available.
func Available(quantity *int) bool {
	return Calculate(quantity, DefaultThreshold) != OutOfStock
}
