package supplier

// StockRecord is one product entry from the supplier's paginated products
// endpoint. Numeric fields stay raw strings here; the merge stage owns the
// defensive parsing rules.
type StockRecord struct {
	Sku      string
	StockQty string
	Cost     string
	Price    string
}
