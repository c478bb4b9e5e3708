package merge

// CanonicalRecord is the rule-applied result for exactly one requested SKU.
// Cost and SellingPrice stay strings end to end: they are forwarded to the
// downstream API and the snapshot verbatim.
type CanonicalRecord struct {
	Sku          string
	Quantity     int
	Cost         string
	SellingPrice string
}

// DefaultRecord is what a SKU gets when the supplier returned nothing for
// it: treat as out of stock.
func DefaultRecord(sku string) CanonicalRecord {
	return CanonicalRecord{
		Sku:          sku,
		Quantity:     0,
		Cost:         "0.00",
		SellingPrice: "0",
	}
}
