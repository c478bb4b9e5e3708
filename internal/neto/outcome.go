package neto

// UpdateOutcome is the per-SKU result of one downstream update attempt.
// Outcomes exist for diagnostics within a run only, they are not persisted
// beyond the run log.
type UpdateOutcome struct {
	Sku        string
	Success    bool
	StatusCode int
	Detail     string
}
