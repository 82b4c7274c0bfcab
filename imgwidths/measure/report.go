package measure

// Report bundles everything a run produced. It is the unit handed to sinks.
type Report struct {
	RunID     string `json:"run_id"`
	URL       string `json:"url"`
	Selector  string `json:"selector"`
	CreatedAt int64  `json:"created_at"` // epoch milliseconds
	Widths    Widths `json:"widths"`
	Demand    Demand `json:"demand"`
	Plan      Plan   `json:"plan"`
}
