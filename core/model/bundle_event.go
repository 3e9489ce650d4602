package model

// BundleEvent is published downstream once per submitted bundle.
type BundleEvent struct {
	BundleID   string `json:"bundle_id"`
	InputMint  string `json:"input_mint"`
	OutputMint string `json:"output_mint"`
	Amount     uint64 `json:"amount"`
	GrossDiff  uint64 `json:"gross_diff"`
	Tip        uint64 `json:"tip"`
	MinProfit  uint64 `json:"min_profit"`
	Timestamp  int64  `json:"timestamp"`
}

// CycleStatus is the last cycle's outcome, kept in memory for the status
// endpoint. One snapshot only, overwritten every cycle.
type CycleStatus struct {
	StartedAt  int64  `json:"started_at"`
	DurationMS int64  `json:"duration_ms"`
	Outcome    string `json:"outcome"`
	Reason     string `json:"reason,omitempty"`
	GrossDiff  uint64 `json:"gross_diff,omitempty"`
	Tip        uint64 `json:"tip,omitempty"`
	MinProfit  uint64 `json:"min_profit,omitempty"`
	BundleID   string `json:"bundle_id,omitempty"`
}

// Cycle outcomes.
const (
	OutcomeSubmitted = "submitted"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)
