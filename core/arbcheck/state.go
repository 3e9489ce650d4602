package arbcheck

import "errors"

// Guard rejections. When either fires inside the assembled transaction the
// runtime rolls back every instruction, swap and tip included.
var (
	ErrUnderflow     = errors.New("arbcheck: balance underflow")
	ErrNotProfitable = errors.New("arbcheck: profit below min_profit")
	ErrRecordUnset   = errors.New("arbcheck: state record not initialized")
)

// Record mirrors the on-chain per-user state account. It has two states:
// unset (no snapshot taken yet) and balance-saved. check_profit never
// resets it, so a new save_balance must precede every meaningful check.
type Record struct {
	InitialBalance uint64
	saved          bool
}

// Saved reports whether a balance snapshot has been taken.
func (r *Record) Saved() bool {
	return r.saved
}

// SaveBalance overwrites the snapshot with the latest balance. Repeated
// calls just move the checkpoint, so the operation is idempotent per call.
func (r *Record) SaveBalance(balance uint64) {
	r.InitialBalance = balance
	r.saved = true
}

// CheckProfit validates current against the snapshot using checked
// subtraction. It mutates nothing; the record stays in the saved state.
func (r *Record) CheckProfit(current, minProfit uint64) error {
	if !r.saved {
		return ErrRecordUnset
	}
	if current < r.InitialBalance {
		return ErrUnderflow
	}
	if current-r.InitialBalance < minProfit {
		return ErrNotProfitable
	}
	return nil
}
