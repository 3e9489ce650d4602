package arbcheck

import (
	"errors"
	"testing"
)

func TestCheckProfitTruthTable(t *testing.T) {
	cases := []struct {
		name      string
		initial   uint64
		current   uint64
		minProfit uint64
		want      error
	}{
		{"profit covers min", 1_000_000_000, 1_100_000_000, 100_000_000, nil},
		{"profit exactly min", 1_000_000_000, 1_100_000_000, 100_000_000, nil},
		{"one lamport short", 1_000_000_000, 1_100_000_000, 100_000_001, ErrNotProfitable},
		{"balance shrank", 1_000_000_000, 900_000_000, 100_000_000, ErrUnderflow},
		{"zero min profit breaks even", 1_000_000_000, 1_000_000_000, 0, nil},
		{"zero gain nonzero min", 1_000_000_000, 1_000_000_000, 1, ErrNotProfitable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var r Record
			r.SaveBalance(tc.initial)

			err := r.CheckProfit(tc.current, tc.minProfit)
			if !errors.Is(err, tc.want) {
				t.Fatalf("CheckProfit(%d, %d) with initial %d = %v, want %v",
					tc.current, tc.minProfit, tc.initial, err, tc.want)
			}
		})
	}
}

func TestCheckProfitRequiresSnapshot(t *testing.T) {
	var r Record
	if err := r.CheckProfit(100, 0); !errors.Is(err, ErrRecordUnset) {
		t.Fatalf("CheckProfit on unset record = %v, want ErrRecordUnset", err)
	}
}

func TestSaveBalanceOverwrites(t *testing.T) {
	var r Record
	r.SaveBalance(500)
	r.SaveBalance(700)

	if r.InitialBalance != 700 {
		t.Fatalf("InitialBalance = %d, want 700 after second save", r.InitialBalance)
	}
	if !r.Saved() {
		t.Fatal("record should be in saved state")
	}
}

func TestCheckProfitDoesNotMutate(t *testing.T) {
	var r Record
	r.SaveBalance(1000)

	if err := r.CheckProfit(2000, 500); err != nil {
		t.Fatalf("CheckProfit: %v", err)
	}
	if r.InitialBalance != 1000 || !r.Saved() {
		t.Fatal("successful check must leave the record untouched")
	}

	// a rejected check must not mutate either
	_ = r.CheckProfit(500, 0)
	if r.InitialBalance != 1000 || !r.Saved() {
		t.Fatal("rejected check must leave the record untouched")
	}
}
