package core

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"
)

func TestRecordValidate(t *testing.T) {
	good := Record{
		Amount:   12.50,
		Category: "Food",
		Date:     NewDate(2024, 1, 15),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Record{
		{Amount: 0, Category: "Food", Date: NewDate(2024, 1, 15)},
		{Amount: -3, Category: "Food", Date: NewDate(2024, 1, 15)},
		{Amount: 12.50, Category: "  ", Date: NewDate(2024, 1, 15)},
		{Amount: 12.50, Category: "Food"},
	}
	for i, r := range bads {
		if err := r.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestNewRecordIDPattern(t *testing.T) {
	pattern := regexp.MustCompile(`^EXP-[0-9A-Z]+-[0-9A-Z]{4}$`)
	now := time.Now()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := NewRecordID(now)
		if !pattern.MatchString(id) {
			t.Fatalf("record id %q does not match pattern", id)
		}
		seen[id] = true
	}
	if len(seen) < 2 {
		t.Fatalf("record ids show no randomness: %v", seen)
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2024, 3, 9)
	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `"2024-03-09"` {
		t.Fatalf("unexpected JSON form %s", raw)
	}

	var back Date
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d) {
		t.Fatalf("round trip mismatch: %v vs %v", back, d)
	}
}

func TestDateDayPrecision(t *testing.T) {
	// Same calendar day with different clock times must compare equal.
	a := Date{Time: time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC)}
	b := Date{Time: time.Date(2024, 5, 1, 0, 1, 0, 0, time.UTC)}
	if !a.Equal(b) {
		t.Fatalf("expected same-day equality")
	}
	if a.After(b) || b.After(a) {
		t.Fatalf("same day must not order")
	}
}

func TestEditLocked(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		age    time.Duration
		locked bool
	}{
		{0, false},
		{time.Hour, false},
		{48 * time.Hour, false}, // boundary stays editable
		{48*time.Hour + time.Second, true},
		{49 * time.Hour, true},
	}
	for i, tc := range cases {
		if got := EditLocked(now.Add(-tc.age), now); got != tc.locked {
			t.Fatalf("case %d: age %v locked=%v, want %v", i, tc.age, got, tc.locked)
		}
	}
	if EditLocked(time.Time{}, now) {
		t.Fatalf("zero createdAt must never lock")
	}
}

func TestRound2(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{10.344, 10.34},
		{10.346, 10.35},
		{60.0, 60.0},
		{0, 0},
	}
	for i, tc := range cases {
		if got := Round2(tc.in); got != tc.want {
			t.Fatalf("case %d: Round2(%v)=%v, want %v", i, tc.in, got, tc.want)
		}
	}
}
