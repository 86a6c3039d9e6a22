// Package query evaluates search filters and computes report aggregates
// over a record set. Client-supplied filter JSON is parsed once at the
// boundary into a strict internal form before any evaluation happens.
package query

import (
	"fmt"
	"strings"

	"spendtrack/internal/core"
)

// Field names a record attribute a condition applies to.
type Field string

const (
	FieldVendor   Field = "vendor"
	FieldNotes    Field = "notes"
	FieldRecordID Field = "recordId"
	FieldCategory Field = "category"
	FieldAmount   Field = "amount"
	FieldDate     Field = "date"
)

// Op is a canonical comparison operator. Both search UIs of the original
// front end spell these differently; parsing normalizes the spellings.
type Op string

const (
	OpEquals         Op = "equals"
	OpNotEquals      Op = "notEquals"
	OpContains       Op = "contains"
	OpNotContains    Op = "notContains"
	OpStartsWith     Op = "startsWith"
	OpEndsWith       Op = "endsWith"
	OpGreaterThan    Op = "greaterThan"
	OpGreaterOrEqual Op = "greaterThanOrEqual"
	OpLessThan       Op = "lessThan"
	OpLessOrEqual    Op = "lessThanOrEqual"
	OpBetween        Op = "between"
	OpNotBetween     Op = "notBetween"
	OpIn             Op = "in"
	OpNotIn          Op = "notIn"
)

// Mode joins a filter's conditions.
type Mode string

const (
	MatchAll Mode = "and"
	MatchAny Mode = "or"
)

// Condition is one field-level comparison. Only the value slots relevant
// to the field's type are populated.
type Condition struct {
	Field Field
	Op    Op

	Text     string
	Number   float64
	NumberTo float64
	Date     core.Date
	DateTo   core.Date
	Set      []string
}

// Filter is a parsed filter specification: a list of conditions joined by
// a single logical operator. Simple per-field filters become MatchAll.
type Filter struct {
	Mode       Mode
	Conditions []Condition
}

// IsEmpty reports whether the filter constrains nothing.
func (f Filter) IsEmpty() bool { return len(f.Conditions) == 0 }

// Apply returns the records matching the filter, preserving input order.
func (f Filter) Apply(records []core.Record) []core.Record {
	if f.IsEmpty() {
		out := make([]core.Record, len(records))
		copy(out, records)
		return out
	}
	out := []core.Record{}
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// Matches evaluates the filter against a single record.
func (f Filter) Matches(r core.Record) bool {
	if f.Mode == MatchAny {
		for _, c := range f.Conditions {
			if c.matches(r) {
				return true
			}
		}
		return false
	}
	for _, c := range f.Conditions {
		if !c.matches(r) {
			return false
		}
	}
	return true
}

func (c Condition) matches(r core.Record) bool {
	switch c.Field {
	case FieldVendor:
		return matchText(r.Vendor, c)
	case FieldNotes:
		return matchText(r.Notes, c)
	case FieldRecordID:
		return matchText(r.RecordID, c)
	case FieldCategory:
		return matchCategory(r.Category, c)
	case FieldAmount:
		return matchNumber(r.Amount, c)
	case FieldDate:
		return matchDate(r.Date, c)
	}
	return true
}

// Text comparisons are case-insensitive across all operators.
func matchText(got string, c Condition) bool {
	g := strings.ToLower(got)
	w := strings.ToLower(c.Text)
	switch c.Op {
	case OpEquals:
		return g == w
	case OpNotEquals:
		return g != w
	case OpContains:
		return strings.Contains(g, w)
	case OpNotContains:
		return !strings.Contains(g, w)
	case OpStartsWith:
		return strings.HasPrefix(g, w)
	case OpEndsWith:
		return strings.HasSuffix(g, w)
	}
	return true
}

// Category equality is case-insensitive; set membership is exact, as the
// allowed set comes from the category picker rather than free text.
func matchCategory(got string, c Condition) bool {
	switch c.Op {
	case OpEquals:
		return strings.EqualFold(got, c.Text)
	case OpNotEquals:
		return !strings.EqualFold(got, c.Text)
	case OpIn:
		return inSet(got, c.Set)
	case OpNotIn:
		return !inSet(got, c.Set)
	}
	return true
}

func inSet(v string, set []string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func matchNumber(got float64, c Condition) bool {
	switch c.Op {
	case OpEquals:
		return got == c.Number
	case OpNotEquals:
		return got != c.Number
	case OpGreaterThan:
		return got > c.Number
	case OpGreaterOrEqual:
		return got >= c.Number
	case OpLessThan:
		return got < c.Number
	case OpLessOrEqual:
		return got <= c.Number
	case OpBetween:
		return got >= c.Number && got <= c.NumberTo
	case OpNotBetween:
		return !(got >= c.Number && got <= c.NumberTo)
	}
	return true
}

// Date comparisons run at day precision; range operators include both
// bounds.
func matchDate(got core.Date, c Condition) bool {
	switch c.Op {
	case OpEquals:
		return got.Equal(c.Date)
	case OpNotEquals:
		return !got.Equal(c.Date)
	case OpGreaterThan:
		return got.After(c.Date)
	case OpGreaterOrEqual:
		return !got.Before(c.Date)
	case OpLessThan:
		return got.Before(c.Date)
	case OpLessOrEqual:
		return !got.After(c.Date)
	case OpBetween:
		return !got.Before(c.Date) && !got.After(c.DateTo)
	case OpNotBetween:
		return got.Before(c.Date) || got.After(c.DateTo)
	}
	return true
}

// normalizeOp maps the operator spellings used by the two original search
// dialogs onto canonical ops.
func normalizeOp(s string) (Op, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "equals", "equal":
		return OpEquals, nil
	case "notequals", "notequal":
		return OpNotEquals, nil
	case "contains":
		return OpContains, nil
	case "notcontains", "doesnotcontain":
		return OpNotContains, nil
	case "startswith":
		return OpStartsWith, nil
	case "endswith":
		return OpEndsWith, nil
	case "greaterthan":
		return OpGreaterThan, nil
	case "greaterthanorequal":
		return OpGreaterOrEqual, nil
	case "lessthan":
		return OpLessThan, nil
	case "lessthanorequal":
		return OpLessOrEqual, nil
	case "between":
		return OpBetween, nil
	case "notbetween":
		return OpNotBetween, nil
	case "in", "oneof":
		return OpIn, nil
	case "notin":
		return OpNotIn, nil
	}
	return "", fmt.Errorf("unknown operator %q", s)
}
