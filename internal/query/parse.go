package query

import (
	"encoding/json"
	"fmt"
	"strings"

	"spendtrack/internal/core"
)

// wireCondition is one field-level condition on the wire, shared by the
// simple per-field form and the compound form.
type wireCondition struct {
	Field     string `json:"field"`
	Condition string `json:"condition"`
	Value     any    `json:"value"`
	ValueTo   any    `json:"valueTo"`
}

// wireFilter covers both request shapes:
//
//	{"vendor": {...}, "category": {...}, "dateRange": {"from":..,"to":..}}
//	{"logicalOperator": "or", "conditions": [{"field":..,"condition":..,"value":..}]}
type wireFilter struct {
	LogicalOperator string          `json:"logicalOperator"`
	Conditions      []wireCondition `json:"conditions"`

	Vendor    *wireCondition `json:"vendor"`
	Category  *wireCondition `json:"category"`
	Amount    *wireCondition `json:"amount"`
	Notes     *wireCondition `json:"notes"`
	RecordID  *wireCondition `json:"recordId"`
	DateRange *struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"dateRange"`
}

// Parse decodes a filter request body. An empty body yields an empty
// filter that matches everything.
func Parse(raw []byte) (Filter, error) {
	if len(raw) == 0 {
		return Filter{Mode: MatchAll}, nil
	}
	var w wireFilter
	if err := json.Unmarshal(raw, &w); err != nil {
		return Filter{}, fmt.Errorf("decode filter: %w", err)
	}

	if w.LogicalOperator != "" || len(w.Conditions) > 0 {
		return parseCompound(w)
	}
	return parseSimple(w)
}

func parseCompound(w wireFilter) (Filter, error) {
	mode := MatchAll
	switch strings.ToLower(w.LogicalOperator) {
	case "", "and":
	case "or":
		mode = MatchAny
	default:
		return Filter{}, fmt.Errorf("unknown logical operator %q", w.LogicalOperator)
	}

	f := Filter{Mode: mode}
	for i, wc := range w.Conditions {
		c, err := buildCondition(Field(wc.Field), wc)
		if err != nil {
			return Filter{}, fmt.Errorf("condition %d: %w", i, err)
		}
		f.Conditions = append(f.Conditions, c)
	}
	return f, nil
}

func parseSimple(w wireFilter) (Filter, error) {
	f := Filter{Mode: MatchAll}

	add := func(field Field, wc *wireCondition, defaultOp string) error {
		if wc == nil {
			return nil
		}
		if wc.Condition == "" {
			wc.Condition = defaultOp
		}
		c, err := buildCondition(field, *wc)
		if err != nil {
			return fmt.Errorf("%s filter: %w", field, err)
		}
		f.Conditions = append(f.Conditions, c)
		return nil
	}

	if err := add(FieldVendor, w.Vendor, "contains"); err != nil {
		return Filter{}, err
	}
	if err := add(FieldNotes, w.Notes, "contains"); err != nil {
		return Filter{}, err
	}
	if err := add(FieldRecordID, w.RecordID, "contains"); err != nil {
		return Filter{}, err
	}
	if err := add(FieldCategory, w.Category, "oneOf"); err != nil {
		return Filter{}, err
	}
	if err := add(FieldAmount, w.Amount, "equals"); err != nil {
		return Filter{}, err
	}

	if w.DateRange != nil && (w.DateRange.From != "" || w.DateRange.To != "") {
		from, err := core.ParseDate(w.DateRange.From)
		if err != nil {
			return Filter{}, fmt.Errorf("dateRange.from: %w", err)
		}
		to, err := core.ParseDate(w.DateRange.To)
		if err != nil {
			return Filter{}, fmt.Errorf("dateRange.to: %w", err)
		}
		f.Conditions = append(f.Conditions, Condition{
			Field: FieldDate, Op: OpBetween, Date: from, DateTo: to,
		})
	}

	return f, nil
}

func buildCondition(field Field, wc wireCondition) (Condition, error) {
	op, err := normalizeOp(wc.Condition)
	if err != nil {
		return Condition{}, err
	}
	c := Condition{Field: field, Op: op}

	switch field {
	case FieldVendor, FieldNotes, FieldRecordID:
		s, ok := wc.Value.(string)
		if !ok {
			return Condition{}, fmt.Errorf("%s wants a string value", field)
		}
		c.Text = s

	case FieldCategory:
		switch v := wc.Value.(type) {
		case string:
			if op == OpIn || op == OpNotIn {
				c.Set = []string{v}
			} else {
				c.Text = v
			}
		case []any:
			if op != OpIn && op != OpNotIn {
				op = OpIn
				c.Op = op
			}
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return Condition{}, fmt.Errorf("category set wants strings")
				}
				c.Set = append(c.Set, s)
			}
		default:
			return Condition{}, fmt.Errorf("category wants a string or string list")
		}

	case FieldAmount:
		n, ok := toFloat(wc.Value)
		if !ok {
			return Condition{}, fmt.Errorf("amount wants a number")
		}
		c.Number = n
		if op == OpBetween || op == OpNotBetween {
			to, ok := toFloat(wc.ValueTo)
			if !ok {
				return Condition{}, fmt.Errorf("amount range wants valueTo")
			}
			c.NumberTo = to
		}

	case FieldDate:
		s, ok := wc.Value.(string)
		if !ok {
			return Condition{}, fmt.Errorf("date wants a YYYY-MM-DD string")
		}
		if c.Date, err = core.ParseDate(s); err != nil {
			return Condition{}, err
		}
		if op == OpBetween || op == OpNotBetween {
			sTo, ok := wc.ValueTo.(string)
			if !ok {
				return Condition{}, fmt.Errorf("date range wants valueTo")
			}
			if c.DateTo, err = core.ParseDate(sTo); err != nil {
				return Condition{}, err
			}
		}

	default:
		return Condition{}, fmt.Errorf("unknown field %q", field)
	}

	return c, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		var f float64
		_, err := fmt.Sscanf(strings.TrimSpace(n), "%g", &f)
		return f, err == nil
	}
	return 0, false
}
