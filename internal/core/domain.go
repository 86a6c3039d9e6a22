package core

import (
	"crypto/rand"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultUserID is the placeholder owner of every record. The system is
// single-tenant; real user accounts would replace this.
const DefaultUserID int64 = 1

type (
	// Attachment references a stored receipt file linked to a record.
	Attachment struct {
		Filename     string `json:"filename"`
		OriginalName string `json:"originalName"`
		Path         string `json:"path"`
	}

	// Record is one expense entry in the ledger.
	Record struct {
		ID          int64        `json:"id"`
		RecordID    string       `json:"recordId"`
		UserID      int64        `json:"userId"`
		Amount      float64      `json:"amount"`
		Category    string       `json:"category"`
		Date        Date         `json:"date"`
		Vendor      string       `json:"vendor"`
		Notes       string       `json:"notes"`
		Attachments []Attachment `json:"attachments"`
		CreatedAt   time.Time    `json:"createdAt"`
	}
)

var (
	ErrMissingAmount   = errors.New("amount is required and must be positive")
	ErrMissingCategory = errors.New("category is required")
	ErrMissingDate     = errors.New("date is required")
)

// Validate checks the creation invariants: positive amount, non-empty
// category, non-zero date. Updates are not re-validated, matching the
// store contract.
func (r Record) Validate() error {
	if r.Amount <= 0 {
		return ErrMissingAmount
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrMissingCategory
	}
	if r.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}

const recordIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewRecordID builds a human-readable record identifier of the form
// EXP-<base36 millisecond timestamp>-<4 random alphanumerics>. Uniqueness
// is probabilistic, not enforced.
func NewRecordID(now time.Time) string {
	ts := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		// Degrade to a timestamp-derived suffix; collisions stay unlikely
		// within a single process.
		nano := now.UnixNano()
		for i := range suffix {
			suffix[i] = recordIDAlphabet[nano%36]
			nano /= 36
		}
	} else {
		for i := range suffix {
			suffix[i] = recordIDAlphabet[int(suffix[i])%36]
		}
	}
	return "EXP-" + ts + "-" + string(suffix)
}

// Round2 rounds a monetary value to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round1 rounds to one decimal place, used for percentage presentation.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
