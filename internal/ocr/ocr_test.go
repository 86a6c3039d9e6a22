package ocr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	name   string
	fields Fields
	err    error
	calls  int
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) Extract(ctx context.Context, imagePath string) (Fields, error) {
	s.calls++
	return s.fields, s.err
}

func TestParseTextVendorFromFirstLine(t *testing.T) {
	fields := ParseText("  \n*** Mario's Pizzeria ***\nTotal: 23.50\n")
	assert.Equal(t, "Marios Pizzeria", fields.Vendor)
}

func TestParseTextPicksLargestAmount(t *testing.T) {
	fields := ParseText("Corner Shop\nItem 4.99\nItem 12.49\nTOTAL 17.48\n")
	assert.Equal(t, 17.48, fields.Amount)
}

func TestParseTextCategoryHeuristic(t *testing.T) {
	food := ParseText("Blue Restaurant\nDinner 40.00")
	assert.Equal(t, "Food", food.Category)

	other := ParseText("Hardware Store\nScrews 4.50")
	assert.Equal(t, "Other", other.Category)
}

func TestParseTextDateIsToday(t *testing.T) {
	fields := ParseText("Shop\n1.00")
	assert.Equal(t, time.Now().Format("2006-01-02"), fields.Date)
}

func TestParseTextNoAmounts(t *testing.T) {
	fields := ParseText("Shop with no totals\njust words")
	assert.Zero(t, fields.Amount)
	assert.Equal(t, "Shop with no totals", fields.Vendor)
}

func TestChainReturnsFirstSuccess(t *testing.T) {
	first := &stubEngine{name: "first", fields: Fields{Vendor: "A", Amount: 1}}
	second := &stubEngine{name: "second", fields: Fields{Vendor: "B", Amount: 2}}
	chain := NewChain(first, second)

	fields, err := chain.Extract(context.Background(), "receipt.jpg")
	require.NoError(t, err)
	assert.Equal(t, "A", fields.Vendor)
	assert.Zero(t, second.calls)
}

func TestChainFallsBackOnFailure(t *testing.T) {
	first := &stubEngine{name: "first", err: errors.New("engine offline")}
	second := &stubEngine{name: "second", fields: Fields{Vendor: "B", Amount: 2}}
	chain := NewChain(first, second)

	fields, err := chain.Extract(context.Background(), "receipt.jpg")
	require.NoError(t, err)
	assert.Equal(t, "B", fields.Vendor)
	assert.Equal(t, 1, first.calls)
}

func TestChainAllFail(t *testing.T) {
	chain := NewChain(
		&stubEngine{name: "first", err: errors.New("boom")},
		&stubEngine{name: "second", err: errors.New("also boom")},
	)

	_, err := chain.Extract(context.Background(), "receipt.jpg")
	assert.ErrorIs(t, err, ErrExtractFailed)
}

func TestChainSkipsNilEngines(t *testing.T) {
	ok := &stubEngine{name: "ok", fields: Fields{Vendor: "V", Amount: 3}}
	chain := NewChain(nil, ok)

	fields, err := chain.Extract(context.Background(), "receipt.jpg")
	require.NoError(t, err)
	assert.Equal(t, "V", fields.Vendor)
}

func TestChainNoEngines(t *testing.T) {
	_, err := NewChain().Extract(context.Background(), "receipt.jpg")
	assert.ErrorIs(t, err, ErrExtractFailed)
}

func TestChainHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := &stubEngine{name: "never", fields: Fields{Vendor: "V"}}
	_, err := NewChain(engine).Extract(ctx, "receipt.jpg")
	assert.ErrorIs(t, err, ErrExtractFailed)
	assert.Zero(t, engine.calls)
}

func TestNewCommandEngineEmptyLine(t *testing.T) {
	assert.Nil(t, NewCommandEngine("primary", "   ", ModeJSON))
}
