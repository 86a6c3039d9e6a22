// Package ocr extracts expense fields from receipt images through a
// chain of external engines with a naive text parser as the floor.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	applog "spendtrack/internal/log"
)

// ErrExtractFailed signals that no engine produced usable fields.
var ErrExtractFailed = errors.New("ocr extraction failed")

// Fields is the structured result of a receipt scan. Date uses the
// wire format "2006-01-02".
type Fields struct {
	Vendor     string  `json:"vendor"`
	Amount     float64 `json:"amount"`
	Date       string  `json:"date"`
	Category   string  `json:"category"`
	RawText    string  `json:"rawText,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Engine extracts fields from the image stored at imagePath.
type Engine interface {
	Name() string
	Extract(ctx context.Context, imagePath string) (Fields, error)
}

// Chain tries engines in order and returns the first success.
type Chain struct {
	engines []Engine
	logger  *slog.Logger
}

// NewChain builds a chain over the given engines; nil entries are skipped.
func NewChain(engines ...Engine) *Chain {
	c := &Chain{logger: applog.For(applog.ComponentOCR)}
	for _, e := range engines {
		if e != nil {
			c.engines = append(c.engines, e)
		}
	}
	return c
}

// Extract runs the chain. Every engine failing collapses into a single
// ErrExtractFailed; a partial result is never returned as success.
func (c *Chain) Extract(ctx context.Context, imagePath string) (Fields, error) {
	if len(c.engines) == 0 {
		return Fields{}, fmt.Errorf("%w: no engines configured", ErrExtractFailed)
	}
	var lastErr error
	for _, e := range c.engines {
		if err := ctx.Err(); err != nil {
			return Fields{}, fmt.Errorf("%w: %v", ErrExtractFailed, err)
		}
		fields, err := e.Extract(ctx, imagePath)
		if err == nil {
			return fields, nil
		}
		lastErr = err
		c.logger.Warn("engine failed, trying next", "engine", e.Name(), "error", err)
	}
	return Fields{}, fmt.Errorf("%w: %v", ErrExtractFailed, lastErr)
}
