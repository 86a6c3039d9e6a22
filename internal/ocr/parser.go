package ocr

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var amountPattern = regexp.MustCompile(`\d+\.\d{2}`)

// ParseText pulls fields out of raw receipt text with plain heuristics:
// vendor from the first non-empty line, amount as the largest decimal
// figure found (totals sit below line items), today's date, and a
// keyword guess for the category.
func ParseText(text string) Fields {
	fields := Fields{
		Date:     time.Now().Format("2006-01-02"),
		Category: "Other",
		RawText:  text,
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			fields.Vendor = cleanVendor(line)
			break
		}
	}

	for _, match := range amountPattern.FindAllString(text, -1) {
		if v, err := strconv.ParseFloat(match, 64); err == nil && v > fields.Amount {
			fields.Amount = v
		}
	}

	lower := strings.ToLower(text)
	if strings.Contains(lower, "restaurant") || strings.Contains(lower, "food") {
		fields.Category = "Food"
	}

	return fields
}

func cleanVendor(line string) string {
	var b strings.Builder
	for _, r := range line {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// TextParserEngine wraps ParseText as a last-resort Engine reading the
// image as if it were a text dump. It never touches the image bytes and
// only exists so a chain always has a floor when no command is configured.
type TextParserEngine struct {
	read func(path string) (string, error)
}

// NewTextParserEngine builds the fallback engine over a reader function,
// letting callers decide how image text is obtained.
func NewTextParserEngine(read func(path string) (string, error)) *TextParserEngine {
	return &TextParserEngine{read: read}
}

func (e *TextParserEngine) Name() string { return "naive-parser" }

func (e *TextParserEngine) Extract(ctx context.Context, imagePath string) (Fields, error) {
	if e.read == nil {
		return Fields{}, fmt.Errorf("naive-parser: no text source")
	}
	text, err := e.read(imagePath)
	if err != nil {
		return Fields{}, fmt.Errorf("naive-parser: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return Fields{}, fmt.Errorf("naive-parser: empty input")
	}
	return ParseText(text), nil
}
