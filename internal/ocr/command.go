package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// OutputMode says how a command's stdout is interpreted.
type OutputMode int

const (
	// ModeJSON expects a Fields object on stdout.
	ModeJSON OutputMode = iota
	// ModeText expects raw recognized text; fields come from the naive parser.
	ModeText
)

// CommandEngine shells out to an external OCR binary invoked as
// "<cmd> <args...> <imagePath>".
type CommandEngine struct {
	name string
	cmd  string
	args []string
	mode OutputMode
}

// NewCommandEngine parses a space-separated command line. An empty
// command line yields nil, which NewChain drops.
func NewCommandEngine(name, commandLine string, mode OutputMode) *CommandEngine {
	parts := strings.Fields(commandLine)
	if len(parts) == 0 {
		return nil
	}
	return &CommandEngine{name: name, cmd: parts[0], args: parts[1:], mode: mode}
}

func (e *CommandEngine) Name() string { return e.name }

// Extract runs the command against the image and decodes its stdout.
func (e *CommandEngine) Extract(ctx context.Context, imagePath string) (Fields, error) {
	args := append(append([]string{}, e.args...), imagePath)
	cmd := exec.CommandContext(ctx, e.cmd, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return Fields{}, fmt.Errorf("%s: %s", e.name, msg)
	}

	switch e.mode {
	case ModeJSON:
		var fields Fields
		if err := json.Unmarshal(stdout.Bytes(), &fields); err != nil {
			return Fields{}, fmt.Errorf("%s: decode output: %w", e.name, err)
		}
		if fields.Vendor == "" && fields.Amount == 0 {
			return Fields{}, fmt.Errorf("%s: empty result", e.name)
		}
		return fields, nil
	default:
		text := stdout.String()
		if strings.TrimSpace(text) == "" {
			return Fields{}, fmt.Errorf("%s: no text recognized", e.name)
		}
		return ParseText(text), nil
	}
}
