package mdhtml

import (
	"fmt"
	"io"
)

// ConvertRequest configures Convert.
type ConvertRequest struct {
	Reader  io.Reader
	Writer  io.Writer
	Options []RenderOption
}

// Convert reads a whole Markdown document from Reader and writes HTML to
// Writer. Input must be valid UTF-8 text no larger than MaxInputBytes.
func Convert(req ConvertRequest) error {
	if req.Reader == nil {
		return fmt.Errorf("convert: reader is nil")
	}
	if req.Writer == nil {
		return fmt.Errorf("convert: writer is nil")
	}
	src, err := io.ReadAll(io.LimitReader(req.Reader, MaxInputBytes+1))
	if err != nil {
		return fmt.Errorf("convert: read: %w", err)
	}
	if len(src) > MaxInputBytes {
		return fmt.Errorf("convert: %w", ErrInputTooLarge)
	}
	if err := ValidateInput(src); err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	cfg := newRenderConfig(req.Options)
	if _, err := io.WriteString(req.Writer, cfg.render(string(src))); err != nil {
		return fmt.Errorf("convert: write: %w", err)
	}
	return nil
}
