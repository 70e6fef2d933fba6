package mdhtml

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateInputRejectsInvalidUTF8(t *testing.T) {
	data := []byte{0xff, 0xfe, 0xfd}
	if err := ValidateInput(data); err != ErrInvalidUTF8 {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestValidateInputRejectsBinary(t *testing.T) {
	data := append([]byte("hello"), 0x00)
	if err := ValidateInput(data); err != ErrBinaryInput {
		t.Fatalf("expected ErrBinaryInput, got %v", err)
	}
}

func TestValidateInputRejectsControlHeavyInput(t *testing.T) {
	data := []byte(strings.Repeat("ab\x01", 40))
	if err := ValidateInput(data); !errors.Is(err, ErrBinaryInput) {
		t.Fatalf("expected ErrBinaryInput, got %v", err)
	}
}

func TestValidateInputAcceptsMarkdown(t *testing.T) {
	data := []byte("# Title\n\n\tcode\r\n- item ✓\n")
	if err := ValidateInput(data); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
