package sdd

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"
)

// MaxFileBytes caps ReadFile.
const MaxFileBytes = 10 << 20

var (
	ErrNotDirectory = errors.New("not a directory")
	ErrNotFile      = errors.New("not a regular file")
	ErrFileTooLarge = errors.New("file too large")
	ErrNotText      = errors.New("file is not valid UTF-8")
)

// ReadFile returns the contents of a UTF-8 text file no larger than MaxFileBytes.
func ReadFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("read file: %s: %w", path, ErrNotFile)
	}
	if info.Size() > MaxFileBytes {
		return "", fmt.Errorf("read file: %s (%d bytes): %w", path, info.Size(), ErrFileTooLarge)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("read file: %s: %w", path, ErrNotText)
	}
	return string(data), nil
}
