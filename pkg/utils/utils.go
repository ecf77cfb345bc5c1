package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var (
	// ErrReadFile is returned when a file cannot be opened or read.
	ErrReadFile = errors.New("failed to read file")
	// ErrDecodeFile is returned when a file does not hold the expected JSON.
	ErrDecodeFile = errors.New("failed to decode JSON file")
)

// ReadJSONFile reads the whole file at path and decodes it into v.
func ReadJSONFile(path string, v interface{}) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadFile, err)
	}
	if err := json.Unmarshal(content, v); err != nil {
		return fmt.Errorf("%w %s: %w", ErrDecodeFile, path, err)
	}
	return nil
}
