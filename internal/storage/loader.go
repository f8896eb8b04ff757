package storage

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadRecordFromFile reads a raw property record from a JSON file.
func LoadRecordFromFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record file: %w", err)
	}
	if !json.Valid(b) {
		return nil, fmt.Errorf("record file %s: invalid JSON", path)
	}
	return b, nil
}
