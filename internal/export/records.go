package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"organizer/internal/records"
)

// RecordsJSON renders records as indented JSON suitable for re-import.
func RecordsJSON(items []records.Record) ([]byte, error) {
	return json.MarshalIndent(items, "", "  ")
}

// ImportRecords parses an uploaded records file. JSON only; ids are
// cleared so the store assigns fresh ones.
func ImportRecords(filename string, data []byte) ([]records.Record, error) {
	ext := strings.ToLower(strings.TrimPrefix(filenameExt(filename), "."))
	if ext != "json" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	var items []records.Record
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("export: parse json records: %w", err)
	}
	for i := range items {
		items[i].ID = 0
	}
	return items, nil
}
