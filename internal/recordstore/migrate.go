package recordstore

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// decodeCollection decodes a stored collection. Besides the current JSON array it accepts an
// empty value or JSON null (an empty collection) and a single object written by a version that
// stored one record (a collection of one).
func decodeCollection[T any](raw []byte) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []T{}, nil
	}
	if raw[0] == '{' {
		var one T
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		return []T{one}, nil
	}
	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}
