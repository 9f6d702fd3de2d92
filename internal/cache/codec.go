package cache

import (
	"encoding/json"
	"fmt"
)

// Encode turns an entity into its cache wire form.
func Encode(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache value: %w", err)
	}

	return data, nil
}

// DecodeInto unmarshals a cache payload into value.
func DecodeInto(data []byte, value any) error {
	if err := json.Unmarshal(data, value); err != nil {
		return fmt.Errorf("failed to decode cache payload: %w", err)
	}

	return nil
}

// Decode returns nil for empty or malformed payloads. Callers treat a nil
// result as a cache miss, not an error.
func Decode[T any](data []byte) *T {
	if len(data) == 0 {
		return nil
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return nil
	}

	return &value
}

// DecodeAll decodes a batch of payloads, dropping any that fail to decode.
func DecodeAll[T any](payloads [][]byte) []*T {
	values := make([]*T, 0, len(payloads))

	for _, payload := range payloads {
		if value := Decode[T](payload); value != nil {
			values = append(values, value)
		}
	}

	return values
}
