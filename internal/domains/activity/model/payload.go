package model

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EncodePayload serializes an entry for the activity:record task.
func EncodePayload(entry Entry) ([]byte, error) {
	return json.Marshal(entry)
}

// DecodePayload parses an activity:record task payload.
func DecodePayload(data []byte) (Entry, error) {
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, fmt.Errorf("decode activity payload: %w", err)
	}
	if !entry.Type.IsValid() {
		return Entry{}, fmt.Errorf("decode activity payload: unknown type %q", entry.Type)
	}
	return entry, nil
}
