package render

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is one key/value pair of a decoded record.
type Field struct {
	Key   string
	Value interface{}
}

// Record is a flat JSON object whose keys keep their wire order.
type Record []Field

// Get returns the value stored under key.
func (r Record) Get(key string) (interface{}, bool) {
	for _, field := range r {
		if field.Key == key {
			return field.Value, true
		}
	}
	return nil, false
}

// Keys lists the record keys in order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for _, field := range r {
		keys = append(keys, field.Key)
	}
	return keys
}

// DecodeRecords decodes a JSON array of objects. A single object is accepted as a one-element array.
func DecodeRecords(data []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	if trimmed[0] == '{' {
		record, err := decodeObject(dec)
		if err != nil {
			return nil, err
		}
		return []Record{record}, nil
	}

	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}
	records := make([]Record, 0)
	for dec.More() {
		record, err := decodeObject(dec)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	return records, nil
}

func decodeObject(dec *json.Decoder) (Record, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	record := Record{}
	for dec.More() {
		token, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := token.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", token)
		}
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("decode %q: %w", key, err)
		}
		record = append(record, Field{Key: key, Value: value})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return record, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	token, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := token.(json.Delim); !ok || delim != want {
		return fmt.Errorf("expected %q, got %v", want, token)
	}
	return nil
}
