package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ordered is a table of rows keyed by id that remembers insertion order.
// It persists as a JSON object whose keys appear in that order, so a
// reload lists rows exactly as they were written.
type ordered[T any] struct {
	keys []string
	rows map[string]T
}

func newOrdered[T any]() *ordered[T] {
	return &ordered[T]{rows: make(map[string]T)}
}

// set inserts or replaces a row. Replacing keeps the original position.
func (o *ordered[T]) set(id string, row T) {
	if _, ok := o.rows[id]; !ok {
		o.keys = append(o.keys, id)
	}
	o.rows[id] = row
}

func (o *ordered[T]) get(id string) (T, bool) {
	row, ok := o.rows[id]
	return row, ok
}

func (o *ordered[T]) len() int {
	return len(o.keys)
}

// each visits rows in insertion order.
func (o *ordered[T]) each(fn func(id string, row T)) {
	for _, id := range o.keys {
		fn(id, o.rows[id])
	}
}

// MarshalJSON writes the rows as an insertion-ordered JSON object.
func (o *ordered[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(o.rows[id])
		if err != nil {
			return nil, fmt.Errorf("row %s: %w", id, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping the key order of the input.
func (o *ordered[T]) UnmarshalJSON(data []byte) error {
	o.keys = nil
	o.rows = make(map[string]T)

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected string key, got %v", tok)
		}
		var row T
		if err := dec.Decode(&row); err != nil {
			return fmt.Errorf("row %s: %w", id, err)
		}
		o.set(id, row)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
