package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Stats record field names.
const (
	FieldThemes  = "themes"
	FieldMotions = "motions"
	FieldConfigs = "configs"
	FieldJSBytes = "js_bytes"
)

// ErrNotObject is returned when a stats document is valid JSON but not an object.
var ErrNotObject = errors.New("stats record is not a JSON object")

// StatsRecord is the site counter document kept in the key-value store.
// Any shape is accepted; fields are only ever checked for presence.
type StatsRecord struct {
	fields map[string]any
}

// EmptyStats is the record used whenever the store has nothing usable.
func EmptyStats() StatsRecord { return StatsRecord{} }

// NewStatsRecord builds a record from already-decoded fields.
func NewStatsRecord(fields map[string]any) StatsRecord {
	return StatsRecord{fields: fields}
}

// DecodeStats parses a JSON object. Numbers keep their literal text.
func DecodeStats(data []byte) (StatsRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return StatsRecord{}, fmt.Errorf("decode stats: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return StatsRecord{}, fmt.Errorf("decode stats: %w", err)
	}
	if raw == nil {
		return StatsRecord{}, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return StatsRecord{}, ErrNotObject
	}
	return StatsRecord{fields: obj}, nil
}

// Field returns the named field. Missing keys and nulls are absent.
func (s StatsRecord) Field(name string) Value {
	return ValueOf(s.fields[name])
}

// Len is the number of top-level keys, including nulls.
func (s StatsRecord) Len() int { return len(s.fields) }

// Fields returns a copy of the decoded document.
func (s StatsRecord) Fields() map[string]any {
	out := make(map[string]any, len(s.fields))
	for k, v := range s.fields {
		out[k] = v
	}
	return out
}

// Themes is the theme count.
func (s StatsRecord) Themes() Value { return s.Field(FieldThemes) }

// Motions is the motion preset count.
func (s StatsRecord) Motions() Value { return s.Field(FieldMotions) }

// JSBytes is the shipped JavaScript size. Absent reads as zero.
func (s StatsRecord) JSBytes() Value {
	if v := s.Field(FieldJSBytes); v.Present() {
		return v
	}
	return ValueOf(json.Number("0"))
}

// Configs is the explicit configs field when present. Otherwise it is
// themes × motions when both are numeric, else absent. An explicit value
// is never checked against the product.
func (s StatsRecord) Configs() Value {
	if v := s.Field(FieldConfigs); v.Present() {
		return v
	}
	themes, okT := s.Themes().Number()
	motions, okM := s.Motions().Number()
	if !okT || !okM {
		return Absent()
	}
	return ValueOf(themes * motions)
}

// MarshalJSON writes the document back out, used by the operator CLI.
func (s StatsRecord) MarshalJSON() ([]byte, error) {
	if s.fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.fields)
}
