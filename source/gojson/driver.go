// Package gojson provides a moderu.JSONDriver backed by goccy/go-json.
package gojson

import (
	"bytes"

	j "github.com/goccy/go-json"

	moderu "github.com/reoring/moderu"
	"github.com/reoring/moderu/i18n"
)

// Driver returns a moderu.JSONDriver backed by goccy/go-json.
func Driver() moderu.JSONDriver { return driverGoJSON{} }

type driverGoJSON struct{}

func (driverGoJSON) Name() string { return "go-json" }

func (driverGoJSON) DecodeRecord(data []byte) (moderu.Record, error) {
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, moderu.Issues{{Path: "/", Code: moderu.CodeParseError, Message: i18n.T(moderu.CodeParseError, nil), Cause: err}}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, moderu.Issues{{Path: "/", Code: moderu.CodeInvalidType, Message: i18n.T(moderu.CodeInvalidType, nil), Hint: "top-level value must be an object"}}
	}
	return m, nil
}

func (driverGoJSON) EncodeRecord(r moderu.Record) ([]byte, error) {
	return j.Marshal(r)
}
