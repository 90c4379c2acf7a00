package moderu

import (
	"bytes"
	"encoding/json"
	"io"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/reoring/moderu/i18n"
	"github.com/reoring/moderu/internal/engine"
)

// Source yields one Record from some concrete input form. Sources are
// single-shot: Record may consume an underlying reader.
type Source interface {
	Record() (Record, error)
}

// SourceOpt adjusts reader-backed sources.
type SourceOpt func(*sourceConfig)

type sourceConfig struct {
	maxBytes int64
}

// MaxBytes caps how many bytes a reader-backed source may consume. Exceeding
// the cap yields a truncated issue instead of a partial record.
func MaxBytes(n int64) SourceOpt {
	return func(c *sourceConfig) { c.maxBytes = n }
}

// FromRecord wraps an in-memory record as a Source.
func FromRecord(r Record) Source { return recordSource{r: r} }

// JSONBytes decodes a JSON object through the active JSON driver.
func JSONBytes(data []byte) Source { return jsonBytesSource{data: data} }

// JSONReader reads JSON from r through the active JSON driver.
func JSONReader(r io.Reader, opts ...SourceOpt) Source {
	return jsonReaderSource{r: r, cfg: applySourceOpts(opts)}
}

// YAMLBytes decodes a YAML mapping and normalizes it to the JSON-ish kernel.
func YAMLBytes(data []byte) Source { return yamlBytesSource{data: data} }

// YAMLReader reads YAML from r.
func YAMLReader(r io.Reader, opts ...SourceOpt) Source {
	return yamlReaderSource{r: r, cfg: applySourceOpts(opts)}
}

func applySourceOpts(opts []SourceOpt) sourceConfig {
	var cfg sourceConfig
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

type recordSource struct{ r Record }

func (s recordSource) Record() (Record, error) { return s.r, nil }

type jsonBytesSource struct{ data []byte }

func (s jsonBytesSource) Record() (Record, error) {
	return CurrentJSONDriver().DecodeRecord(s.data)
}

type jsonReaderSource struct {
	r   io.Reader
	cfg sourceConfig
}

func (s jsonReaderSource) Record() (Record, error) {
	data, err := readCapped(s.r, s.cfg.maxBytes)
	if err != nil {
		return nil, err
	}
	return CurrentJSONDriver().DecodeRecord(data)
}

type yamlBytesSource struct{ data []byte }

func (s yamlBytesSource) Record() (Record, error) { return decodeYAMLRecord(s.data) }

type yamlReaderSource struct {
	r   io.Reader
	cfg sourceConfig
}

func (s yamlReaderSource) Record() (Record, error) {
	data, err := readCapped(s.r, s.cfg.maxBytes)
	if err != nil {
		return nil, err
	}
	return decodeYAMLRecord(data)
}

func decodeYAMLRecord(data []byte) (Record, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, Issues{{Path: "/", Code: CodeParseError, Message: i18n.T(CodeParseError, nil), Cause: err}}
	}
	m, ok := engine.NormalizeValue(v).(map[string]any)
	if !ok {
		return nil, Issues{{Path: "/", Code: CodeInvalidType, Message: i18n.T(CodeInvalidType, nil), Hint: "top-level value must be a mapping"}}
	}
	return m, nil
}

func readCapped(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, Issues{{Path: "/", Code: CodeParseError, Message: i18n.T(CodeParseError, nil), Cause: err}}
		}
		return data, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, Issues{{Path: "/", Code: CodeParseError, Message: i18n.T(CodeParseError, nil), Cause: err}}
	}
	if int64(len(data)) > max {
		return nil, Issues{{Path: "/", Code: CodeTruncated, Message: i18n.T(CodeTruncated, nil), Hint: "input exceeds MaxBytes"}}
	}
	return data, nil
}

// JSONDriver is the SPI for pluggable JSON handling of records. The builtin
// default is based on encoding/json; importing the source package swaps in
// the goccy-backed driver.
type JSONDriver interface {
	Name() string
	DecodeRecord(data []byte) (Record, error)
	EncodeRecord(r Record) ([]byte, error)
}

var (
	driverMu   sync.RWMutex
	jsonDriver JSONDriver = stdJSONDriver{}
)

// SetJSONDriver replaces the process-wide JSON driver. Passing nil restores
// the builtin default.
func SetJSONDriver(d JSONDriver) {
	driverMu.Lock()
	defer driverMu.Unlock()
	if d == nil {
		jsonDriver = stdJSONDriver{}
		return
	}
	jsonDriver = d
}

// UseDefaultJSONDriver restores the builtin encoding/json driver.
func UseDefaultJSONDriver() { SetJSONDriver(nil) }

// CurrentJSONDriver returns the active JSON driver.
func CurrentJSONDriver() JSONDriver {
	driverMu.RLock()
	defer driverMu.RUnlock()
	return jsonDriver
}

// stdJSONDriver is the builtin encoding/json implementation. Numbers decode
// as json.Number so integer precision survives a round trip.
type stdJSONDriver struct{}

func (stdJSONDriver) Name() string { return "encoding/json" }

func (stdJSONDriver) DecodeRecord(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, Issues{{Path: "/", Code: CodeParseError, Message: i18n.T(CodeParseError, nil), Cause: err}}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, Issues{{Path: "/", Code: CodeInvalidType, Message: i18n.T(CodeInvalidType, nil), Hint: "top-level value must be an object"}}
	}
	return m, nil
}

func (stdJSONDriver) EncodeRecord(r Record) ([]byte, error) {
	return json.Marshal(r)
}
