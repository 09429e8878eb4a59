// Package codec converts structured values to the string form kept by the
// storage engine and back.
//
// Decoding never fails loudly: a missing value yields Absent and a malformed
// one yields Corrupt, both of which read as "no value" through Result.Get.
package codec

import (
	stdjson "encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// TimeLayout is the millisecond precision UTC form used for persisted timestamps
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Status describes the outcome of a decode
type Status int

const (
	// Absent means nothing was stored
	Absent Status = iota
	// Present means a value was decoded
	Present
	// Corrupt means something was stored but could not be decoded
	Corrupt
)

func (s Status) String() string {
	switch s {
	case Absent:
		return "absent"
	case Present:
		return "present"
	case Corrupt:
		return "corrupt"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the explicit outcome of a decode
type Result struct {
	Status Status
	Value  any
	Err    error
}

// OK reports whether a value was decoded
func (r Result) OK() bool {
	return r.Status == Present
}

// Get returns the decoded value, or nil when absent or corrupt
func (r Result) Get() any {
	if r.Status != Present {
		return nil
	}
	return r.Value
}

// Encode serializes v as JSON
func Encode(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Decode parses a raw engine value into a generic value
// (maps, slices, strings, float64, bool or nil)
func Decode(raw any) Result {
	var v any
	res := DecodeInto(raw, &v)
	if res.Status == Present {
		res.Value = v
	}
	return res
}

// DecodeInto parses a raw engine value into out, which must be a pointer
func DecodeInto(raw any, out any) Result {
	var text string
	switch v := raw.(type) {
	case nil:
		return Result{Status: Absent}
	case string:
		text = v
	case []byte:
		text = string(v)
	case bool, int, int32, int64, float32, float64:
		// native engine scalars are already decoded; re-encode to honour out's type
		data, err := json.Marshal(v)
		if err != nil {
			return Result{Status: Corrupt, Err: fmt.Errorf("failed to re-encode stored %T: %w", raw, err)}
		}
		text = string(data)
	default:
		return Result{Status: Corrupt, Err: fmt.Errorf("unexpected stored type %T", raw)}
	}

	if strings.TrimSpace(text) == "" {
		return Result{Status: Absent}
	}

	// go-json accepts some non-JSON input such as leading zeros, so validate strictly first
	if !stdjson.Valid([]byte(text)) {
		return Result{Status: Corrupt, Err: fmt.Errorf("stored value is not valid JSON")}
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return Result{Status: Corrupt, Err: fmt.Errorf("failed to unmarshal stored value: %w", err)}
	}
	return Result{Status: Present, Value: out}
}

// EncodeTime serializes t as a JSON string in TimeLayout
func EncodeTime(t time.Time) (string, error) {
	return Encode(t.UTC().Format(TimeLayout))
}

// DecodeTime rebuilds a time from either the TimeLayout string form or a
// number of milliseconds since the Unix epoch
func DecodeTime(raw any) (time.Time, Result) {
	res := Decode(raw)
	if res.Status != Present {
		return time.Time{}, res
	}

	var t time.Time
	switch v := res.Value.(type) {
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, Result{Status: Corrupt, Err: fmt.Errorf("failed to parse timestamp %q: %w", v, err)}
		}
		t = parsed
	case float64:
		t = time.UnixMilli(int64(v))
	default:
		return time.Time{}, Result{Status: Corrupt, Err: fmt.Errorf("unexpected timestamp type %T", res.Value)}
	}

	t = t.UTC()
	return t, Result{Status: Present, Value: t}
}
