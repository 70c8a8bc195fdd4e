// Package extract turns the raw text returned by the extraction model into a
// validated, normalized outcome. Parsing and validation happen here, at the
// boundary: no downstream component ever sees the untyped response.
package extract

import (
	"encoding/json"
	"fmt"
)

// Result is the tagged outcome of one extraction call. When OK is true all
// list fields are non-nil (possibly empty); when false only Err is set.
type Result struct {
	OK          bool
	Title       string
	Summary     string
	Tags        []string
	Bullets     []string
	ActionItems []string
	Err         string
}

// requiredKeys are checked in this order so failure messages are stable.
var requiredKeys = []string{"title", "summary", "tags", "bullets"}

// Failure builds a failed Result carrying the given message.
func Failure(msg string) Result {
	return Result{Err: msg}
}

// Parse decodes a model response as a JSON object and validates it. Any
// parse or validation problem yields a Failure, never an error: a bad
// response from the model is an ordinary outcome, not an exception.
func Parse(raw string) Result {
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return Failure(fmt.Sprintf("response is not a JSON object: %v", err))
	}
	return Validate(data)
}

// Validate enforces the required-field contract on a parsed response and
// normalizes the list fields. The four required keys are title, summary,
// tags, and bullets; action_items is optional and defaults to empty.
func Validate(data map[string]any) Result {
	for _, key := range requiredKeys {
		if _, ok := data[key]; !ok {
			return Failure(fmt.Sprintf("missing key in JSON: %s", key))
		}
	}

	return Result{
		OK:          true,
		Title:       stringify(data["title"]),
		Summary:     stringify(data["summary"]),
		Tags:        coerceList(data["tags"]),
		Bullets:     coerceList(data["bullets"]),
		ActionItems: coerceList(data["action_items"]),
	}
}

// coerceList applies the normalization rule uniformly: null or absent values
// become an empty sequence, JSON arrays become element-wise string sequences,
// and any other non-null scalar becomes a single-element sequence. It never
// fails, whatever shape the model returned.
func coerceList(v any) []string {
	switch val := v.(type) {
	case nil:
		return []string{}
	case []any:
		out := make([]string, len(val))
		for i, e := range val {
			out[i] = stringify(e)
		}
		return out
	default:
		return []string{stringify(val)}
	}
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprintf("%v", s)
	}
}
