package normalizer

import (
	"strconv"
	"strings"

	"costablanca/server/internal/feed"
)

// The feeds are hand-rolled XML: fields drift between names, appear as a
// single element or a list, and carry free-form text where numbers are
// expected. Every field access goes through the helpers below instead of
// assuming a shape inline.

// first returns the first decoded value for any of the given keys.
func first(rec feed.Record, keys ...string) any {
	for _, key := range keys {
		if items, ok := rec[key].([]any); ok && len(items) > 0 {
			return items[0]
		}
	}
	return nil
}

// text returns the first value for any of the given keys when it is a text
// leaf, "" otherwise.
func text(rec feed.Record, keys ...string) string {
	s, _ := first(rec, keys...).(string)
	return strings.TrimSpace(s)
}

// child returns the first value for the key when it is a nested element.
func child(rec feed.Record, key string) feed.Record {
	nested, _ := first(rec, key).(feed.Record)
	return nested
}

// list returns all values for the key, flattening the single-vs-array
// ambiguity of the source feed: one element and many decode identically.
func list(rec feed.Record, key string) []any {
	if rec == nil {
		return nil
	}
	items, _ := rec[key].([]any)
	return items
}

// optionalFloat parses a non-negative number. Empty, malformed, or negative
// input is absent, never zero: zero is a legitimate value (a flat has no
// plot) and must stay distinguishable from "the feed didn't say".
func optionalFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

// optionalCoordinate parses a signed coordinate, bounded by the axis limit
// (90 for latitude, 180 for longitude). Unlike prices and areas, a negative
// value is legitimate here: the served coast sits mostly west of the
// Greenwich meridian.
func optionalCoordinate(s string, limit float64) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < -limit || v > limit {
		return nil
	}
	return &v
}

// optionalInt is optionalFloat for whole-number fields.
func optionalInt(s string) *int {
	f := optionalFloat(s)
	if f == nil {
		return nil
	}
	v := int(*f)
	return &v
}

// truthy interprets the feed's boolean-ish encodings. Anything outside the
// known true spellings is false.
func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// optionalLabel treats empty and the literal "none" as absent; the feed uses
// "none" as a filler for views/orientation rather than as a real value.
func optionalLabel(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || strings.EqualFold(trimmed, "none") {
		return nil
	}
	return &trimmed
}
