package moola

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Record is one expense as returned by the Moola API. The payload is
// semi-structured; every field is read defensively through the accessors
// below, which never panic on absent or oddly-typed values.
type Record map[string]any

// Str returns the stringified value for key, or "" when absent/null.
// Numbers are rendered without a trailing decimal part when integral, so a
// JSON 2 and "2" compare equal against configured status sets.
func (r Record) Str(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// Decimal parses the value for key as a decimal amount, returning zero for
// absent or unparseable values.
func (r Record) Decimal(key string) decimal.Decimal {
	v, ok := r[key]
	if !ok || v == nil {
		return decimal.Zero
	}
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t)
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// Truthy reports whether the value for key is set and truthy, used for the
// settlement and cleared flags.
func (r Record) Truthy(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		s := strings.TrimSpace(t)
		return s != "" && s != "0" && !strings.EqualFold(s, "false")
	default:
		return true
	}
}

// Has reports whether key is present with a non-null value.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// ID returns the record's expense id, stringified.
func (r Record) ID() string {
	return r.Str("id")
}

// Tag is a normalized remote tag.
type Tag struct {
	Name      string
	ValueID   string
	ValueName string
}

// Tags normalizes the record's tag list. Payloads carry tags under either
// "tags" or "tagList", with two naming variants per field.
func (r Record) Tags() []Tag {
	raw, ok := r["tags"].([]any)
	if !ok {
		raw, ok = r["tagList"].([]any)
		if !ok {
			return nil
		}
	}

	tags := make([]Tag, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		t := Record(m)
		tag := Tag{
			Name:      firstNonEmpty(t.Str("tagName"), t.Str("name")),
			ValueID:   firstNonEmpty(t.Str("tagValueId"), t.Str("valueId")),
			ValueName: firstNonEmpty(t.Str("tagValueName"), t.Str("valueName")),
		}
		tags = append(tags, tag)
	}
	return tags
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
