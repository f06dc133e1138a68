package cmd

import (
	"maps"
	"math"
)

// OptionValues contains parsed option values keyed by option name.
// Strings are stored as string, numbers as float64 and booleans as bool.
type OptionValues map[string]any

func (v OptionValues) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// String returns the string value of name, or "" when absent or of another type.
func (v OptionValues) String(name string) string {
	s, _ := v[name].(string)
	return s
}

func (v OptionValues) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

func (v OptionValues) Number(name string) float64 {
	n, _ := toFloat(v[name])
	return n
}

// Int returns the number value of name truncated towards zero.
func (v OptionValues) Int(name string) int {
	return int(math.Trunc(v.Number(name)))
}

func (v OptionValues) Clone() OptionValues {
	if v == nil {
		return make(OptionValues)
	}
	return maps.Clone(v)
}

// Merge returns a copy of v with every entry of other written over it.
func (v OptionValues) Merge(other OptionValues) OptionValues {
	merged := v.Clone()
	maps.Copy(merged, other)
	return merged
}

// ApplyConfigChange sets key to value and merges whatever follow-up updates the
// command proposes through ConfigChangeHandler. The input values are not modified.
func ApplyConfigChange(c Command, values OptionValues, key string, value any) OptionValues {
	updated := values.Clone()
	updated[key] = value

	handler, ok := c.(ConfigChangeHandler)
	if !ok {
		return updated
	}
	if proposed := handler.OnConfigChange(key, value, updated.Clone()); len(proposed) > 0 {
		return updated.Merge(proposed)
	}
	return updated
}
