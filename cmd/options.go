package cmd

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// OptionType is the value type of an option.
type OptionType string

const (
	TypeString  OptionType = "string"
	TypeBoolean OptionType = "boolean"
	TypeNumber  OptionType = "number"
)

// OptionDef describes one option a command accepts.
type OptionDef struct {
	Name     string     `json:"name"`              // Long name without dashes (e.g. "log-level")
	Type     OptionType `json:"type"`              // Empty means TypeString
	Required bool       `json:"required"`          // Must be provided on the command line
	Default  any        `json:"default,omitempty"` // Used when the option is absent
	Alias    string     `json:"alias,omitempty"`   // Short form without dash (e.g. "l")
	Enum     []string   `json:"enum,omitempty"`    // Closed set of allowed string values
	Min      *float64   `json:"min,omitempty"`
	Max      *float64   `json:"max,omitempty"`

	// CaseInsensitive folds Enum matching; the stored value is the declared member
	CaseInsensitive bool `json:"caseInsensitive,omitempty"`

	// Presentation hints. The parser ignores them.
	Label       string `json:"label,omitempty"`
	Description string `json:"description"`
	Group       string `json:"group,omitempty"`
	Order       int    `json:"order,omitempty"`
}

// Bound returns a pointer to v for use as OptionDef.Min or OptionDef.Max.
func Bound(v float64) *float64 {
	return &v
}

// Kind returns the option type, treating an empty type as string.
func (d *OptionDef) Kind() OptionType {
	if d.Type == "" {
		return TypeString
	}
	return d.Type
}

func (d *OptionDef) matchEnum(value string) (string, bool) {
	for _, member := range d.Enum {
		if member == value || (d.CaseInsensitive && strings.EqualFold(member, value)) {
			return member, true
		}
	}
	return "", false
}

func (d *OptionDef) inBounds(v float64) bool {
	if d.Min != nil && v < *d.Min {
		return false
	}
	if d.Max != nil && v > *d.Max {
		return false
	}
	return true
}

// OptionSchema is the ordered list of options a command accepts.
// Order only matters for help output.
type OptionSchema []OptionDef

func (s OptionSchema) Lookup(name string) (*OptionDef, bool) {
	for i := range s {
		if s[i].Name == name {
			return &s[i], true
		}
	}
	return nil, false
}

func (s OptionSchema) LookupAlias(alias string) (*OptionDef, bool) {
	if alias == "" {
		return nil, false
	}
	for i := range s {
		if s[i].Alias == alias {
			return &s[i], true
		}
	}
	return nil, false
}

// Validate checks the schema invariants: unique names and aliases, defaults that
// match their type and enum, and numeric bounds with min <= max.
func (s OptionSchema) Validate() error {
	names := make(map[string]bool, len(s))
	aliases := make(map[string]bool, len(s))

	for i := range s {
		def := &s[i]
		if def.Name == "" || strings.HasPrefix(def.Name, "-") {
			return fmt.Errorf("%w: invalid option name %q", ErrInvalidSchema, def.Name)
		}
		if names[def.Name] {
			return fmt.Errorf("%w: duplicate option %q", ErrInvalidSchema, def.Name)
		}
		names[def.Name] = true

		if def.Alias != "" {
			if strings.HasPrefix(def.Alias, "-") || aliases[def.Alias] {
				return fmt.Errorf("%w: invalid or duplicate alias %q", ErrInvalidSchema, def.Alias)
			}
			aliases[def.Alias] = true
		}

		if err := def.validate(); err != nil {
			return fmt.Errorf("%w: option %q: %v", ErrInvalidSchema, def.Name, err)
		}
	}
	return nil
}

func (d *OptionDef) validate() error {
	switch d.Kind() {
	case TypeString:
		if d.Min != nil || d.Max != nil {
			return fmt.Errorf("bounds require type number")
		}
		if d.Default == nil {
			return nil
		}
		value, ok := d.Default.(string)
		if !ok {
			return fmt.Errorf("default %v is not a string", d.Default)
		}
		if len(d.Enum) > 0 {
			if _, ok := d.matchEnum(value); !ok {
				return fmt.Errorf("default %q is not one of %s", value, strings.Join(d.Enum, ", "))
			}
		}

	case TypeBoolean:
		if len(d.Enum) > 0 || d.Min != nil || d.Max != nil {
			return fmt.Errorf("enum and bounds are not allowed on booleans")
		}
		if _, ok := d.Default.(bool); d.Default != nil && !ok {
			return fmt.Errorf("default %v is not a boolean", d.Default)
		}

	case TypeNumber:
		if len(d.Enum) > 0 {
			return fmt.Errorf("enum requires type string")
		}
		if d.Min != nil && d.Max != nil && *d.Min > *d.Max {
			return fmt.Errorf("min %v is greater than max %v", *d.Min, *d.Max)
		}
		if d.Default == nil {
			return nil
		}
		value, ok := toFloat(d.Default)
		if !ok {
			return fmt.Errorf("default %v is not a number", d.Default)
		}
		if !d.inBounds(value) {
			return fmt.Errorf("default %v is out of bounds", d.Default)
		}

	default:
		return fmt.Errorf("unknown type %q", d.Type)
	}
	return nil
}

// defaultValue returns the default normalised to the parser's value types.
// Enum defaults are stored as the declared member.
func (d *OptionDef) defaultValue() any {
	switch d.Kind() {
	case TypeNumber:
		if v, ok := toFloat(d.Default); ok {
			return v
		}
	case TypeString:
		if v, ok := d.Default.(string); ok && len(d.Enum) > 0 {
			if member, ok := d.matchEnum(v); ok {
				return member
			}
		}
	}
	return d.Default
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, !math.IsNaN(v)
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

// Defaults returns the values every option with a default would take.
func (s OptionSchema) Defaults() OptionValues {
	values := make(OptionValues)
	for i := range s {
		if s[i].Default != nil {
			values[s[i].Name] = s[i].defaultValue()
		}
	}
	return values
}

// Sorted returns the schema ordered by the Order hint, keeping declaration order for ties.
func (s OptionSchema) Sorted() OptionSchema {
	sorted := slices.Clone(s)
	slices.SortStableFunc(sorted, func(a, b OptionDef) int {
		return a.Order - b.Order
	})
	return sorted
}
