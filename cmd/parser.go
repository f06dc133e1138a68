package cmd

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parser parses command-line tokens against an option schema.
type Parser struct {
	schema    OptionSchema
	allowArgs bool
}

// NewParser creates a parser for schema. With allowArgs, positional words are
// returned to the caller instead of being rejected.
func NewParser(schema OptionSchema, allowArgs bool) *Parser {
	return &Parser{
		schema:    schema,
		allowArgs: allowArgs,
	}
}

// Parse parses tokens against schema and rejects any positional word.
func Parse(schema OptionSchema, tokens []string) (OptionValues, error) {
	values, _, err := NewParser(schema, false).Parse(tokens)
	return values, err
}

func (p *Parser) Parse(tokens []string) (OptionValues, []string, error) {
	values, args, err := p.scan(tokens)
	if err != nil {
		return nil, nil, err
	}

	if len(args) > 0 && !p.allowArgs {
		return nil, nil, &ValidationError{Token: args[0], Reason: "unexpected argument"}
	}

	for i := range p.schema {
		def := &p.schema[i]
		if def.Required && !values.Has(def.Name) {
			return nil, nil, &ValidationError{Option: def.Name, Reason: "is required"}
		}
	}
	p.applyDefaults(values)

	return values, args, nil
}

// ParsePartial parses tokens without checking required options and ignores
// positional words. It is meant for prefilling forms.
func (p *Parser) ParsePartial(tokens []string) (OptionValues, error) {
	values, _, err := p.scan(tokens)
	if err != nil {
		return nil, err
	}
	p.applyDefaults(values)
	return values, nil
}

func (p *Parser) applyDefaults(values OptionValues) {
	for i := range p.schema {
		def := &p.schema[i]
		if !values.Has(def.Name) && def.Default != nil {
			values[def.Name] = def.defaultValue()
		}
	}
}

func (p *Parser) scan(tokens []string) (OptionValues, []string, error) {
	values := make(OptionValues)
	var args []string

	for i := 0; i < len(tokens); i++ {
		token := tokens[i]

		if token == "--" {
			args = append(args, tokens[i+1:]...)
			break
		}

		def, value, hasValue, err := p.lookup(token)
		if err != nil {
			return nil, nil, err
		}
		if def == nil {
			args = append(args, token)
			continue
		}

		if def.Kind() == TypeBoolean {
			if !hasValue {
				value, hasValue = "true", true
			}
		} else if !hasValue {
			if i+1 >= len(tokens) || !p.acceptsValue(def, tokens[i+1]) {
				return nil, nil, &ValidationError{Option: def.Name, Token: token, Reason: "requires a value"}
			}
			value = tokens[i+1]
			i++
		}

		parsed, err := convert(def, value)
		if err != nil {
			return nil, nil, err
		}
		values[def.Name] = parsed
	}
	return values, args, nil
}

// lookup resolves a flag token to its definition. A nil definition without error
// marks a positional word.
func (p *Parser) lookup(token string) (*OptionDef, string, bool, error) {
	if name, ok := strings.CutPrefix(token, "--"); ok {
		key, value, hasValue := strings.Cut(name, "=")
		if def, ok := p.schema.Lookup(key); ok {
			return def, value, hasValue, nil
		}
		if negated, ok := strings.CutPrefix(key, "no-"); ok && !hasValue {
			if def, ok := p.schema.Lookup(negated); ok && def.Kind() == TypeBoolean {
				return def, "false", true, nil
			}
		}
		return nil, "", false, &ValidationError{Token: token, Reason: "unknown option"}
	}

	if alias, ok := strings.CutPrefix(token, "-"); ok && alias != "" && !isNumber(token) {
		key, value, hasValue := strings.Cut(alias, "=")
		if def, ok := p.schema.LookupAlias(key); ok {
			return def, value, hasValue, nil
		}
		return nil, "", false, &ValidationError{Token: token, Reason: "unknown option"}
	}

	return nil, "", false, nil
}

// acceptsValue reports whether next may be consumed as the value of def.
func (p *Parser) acceptsValue(def *OptionDef, next string) bool {
	if !strings.HasPrefix(next, "-") {
		return true
	}
	return def.Kind() == TypeNumber && isNumber(next)
}

func convert(def *OptionDef, raw string) (any, error) {
	switch def.Kind() {
	case TypeBoolean:
		b, ok := parseBool(raw)
		if !ok {
			return nil, &ValidationError{Option: def.Name, Token: raw, Reason: fmt.Sprintf("invalid boolean %q", raw)}
		}
		return b, nil

	case TypeNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, &ValidationError{Option: def.Name, Token: raw, Reason: fmt.Sprintf("invalid number %q", raw)}
		}
		if !def.inBounds(n) {
			return nil, &ValidationError{Option: def.Name, Token: raw, Reason: fmt.Sprintf("%v is out of range %s", n, formatRange(def))}
		}
		return n, nil

	default:
		if len(def.Enum) == 0 {
			return raw, nil
		}
		member, ok := def.matchEnum(raw)
		if !ok {
			return nil, &ValidationError{Option: def.Name, Token: raw, Reason: fmt.Sprintf("%q is not one of %s", raw, strings.Join(def.Enum, ", "))}
		}
		return member, nil
	}
}

func parseBool(raw string) (bool, bool) {
	switch strings.ToLower(raw) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	}
	return false, false
}

func isNumber(token string) bool {
	_, err := strconv.ParseFloat(token, 64)
	return err == nil
}

func formatRange(def *OptionDef) string {
	lower, upper := "-inf", "+inf"
	if def.Min != nil {
		lower = strconv.FormatFloat(*def.Min, 'g', -1, 64)
	}
	if def.Max != nil {
		upper = strconv.FormatFloat(*def.Max, 'g', -1, 64)
	}
	return "[" + lower + ", " + upper + "]"
}
