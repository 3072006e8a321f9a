package tokenizer

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Grammar represents the structure of a YAML grammar file: token types,
// rules, tokenizer options and styles.
type Grammar struct {
	Indent         int                   `yaml:"indent"`
	SimplifySpaces bool                  `yaml:"simplify_spaces"`
	Types          []TypeDef             `yaml:"types"`
	Rules          []RuleDef             `yaml:"rules"`
	Styles         map[string][]StyleDef `yaml:"styles,omitempty"`
}

// TypeDef declares a token type to register.
type TypeDef struct {
	ID          string `yaml:"id"`
	Display     string `yaml:"display"`
	Description string `yaml:"description"`
}

// StyleDef is the style of one token type inside a theme.
type StyleDef struct {
	Type  TokenType `yaml:"type"`
	Style `yaml:",inline"`
}

// LoadGrammarFile loads and parses a YAML grammar file.
func LoadGrammarFile(filename string) (*Grammar, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read grammar file '%s': %w", filename, err)
	}

	g, err := ParseGrammar(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML in grammar file '%s': %w", filename, err)
	}
	return g, nil
}

// ParseGrammar parses a YAML grammar.
func ParseGrammar(data []byte) (*Grammar, error) {
	var g Grammar
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Marshal renders the grammar as YAML. Value transforms are not exported.
func (g *Grammar) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal grammar to YAML: %w", err)
	}
	return data, nil
}

// Build registers the grammar token types and returns a tokenizer and the
// styles it defines. Every invalid type, rule or style is reported, and
// nothing is registered unless the whole grammar is valid.
func (g *Grammar) Build() (*Tokenizer, *TokenStyle, error) {
	var errs []error

	declared := make(map[TokenType]tokenTypeInfo, len(g.Types))
	for _, td := range g.Types {
		tt, info, err := checkTokenType(td.ID, td.Display, td.Description)
		if err == nil {
			if previous, ok := declared[tt]; ok {
				err = previous.conflict(tt, info)
			}
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		declared[tt] = info
	}
	known := func(tt TokenType) bool {
		_, ok := declared[tt]
		return ok || tt.Registered()
	}

	rules := make([]*Rule, 0, len(g.Rules))
	for i, def := range g.Rules {
		rule, err := newRule(def, known)
		if err != nil {
			errs = append(errs, fmt.Errorf("rule #%d: %w", i+1, err))
			continue
		}
		rules = append(rules, rule)
	}

	styles := NewTokenStyle()
	for theme, defs := range g.Styles {
		for _, sd := range defs {
			if err := styles.SetStyle(theme, sd.Type, sd.Style); err != nil {
				errs = append(errs, fmt.Errorf("style '%s' for theme '%s': %w", sd.Type, theme, err))
			}
		}
	}

	if len(errs) > 0 {
		return nil, nil, errors.Join(errs...)
	}

	for _, td := range g.Types {
		if _, err := RegisterTokenType(td.ID, td.Display, td.Description); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, nil, errors.Join(errs...)
	}

	t, err := NewWithRules(rules)
	if err != nil {
		return nil, nil, err
	}
	t.SetIndent(g.Indent)
	t.SetSimplifySpaces(g.SimplifySpaces)
	return t, styles, nil
}
