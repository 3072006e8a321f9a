package tokenizer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRuleValidation(t *testing.T) {
	tests := []struct {
		name     string
		def      RuleDef
		problems int
	}{
		{
			name:     "Empty type",
			def:      RuleDef{Pattern: `\w+`},
			problems: 1,
		},
		{
			name:     "Unregistered type",
			def:      RuleDef{Type: "NOT_REGISTERED", Pattern: `\w+`},
			problems: 1,
		},
		{
			name:     "Invalid pattern",
			def:      RuleDef{Type: wordType, Pattern: `[a-`},
			problems: 1,
		},
		{
			name:     "Invalid lookahead",
			def:      RuleDef{Type: wordType, Pattern: `\w+(?=a{2,1})`},
			problems: 1,
		},
		{
			name: "Sub-type with pattern and values",
			def: RuleDef{Type: wordType, Pattern: `\w+`, SubTypes: []SubTypeDef{
				{Type: kwType, Pattern: "if", Values: []string{"if"}},
			}},
			problems: 1,
		},
		{
			name: "Sub-type with neither pattern nor values",
			def: RuleDef{Type: wordType, Pattern: `\w+`, SubTypes: []SubTypeDef{
				{Type: kwType},
			}},
			problems: 1,
		},
		{
			name: "Sub-type unregistered",
			def: RuleDef{Type: wordType, Pattern: `\w+`, SubTypes: []SubTypeDef{
				{Type: "NOPE", Values: []string{"x"}},
			}},
			problems: 1,
		},
		{
			name: "Sub-type invalid pattern",
			def: RuleDef{Type: wordType, Pattern: `\w+`, SubTypes: []SubTypeDef{
				{Type: kwType, Pattern: `(`},
			}},
			problems: 1,
		},
		{
			name: "Multi-line half pair",
			def: RuleDef{Type: Comment, Pattern: `#.*`, MultiLine: []MultiLineDef{
				{Start: `/\*`},
			}},
			problems: 1,
		},
		{
			name: "Multi-line invalid patterns",
			def: RuleDef{Type: Comment, Pattern: `#.*`, MultiLine: []MultiLineDef{
				{Start: `(`, End: `)`},
			}},
			problems: 2,
		},
		{
			name: "Everything wrong",
			def: RuleDef{Type: "NOPE", Pattern: `[`, SubTypes: []SubTypeDef{
				{Type: kwType},
			}, MultiLine: []MultiLineDef{{End: "x"}}},
			problems: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := NewRule(tt.def)
			require.Nil(t, rule)
			require.ErrorIs(t, err, ErrInvalidRule)

			var verr *RuleValidationError
			require.True(t, errors.As(err, &verr))
			require.Len(t, verr.Problems, tt.problems, verr.Problems)
			require.Equal(t, tt.def.Type, verr.Type)
		})
	}

	require.Panics(t, func() { MustNewRule(RuleDef{Type: wordType, Pattern: `(`}) })
}

func TestRuleLookaroundSplit(t *testing.T) {
	tests := []struct {
		name       string
		pattern    string
		core       string
		lookBehind bool
		lookAhead  bool
	}{
		{"Plain", `\w+`, `\w+`, false, false},
		{"Lookbehind", `(?<=\$)\w+`, `\w+`, true, false},
		{"Negative lookbehind", `(?<!\\)"`, `"`, true, false},
		{"Lookahead", `\w+(?=\()`, `\w+`, false, true},
		{"Negative lookahead with class", `\d+(?![a-z)])`, `\d+`, false, true},
		{"Both", `(?<=[(])\w+(?!\))`, `\w+`, true, true},
		{"Trailing group is not lookahead", `a(b)`, `a(b)`, false, false},
		{"Named group", `(?P<name>\w+)`, `(?P<name>\w+)`, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := NewRule(RuleDef{Type: wordType, Pattern: tt.pattern})
			require.NoError(t, err)
			require.Equal(t, tt.core, rule.Pattern())
			require.Equal(t, tt.pattern, rule.Source())
			require.Equal(t, tt.lookBehind, rule.HasLookBehind())
			require.Equal(t, tt.lookAhead, rule.HasLookAhead())
		})
	}
}

func TestRuleAccessors(t *testing.T) {
	rule := MustNewRule(RuleDef{
		Type:               kwType,
		Pattern:            `if|else`,
		Description:        "Conditionals",
		AutoCompletion:     []Completion{{Value: "if"}, {Value: ""}},
		AutoCompletionChar: "K",
		CaseSensitive:      true,
		IgnoreIndent:       true,
	})

	require.Equal(t, kwType, rule.Type())
	require.Equal(t, "Conditionals", rule.Description())
	require.Equal(t, "K", rule.AutoCompletionChar())
	require.False(t, rule.CaseInsensitive())
	require.True(t, rule.IgnoreIndent())
	require.Equal(t, []Completion{{Value: "if", Label: "if"}}, rule.Completions())
	require.Equal(t, "KW: if|else", rule.String())
	require.Empty(t, rule.MultiLine())

	require.Empty(t, rule.Complete("IF"))
	require.Len(t, rule.Complete("i"), 1)
}
