package tokenizer

import (
	"strconv"
	"strings"
)

// Token types used by the default grammar.
const (
	Identifier  TokenType = "IDENTIFIER"
	Keyword     TokenType = "KEYWORD"
	Number      TokenType = "NUMBER"
	String      TokenType = "STRING"
	Operator    TokenType = "OPERATOR"
	Punctuation TokenType = "PUNCTUATION"
)

// lineIndent lets a rule absorb the indentation of the line it starts, so
// its tokens carry the indent used for INDENT/DEDENT.
const lineIndent = `(?:^[ \t]+)?`

var defaultKeywords = []string{
	"and", "as", "break", "class", "continue", "def", "elif", "else",
	"False", "for", "from", "if", "import", "in", "is", "lambda", "None",
	"not", "or", "pass", "raise", "return", "True", "try", "while", "with",
	"yield",
}

// DefaultGrammar returns a grammar for a small indentation based language:
// comments, strings, numbers, keywords, identifiers, operators and
// punctuation.
func DefaultGrammar() *Grammar {
	completions := make([]Completion, 0, len(defaultKeywords))
	for _, kw := range defaultKeywords {
		completions = append(completions, Completion{Value: kw, Label: kw, Description: "keyword"})
	}

	return &Grammar{
		Indent: AutoIndent,
		Types: []TypeDef{
			{ID: string(Identifier), Display: "Identifier", Description: "A name"},
			{ID: string(Keyword), Display: "Keyword", Description: "A reserved word"},
			{ID: string(Number), Display: "Number", Description: "A numeric literal"},
			{ID: string(String), Display: "String", Description: "A quoted string literal"},
			{ID: string(Operator), Display: "Operator", Description: "An operator"},
			{ID: string(Punctuation), Display: "Punctuation", Description: "Brackets and separators"},
		},
		Rules: []RuleDef{
			{
				Type:         Comment,
				Pattern:      lineIndent + `#[^\n]*`,
				Description:  "A comment, up to the end of line",
				IgnoreIndent: true,
			},
			{
				Type:           String,
				Pattern:        lineIndent + `(?:"(?:[^"\\\n]|\\.)*"|'(?:[^'\\\n]|\\.)*')`,
				Description:    "A string literal",
				ValueTransform: unquote,
			},
			{
				Type:           Number,
				Pattern:        lineIndent + `\d+(?:\.\d+)?(?:[eE][+-]?\d+)?(?![A-Za-z_])`,
				Description:    "A number",
				ValueTransform: parseNumber,
			},
			{
				Type:               Identifier,
				Pattern:            lineIndent + `[A-Za-z_]\w*`,
				Description:        "An identifier",
				CaseSensitive:      true,
				AutoCompletion:     completions,
				AutoCompletionChar: "K",
				SubTypes: []SubTypeDef{
					{Type: Keyword, Values: defaultKeywords},
				},
			},
			{
				Type:    Operator,
				Pattern: lineIndent + `(?:==|!=|<=|>=|\*\*|//|->|[-+*/%<>=!&|^~])`,
			},
			{
				Type:    Punctuation,
				Pattern: lineIndent + `[()\[\]{},.:;@]`,
			},
			{
				Type:    Newline,
				Pattern: `\r?\n`,
			},
			{
				Type:    Space,
				Pattern: `[ \t]+`,
			},
		},
		Styles: map[string][]StyleDef{
			DarkTheme: {
				{Type: Comment, Style: Style{Foreground: "#808080", Italic: true}},
				{Type: String, Style: Style{Foreground: "#6a8759"}},
				{Type: Number, Style: Style{Foreground: "#6897bb"}},
				{Type: Keyword, Style: Style{Foreground: "#cc7832", Bold: true}},
				{Type: Identifier, Style: Style{Foreground: "#a9b7c6"}},
				{Type: Operator, Style: Style{Foreground: "#e0e0e0"}},
				{Type: Punctuation, Style: Style{Foreground: "#e0e0e0"}},
				{Type: Indent, Style: Style{Background: "#2b2b2b"}},
				{Type: WrongIndent, Style: Style{Background: "#7b1b1b"}},
				{Type: WrongDedent, Style: Style{Background: "#7b1b1b"}},
			},
			LightTheme: {
				{Type: Comment, Style: Style{Foreground: "#8c8c8c", Italic: true}},
				{Type: String, Style: Style{Foreground: "#067d17"}},
				{Type: Number, Style: Style{Foreground: "#1750eb"}},
				{Type: Keyword, Style: Style{Foreground: "#0033b3", Bold: true}},
				{Type: Identifier, Style: Style{Foreground: "#080808"}},
			},
		},
	}
}

func unquote(_ TokenType, text string) any {
	if strings.HasPrefix(text, `"`) {
		if s, err := strconv.Unquote(text); err == nil {
			return s
		}
	}
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}

func parseNumber(_ TokenType, text string) any {
	if v, err := strconv.ParseFloat(text, 64); err == nil {
		return v
	}
	return text
}
