package tokenizer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Position represents a line and column position in the source text.
type Position struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// Span represents the start and end positions of a token.
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// MarshalJSON implements custom JSON marshaling for Span.
func (s Span) MarshalJSON() ([]byte, error) {
	arr := [4]int{s.Start.Line, s.Start.Col, s.End.Line, s.End.Col}
	return json.Marshal(arr)
}

// UnmarshalJSON implements custom JSON unmarshaling for Span.
func (s *Span) UnmarshalJSON(data []byte) error {
	var arr [4]int
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	s.Start = Position{Line: arr[0], Col: arr[1]}
	s.End = Position{Line: arr[2], Col: arr[3]}
	return nil
}

// Token is a classified, positioned span of the tokenized text.
// Tokens are built by the Tokenizer and never change afterwards.
type Token struct {
	tokenType TokenType
	rule      *Rule
	raw       string
	text      string
	value     any
	start     int // byte offset
	end       int // byte offset
	length    int // runes
	row       int
	column    int
	indent    int
	next      *Token
	previous  *Token
}

var spaceRuns = regexp.MustCompile(`\s+`)

// newToken builds a token for raw, found at byte offset start. The row and
// column come from the scan that found it.
func newToken(raw string, rule *Rule, start, row, column int, simplifySpaces bool) *Token {
	text := strings.TrimLeftFunc(raw, unicode.IsSpace)
	length := utf8.RuneCountInString(raw)

	tok := &Token{
		rule:   rule,
		raw:    raw,
		start:  start,
		end:    start + len(raw),
		length: length,
		row:    row,
		column: column,
	}
	tok.tokenType = rule.SubTypeOf(text)

	if tok.tokenType != Newline {
		tok.indent = length - utf8.RuneCountInString(text)
	}
	if simplifySpaces && tok.tokenType != Comment {
		text = spaceRuns.ReplaceAllString(text, " ")
	}
	tok.text = text
	tok.value = rule.Value(tok.tokenType, text)
	return tok
}

// newSyntheticToken builds the INDENT/DEDENT family of tokens. They cover
// no text: start and end are equal, length and indent hold the width.
func newSyntheticToken(rule *Rule, start, width, row, column int) *Token {
	return &Token{
		tokenType: rule.tokenType,
		rule:      rule,
		value:     "",
		start:     start,
		end:       start,
		length:    width,
		row:       row,
		column:    column,
		indent:    width,
	}
}

func (t *Token) Type() TokenType { return t.tokenType }
func (t *Token) Rule() *Rule     { return t.rule }

// Raw returns the text exactly as matched, leading whitespace included.
func (t *Token) Raw() string { return t.raw }

// Text returns the matched text without its leading whitespace.
func (t *Token) Text() string { return t.text }

// Value returns the text processed by the rule value transform.
func (t *Token) Value() any { return t.value }

// Start returns the byte offset of the token in the tokenized text.
func (t *Token) Start() int { return t.start }

// End returns the byte offset just after the token.
func (t *Token) End() int { return t.end }

// Length returns the length of the raw text, in runes. INDENT/DEDENT tokens
// cover no text and return the indentation width they stand for.
func (t *Token) Length() int { return t.length }

// Row returns the 1-based line number of the token.
func (t *Token) Row() int { return t.row }

// Column returns the 1-based column, in runes, of the token.
func (t *Token) Column() int { return t.column }

// Indent returns the number of leading whitespace characters stripped from
// the raw text. It is always 0 for newlines.
func (t *Token) Indent() int { return t.indent }

func (t *Token) Next() *Token     { return t.next }
func (t *Token) Previous() *Token { return t.previous }

// IsUnknown reports if the token was not classified by the grammar.
func (t *Token) IsUnknown() bool {
	return t.rule == nil || t.rule.tokenType == Unknown
}

// Span returns the start and end line/column of the token.
func (t *Token) Span() Span {
	end := Position{Line: t.row, Col: t.column + t.length}
	if n := strings.Count(t.raw, "\n"); n > 0 {
		last := t.raw[strings.LastIndexByte(t.raw, '\n')+1:]
		end = Position{Line: t.row + n, Col: utf8.RuneCountInString(last) + 1}
	}
	return Span{Start: Position{Line: t.row, Col: t.column}, End: end}
}

func (t *Token) caseInsensitive() bool {
	return t.rule == nil || t.rule.caseInsensitive
}

// Equal compares the token text with value, honouring the rule case
// sensitivity.
func (t *Token) Equal(value string) bool {
	return t.EqualCase(value, t.caseInsensitive())
}

// EqualCase compares the token text with value using the given case
// sensitivity instead of the rule one.
func (t *Token) EqualCase(value string, caseInsensitive bool) bool {
	if caseInsensitive {
		return strings.EqualFold(t.text, value)
	}
	return t.text == value
}

// EqualAny reports if the token text is one of values.
func (t *Token) EqualAny(values ...string) bool {
	return t.EqualAnyCase(t.caseInsensitive(), values...)
}

// EqualAnyCase is EqualAny with an explicit case sensitivity.
func (t *Token) EqualAnyCase(caseInsensitive bool, values ...string) bool {
	for _, v := range values {
		if t.EqualCase(v, caseInsensitive) {
			return true
		}
	}
	return false
}

func (t *Token) String() string {
	text := t.text
	if t.tokenType == Newline {
		text = ""
	}
	return fmt.Sprintf("| %5d | %5d | %2d | %-30s | %2d | `%s`", t.column, t.row, t.indent, t.tokenType, t.length, text)
}

type tokenJSON struct {
	Type   TokenType `json:"type"`
	Text   string    `json:"text"`
	Value  any       `json:"value,omitempty"`
	Span   Span      `json:"span"`
	Start  int       `json:"start"`
	End    int       `json:"end"`
	Indent int       `json:"indent,omitempty"`
}

// MarshalJSON renders the token for the JSON lines output.
func (t *Token) MarshalJSON() ([]byte, error) {
	var value any
	if s, ok := t.value.(string); !ok || s != t.text {
		value = t.value
	}
	return json.Marshal(tokenJSON{
		Type:   t.tokenType,
		Text:   t.text,
		Value:  value,
		Span:   t.Span(),
		Start:  t.start,
		End:    t.end,
		Indent: t.indent,
	})
}
