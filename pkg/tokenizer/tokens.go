package tokenizer

import (
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"
)

// Tokens is the result of one tokenization: the tokens, in source order,
// and the text they were read from. A Tokens value is never modified once
// returned and may be shared between goroutines.
type Tokens struct {
	text   string
	tokens []*Token
}

func newTokens(text string, tokens []*Token) *Tokens {
	return &Tokens{text: text, tokens: tokens}
}

// Text returns the tokenized text.
func (ts *Tokens) Text() string { return ts.text }

// Len returns the number of tokens.
func (ts *Tokens) Len() int { return len(ts.tokens) }

// At returns the token at index i, or nil when i is out of range.
func (ts *Tokens) At(i int) *Token {
	if i < 0 || i >= len(ts.tokens) {
		return nil
	}
	return ts.tokens[i]
}

func (ts *Tokens) First() *Token { return ts.At(0) }
func (ts *Tokens) Last() *Token  { return ts.At(len(ts.tokens) - 1) }

// Slice returns a copy of the token list.
func (ts *Tokens) Slice() []*Token {
	return append([]*Token(nil), ts.tokens...)
}

// All iterates over the tokens with their index.
func (ts *Tokens) All() iter.Seq2[int, *Token] {
	return func(yield func(int, *Token) bool) {
		for i, tok := range ts.tokens {
			if !yield(i, tok) {
				return
			}
		}
	}
}

// TokenAt returns the token covering the given 1-based column and row, or
// nil when no token covers it.
func (ts *Tokens) TokenAt(col, row int) *Token {
	tok := ts.First()
	for tok != nil && tok.row < row {
		tok = tok.next
	}
	for tok != nil && tok.row == row && tok.column <= col {
		if col < tok.column+tok.length {
			return tok
		}
		tok = tok.next
	}
	return nil
}

// InTextToken renders the source line of tok with its span underlined.
func (ts *Tokens) InTextToken(tok *Token, displayPosition bool) string {
	if tok == nil {
		return ""
	}
	return ts.render(tok.column-1, tok.row-1, tok.length, ">", displayPosition)
}

// InTextAt renders the source line at the given 1-based column and row
// with a caret under the column.
func (ts *Tokens) InTextAt(col, row int, displayPosition bool) string {
	return ts.render(col-1, row-1, 1, ">", displayPosition)
}

// render works on 0-based col and row.
func (ts *Tokens) render(col, row, length int, outsideArrow string, displayPosition bool) string {
	rows := strings.Split(ts.text, "\n")
	if row < 0 || row >= len(rows) {
		return fmt.Sprintf("Given position (%d, %d) is outside text", col, row)
	}

	line := rows[row]
	lineLen := utf8.RuneCountInString(line)

	var returned []string
	if displayPosition {
		returned = append(returned, fmt.Sprintf("At position (%d, %d):", col, row))
	}
	returned = append(returned, line)

	switch {
	case col >= 0 && col < lineLen:
		returned = append(returned, strings.Repeat(".", col)+strings.Repeat("^", max(1, length)))
	case col < 0:
		returned = append(returned, "<--")
	default:
		returned = append(returned, strings.Repeat("-", lineLen)+outsideArrow)
	}
	return strings.Join(returned, "\n")
}

// Cursor returns a new cursor positioned on the first token.
func (ts *Tokens) Cursor() *Cursor {
	return &Cursor{tokens: ts}
}

func (ts *Tokens) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<Tokens(%d, [\n", len(ts.tokens))
	for _, tok := range ts.tokens {
		sb.WriteString(tok.String())
		sb.WriteByte('\n')
	}
	sb.WriteString("])>")
	return sb.String()
}

// Cursor navigates a Tokens value. Each consumer gets its own cursor, so a
// shared Tokens never carries navigation state.
type Cursor struct {
	tokens *Tokens
	index  int
}

// Value returns the current token, or nil when the cursor is past either end.
func (c *Cursor) Value() *Token { return c.tokens.At(c.index) }

// Index returns the current position of the cursor.
func (c *Cursor) Index() int { return c.index }

// Next moves forward and returns the new current token.
func (c *Cursor) Next() *Token {
	if c.index < c.tokens.Len() {
		c.index++
	}
	return c.Value()
}

// Previous moves backward and returns the new current token.
func (c *Cursor) Previous() *Token {
	if c.index >= 0 {
		c.index--
	}
	return c.Value()
}

func (c *Cursor) First() *Token {
	c.index = 0
	return c.Value()
}

func (c *Cursor) Last() *Token {
	c.index = c.tokens.Len() - 1
	return c.Value()
}

// Reset moves the cursor back on the first token.
func (c *Cursor) Reset() { c.index = 0 }

// InText renders the current token in its source line. When the cursor is
// past the last token the position just after that token is shown.
func (c *Cursor) InText(displayPosition bool) string {
	if tok := c.Value(); tok != nil {
		return c.tokens.InTextToken(tok, displayPosition)
	}
	last := c.tokens.Last()
	if last == nil {
		return ""
	}
	return c.tokens.render(last.column-1+last.length, last.row-1, 1, "^", displayPosition)
}
