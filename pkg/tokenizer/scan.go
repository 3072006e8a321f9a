package tokenizer

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// scanner holds everything one Tokenize call needs. Line and column
// tracking live here, so concurrent scans never share counters.
type scanner struct {
	rules          []*Rule
	pattern        *regexp.Regexp
	indentWidth    int
	simplifySpaces bool

	text           string
	row            int
	lineStart      int // byte offset of the current line
	previousIndent int
	tokens         []*Token
}

func (s *scanner) scan(text string) *Tokens {
	s.text = text
	s.row = 1
	s.lineStart = 0

	pos := 0
	if s.pattern != nil {
		for _, loc := range s.pattern.FindAllStringIndex(text, -1) {
			start, end := loc[0], loc[1]
			if start == end {
				continue
			}
			if start > pos {
				s.emit(unknownRule, pos, start)
			}
			rule := s.owner(start, end)
			if rule == nil {
				rule = unknownRule
			}
			s.emit(rule, start, end)
			pos = end
		}
	}
	if pos < len(text) {
		s.emit(unknownRule, pos, len(text))
	}
	return newTokens(text, s.tokens)
}

// owner returns the first rule, in declaration order, matching the whole
// span and satisfying its lookbehind and lookahead constraints.
func (s *scanner) owner(start, end int) *Rule {
	span := s.text[start:end]
	for _, r := range s.rules {
		if !r.matches(span) {
			continue
		}
		if !r.lookBehind.accepts(s.text[:start]) {
			continue
		}
		if !r.lookAhead.accepts(s.text[end:]) {
			continue
		}
		return r
	}
	return nil
}

func (s *scanner) emit(rule *Rule, start, end int) {
	raw := s.text[start:end]
	column := utf8.RuneCountInString(s.text[s.lineStart:start]) + 1
	tok := newToken(raw, rule, start, s.row, column, s.simplifySpaces)

	if !rule.ignoreIndent && s.indentWidth != 0 && column == 1 && strings.TrimSpace(raw) != "" {
		s.indentation(tok)
	}
	s.append(tok)

	if n := strings.Count(raw, "\n"); n > 0 {
		s.row += n
		s.lineStart = start + strings.LastIndexByte(raw, '\n') + 1
	}
}

func (s *scanner) append(tok *Token) {
	if n := len(s.tokens); n > 0 {
		previous := s.tokens[n-1]
		previous.next = tok
		tok.previous = previous
	}
	s.tokens = append(s.tokens, tok)
}

// indentation adds INDENT/DEDENT tokens before tok when its indentation
// differs from the one of the previous line. In auto mode the width is
// locked on the first indented token of the scan.
func (s *scanner) indentation(tok *Token) {
	if s.indentWidth < 0 && tok.indent > 0 {
		s.indentWidth = tok.indent
	}
	if s.indentWidth <= 0 {
		return
	}

	switch {
	case tok.indent > s.previousIndent:
		s.synthesize(tok, tok.indent-s.previousIndent, indentRule, wrongIndentRule)
	case tok.indent < s.previousIndent:
		s.synthesize(tok, s.previousIndent-tok.indent, dedentRule, wrongDedentRule)
	}
	s.previousIndent = tok.indent
}

// synthesize appends the tokens for an indentation change of delta. They
// all start where tok starts, so offsets never decrease.
func (s *scanner) synthesize(tok *Token, delta int, whole, remainder *Rule) {
	width := s.indentWidth
	count, rest := delta/width, delta%width
	for i := 0; i < count; i++ {
		s.append(newSyntheticToken(whole, tok.start, width, tok.row, tok.column+width*i))
	}
	if rest > 0 {
		s.append(newSyntheticToken(remainder, tok.start, rest, tok.row, tok.column+width*count))
	}
}
