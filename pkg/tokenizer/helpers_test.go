package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	wordType   = MustRegisterTokenType("WORD", "Word", "A word")
	numType    = MustRegisterTokenType("NUM", "Num", "A number")
	kwType     = MustRegisterTokenType("KW", "Kw", "A keyword")
	varType    = MustRegisterTokenType("VAR", "Var", "A variable")
	dollarType = MustRegisterTokenType("DOLLAR", "Dollar", "A dollar sign")
)

func newTestTokenizer(t *testing.T, defs ...RuleDef) *Tokenizer {
	t.Helper()
	rules := make([]*Rule, 0, len(defs))
	for _, def := range defs {
		rule, err := NewRule(def)
		require.NoError(t, err)
		rules = append(rules, rule)
	}
	tk, err := NewWithRules(rules)
	require.NoError(t, err)
	return tk
}

func tokenTypes(tokens *Tokens) []TokenType {
	types := make([]TokenType, 0, tokens.Len())
	for _, tok := range tokens.All() {
		types = append(types, tok.Type())
	}
	return types
}

func tokenTexts(tokens *Tokens) []string {
	texts := make([]string, 0, tokens.Len())
	for _, tok := range tokens.All() {
		texts = append(texts, tok.Text())
	}
	return texts
}

func isSynthetic(tok *Token) bool {
	switch tok.Type() {
	case Indent, Dedent, WrongIndent, WrongDedent:
		return true
	}
	return false
}

// requireCoverage checks every token, synthetic ones included, follows the
// previous one without gap and the raw texts rebuild the text.
func requireCoverage(t *testing.T, text string, tokens *Tokens) {
	t.Helper()
	var sb strings.Builder
	end := 0
	for i, tok := range tokens.All() {
		require.Equal(t, end, tok.Start(), "token #%d %s %q out of order", i, tok.Type(), tok.Raw())
		if isSynthetic(tok) {
			require.Equal(t, tok.Start(), tok.End())
			require.Empty(t, tok.Raw())
		}
		if i > 0 {
			require.Same(t, tokens.At(i-1), tok.Previous())
		}
		end = tok.End()
		sb.WriteString(tok.Raw())
	}
	require.Equal(t, text, sb.String())
}
