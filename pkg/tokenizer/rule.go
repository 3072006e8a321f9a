package tokenizer

import (
	"fmt"
	"regexp"
	"strings"
)

// RuleDef describes a rule before it is compiled. It doubles as the YAML
// shape of a rule inside a grammar file.
type RuleDef struct {
	Type               TokenType      `yaml:"type"`
	Pattern            string         `yaml:"pattern"`
	Description        string         `yaml:"description,omitempty"`
	AutoCompletion     []Completion   `yaml:"autocompletion,omitempty"`
	AutoCompletionChar string         `yaml:"autocompletion_char,omitempty"`
	CaseSensitive      bool           `yaml:"case_sensitive,omitempty"` // Rules are case insensitive by default
	IgnoreIndent       bool           `yaml:"ignore_indent,omitempty"`  // No INDENT/DEDENT is produced before such tokens
	SubTypes           []SubTypeDef   `yaml:"subtypes,omitempty"`
	MultiLine          []MultiLineDef `yaml:"multiline,omitempty"`

	// ValueTransform, when set, turns the token text into the token value.
	ValueTransform func(tt TokenType, text string) any `yaml:"-"`
}

// SubTypeDef refines the rule type when a matched text satisfies either
// Pattern (exact match) or is one of Values. Exactly one must be set.
type SubTypeDef struct {
	Type    TokenType `yaml:"type"`
	Pattern string    `yaml:"pattern,omitempty"`
	Values  []string  `yaml:"values,omitempty"`
}

// MultiLineDef marks start and end of a token spanning several lines, like
// a long string or a block comment. Used by line based highlighters.
type MultiLineDef struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// Completion is an auto-completion entry attached to a rule.
type Completion struct {
	Value       string `yaml:"value" json:"value"`
	Label       string `yaml:"label,omitempty" json:"label"`
	Description string `yaml:"description,omitempty" json:"description"`
}

// Match is a completion found by Rule.Complete.
type Match struct {
	Text       string // Completion value, up to the first \x01
	Completion Completion
	Rule       *Rule
}

// MultiLinePair holds the compiled start/end expressions of a MultiLineDef.
type MultiLinePair struct {
	Start *regexp.Regexp
	End   *regexp.Regexp
}

type lookaround struct {
	re     *regexp.Regexp
	negate bool
}

// accepts tells if the constraint holds for the given text.
func (l *lookaround) accepts(text string) bool {
	if l == nil {
		return true
	}
	return l.re.MatchString(text) != l.negate
}

type subType struct {
	tokenType TokenType
	re        *regexp.Regexp
	values    map[string]struct{}
}

// Rule binds a token type to a regular expression. Rules are immutable.
type Rule struct {
	tokenType          TokenType
	source             string
	core               string
	exact              *regexp.Regexp
	lookBehind         *lookaround
	lookAhead          *lookaround
	description        string
	completions        []Completion
	autoCompletionChar string
	caseInsensitive    bool
	ignoreIndent       bool
	subTypes           []subType
	multiLine          []MultiLinePair
	transform          func(TokenType, string) any
}

// NewRule compiles def. Every problem found is reported in one
// *RuleValidationError.
func NewRule(def RuleDef) (*Rule, error) {
	return newRule(def, TokenType.Registered)
}

// newRule is NewRule with the check deciding which token types exist.
func newRule(def RuleDef, known func(TokenType) bool) (*Rule, error) {
	r := &Rule{
		tokenType:          def.Type,
		source:             def.Pattern,
		description:        def.Description,
		autoCompletionChar: def.AutoCompletionChar,
		caseInsensitive:    !def.CaseSensitive,
		ignoreIndent:       def.IgnoreIndent,
		transform:          def.ValueTransform,
	}

	var problems []string

	if def.Type == "" {
		problems = append(problems, "Given type must be a valid token type")
	} else if !known(def.Type) {
		problems = append(problems, fmt.Sprintf("Given type '%s' is not registered", def.Type))
	}

	problems = append(problems, r.setPattern(def.Pattern)...)
	problems = append(problems, r.setSubTypes(def.SubTypes, known)...)
	problems = append(problems, r.setMultiLine(def.MultiLine)...)

	if len(problems) > 0 {
		return nil, &RuleValidationError{Type: def.Type, Pattern: def.Pattern, Problems: problems}
	}

	for _, c := range def.AutoCompletion {
		if c.Value == "" {
			continue
		}
		if c.Label == "" {
			c.Label = c.Value
		}
		r.completions = append(r.completions, c)
	}

	return r, nil
}

// MustNewRule is like NewRule but panics on error.
func MustNewRule(def RuleDef) *Rule {
	r, err := NewRule(def)
	if err != nil {
		panic(err)
	}
	return r
}

// newInternalRule builds rules for tokens the scanner produces on its own.
func newInternalRule(tt TokenType) *Rule {
	return &Rule{tokenType: tt, caseInsensitive: true, ignoreIndent: true}
}

func (r *Rule) flags() string {
	if r.caseInsensitive {
		return "(?i)"
	}
	return ""
}

func (r *Rule) compile(expr string) (*regexp.Regexp, error) {
	return regexp.Compile(r.flags() + expr)
}

// setPattern splits lookbehind/lookahead from the pattern and compiles the
// three resulting expressions. Go regular expressions have no lookaround,
// so the constraints are evaluated by the scanner against the surrounding
// text.
func (r *Rule) setPattern(pattern string) []string {
	var problems []string
	core := pattern

	if inner, negate, rest, found, err := splitLookBehind(core); err != nil {
		problems = append(problems, "Given regular expression (lookbehind) is not valid: "+err.Error())
	} else if found {
		re, err := r.compile("(?:" + inner + ")$")
		if err != nil {
			problems = append(problems, "Given regular expression (lookbehind) is not valid: "+err.Error())
		} else {
			r.lookBehind = &lookaround{re: re, negate: negate}
		}
		core = rest
	}

	if inner, negate, rest, found := splitLookAhead(core); found {
		re, err := r.compile("^(?:" + inner + ")")
		if err != nil {
			problems = append(problems, "Given regular expression (lookahead) is not valid: "+err.Error())
		} else {
			r.lookAhead = &lookaround{re: re, negate: negate}
		}
		core = rest
	}

	if _, err := r.compile(core); err != nil {
		problems = append(problems, "Given regular expression is not valid: "+err.Error())
		return problems
	}
	r.core = core

	exact, err := r.compile("^(?:" + core + ")$")
	if err != nil {
		problems = append(problems, "Given regular expression is not valid: "+err.Error())
		return problems
	}
	r.exact = exact
	return problems
}

func (r *Rule) setSubTypes(defs []SubTypeDef, known func(TokenType) bool) []string {
	var problems []string
	for i, def := range defs {
		if def.Type == "" || !known(def.Type) {
			problems = append(problems, fmt.Sprintf("Given sub-type #%d has an unregistered type '%s'", i+1, def.Type))
			continue
		}
		hasPattern, hasValues := def.Pattern != "", len(def.Values) > 0
		if hasPattern == hasValues {
			problems = append(problems, fmt.Sprintf("Given sub-type #%d must define either a pattern or a list of values", i+1))
			continue
		}

		st := subType{tokenType: def.Type}
		if hasPattern {
			re, err := r.compile("^(?:" + def.Pattern + ")$")
			if err != nil {
				problems = append(problems, fmt.Sprintf("Given sub-type #%d regular expression is not valid: %v", i+1, err))
				continue
			}
			st.re = re
		} else {
			st.values = make(map[string]struct{}, len(def.Values))
			for _, v := range def.Values {
				st.values[r.fold(v)] = struct{}{}
			}
		}
		r.subTypes = append(r.subTypes, st)
	}
	return problems
}

func (r *Rule) setMultiLine(defs []MultiLineDef) []string {
	var problems []string
	for i, def := range defs {
		if (def.Start == "") != (def.End == "") {
			problems = append(problems, fmt.Sprintf("None or both regular expression `multiLineStart` and `multiLineEnd` must be provided (pair #%d)", i+1))
			continue
		}
		if def.Start == "" {
			continue
		}
		start, errStart := r.compile(def.Start)
		if errStart != nil {
			problems = append(problems, fmt.Sprintf("Given regular expression `multiLineStart` #%d is not valid: %v", i+1, errStart))
		}
		end, errEnd := r.compile(def.End)
		if errEnd != nil {
			problems = append(problems, fmt.Sprintf("Given regular expression `multiLineEnd` #%d is not valid: %v", i+1, errEnd))
		}
		if errStart == nil && errEnd == nil {
			r.multiLine = append(r.multiLine, MultiLinePair{Start: start, End: end})
		}
	}
	return problems
}

func (r *Rule) fold(s string) string {
	if r.caseInsensitive {
		return strings.ToLower(s)
	}
	return s
}

// matches tells if text is entirely matched by the rule pattern.
func (r *Rule) matches(text string) bool {
	return r.exact != nil && r.exact.MatchString(text)
}

// SubTypeOf returns the type a token with the given text gets from this
// rule: the first matching sub-type, or the rule type.
func (r *Rule) SubTypeOf(text string) TokenType {
	for _, st := range r.subTypes {
		if st.re != nil {
			if st.re.MatchString(text) {
				return st.tokenType
			}
		} else if _, ok := st.values[r.fold(text)]; ok {
			return st.tokenType
		}
	}
	return r.tokenType
}

// Value returns the processed value of a token text.
func (r *Rule) Value(tt TokenType, text string) any {
	if r.transform == nil {
		return text
	}
	return r.transform(tt, text)
}

// Complete returns the completions whose value starts with search. Each run
// of whitespace in search matches one or more whitespace characters.
func (r *Rule) Complete(search string) []Match {
	if len(r.completions) == 0 {
		return nil
	}
	parts := whitespaceRun.Split(search, -1)
	for i := range parts {
		parts[i] = regexp.QuoteMeta(parts[i])
	}
	re, err := r.compile("^" + strings.Join(parts, `\s+`))
	if err != nil {
		return nil
	}

	var found []Match
	for _, c := range r.completions {
		text, _, _ := strings.Cut(c.Value, "\x01")
		if re.MatchString(text) {
			found = append(found, Match{Text: text, Completion: c, Rule: r})
		}
	}
	return found
}

// Type returns the base token type of the rule.
func (r *Rule) Type() TokenType { return r.tokenType }

// Pattern returns the pattern used in the combined expression, without
// lookbehind and lookahead.
func (r *Rule) Pattern() string { return r.core }

// Source returns the pattern as given at construction.
func (r *Rule) Source() string { return r.source }

func (r *Rule) Description() string        { return r.description }
func (r *Rule) CaseInsensitive() bool      { return r.caseInsensitive }
func (r *Rule) IgnoreIndent() bool         { return r.ignoreIndent }
func (r *Rule) AutoCompletionChar() string { return r.autoCompletionChar }
func (r *Rule) HasLookBehind() bool        { return r.lookBehind != nil }
func (r *Rule) HasLookAhead() bool         { return r.lookAhead != nil }

// Completions returns a copy of the auto-completion entries.
func (r *Rule) Completions() []Completion {
	return append([]Completion(nil), r.completions...)
}

// MultiLine returns the compiled multi-line start/end pairs.
func (r *Rule) MultiLine() []MultiLinePair {
	return append([]MultiLinePair(nil), r.multiLine...)
}

func (r *Rule) String() string {
	return fmt.Sprintf("%s: %s", r.tokenType, r.source)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// splitLookBehind extracts a leading (?<!X) or (?<=X) group.
func splitLookBehind(pattern string) (inner string, negate bool, rest string, found bool, err error) {
	if !strings.HasPrefix(pattern, "(?<!") && !strings.HasPrefix(pattern, "(?<=") {
		return "", false, pattern, false, nil
	}
	closing := closingParen(pattern, 0)
	if closing < 0 {
		return "", false, pattern, false, fmt.Errorf("missing closing parenthesis")
	}
	return pattern[4:closing], pattern[3] == '!', pattern[closing+1:], true, nil
}

// splitLookAhead extracts a trailing (?!X) or (?=X) group.
func splitLookAhead(pattern string) (inner string, negate bool, rest string, found bool) {
	if !strings.HasSuffix(pattern, ")") {
		return "", false, pattern, false
	}
	opening := openingParenOfLast(pattern)
	if opening < 0 {
		return "", false, pattern, false
	}
	group := pattern[opening:]
	if !strings.HasPrefix(group, "(?!") && !strings.HasPrefix(group, "(?=") {
		return "", false, pattern, false
	}
	return group[3 : len(group)-1], group[2] == '!', pattern[:opening], true
}

// closingParen returns the index of the parenthesis closing the one at
// open, or -1. Escapes and character classes are skipped.
func closingParen(pattern string, open int) int {
	depth := 0
	for i := open; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case '[':
			i = classEnd(pattern, i)
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// openingParenOfLast returns the index of the parenthesis opening the group
// closed by the last byte of pattern, or -1.
func openingParenOfLast(pattern string) int {
	var stack []int
	last := len(pattern) - 1
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case '[':
			i = classEnd(pattern, i)
		case '(':
			stack = append(stack, i)
		case ')':
			if len(stack) == 0 {
				return -1
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if i == last {
				return open
			}
		}
	}
	return -1
}

// classEnd returns the index of the ']' closing the class opened at i.
func classEnd(pattern string, i int) int {
	j := i + 1
	if j < len(pattern) && pattern[j] == '^' {
		j++
	}
	if j < len(pattern) && pattern[j] == ']' {
		j++
	}
	for ; j < len(pattern); j++ {
		switch pattern[j] {
		case '\\':
			j++
		case '[':
			if j+1 < len(pattern) && pattern[j+1] == ':' {
				if end := strings.Index(pattern[j:], ":]"); end >= 0 {
					j += end + 1
				}
			}
		case ']':
			return j
		}
	}
	return len(pattern) - 1
}
