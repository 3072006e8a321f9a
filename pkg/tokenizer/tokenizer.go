package tokenizer

import (
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// AddMode tells AddRule where a rule is inserted, relative to the rules
// already registered with the same token type.
type AddMode int

const (
	AddLast        AddMode = iota // Append at the end of the rule list
	AddBeforeFirst                // Before the first rule of the same type
	AddAfterFirst                 // After the first rule of the same type
	AddBeforeLast                 // Before the last rule of the same type
	AddAfterLast                  // After the last rule of the same type
)

// RemoveMode tells RemoveRule which rules of a token type are removed.
type RemoveMode int

const (
	RemoveLast RemoveMode = iota
	RemoveFirst
	RemoveAll
)

// AutoIndent makes the tokenizer use the first indentation found in a text
// as indent width.
const AutoIndent = -1

var (
	unknownRule     = newInternalRule(Unknown)
	indentRule      = newInternalRule(Indent)
	dedentRule      = newInternalRule(Dedent)
	wrongIndentRule = newInternalRule(WrongIndent)
	wrongDedentRule = newInternalRule(WrongDedent)
)

// Tokenizer splits texts into tokens according to an ordered list of rules.
//
// Rules are combined into one regular expression, compiled lazily on the
// first Tokenize after a change. Results are cached by content digest.
// A Tokenizer is safe for concurrent use; scans don't hold the lock.
type Tokenizer struct {
	mu             sync.Mutex
	rules          []*Rule // replaced, never modified in place
	pattern        *regexp.Regexp
	dirty          bool
	generation     uint64
	indent         int
	simplifySpaces bool
	cache          *resultCache
	log            zerolog.Logger
	now            func() time.Time
}

// New creates a tokenizer without rules.
func New() *Tokenizer {
	t := &Tokenizer{
		dirty: true,
		log:   zerolog.Nop(),
		now:   time.Now,
	}
	t.cache = newResultCache(func() time.Time { return t.now() }, &t.log)
	return t
}

// NewWithRules creates a tokenizer using the given rules.
func NewWithRules(rules []*Rule) (*Tokenizer, error) {
	t := New()
	if err := t.SetRules(rules); err != nil {
		return nil, err
	}
	return t, nil
}

// Clone returns a tokenizer with the same rules and options and an empty
// cache.
func (t *Tokenizer) Clone() *Tokenizer {
	t.mu.Lock()
	defer t.mu.Unlock()

	c := New()
	c.rules = t.rules
	c.indent = t.indent
	c.simplifySpaces = t.simplifySpaces
	c.log = t.log
	return c
}

// SetLogger sets the logger used for cache and compilation events.
func (t *Tokenizer) SetLogger(log zerolog.Logger) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.log = log
}

// invalidate must be called with the lock held after any change that alters
// what a cached result means.
func (t *Tokenizer) invalidate() {
	t.dirty = true
	t.generation++
}

// SetRules replaces every rule.
func (t *Tokenizer) SetRules(rules []*Rule) error {
	if slices.Contains(rules, nil) {
		return fmt.Errorf("%w: rules must not contain nil", ErrInvalidArgument)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rules = slices.Clone(rules)
	t.invalidate()
	return nil
}

// AddRule inserts rule according to mode.
func (t *Tokenizer) AddRule(rule *Rule, mode AddMode) error {
	return t.AddRules([]*Rule{rule}, mode)
}

// AddRules inserts each rule, in order, according to mode.
func (t *Tokenizer) AddRules(rules []*Rule, mode AddMode) error {
	if slices.Contains(rules, nil) {
		return fmt.Errorf("%w: given rule must be a *Rule", ErrInvalidArgument)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	updated := slices.Clone(t.rules)
	for _, rule := range rules {
		updated = slices.Insert(updated, insertIndex(updated, rule.tokenType, mode), rule)
	}
	t.rules = updated
	t.invalidate()
	return nil
}

func insertIndex(rules []*Rule, tt TokenType, mode AddMode) int {
	first, last := -1, -1
	for i, r := range rules {
		if r.tokenType == tt {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return len(rules)
	}
	switch mode {
	case AddBeforeFirst:
		return first
	case AddAfterFirst:
		return first + 1
	case AddBeforeLast:
		return last
	case AddAfterLast:
		return last + 1
	}
	return len(rules)
}

// RemoveRule removes rules having the same token type as rule.
func (t *Tokenizer) RemoveRule(rule *Rule, mode RemoveMode) error {
	if rule == nil {
		return fmt.Errorf("%w: given rule must be a *Rule", ErrInvalidArgument)
	}
	t.RemoveType(rule.tokenType, mode)
	return nil
}

// RemoveType removes rules of type tt according to mode and returns how
// many were removed.
func (t *Tokenizer) RemoveType(tt TokenType, mode RemoveMode) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	var updated []*Rule
	removed := 0
	switch mode {
	case RemoveAll:
		updated = slices.DeleteFunc(slices.Clone(t.rules), func(r *Rule) bool { return r.tokenType == tt })
		removed = len(t.rules) - len(updated)
	default:
		index := -1
		if mode == RemoveFirst {
			index = slices.IndexFunc(t.rules, func(r *Rule) bool { return r.tokenType == tt })
		} else {
			for i := len(t.rules) - 1; i >= 0; i-- {
				if t.rules[i].tokenType == tt {
					index = i
					break
				}
			}
		}
		if index < 0 {
			return 0
		}
		updated = slices.Delete(slices.Clone(t.rules), index, index+1)
		removed = 1
	}

	if removed > 0 {
		t.rules = updated
		t.invalidate()
	}
	return removed
}

// Rules returns the rules, in matching order.
func (t *Tokenizer) Rules() []*Rule {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.rules)
}

// MultiLineRules returns the rules defining multi-line start/end markers.
func (t *Tokenizer) MultiLineRules() []*Rule {
	t.mu.Lock()
	defer t.mu.Unlock()
	var rules []*Rule
	for _, r := range t.rules {
		if len(r.multiLine) > 0 {
			rules = append(rules, r)
		}
	}
	return rules
}

// Indent returns the indent width: 0 when disabled, AutoIndent when
// detected from the text.
func (t *Tokenizer) Indent() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.indent
}

// SetIndent sets the indent width used to produce INDENT/DEDENT tokens.
// 0 disables them, any negative value means AutoIndent.
func (t *Tokenizer) SetIndent(width int) {
	if width < 0 {
		width = AutoIndent
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if width != t.indent {
		t.indent = width
		t.invalidate()
	}
}

// SimplifySpaces reports if whitespace runs inside tokens are collapsed.
func (t *Tokenizer) SimplifySpaces() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.simplifySpaces
}

// SetSimplifySpaces sets if whitespace runs inside tokens (comments
// excepted) are collapsed into one space: 'set    value' → 'set value'.
func (t *Tokenizer) SetSimplifySpaces(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if enabled != t.simplifySpaces {
		t.simplifySpaces = enabled
		t.invalidate()
	}
}

// MassUpdate reports if the tokenizer is in mass update mode.
func (t *Tokenizer) MassUpdate() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cache.massUpdate
}

// SetMassUpdate toggles mass update mode. Use it around bursts of
// Tokenize calls, like tokenizing every line of a file: cache ordering and
// cleanup are suspended until the mode is turned off.
func (t *Tokenizer) SetMassUpdate(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cache.setMassUpdate(enabled)
}

// ClearCache empties the cache when full is true, otherwise evicts entries
// unused for more than two minutes (the five most recent are kept).
func (t *Tokenizer) ClearCache(full bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if full {
		t.cache.clear()
		t.log.Debug().Msg("tokenizer cache cleared")
		return
	}
	t.cache.sweep(true)
}

// CacheStats returns cache counters.
func (t *Tokenizer) CacheStats() CacheStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cache.stats()
}

// CacheLastAccess returns when the cached result for text was last used.
func (t *Tokenizer) CacheLastAccess(text string) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cache.lastAccess(digest(text))
}

// Pattern returns the combined regular expression, compiling it if needed.
func (t *Tokenizer) Pattern() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.compile()
	if t.pattern == nil {
		return ""
	}
	return t.pattern.String()
}

// compile rebuilds the combined expression. Must be called with the lock held.
func (t *Tokenizer) compile() {
	if !t.dirty {
		return
	}
	t.dirty = false
	t.cache.clear()

	parts := make([]string, 0, len(t.rules))
	for _, r := range t.rules {
		if r.core == "" {
			continue
		}
		if r.caseInsensitive {
			parts = append(parts, "(?i:"+r.core+")")
		} else {
			parts = append(parts, "(?:"+r.core+")")
		}
	}
	t.pattern = nil
	if len(parts) == 0 {
		return
	}
	pattern, err := regexp.Compile("(?m)" + strings.Join(parts, "|"))
	if err != nil {
		t.log.Error().Err(err).Msg("cannot compile tokenizer rules")
		return
	}
	t.pattern = pattern
	t.log.Debug().Int("rules", len(t.rules)).Msg("tokenizer rules compiled")
}

// Tokenize splits text into tokens. Identical texts return the same cached
// *Tokens until the rules or options change.
func (t *Tokenizer) Tokenize(text string) *Tokens {
	t.mu.Lock()
	t.compile()
	if text == "" || len(t.rules) == 0 {
		t.mu.Unlock()
		return newTokens(text, nil)
	}

	key := digest(text)
	if tokens, ok := t.cache.get(key); ok {
		t.cache.sweep(false)
		t.mu.Unlock()
		return tokens
	}

	s := &scanner{
		rules:          t.rules,
		pattern:        t.pattern,
		indentWidth:    t.indent,
		simplifySpaces: t.simplifySpaces,
	}
	generation := t.generation
	t.mu.Unlock()

	tokens := s.scan(text)

	t.mu.Lock()
	defer t.mu.Unlock()
	if generation == t.generation {
		t.cache.put(key, tokens)
		t.cache.sweep(false)
	}
	return tokens
}

// TokenizeReader reads r entirely and tokenizes its content.
func (t *Tokenizer) TokenizeReader(r io.Reader) (*Tokens, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cannot read text to tokenize: %w", err)
	}
	return t.Tokenize(string(data)), nil
}

// Complete returns the auto-completions of every rule matching search.
func (t *Tokenizer) Complete(search string) []Match {
	var found []Match
	for _, r := range t.Rules() {
		found = append(found, r.Complete(search)...)
	}
	return found
}
