package tokenizer

import (
	"fmt"
	"sort"
	"sync"
)

// TokenType represents the category of a token. The string value is the
// stable id under which the type is registered.
type TokenType string

const (
	Unknown     TokenType = "UNKNOWN"      // Text not known by the grammar
	Newline     TokenType = "NEWLINE"      // A line feed
	Space       TokenType = "SPACE"        // Space characters
	Indent      TokenType = "INDENT"       // An indented block starts
	Dedent      TokenType = "DEDENT"       // An indented block ends
	WrongIndent TokenType = "WRONG_INDENT" // Indent not a multiple of the indent width
	WrongDedent TokenType = "WRONG_DEDENT" // Dedent not a multiple of the indent width
	Comment     TokenType = "COMMENT"      // Comment text
)

type tokenTypeInfo struct {
	displayID   string
	description string
	builtin     bool
}

var (
	registryMu sync.RWMutex
	registry   = map[TokenType]tokenTypeInfo{
		Unknown:     {"Unknown", "This value is not known in grammar and might not be interpreted", true},
		Newline:     {"New line", "A line feed", true},
		Space:       {"Space", "Space(s) character(s)", true},
		Indent:      {"Indent", "An indented block start", true},
		Dedent:      {"Dedent", "An indented block finished", true},
		WrongIndent: {"WrongIndent", "An indent is found but doesn't match expected indentation value", true},
		WrongDedent: {"WrongDedent", "A dedent is found but doesn't match expected indentation value", true},
		Comment:     {"Comment", "A comment text", true},
	}
)

// RegisterTokenType adds a token type to the registry so rules can use it.
// Registering the same id again with identical metadata returns the existing
// type; conflicting metadata or an attempt to redefine a built-in fails.
func RegisterTokenType(id, displayID, description string) (TokenType, error) {
	tt, info, err := newTokenTypeInfo(id, displayID, description)
	if err != nil {
		return "", err
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if existing, ok := registry[tt]; ok {
		if err := existing.conflict(tt, info); err != nil {
			return "", err
		}
		return tt, nil
	}

	registry[tt] = info
	return tt, nil
}

// checkTokenType tells if RegisterTokenType would accept the definition,
// without registering anything.
func checkTokenType(id, displayID, description string) (TokenType, tokenTypeInfo, error) {
	tt, info, err := newTokenTypeInfo(id, displayID, description)
	if err != nil {
		return "", info, err
	}
	if existing, ok := tt.info(); ok {
		if err := existing.conflict(tt, info); err != nil {
			return "", info, err
		}
	}
	return tt, info, nil
}

func newTokenTypeInfo(id, displayID, description string) (TokenType, tokenTypeInfo, error) {
	if id == "" {
		return "", tokenTypeInfo{}, fmt.Errorf("%w: token type id is empty", ErrInvalidArgument)
	}
	if displayID == "" {
		displayID = id
	}
	return TokenType(id), tokenTypeInfo{displayID: displayID, description: description}, nil
}

// conflict returns an error when other can't be registered over info.
func (info tokenTypeInfo) conflict(tt TokenType, other tokenTypeInfo) error {
	if info.displayID == other.displayID && info.description == other.description {
		return nil
	}
	if info.builtin {
		return fmt.Errorf("%w: token type '%s' is built in and can't be redefined", ErrInvalidArgument, tt)
	}
	return fmt.Errorf("%w: token type '%s' is already registered as '%s'", ErrInvalidArgument, tt, info.displayID)
}

// MustRegisterTokenType is like RegisterTokenType but panics on error.
func MustRegisterTokenType(id, displayID, description string) TokenType {
	tt, err := RegisterTokenType(id, displayID, description)
	if err != nil {
		panic(err)
	}
	return tt
}

// RegisteredTokenTypes returns every registered token type, sorted by id.
func RegisteredTokenTypes() []TokenType {
	registryMu.RLock()
	defer registryMu.RUnlock()

	types := make([]TokenType, 0, len(registry))
	for tt := range registry {
		types = append(types, tt)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

func (tt TokenType) info() (tokenTypeInfo, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	info, ok := registry[tt]
	return info, ok
}

// Registered reports whether the type is known to the registry.
func (tt TokenType) Registered() bool {
	_, ok := tt.info()
	return ok
}

// DisplayID returns the human readable name of the type.
func (tt TokenType) DisplayID() string {
	if info, ok := tt.info(); ok {
		return info.displayID
	}
	return string(tt)
}

// Description returns the registered description, or "" for unknown types.
func (tt TokenType) Description() string {
	info, _ := tt.info()
	return info.description
}

func (tt TokenType) String() string {
	return string(tt)
}
