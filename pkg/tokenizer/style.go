package tokenizer

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
)

const (
	DarkTheme  = "dark"
	LightTheme = "light"
)

// Style is how a token type is displayed.
type Style struct {
	Foreground string `yaml:"fg,omitempty" json:"fg,omitempty"` // #rrggbb or empty
	Background string `yaml:"bg,omitempty" json:"bg,omitempty"` // #rrggbb or empty
	Bold       bool   `yaml:"bold,omitempty" json:"bold,omitempty"`
	Italic     bool   `yaml:"italic,omitempty" json:"italic,omitempty"`
}

var (
	colorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

	// unknownStyle is returned when neither the theme nor the dark theme
	// defines a style.
	unknownStyle = Style{Foreground: "#d85151", Background: "#7b1b1b", Bold: true, Italic: true}
)

// TokenStyle maps token types to styles, per theme.
type TokenStyle struct {
	mu     sync.RWMutex
	theme  string
	styles map[string]map[TokenType]Style
}

// NewTokenStyle returns a TokenStyle with the default dark and light themes.
func NewTokenStyle() *TokenStyle {
	ts := &TokenStyle{theme: DarkTheme}
	ts.Reset()
	for _, theme := range []string{DarkTheme, LightTheme} {
		ts.styles[theme] = map[TokenType]Style{
			Unknown: unknownStyle,
			Newline: {},
			Space:   {},
		}
	}
	return ts
}

// Reset removes every style, default ones included.
func (ts *TokenStyle) Reset() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.styles = make(map[string]map[TokenType]Style)
}

// SetStyle defines the style of tt in theme.
func (ts *TokenStyle) SetStyle(theme string, tt TokenType, style Style) error {
	if theme == "" {
		return fmt.Errorf("%w: theme is empty", ErrInvalidArgument)
	}
	for _, color := range []string{style.Foreground, style.Background} {
		if color != "" && !colorRegex.MatchString(color) {
			return fmt.Errorf("%w: color '%s' is not in #rrggbb form", ErrInvalidArgument, color)
		}
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.styles[theme] == nil {
		ts.styles[theme] = make(map[TokenType]Style)
	}
	ts.styles[theme][tt] = style
	return nil
}

// Style returns the style of tt in the current theme.
func (ts *TokenStyle) Style(tt TokenType) Style {
	return ts.StyleFor(ts.Theme(), tt)
}

// StyleFor returns the style of tt in theme, falling back on the dark
// theme and then on the unknown style.
func (ts *TokenStyle) StyleFor(theme string, tt TokenType) Style {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	if style, ok := ts.styles[theme][tt]; ok {
		return style
	}
	if style, ok := ts.styles[DarkTheme][tt]; ok {
		return style
	}
	return unknownStyle
}

// Styles returns a copy of the styles defined for theme.
func (ts *TokenStyle) Styles(theme string) map[TokenType]Style {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	styles := make(map[TokenType]Style, len(ts.styles[theme]))
	for tt, style := range ts.styles[theme] {
		styles[tt] = style
	}
	return styles
}

// Themes returns the themes having at least one style, sorted.
func (ts *TokenStyle) Themes() []string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	themes := make([]string, 0, len(ts.styles))
	for theme := range ts.styles {
		themes = append(themes, theme)
	}
	sort.Strings(themes)
	return themes
}

func (ts *TokenStyle) Theme() string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.theme
}

// SetTheme changes the current theme. Unknown themes are ignored.
func (ts *TokenStyle) SetTheme(theme string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if _, ok := ts.styles[theme]; ok {
		ts.theme = theme
	}
}

// ANSI returns the escape sequence selecting the style on a 24-bit color
// terminal, or "" for the empty style.
func (s Style) ANSI() string {
	var codes []string
	if s.Bold {
		codes = append(codes, "1")
	}
	if s.Italic {
		codes = append(codes, "3")
	}
	if r, g, b, ok := rgb(s.Foreground); ok {
		codes = append(codes, fmt.Sprintf("38;2;%d;%d;%d", r, g, b))
	}
	if r, g, b, ok := rgb(s.Background); ok {
		codes = append(codes, fmt.Sprintf("48;2;%d;%d;%d", r, g, b))
	}
	if len(codes) == 0 {
		return ""
	}
	return "\x1b[" + strings.Join(codes, ";") + "m"
}

// Render wraps text with the style escape sequences.
func (s Style) Render(text string) string {
	code := s.ANSI()
	if code == "" || text == "" {
		return text
	}
	return code + text + "\x1b[0m"
}

func rgb(color string) (r, g, b uint8, ok bool) {
	if !colorRegex.MatchString(color) {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(color[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}
