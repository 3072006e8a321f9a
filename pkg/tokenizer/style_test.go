package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenStyle(t *testing.T) {
	ts := NewTokenStyle()
	require.Equal(t, DarkTheme, ts.Theme())
	require.Equal(t, []string{DarkTheme, LightTheme}, ts.Themes())
	require.Equal(t, unknownStyle, ts.Style(Unknown))
	require.Equal(t, Style{}, ts.Style(Newline))

	keyword := Style{Foreground: "#cc7832", Bold: true}
	require.NoError(t, ts.SetStyle(DarkTheme, kwType, keyword))
	require.NoError(t, ts.SetStyle("solarized", wordType, Style{Foreground: "#268bd2"}))

	tests := []struct {
		name     string
		theme    string
		tt       TokenType
		expected Style
	}{
		{"Defined", DarkTheme, kwType, keyword},
		{"Falls back on dark", LightTheme, kwType, keyword},
		{"Falls back on unknown", LightTheme, numType, unknownStyle},
		{"Custom theme", "solarized", wordType, Style{Foreground: "#268bd2"}},
		{"Unknown theme", "nope", kwType, keyword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, ts.StyleFor(tt.theme, tt.tt))
		})
	}

	ts.SetTheme("nope")
	require.Equal(t, DarkTheme, ts.Theme())
	ts.SetTheme("solarized")
	require.Equal(t, "solarized", ts.Theme())
	require.Equal(t, Style{Foreground: "#268bd2"}, ts.Style(wordType))

	styles := ts.Styles("solarized")
	require.Len(t, styles, 1)
	styles[kwType] = keyword
	require.Len(t, ts.Styles("solarized"), 1)

	ts.Reset()
	require.Empty(t, ts.Themes())
	require.Equal(t, unknownStyle, ts.StyleFor(DarkTheme, Newline))
}

func TestSetStyleErrors(t *testing.T) {
	ts := NewTokenStyle()

	tests := []struct {
		name  string
		theme string
		style Style
	}{
		{"Empty theme", "", Style{}},
		{"Short color", DarkTheme, Style{Foreground: "#fff"}},
		{"Named color", DarkTheme, Style{Background: "red"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, ts.SetStyle(tt.theme, kwType, tt.style), ErrInvalidArgument)
		})
	}
}

func TestStyleRender(t *testing.T) {
	tests := []struct {
		name     string
		style    Style
		expected string
	}{
		{"Empty", Style{}, "x"},
		{"Bold foreground", Style{Foreground: "#ff0000", Bold: true}, "\x1b[1;38;2;255;0;0mx\x1b[0m"},
		{"Italic background", Style{Background: "#00ff80", Italic: true}, "\x1b[3;48;2;0;255;128mx\x1b[0m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.style.Render("x"))
		})
	}
	require.Equal(t, "", Style{Bold: true}.Render(""))
}
