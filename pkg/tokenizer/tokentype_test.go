package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterTokenType(t *testing.T) {
	tt, err := RegisterTokenType("REG_TEST", "RegTest", "Registered from a test")
	require.NoError(t, err)
	require.Equal(t, TokenType("REG_TEST"), tt)
	require.True(t, tt.Registered())
	require.Equal(t, "RegTest", tt.DisplayID())
	require.Equal(t, "Registered from a test", tt.Description())
	require.Contains(t, RegisteredTokenTypes(), tt)

	again, err := RegisterTokenType("REG_TEST", "RegTest", "Registered from a test")
	require.NoError(t, err)
	require.Equal(t, tt, again)

	_, err = RegisterTokenType("REG_TEST", "Other", "Registered from a test")
	require.ErrorIs(t, err, ErrInvalidArgument)

	noDisplay, err := RegisterTokenType("REG_TEST_NO_DISPLAY", "", "")
	require.NoError(t, err)
	require.Equal(t, "REG_TEST_NO_DISPLAY", noDisplay.DisplayID())
}

func TestRegisterTokenTypeErrors(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		display string
		desc    string
	}{
		{"Empty id", "", "Empty", ""},
		{"Redefined built-in", string(Newline), "Line feed", "Another description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RegisterTokenType(tt.id, tt.display, tt.desc)
			require.ErrorIs(t, err, ErrInvalidArgument)
		})
	}

	require.Panics(t, func() { MustRegisterTokenType("", "", "") })
}

func TestBuiltinTokenTypes(t *testing.T) {
	tests := []struct {
		tt      TokenType
		display string
	}{
		{Unknown, "Unknown"},
		{Newline, "New line"},
		{Space, "Space"},
		{Indent, "Indent"},
		{Dedent, "Dedent"},
		{WrongIndent, "WrongIndent"},
		{WrongDedent, "WrongDedent"},
		{Comment, "Comment"},
	}

	for _, tt := range tests {
		t.Run(tt.tt.String(), func(t *testing.T) {
			require.True(t, tt.tt.Registered())
			require.Equal(t, tt.display, tt.tt.DisplayID())
			require.NotEmpty(t, tt.tt.Description())

			same, err := RegisterTokenType(string(tt.tt), tt.display, tt.tt.Description())
			require.NoError(t, err)
			require.Equal(t, tt.tt, same)
		})
	}

	unregistered := TokenType("NEVER_REGISTERED")
	require.False(t, unregistered.Registered())
	require.Equal(t, "NEVER_REGISTERED", unregistered.DisplayID())
	require.Equal(t, "", unregistered.Description())
}
