package api

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/spicery/ruletok/pkg/tokenizer"
)

type RuleResponse struct {
	Type            tokenizer.TokenType `json:"type"`
	Display         string              `json:"display"`
	Pattern         string              `json:"pattern"`
	Description     string              `json:"description,omitempty"`
	CaseInsensitive bool                `json:"case_insensitive"`
	IgnoreIndent    bool                `json:"ignore_indent"`
}

type StylesResponse struct {
	Theme  string                                  `json:"theme"`
	Styles map[tokenizer.TokenType]tokenizer.Style `json:"styles"`
}

func (service *Service) listRules(ctx *gin.Context) {
	rules := service.tokenizer.Rules()
	resp := make([]RuleResponse, 0, len(rules))
	for _, r := range rules {
		resp = append(resp, RuleResponse{
			Type:            r.Type(),
			Display:         r.Type().DisplayID(),
			Pattern:         r.Source(),
			Description:     r.Description(),
			CaseInsensitive: r.CaseInsensitive(),
			IgnoreIndent:    r.IgnoreIndent(),
		})
	}
	ctx.JSON(http.StatusOK, resp)
}

// getStyles returns the style of every registered token type in the theme,
// falling back the way highlighters do.
func (service *Service) getStyles(ctx *gin.Context) {
	theme := ctx.Param("theme")
	if !slices.Contains(service.styles.Themes(), theme) {
		err := fmt.Errorf("%w: %q", ErrUnknownTheme, theme)
		ctx.JSON(http.StatusNotFound, NewErrorResponse(err))
		return
	}

	styles := make(map[tokenizer.TokenType]tokenizer.Style)
	for _, tt := range tokenizer.RegisteredTokenTypes() {
		styles[tt] = service.styles.StyleFor(theme, tt)
	}
	ctx.JSON(http.StatusOK, StylesResponse{Theme: theme, Styles: styles})
}
