package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spicery/ruletok/pkg/tokenizer"
)

type CompleteRequest struct {
	Search string `json:"search" binding:"required"`
}

type CompletionResponse struct {
	Text        string              `json:"text"`
	Label       string              `json:"label"`
	Description string              `json:"description,omitempty"`
	Type        tokenizer.TokenType `json:"type"`
	Char        string              `json:"char,omitempty"`
}

func (service *Service) complete(ctx *gin.Context) {
	var req CompleteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, NewErrorResponse(ErrInvalidParams, ExtractErrorFields(err)...))
		return
	}

	matches := service.tokenizer.Complete(req.Search)
	resp := make([]CompletionResponse, 0, len(matches))
	for _, m := range matches {
		resp = append(resp, CompletionResponse{
			Text:        m.Text,
			Label:       m.Completion.Label,
			Description: m.Completion.Description,
			Type:        m.Rule.Type(),
			Char:        m.Rule.AutoCompletionChar(),
		})
	}

	ctx.JSON(http.StatusOK, resp)
}
