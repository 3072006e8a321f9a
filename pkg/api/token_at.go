package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spicery/ruletok/pkg/tokenizer"
)

type TokenAtRequest struct {
	Text   string `json:"text" binding:"required"`
	Column int    `json:"column" binding:"required,min=1"`
	Row    int    `json:"row" binding:"required,min=1"`
}

type TokenAtResponse struct {
	Token     *tokenizer.Token `json:"token"`
	Rendering string           `json:"rendering"`
}

func (service *Service) tokenAt(ctx *gin.Context) {
	var req TokenAtRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, NewErrorResponse(ErrInvalidParams, ExtractErrorFields(err)...))
		return
	}

	if !service.checkTextSize(ctx, req.Text) {
		return
	}

	tokens := service.tokenizer.Tokenize(req.Text)
	tok := tokens.TokenAt(req.Column, req.Row)
	if tok == nil {
		err := fmt.Errorf("%w (%d, %d)", ErrTokenNotFound, req.Column, req.Row)
		ctx.JSON(http.StatusNotFound, NewErrorResponse(err))
		return
	}

	ctx.JSON(http.StatusOK, TokenAtResponse{
		Token:     tok,
		Rendering: tokens.InTextToken(tok, true),
	})
}
