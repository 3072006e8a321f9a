package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spicery/ruletok/pkg/tokenizer"
)

type TokenizeRequest struct {
	Text           *string `json:"text" binding:"required"` // "" is valid and yields no token
	Indent         *int    `json:"indent" binding:"omitempty,min=-1,max=16"`
	SimplifySpaces *bool   `json:"simplify_spaces"`
}

type TokenizeResponse struct {
	Count  int                `json:"count"`
	Tokens []*tokenizer.Token `json:"tokens"`
}

func (service *Service) tokenize(ctx *gin.Context) {
	var req TokenizeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, NewErrorResponse(ErrInvalidParams, ExtractErrorFields(err)...))
		return
	}

	if !service.checkTextSize(ctx, *req.Text) {
		return
	}

	tokens := service.tokenizerFor(req.Indent, req.SimplifySpaces).Tokenize(*req.Text)

	ctx.JSON(http.StatusOK, TokenizeResponse{
		Count:  tokens.Len(),
		Tokens: append(make([]*tokenizer.Token, 0, tokens.Len()), tokens.Slice()...),
	})
}

// checkTextSize aborts with 413 when text exceeds the configured limit.
func (service *Service) checkTextSize(ctx *gin.Context, text string) bool {
	if limit := service.config.MaxTextBytes; limit > 0 && int64(len(text)) > limit {
		err := fmt.Errorf("%w: %d bytes, limit is %d", ErrTextTooLarge, len(text), limit)
		ctx.JSON(http.StatusRequestEntityTooLarge, NewErrorResponse(err))
		return false
	}
	return true
}
