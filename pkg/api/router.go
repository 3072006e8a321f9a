package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Establishes HTTP router.
func (service *Service) setupRouter(server *http.Server) {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(service.accessLogMiddleware())

	router.GET(PingURL, func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "pong")
	})

	router.POST(TokenizeURL, service.tokenize)
	router.POST(CompleteURL, service.complete)
	router.POST(TokenAtURL, service.tokenAt)

	router.GET(RulesURL, service.listRules)
	router.GET(StylesURL+"/:theme", service.getStyles)

	server.Handler = router
	service.router = router
}
