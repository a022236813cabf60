package main

import (
	"hrs/src/types"
	"net/http"

	"github.com/gin-gonic/gin"
)

func draftHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		PUT("/drafts", func(ctx *gin.Context) {
			var body types.CreateDraftRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			sessionKey := ctx.GetString("session")
			draft, err := draftManager.CreateOrUpdate(ctx, sessionKey, &body)
			if err != nil {
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": draft})
		}).
		GET("/drafts", func(ctx *gin.Context) {
			sessionKey := ctx.GetString("session")
			draft, err := draftManager.Get(ctx, sessionKey)
			if err != nil {
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": draft})
		})
	return g
}
