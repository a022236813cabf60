package main

import (
	"hrs/src/db"
	"hrs/src/models"
	"hrs/src/types"
	"net/http"

	"github.com/gin-gonic/gin"
)

func hotelHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/hotels", func(ctx *gin.Context) {
			var hotels []models.Hotel
			db := db.GetDb()
			if err := db.
				Order("name asc").
				Find(&hotels).
				Error; err != nil {
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": hotels, "count": len(hotels)})
		}).
		GET("/hotels/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var hotel models.Hotel
			db := db.GetDb()
			if err := db.
				Where(&models.Hotel{ID: params.ID}).
				Preload("RoomTypes").
				Preload("RoomTypes.Amenities").
				First(&hotel).
				Error; err != nil {
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": hotel})
		}).
		GET("/room_types/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			roomType, err := catalogStore.GetRoomType(ctx, params.ID)
			if err != nil {
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": roomType})
		})
	return g
}
