package main

import (
	"hrs/src/config"
	"hrs/src/search"
	"hrs/src/types"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func availabilityHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/availability", func(ctx *gin.Context) {
			var query types.AvailabilityQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			checkIn, _ := time.Parse(config.DATE_PARSE_FORMAT, query.CheckIn)
			checkOut, _ := time.Parse(config.DATE_PARSE_FORMAT, query.CheckOut)
			params := search.Params{
				HotelID:       query.HotelID,
				RoomTypeID:    query.RoomTypeID,
				CheckIn:       checkIn,
				CheckOut:      checkOut,
				Guests:        query.Guests,
				MinPriceCents: query.MinPrice,
				MaxPriceCents: query.MaxPrice,
				Amenities:     query.Amenities,
			}
			if results, ok := availabilityCache.Get(ctx, &params); ok {
				ctx.JSON(http.StatusOK, gin.H{"data": results, "count": len(results), "cached": true})
				return
			}
			results, err := searchService.Search(ctx, params)
			if err != nil {
				abortWithError(ctx, err)
				return
			}
			availabilityCache.Set(ctx, &params, results)
			ctx.JSON(http.StatusOK, gin.H{"data": results, "count": len(results)})
		})
	return g
}
