package main

import (
	"context"
	"fmt"
	"hrs/src/booking"
	"hrs/src/lib"
	"hrs/src/types"
	"log"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeqown/go-qrcode"
)

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/bookings", func(ctx *gin.Context) {
			var body types.ConfirmBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			// A draft key in the body takes priority; otherwise fall back to
			// the caller's own session draft, then to an inline stay.
			draftKey := body.DraftKey
			if draftKey == nil && body.Stay == nil {
				sessionKey := ctx.GetString("session")
				if sessionKey != "" {
					draftKey = &sessionKey
				}
			}
			result, err := reservations.Confirm(ctx, booking.ConfirmInput{
				DraftKey:      draftKey,
				Stay:          body.Stay,
				Guest:         body.Guest,
				GuestRef:      body.GuestRef,
				PaymentIntent: body.PaymentIntent,
			})
			if err != nil {
				abortWithError(ctx, err)
				return
			}
			go availabilityCache.Invalidate(context.Background())
			ctx.JSON(http.StatusCreated, gin.H{"data": result})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			result, err := bookingStore.GetByID(ctx, params.ID)
			if err != nil {
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": result})
		}).
		POST("/bookings/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			// Body is optional; an empty request cancels without a reason.
			var body types.CancelBookingRequestBody
			_ = ctx.ShouldBindJSON(&body)
			var reason *string
			if body.Reason != "" {
				reason = &body.Reason
			}
			result, err := reservations.Cancel(ctx, booking.CancelInput{
				BookingID: params.ID,
				Reason:    reason,
			})
			if err != nil {
				abortWithError(ctx, err)
				return
			}
			go availabilityCache.Invalidate(context.Background())
			ctx.JSON(http.StatusOK, gin.H{"data": result})
		}).
		GET("/bookings/:id/qrcode", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			result, err := bookingStore.GetByID(ctx, params.ID)
			if err != nil {
				abortWithError(ctx, err)
				return
			}
			rd := lib.GetRedisClient()
			cacheKey := fmt.Sprintf("qrcode:%s", result.ReferenceCode)
			filepath := rd.Get(context.Background(), cacheKey).Val()
			if filepath == "" {
				tempdir := os.Getenv("TEMP_DIR")
				qrc, err := qrcode.New(result.ReferenceCode)
				if err != nil {
					abortWithError(ctx, err)
					return
				}
				filepath = path.Join(tempdir, fmt.Sprintf("%s.jpeg", result.ReferenceCode))
				if err := qrc.Save(filepath); err != nil {
					log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
					abortWithError(ctx, err)
					return
				}
				rd.SetEx(context.Background(), cacheKey, filepath, 2*time.Hour)
			}
			ctx.FileAttachment(filepath, "booking.jpeg")
		})
	return g
}
