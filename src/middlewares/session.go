package middlewares

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const SessionCookie = "hrs_session"

// GuestSession assigns every caller an opaque session id via cookie. The
// draft endpoints key holds on it so an anonymous guest can come back to
// their quote without an account.
func GuestSession(ctx *gin.Context) {
	sid, err := ctx.Cookie(SessionCookie)
	if err != nil || sid == "" {
		sid = uuid.New().String()
		secure := os.Getenv("API_ENV") != "local"
		ctx.SetCookie(SessionCookie, sid, 30*24*3600, "/", "", secure, true)
	}
	ctx.Set("session", sid)
	ctx.Next()
}

func SecureHeaders(ctx *gin.Context) {
	ctx.Header("X-Frame-Options", "DENY")
	ctx.Header("X-Content-Type-Options", "nosniff")
	ctx.Header("Referrer-Policy", "strict-origin-when-cross-origin")
	ctx.Next()
}
