package main

import (
	"context"
	"errors"
	"hrs/src/boot"
	"hrs/src/booking"
	"hrs/src/config"
	"hrs/src/db"
	"hrs/src/lib"
	"hrs/src/middlewares"
	"hrs/src/pricing"
	"hrs/src/search"
	"hrs/src/store"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"regexp"
	"strconv"
	"time"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	_ "github.com/joho/godotenv/autoload"
	"gorm.io/gorm"
)

const (
	apiPrefix string = "/api/v1"
)

// Wired once in main; the handler files read these.
var (
	searchService     *search.Service
	availabilityCache *search.ResultCache
	draftManager      *booking.DraftManager
	reservations      *booking.Engine
	catalogStore      store.CatalogRepo
	bookingStore      store.BookingRepo
)

var staydate validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := time.Parse(config.DATE_PARSE_FORMAT, date)
	return err == nil
}

var afterdate validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	datetime, err := time.Parse(config.DATE_PARSE_FORMAT, date)
	if err != nil {
		return false
	}
	field := fl.Parent().FieldByName(fl.Param())
	fieldValue, ok := field.Interface().(string)
	if !ok {
		return false
	}
	fielddatetime, err := time.Parse(config.DATE_PARSE_FORMAT, fieldValue)
	if err != nil {
		return false
	}
	return datetime.After(fielddatetime)
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		mm := os.Getenv("MAINTENANCE_MODE")
		atoi, err := strconv.ParseBool(mm)
		if err == nil && atoi {
			err := errors.New("server is under maintenance")
			log.Println(err.Error())
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, err.Error())
			return
		}
	})
	return g
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

// statusForError maps the reservation core's sentinel errors onto HTTP
// status codes. Anything unrecognized is a 500, and that includes
// ErrRateMissing: a night without a price row is a data fault to log for
// operators, not a caller mistake to echo back.
func statusForError(err error) int {
	switch {
	case errors.Is(err, booking.ErrValidation),
		errors.Is(err, search.ErrInvalidDateRange):
		return http.StatusBadRequest
	case errors.Is(err, booking.ErrBookingNotFound),
		errors.Is(err, booking.ErrDraftNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrDraftExpired):
		return http.StatusGone
	case errors.Is(err, booking.ErrInsufficientInventory),
		errors.Is(err, booking.ErrCannotCancel):
		return http.StatusConflict
	case errors.Is(err, booking.ErrInvalidPromoCode),
		pricing.IsPromoError(err),
		errors.Is(err, pricing.ErrAddOnQuantity),
		errors.Is(err, pricing.ErrAddOnInactive):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(ctx *gin.Context, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		log.Printf("Unexpected error on %s: %s\n", ctx.FullPath(), err.Error())
		ctx.Status(status)
		return
	}
	ctx.JSON(status, gin.H{"error": err.Error()})
}

func initLogger() {
	cwd, _ := os.Getwd()
	serverLogs := path.Join(cwd, "logs", "server.log")
	apiLogs := path.Join(cwd, "logs", "api.log")
	gin.ForceConsoleColor()

	f, _ := os.Create(apiLogs)
	gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	log.SetOutput(&lumberjack.Logger{
		Filename:   serverLogs,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	}
	initLogger()

	gdb := boot.InitDb()
	if err := lib.PingRedis(context.Background()); err != nil {
		log.Printf("Error reaching redis, availability caching disabled: %s\n", err.Error())
	}

	inventoryStore := store.NewInventoryStore(gdb)
	draftStore := store.NewDraftRepo(gdb)
	bookingStore = store.NewBookingRepo(gdb)
	promoStore := store.NewPromoRepo(gdb)
	catalogStore = store.NewCatalogRepo(gdb)

	searchService = search.NewService(inventoryStore, catalogStore)
	availabilityCache = search.NewResultCache(lib.GetRedisClient(), 2*time.Minute)
	draftManager = booking.NewDraftManager(draftStore, promoStore, catalogStore, searchService)
	reservations = booking.NewEngine(
		inventoryStore, bookingStore, draftStore, promoStore, catalogStore, searchService,
		booking.WithPayments(lib.StripePayments{}),
		booking.WithNotifier(booking.KafkaNotifier{}),
	)

	boot.InitScheduler(draftStore, bookingStore)
	go boot.InitBroker()

	router := setupRouter()

	appHost := os.Getenv("APP_HOST")
	if apiEnv == "local" {
		router.Use(cors.Default())
	} else {
		cc := cors.DefaultConfig()
		cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PATCH", "PUT", "DELETE", "HEAD")
		cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization", "x-secret")
		cc.AllowOriginFunc = func(origin string) bool {
			match, _ := regexp.MatchString(appHost, origin)
			if match {
				return true
			}
			match, _ = regexp.MatchString("app:mobile", origin)
			return match
		}
		cc.AllowCredentials = true
		cc.AllowAllOrigins = false
		router.Use(cors.New(cc))
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("staydate", staydate)
		v.RegisterValidation("afterdate", afterdate)
	}

	router = maintenanceModeMiddleware(router)

	apiv1 := apiv1Group(router)
	apiv1.Use(middlewares.GuestSession)
	{
		apiv1 = hotelHandlers(apiv1)
		apiv1 = availabilityHandlers(apiv1)
		apiv1 = draftHandlers(apiv1)
		apiv1 = bookingHandlers(apiv1)
	}

	defer func() {
		boot.StopScheduler()
		if sqlDB, err := db.GetDb().DB(); err == nil {
			sqlDB.Close()
		}
	}()

	if os.Getenv("TLS_ENABLE") == "true" {
		cwd, _ := os.Getwd()
		certpath := path.Join(cwd, "certificates", "localhost.pem")
		keypath := path.Join(cwd, "certificates", "localhost-key.pem")
		if err := router.RunTLS(":9090", certpath, keypath); err != nil {
			log.Fatalf("Failed to start server: %s", err)
		}
	}
	if err := router.Run(":9090"); err != nil {
		log.Fatalf("Failed to start server: %s", err)
	}
}
