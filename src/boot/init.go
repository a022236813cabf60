package boot

import (
	"hrs/src/common"
	"hrs/src/config"
	"hrs/src/db"
	"hrs/src/lib"
	"hrs/src/models"
	"hrs/src/store"
	"log"
	"time"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.Hotel{},
		&models.Amenity{},
		&models.RoomType{},
		&models.AddOn{},
		&models.RoomInventory{},
		&models.RoomRate{},
		&models.Draft{},
		&models.Booking{},
		&models.BookingItem{},
		&models.BookingAddOn{},
		&models.PromoCode{},
		&models.TaxFeeRule{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitBroker() {
	go lib.KafkaCreateTopics(common.TopicBookingConfirmations, common.TopicBookingCancellations)
	go common.BookingNotificationsConsumer()
}

// InitScheduler wires the recurring housekeeping: the draft expiry sweep
// every few minutes and the daily no-show rollover.
func InitScheduler(drafts store.DraftRepo, bookings store.BookingRepo) {
	sweepEvery := config.DraftTTL() / 2
	if sweepEvery < time.Minute {
		sweepEvery = time.Minute
	}
	if _, err := lib.CreateCronJob(common.SweepExpiredDrafts, sweepEvery, drafts); err != nil {
		log.Printf("Error scheduling draft sweep: %s\n", err.Error())
	}
	if _, err := lib.CreateDailyJob(common.RolloverNoShows, 6, 0, bookings); err != nil {
		log.Printf("Error scheduling no-show rollover: %s\n", err.Error())
	}

	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	log.Println("Jobs in queue:", len(sched.Jobs()))
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}
