package notify

import (
	"log"

	"github.com/CampusTrack/CT-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "notify"); err != nil {
		log.Fatal("Failed to ensure schema notify: ", err)
	}

	if err := db.DB.AutoMigrate(&Notification{}, &Broadcast{}, &PushSubscription{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}
}
