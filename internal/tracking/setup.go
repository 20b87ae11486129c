package tracking

import (
	"log"

	"github.com/CampusTrack/CT-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "tracking"); err != nil {
		log.Fatal("Failed to ensure schema tracking: ", err)
	}

	if err := db.DB.AutoMigrate(&LocationSample{}, &PresenceFlag{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}
}
