package tracking

import "time"

// LocationSample is one raw fix reported by a student device. Rows are
// append-only; nothing in the app updates or deletes them.
type LocationSample struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"index:idx_user_time,priority:1;not null" json:"user_id"`
	Lat       float64   `gorm:"not null" json:"lat"`
	Lng       float64   `gorm:"not null" json:"lng"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	Timestamp time.Time `gorm:"index:idx_user_time,priority:2;not null" json:"timestamp"`
}

// PresenceFlag records whether a user has explicitly opted into live
// sharing. Independent of sample cadence: a device that dies without
// calling stop leaves the flag raised with a stale last sample.
type PresenceFlag struct {
	UserID    string    `gorm:"primaryKey" json:"user_id"`
	Sharing   bool      `gorm:"not null;default:false" json:"sharing"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LocationSample) TableName() string { return "tracking.location_samples" }
func (PresenceFlag) TableName() string   { return "tracking.presence_flags" }
