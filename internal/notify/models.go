package notify

import (
	"time"

	"github.com/lib/pq"
)

type Notification struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"index;not null" json:"user_id"`
	Title     string    `gorm:"not null" json:"title"`
	Message   string    `gorm:"not null" json:"message"`
	Type      string    `gorm:"default:'general'" json:"type"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// Broadcast records one fan-out send: who sent what to whom.
type Broadcast struct {
	ID         string         `gorm:"primaryKey" json:"id"`
	SenderID   string         `gorm:"not null" json:"sender_id"`
	Title      string         `gorm:"not null" json:"title"`
	Message    string         `gorm:"not null" json:"message"`
	Type       string         `gorm:"default:'general'" json:"type"`
	Recipients pq.StringArray `gorm:"type:text[]" json:"recipients"`
	CreatedAt  time.Time      `json:"created_at"`
}

// PushSubscription is one browser push endpoint, keyed by endpoint URL so
// re-subscribing the same browser upserts instead of duplicating.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey" json:"endpoint"`
	UserID    string    `gorm:"index;not null" json:"user_id"`
	Keys      string    `gorm:"type:jsonb" json:"keys"`
	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string     { return "notify.notifications" }
func (Broadcast) TableName() string        { return "notify.broadcasts" }
func (PushSubscription) TableName() string { return "notify.push_subscriptions" }
