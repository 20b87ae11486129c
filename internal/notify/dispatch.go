package notify

import (
	"errors"
	"log"
	"time"

	"github.com/CampusTrack/CT-Backend/internal/db"
	"github.com/CampusTrack/CT-Backend/internal/utils"
	"github.com/lib/pq"
)

// Pusher delivers a best-effort push to one subscription. Delivery is a
// boundary concern; the default implementation only logs.
type Pusher interface {
	Push(sub PushSubscription, title, message string) error
}

type logPusher struct{}

func (logPusher) Push(sub PushSubscription, title, message string) error {
	log.Printf("[notify] push to %s: %s", sub.UserID, title)
	return nil
}

var pusher Pusher = logPusher{}

// SetPusher swaps in a real push delivery implementation.
func SetPusher(p Pusher) {
	if p != nil {
		pusher = p
	}
}

// userRecord is a thin projection of the auth users table.
type userRecord struct {
	UserID string
	Role   string
}

func (userRecord) TableName() string { return "app_auth.users" }

// AllStudentIDs returns the IDs of every student account, the default
// recipient set for emergency broadcasts.
func AllStudentIDs() ([]string, error) {
	var users []userRecord
	if err := db.DB.Find(&users, "role = ?", "STUDENT").Error; err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.UserID)
	}
	return ids, nil
}

// Send stores one notification row per recipient plus a broadcast record,
// then pushes best-effort. Push failures are logged per subscription and
// never fail the send.
func Send(senderID, title, message, typ string, recipients []string) (Broadcast, error) {
	if len(recipients) == 0 {
		return Broadcast{}, errors.New("no recipients")
	}

	now := time.Now()

	rows := make([]Notification, 0, len(recipients))
	for _, userID := range recipients {
		rows = append(rows, Notification{
			ID:        utils.GenerateUUID(),
			UserID:    userID,
			Title:     title,
			Message:   message,
			Type:      typ,
			CreatedAt: now,
		})
	}

	if err := db.DB.Create(&rows).Error; err != nil {
		return Broadcast{}, err
	}

	broadcast := Broadcast{
		ID:         utils.GenerateUUID(),
		SenderID:   senderID,
		Title:      title,
		Message:    message,
		Type:       typ,
		Recipients: pq.StringArray(recipients),
		CreatedAt:  now,
	}
	if err := db.DB.Create(&broadcast).Error; err != nil {
		return Broadcast{}, err
	}

	var subs []PushSubscription
	if err := db.DB.Find(&subs, "user_id IN ?", recipients).Error; err != nil {
		log.Printf("[notify] push subscription lookup failed: %v", err)
		return broadcast, nil
	}
	for _, sub := range subs {
		if err := pusher.Push(sub, title, message); err != nil {
			log.Printf("[notify] push to %s failed: %v", sub.UserID, err)
		}
	}

	return broadcast, nil
}
