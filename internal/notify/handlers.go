package notify

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/CampusTrack/CT-Backend/internal/db"
	"github.com/CampusTrack/CT-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm/clause"
)

// ListHandler handles GET /notifications — the caller's newest 50.
func ListHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var notifications []Notification
	err := db.DB.
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(50).
		Find(&notifications).Error
	if err != nil {
		http.Error(w, "Failed to fetch notifications", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(notifications)
}

// ReadHandler handles PUT /notifications/{id}/read with an ownership check.
func ReadHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")

	var notification Notification
	if err := db.DB.First(&notification, "id = ?", id).Error; err != nil {
		http.Error(w, "Notification not found", http.StatusNotFound)
		return
	}

	if notification.UserID != userID {
		http.Error(w, "Unauthorized access to notification", http.StatusForbidden)
		return
	}

	if err := db.DB.Model(&notification).Update("is_read", true).Error; err != nil {
		http.Error(w, "Failed to update notification", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(notification)
}

// BroadcastHandler handles POST /notifications — fan a message out to a
// recipient list, or to every student with {"all_students": true}.
func BroadcastHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserIDs     []string `json:"user_ids"`
		AllStudents bool     `json:"all_students"`
		Title       string   `json:"title"`
		Message     string   `json:"message"`
		Type        string   `json:"type"`
	}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if body.Title == "" || body.Message == "" {
		http.Error(w, "Title and message are required", http.StatusBadRequest)
		return
	}

	senderID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	recipients := body.UserIDs
	if body.AllStudents {
		ids, err := AllStudentIDs()
		if err != nil {
			http.Error(w, "Failed to resolve recipients", http.StatusInternalServerError)
			return
		}
		recipients = ids
	}

	if len(recipients) == 0 {
		http.Error(w, "No recipients specified", http.StatusBadRequest)
		return
	}

	typ := body.Type
	if typ == "" {
		typ = "general"
	}

	broadcast, err := Send(senderID, body.Title, body.Message, typ, recipients)
	if err != nil {
		http.Error(w, "Failed to send notifications", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":      true,
		"broadcast_id": broadcast.ID,
		"count":        len(recipients),
	})
}

// SubscribeHandler handles POST /notifications/subscribe — upsert the
// caller's push subscription by endpoint.
func SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Endpoint string          `json:"endpoint"`
		Keys     json.RawMessage `json:"keys"`
	}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if body.Endpoint == "" {
		http.Error(w, "Endpoint is required", http.StatusBadRequest)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sub := PushSubscription{
		Endpoint:  body.Endpoint,
		UserID:    userID,
		Keys:      string(body.Keys),
		CreatedAt: time.Now(),
	}

	err := db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "keys"}),
	}).Create(&sub).Error
	if err != nil {
		http.Error(w, "Failed to save subscription", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}
