package tracking

import (
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/CampusTrack/CT-Backend/internal/db"
	"github.com/CampusTrack/CT-Backend/internal/utils"
	"gorm.io/gorm/clause"
)

func validCoords(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// LocationHandler handles POST /tracking/location — one sample from the
// caller's own device.
func LocationHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Lat      *float64 `json:"lat"`
		Lng      *float64 `json:"lng"`
		Accuracy *float64 `json:"accuracy"`
	}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if body.Lat == nil || body.Lng == nil || !validCoords(*body.Lat, *body.Lng) {
		http.Error(w, "Invalid coordinates", http.StatusBadRequest)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sample := LocationSample{
		ID:        utils.GenerateUUID(),
		UserID:    userID,
		Lat:       *body.Lat,
		Lng:       *body.Lng,
		Accuracy:  body.Accuracy,
		Timestamp: time.Now(),
	}

	if err := db.DB.Create(&sample).Error; err != nil {
		http.Error(w, "Failed to store location", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(sample)
}

// StatusHandler handles POST /tracking/status — the caller's own presence
// flag. The flag is an explicit opt-in, not derived from sample cadence.
func StatusHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Sharing *bool `json:"is_sharing"`
	}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if body.Sharing == nil {
		http.Error(w, "Invalid status", http.StatusBadRequest)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	flag := PresenceFlag{
		UserID:    userID,
		Sharing:   *body.Sharing,
		UpdatedAt: time.Now(),
	}

	err := db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"sharing", "updated_at"}),
	}).Create(&flag).Error
	if err != nil {
		http.Error(w, "Failed to update status", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true, "is_sharing": flag.Sharing})
}

// LocationsHandler handles GET /tracking/locations — the aggregated view
// for the admin map. Role gating happens in the route group.
func LocationsHandler(w http.ResponseWriter, r *http.Request) {
	views, err := AggregateViews()
	if err != nil {
		http.Error(w, "Failed to fetch locations", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(views); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
