package weather

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/CampusTrack/CT-Backend/internal/notify"
	"github.com/CampusTrack/CT-Backend/internal/utils"
)

var (
	client     *Client
	classifier *Classifier
)

// Init wires the feed client and classifier from env config. Unlike the
// DB-backed modules there is no schema to migrate; classifier state is
// in-memory by design (a restart simply re-opens the cooldown window).
func Init() {
	cfg := LoadFromEnv()
	client = NewClient(cfg)
	classifier = NewClassifier(client, cfg)
	log.Printf("[weather] monitoring %.4f,%.4f every %s", cfg.Lat, cfg.Lng, cfg.PollInterval)
}

// AlertsHandler handles GET /weather/alerts — the currently qualifying
// feed alerts, for the admin dashboard's weather panel.
func AlertsHandler(w http.ResponseWriter, r *http.Request) {
	alerts, err := client.FetchAlerts(r.Context())
	if err != nil {
		log.Printf("[weather] fetch failed: %v", err)
		http.Error(w, "Failed to check weather", http.StatusBadGateway)
		return
	}

	filtered := FilterAlerts(alerts)
	if filtered == nil {
		filtered = []FeedAlert{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(filtered)
}

// EnableHandler handles POST /weather/auto/enable.
func EnableHandler(w http.ResponseWriter, r *http.Request) {
	// The loop outlives the request; tie it to the server, not r.Context().
	classifier.Enable(context.Background())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"enabled": true})
}

// DisableHandler handles POST /weather/auto/disable.
func DisableHandler(w http.ResponseWriter, r *http.Request) {
	classifier.Disable()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"enabled": false})
}

// StatusHandler handles GET /weather/auto/status.
func StatusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"enabled":          classifier.Enabled(),
		"pending_proposal": classifier.Pending() != nil,
	})
}

// ProposalHandler handles GET /weather/proposal.
func ProposalHandler(w http.ResponseWriter, r *http.Request) {
	proposal := classifier.Pending()
	if proposal == nil {
		http.Error(w, "No pending proposal", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(proposal)
}

// ConfirmHandler handles POST /weather/proposal/confirm — the admin
// approval that actually broadcasts the proposal to every student.
func ConfirmHandler(w http.ResponseWriter, r *http.Request) {
	adminID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	proposal := classifier.TakePending()
	if proposal == nil {
		http.Error(w, "No pending proposal", http.StatusNotFound)
		return
	}

	recipients, err := notify.AllStudentIDs()
	if err != nil {
		http.Error(w, "Failed to resolve recipients", http.StatusInternalServerError)
		return
	}
	if len(recipients) == 0 {
		http.Error(w, "No students to notify", http.StatusConflict)
		return
	}

	broadcast, err := notify.Send(adminID, proposal.Title, proposal.Message, proposal.Type, recipients)
	if err != nil {
		http.Error(w, "Failed to send broadcast", http.StatusInternalServerError)
		return
	}

	log.Printf("[weather] proposal confirmed by %s, notified %d students", adminID, len(recipients))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":      true,
		"broadcast_id": broadcast.ID,
		"count":        len(recipients),
	})
}

// DismissHandler handles POST /weather/proposal/dismiss.
func DismissHandler(w http.ResponseWriter, r *http.Request) {
	if classifier.TakePending() == nil {
		http.Error(w, "No pending proposal", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}
