package tracking_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/CampusTrack/CT-Backend/internal/auth"
	"github.com/CampusTrack/CT-Backend/internal/db"
	"github.com/CampusTrack/CT-Backend/internal/middleware"
	"github.com/CampusTrack/CT-Backend/internal/tracking"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

var dbAvailable bool
var testServer *httptest.Server

func TestMain(m *testing.M) {
	_ = godotenv.Load("../../.env.local")

	if os.Getenv("DATABASE_URL") == "" {
		os.Exit(m.Run())
	}

	os.Setenv("PORT", "")

	db.Connect()
	dbAvailable = true

	auth.Init()
	tracking.Init()

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Mount("/auth", auth.SetupRoutes())
	r.Mount("/tracking", tracking.SetupRoutes())

	testServer = httptest.NewServer(r)
	defer testServer.Close()

	os.Exit(m.Run())
}

// loggedInClient creates a fresh user with the given role and returns a
// cookie-jar client that is already logged in, plus the user's ID.
func loggedInClient(t *testing.T, role middleware.Role) (*http.Client, string) {
	t.Helper()
	if !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	username := fmt.Sprintf("testuser_%s", uuid.New().String()[:8])
	password := "TestPass123!"
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}

	user := auth.User{
		UserID:         uuid.New().String(),
		Username:       username,
		DisplayName:    "Track Test",
		Role:           string(role),
		HashedPassword: string(hashed),
	}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	t.Cleanup(func() {
		db.DB.Where("user_id = ?", user.UserID).Delete(&tracking.LocationSample{})
		db.DB.Where("user_id = ?", user.UserID).Delete(&tracking.PresenceFlag{})
		db.DB.Where("user_id = ?", user.UserID).Delete(&auth.Session{})
		db.DB.Where("user_id = ?", user.UserID).Delete(&auth.User{})
	})

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New: %v", err)
	}
	client := &http.Client{Jar: jar}

	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := client.Post(testServer.URL+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /auth/login: %v", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	return client, user.UserID
}

func postJSON(t *testing.T, client *http.Client, path string, payload interface{}) *http.Response {
	t.Helper()
	body, _ := json.Marshal(payload)
	resp, err := client.Post(testServer.URL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// TestLocationWriteAndAggregation verifies the full write→read path: a
// student posts samples and presence, and a teacher sees the student on
// the map with current position, oldest-first trail, and presence flag.
func TestLocationWriteAndAggregation(t *testing.T) {
	student, studentID := loggedInClient(t, middleware.RoleStudent)
	teacher, _ := loggedInClient(t, middleware.RoleTeacher)

	// Two samples a moment apart; the second is "current."
	resp := postJSON(t, student, "/tracking/location", map[string]float64{"lat": 14.5995, "lng": 120.9842})
	drain(resp)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for first sample, got %d", resp.StatusCode)
	}
	time.Sleep(10 * time.Millisecond)
	resp = postJSON(t, student, "/tracking/location", map[string]float64{"lat": 14.6000, "lng": 120.9850})
	drain(resp)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for second sample, got %d", resp.StatusCode)
	}

	resp = postJSON(t, student, "/tracking/status", map[string]bool{"is_sharing": true})
	drain(resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for status write, got %d", resp.StatusCode)
	}

	aggResp, err := teacher.Get(testServer.URL + "/tracking/locations")
	if err != nil {
		t.Fatalf("GET /tracking/locations: %v", err)
	}
	defer aggResp.Body.Close()
	if aggResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from aggregation, got %d", aggResp.StatusCode)
	}

	var views []tracking.UserView
	if err := json.NewDecoder(aggResp.Body).Decode(&views); err != nil {
		t.Fatalf("decode aggregation: %v", err)
	}

	var found *tracking.UserView
	for i := range views {
		if views[i].ID == studentID {
			found = &views[i]
			break
		}
	}
	if found == nil {
		t.Fatalf("student %s missing from aggregated view", studentID)
	}
	if found.Lat != 14.6000 || found.Lng != 120.9850 {
		t.Errorf("expected current position to be the newest sample, got %v,%v", found.Lat, found.Lng)
	}
	if len(found.Trail) != 2 {
		t.Fatalf("expected trail of 2, got %d", len(found.Trail))
	}
	if found.Trail[0] != [2]float64{14.5995, 120.9842} {
		t.Errorf("expected oldest-first trail, got %v", found.Trail)
	}
	if !found.Sharing {
		t.Error("expected sharing true after status write")
	}
}

// TestAggregationRequiresPrivilegedRole verifies students cannot read the
// aggregated view.
func TestAggregationRequiresPrivilegedRole(t *testing.T) {
	student, _ := loggedInClient(t, middleware.RoleStudent)

	resp, err := student.Get(testServer.URL + "/tracking/locations")
	if err != nil {
		t.Fatalf("GET /tracking/locations: %v", err)
	}
	drain(resp)

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for student, got %d", resp.StatusCode)
	}
}

// TestInvalidCoordinatesRejected verifies malformed writes never reach
// the store.
func TestInvalidCoordinatesRejected(t *testing.T) {
	student, studentID := loggedInClient(t, middleware.RoleStudent)

	cases := []map[string]interface{}{
		{"lat": 95.0, "lng": 120.0},
		{"lat": 14.0, "lng": 200.0},
		{"lng": 120.0}, // missing lat
	}
	for _, payload := range cases {
		resp := postJSON(t, student, "/tracking/location", payload)
		drain(resp)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("payload %v: expected 400, got %d", payload, resp.StatusCode)
		}
	}

	var count int64
	db.DB.Model(&tracking.LocationSample{}).Where("user_id = ?", studentID).Count(&count)
	if count != 0 {
		t.Errorf("expected no stored samples after rejected writes, got %d", count)
	}
}

// TestUserWithoutSamplesExcluded verifies a sharing user with no samples
// never appears in the aggregation.
func TestUserWithoutSamplesExcluded(t *testing.T) {
	student, studentID := loggedInClient(t, middleware.RoleStudent)
	teacher, _ := loggedInClient(t, middleware.RoleTeacher)

	resp := postJSON(t, student, "/tracking/status", map[string]bool{"is_sharing": true})
	drain(resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status write failed: %d", resp.StatusCode)
	}

	aggResp, err := teacher.Get(testServer.URL + "/tracking/locations")
	if err != nil {
		t.Fatalf("GET /tracking/locations: %v", err)
	}
	defer aggResp.Body.Close()

	var views []tracking.UserView
	if err := json.NewDecoder(aggResp.Body).Decode(&views); err != nil {
		t.Fatalf("decode aggregation: %v", err)
	}
	for _, v := range views {
		if v.ID == studentID {
			t.Fatal("expected sample-less user to be excluded from the view")
		}
	}
}
