package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(endpoint string) *Client {
	cfg := testConfig()
	cfg.Endpoint = endpoint
	cfg.Lat = 12.8797
	cfg.Lng = 121.7740
	return NewClient(cfg)
}

// TestFetchAlerts_ParsesFeed verifies field mapping and unix-time
// conversion from the raw feed.
func TestFetchAlerts_ParsesFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("latitude") != "12.8797" {
			t.Errorf("expected latitude in query, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"alerts": [
				{
					"sender_name": "PAGASA",
					"event": "Typhoon Warning",
					"start": 1718000000,
					"end": 1718086400,
					"description": "Signal No. 3 hoisted.",
					"tags": ["wind", "rain"]
				}
			]
		}`))
	}))
	defer server.Close()

	alerts, err := testClient(server.URL).FetchAlerts(context.Background())
	if err != nil {
		t.Fatalf("FetchAlerts: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}

	a := alerts[0]
	if a.SenderName != "PAGASA" || a.Event != "Typhoon Warning" {
		t.Errorf("unexpected alert fields: %+v", a)
	}
	if !a.Start.Equal(time.Unix(1718000000, 0)) {
		t.Errorf("unexpected start time %v", a.Start)
	}
	if len(a.Tags) != 2 {
		t.Errorf("expected 2 tags, got %d", len(a.Tags))
	}
}

// TestFetchAlerts_EmptyFeed verifies a feed with no alerts is a valid
// empty result, not an error.
func TestFetchAlerts_EmptyFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	alerts, err := testClient(server.URL).FetchAlerts(context.Background())
	if err != nil {
		t.Fatalf("FetchAlerts: %v", err)
	}
	if len(alerts) != 0 {
		t.Fatalf("expected 0 alerts, got %d", len(alerts))
	}
}

// TestFetchAlerts_HTTPErrorSurfaces verifies a non-200 becomes an error
// the classifier can treat as a quiet cycle.
func TestFetchAlerts_HTTPErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	if _, err := testClient(server.URL).FetchAlerts(context.Background()); err == nil {
		t.Fatal("expected an error for HTTP 429")
	}
}
