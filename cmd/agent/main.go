// Device agent: logs in as a student, opts into sharing, and feeds
// position fixes through the emission gate to the backend. Fixes come
// from stdin as NDJSON ({"lat":..,"lng":..,"accuracy":..} per line) or
// from a built-in random walk with -walk.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CampusTrack/CT-Backend/internal/tracking"
	"github.com/joho/godotenv"
)

var (
	server   = flag.String("server", "http://localhost:5050", "Backend base URL")
	username = flag.String("username", "", "Account username (required)")
	password = flag.String("password", "", "Account password (required)")
	walk     = flag.Bool("walk", false, "Generate a random walk instead of reading stdin")
	walkLat  = flag.Float64("lat", 14.5995, "Random walk start latitude")
	walkLng  = flag.Float64("lng", 120.9842, "Random walk start longitude")
)

// apiClient talks to the backend with the session cookie from login. It is
// both the emitter's sink and the tracker's presence setter.
type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(base string) (*apiClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &apiClient{
		base: base,
		http: &http.Client{Jar: jar, Timeout: 10 * time.Second},
	}, nil
}

func (c *apiClient) post(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s returned HTTP %d", path, resp.StatusCode)
	}
	return nil
}

func (c *apiClient) Login(ctx context.Context, username, password string) error {
	return c.post(ctx, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
}

func (c *apiClient) Send(ctx context.Context, fix tracking.Fix) error {
	return c.post(ctx, "/tracking/location", map[string]interface{}{
		"lat":      fix.Lat,
		"lng":      fix.Lng,
		"accuracy": fix.Accuracy,
	})
}

func (c *apiClient) SetSharing(ctx context.Context, sharing bool) error {
	return c.post(ctx, "/tracking/status", map[string]bool{"is_sharing": sharing})
}

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()

	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "-username and -password are required")
		os.Exit(1)
	}

	client, err := newAPIClient(*server)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if err := client.Login(ctx, *username, *password); err != nil {
		log.Fatalf("login failed: %v", err)
	}
	log.Printf("[agent] logged in as %s", *username)

	fixes := make(chan tracking.Fix)
	tracker := tracking.NewTracker(tracking.NewEmitter(client), client)
	if err := tracker.Start(ctx, fixes); err != nil {
		log.Fatalf("start tracking: %v", err)
	}
	log.Println("[agent] sharing on")

	go func() {
		defer close(fixes)
		if *walk {
			randomWalk(fixes)
			return
		}
		readFixes(os.Stdin, fixes)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	tracker.Stop()
	log.Println("[agent] sharing off")
}

// positioningErrors maps the positioning layer's error codes to messages
// a student can act on.
var positioningErrors = map[string]string{
	"permission_denied":    "Location permission denied. Please allow location access in your device settings.",
	"position_unavailable": "Location information is unavailable. Please make sure GPS is enabled.",
	"timeout":              "Location request timed out. Please try again.",
}

func readFixes(f *os.File, out chan<- tracking.Fix) {
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var line struct {
			tracking.Fix
			Error string `json:"error"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			log.Printf("[agent] bad fix line: %v", err)
			continue
		}
		if line.Error != "" {
			msg, ok := positioningErrors[line.Error]
			if !ok {
				msg = "Positioning failed: " + line.Error
			}
			fmt.Fprintln(os.Stderr, msg)
			continue
		}
		out <- line.Fix
	}
}

// randomWalk emits a drifting fix every 5 seconds, roughly walking pace.
func randomWalk(out chan<- tracking.Fix) {
	lat, lng := *walkLat, *walkLng
	for {
		time.Sleep(5 * time.Second)
		lat += (rand.Float64() - 0.5) * 4e-4
		lng += (rand.Float64() - 0.5) * 4e-4
		out <- tracking.Fix{Lat: lat, Lng: lng}
	}
}
