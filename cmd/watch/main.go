// Live watcher: logs in as a teacher or admin, polls the aggregated
// location view, and prints a transient alert whenever a student starts
// or stops sharing.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CampusTrack/CT-Backend/internal/poll"
	"github.com/CampusTrack/CT-Backend/internal/tracking"
	"github.com/joho/godotenv"
)

var (
	server   = flag.String("server", "http://localhost:5050", "Backend base URL")
	username = flag.String("username", "", "Account username (required)")
	password = flag.String("password", "", "Account password (required)")
	interval = flag.Duration("interval", 5*time.Second, "Poll interval")
)

type watcher struct {
	base string
	http *http.Client

	prev   []tracking.UserView
	polled bool
	alerts *tracking.AlertCenter
}

func (w *watcher) login(ctx context.Context) error {
	body, _ := json.Marshal(map[string]string{
		"username": *username,
		"password": *password,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.base+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// pollOnce fetches a snapshot and diffs it against the previous one. A
// failed fetch skips the cycle quietly; the next tick is the retry.
func (w *watcher) pollOnce(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.base+"/tracking/locations", nil)
	if err != nil {
		log.Printf("[watch] request: %v", err)
		return
	}

	resp, err := w.http.Do(req)
	if err != nil {
		log.Printf("[watch] poll failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[watch] poll returned HTTP %d", resp.StatusCode)
		return
	}

	var next []tracking.UserView
	if err := json.NewDecoder(resp.Body).Decode(&next); err != nil {
		log.Printf("[watch] decode: %v", err)
		return
	}

	if w.polled {
		fresh := tracking.Diff(w.prev, next)
		w.alerts.Push(fresh...)
		for _, a := range fresh {
			fmt.Printf("[%s] %s: %s (%d active)\n", a.Severity, a.Title, a.Message, len(w.alerts.Visible()))
		}
	}
	w.prev = next
	w.polled = true
}

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()

	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "-username and -password are required")
		os.Exit(1)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		log.Fatal(err)
	}

	w := &watcher{
		base:   *server,
		http:   &http.Client{Jar: jar, Timeout: 10 * time.Second},
		alerts: tracking.NewAlertCenter(),
	}

	ctx := context.Background()
	if err := w.login(ctx); err != nil {
		log.Fatalf("login failed: %v", err)
	}
	log.Printf("[watch] logged in as %s, polling every %s", *username, *interval)

	task := poll.New(*interval, w.pollOnce)
	task.Start(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	task.Stop()
}
