package weather

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/CampusTrack/CT-Backend/internal/poll"
)

// typhoonKeywords gate which feed alerts qualify for an automated
// proposal. Matched case-insensitively against event and description.
var typhoonKeywords = []string{
	"typhoon",
	"storm",
	"cyclone",
	"hurricane",
	"signal no",
	"hanging amihan",
	"tropical depression",
}

// Feed is the slice of Client the classifier needs; tests inject fakes.
type Feed interface {
	FetchAlerts(ctx context.Context) ([]FeedAlert, error)
}

// Proposal is a broadcast the classifier wants an admin to confirm. It is
// never sent to students without that confirmation.
type Proposal struct {
	Title    string    `json:"title"`
	Message  string    `json:"message"`
	Type     string    `json:"type"`
	Event    string    `json:"event"`
	IssuedAt time.Time `json:"issued_at"`
}

// Classifier watches the alert feed and proposes at most one emergency
// broadcast per cooldown window. It owns its own last-trigger timestamp
// and pending proposal; the clock is injected for tests.
type Classifier struct {
	feed     Feed
	cooldown time.Duration
	now      func() time.Time

	mu          sync.Mutex
	lastTrigger time.Time
	pending     *Proposal

	task *poll.Task
}

func NewClassifier(feed Feed, cfg Config) *Classifier {
	c := &Classifier{
		feed:     feed,
		cooldown: cfg.Cooldown,
		now:      time.Now,
	}
	c.task = poll.New(cfg.PollInterval, func(ctx context.Context) {
		c.CheckOnce(ctx)
	})
	return c
}

// NewClassifierWithClock is for tests that need to control the cooldown.
func NewClassifierWithClock(feed Feed, cfg Config, now func() time.Time) *Classifier {
	c := NewClassifier(feed, cfg)
	c.now = now
	return c
}

// qualifies reports whether an alert's event or description contains any
// typhoon keyword.
func qualifies(alert FeedAlert) bool {
	event := strings.ToLower(alert.Event)
	description := strings.ToLower(alert.Description)
	for _, keyword := range typhoonKeywords {
		if strings.Contains(event, keyword) || strings.Contains(description, keyword) {
			return true
		}
	}
	return false
}

// FilterAlerts returns the qualifying subset of a raw feed, in feed order.
func FilterAlerts(alerts []FeedAlert) []FeedAlert {
	var kept []FeedAlert
	for _, a := range alerts {
		if qualifies(a) {
			kept = append(kept, a)
		}
	}
	return kept
}

func buildProposal(alert FeedAlert, at time.Time) *Proposal {
	event := alert.Event
	if event == "" {
		event = "Severe Weather Warning"
	}

	message := alert.Description
	if message == "" {
		message = "A severe weather condition has been detected near your area. Please stay indoors and follow official advisories."
	}

	return &Proposal{
		Title:    fmt.Sprintf("AUTOMATED ALERT: %s", event),
		Message:  fmt.Sprintf("%s Classes may be suspended. Please stay safe and await further announcements.", message),
		Type:     "typhoon",
		Event:    event,
		IssuedAt: at,
	}
}

// CheckOnce runs one classification cycle: fetch, filter, act on the first
// qualifying alert unless the cooldown window is still open. Fetch and
// parse failures are a quiet no-alert cycle. Returns the new proposal if
// this cycle triggered one.
func (c *Classifier) CheckOnce(ctx context.Context) *Proposal {
	alerts, err := c.feed.FetchAlerts(ctx)
	if err != nil {
		log.Printf("[weather] check failed: %v", err)
		return nil
	}

	qualifying := FilterAlerts(alerts)
	if len(qualifying) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !c.lastTrigger.IsZero() && now.Sub(c.lastTrigger) < c.cooldown {
		return nil
	}

	// Only the first qualifying alert per cycle is acted on.
	proposal := buildProposal(qualifying[0], now)
	c.lastTrigger = now
	c.pending = proposal
	log.Printf("[weather] proposal raised: %s", proposal.Title)
	return proposal
}

// Enable starts the auto-check loop: one immediate check, then one per
// poll interval. No-op if already enabled.
func (c *Classifier) Enable(ctx context.Context) {
	c.task.Start(ctx)
}

// Disable stops the loop. An in-flight check finishes but any proposal it
// raises still waits for admin confirmation, so nothing is acted on
// automatically.
func (c *Classifier) Disable() {
	c.task.Stop()
}

// Enabled reports whether the auto-check loop is running.
func (c *Classifier) Enabled() bool {
	return c.task.Active()
}

// Pending returns the unconfirmed proposal, if any.
func (c *Classifier) Pending() *Proposal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// TakePending removes and returns the unconfirmed proposal.
func (c *Classifier) TakePending() *Proposal {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.pending
	c.pending = nil
	return p
}
