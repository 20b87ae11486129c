package tracking

import (
	"sync"
	"time"
)

// AlertTTL is how long an alert stays visible unless dismissed first.
const AlertTTL = 5 * time.Second

type timedAlert struct {
	alert   Alert
	expires time.Time
}

// AlertCenter holds the currently visible alerts. Expiry is evaluated
// lazily against the injected clock on every read, so no janitor goroutine
// is needed and tests can drive time directly.
type AlertCenter struct {
	mu     sync.Mutex
	now    func() time.Time
	alerts []timedAlert
}

func NewAlertCenter() *AlertCenter {
	return &AlertCenter{now: time.Now}
}

func NewAlertCenterWithClock(now func() time.Time) *AlertCenter {
	return &AlertCenter{now: now}
}

// Push adds alerts with the standard display duration.
func (c *AlertCenter) Push(alerts ...Alert) {
	if len(alerts) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(AlertTTL)
	for _, a := range alerts {
		c.alerts = append(c.alerts, timedAlert{alert: a, expires: expires})
	}
}

// Dismiss removes one alert by ID before its expiry.
func (c *AlertCenter) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.alerts[:0]
	for _, ta := range c.alerts {
		if ta.alert.ID != id {
			kept = append(kept, ta)
		}
	}
	c.alerts = kept
}

// Visible returns the alerts that have not expired or been dismissed.
func (c *AlertCenter) Visible() []Alert {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	kept := c.alerts[:0]
	visible := make([]Alert, 0, len(c.alerts))
	for _, ta := range c.alerts {
		if ta.expires.After(now) {
			kept = append(kept, ta)
			visible = append(visible, ta.alert)
		}
	}
	c.alerts = kept
	return visible
}
