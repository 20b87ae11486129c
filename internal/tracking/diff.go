package tracking

import (
	"fmt"

	"github.com/google/uuid"
)

// Alert severity for presence-transition notifications.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Alert is one transient presence-transition notification.
type Alert struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Diff compares two successive aggregated snapshots and returns one alert
// per presence transition. A user absent from prev counts as not sharing,
// except that an empty prev is the first-poll baseline and yields nothing:
// a transition needs a prior observation.
func Diff(prev, next []UserView) []Alert {
	if len(prev) == 0 {
		return nil
	}

	before := make(map[string]bool, len(prev))
	for _, u := range prev {
		before[u.ID] = u.Sharing
	}

	var alerts []Alert
	for _, u := range next {
		was := before[u.ID]
		switch {
		case u.Sharing && !was:
			alerts = append(alerts, Alert{
				ID:       uuid.NewString(),
				Title:    "Session started",
				Message:  fmt.Sprintf("%s started sharing their location", u.Name),
				Severity: SeverityInfo,
			})
		case !u.Sharing && was:
			alerts = append(alerts, Alert{
				ID:       uuid.NewString(),
				Title:    "Session ended",
				Message:  fmt.Sprintf("%s stopped sharing their location", u.Name),
				Severity: SeverityWarning,
			})
		}
	}

	return alerts
}
