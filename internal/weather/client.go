package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// FeedAlert is one raw record from the alert feed.
type FeedAlert struct {
	SenderName  string    `json:"sender_name"`
	Event       string    `json:"event"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
}

// Client fetches severe-weather alerts for a fixed coordinate.
type Client struct {
	endpoint   string
	lat, lng   float64
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(cfg Config) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		lat:      cfg.Lat,
		lng:      cfg.Lng,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		// The feed is a free public API; never hit it faster than the
		// configured cadence allows, even if checks are triggered by hand.
		limiter: rate.NewLimiter(rate.Every(30*time.Second), 2),
	}
}

type feedResponse struct {
	Alerts []feedAlert `json:"alerts"`
}

type feedAlert struct {
	SenderName  string   `json:"sender_name"`
	Event       string   `json:"event"`
	Start       int64    `json:"start"`
	End         int64    `json:"end"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// FetchAlerts pulls the current alert list for the monitored coordinate.
// A zero-length result means no active alerts, not an error.
func (c *Client) FetchAlerts(ctx context.Context) ([]FeedAlert, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s?latitude=%s&longitude=%s&current=weather_code&alerts=true",
		c.endpoint,
		url.QueryEscape(fmt.Sprintf("%.4f", c.lat)),
		url.QueryEscape(fmt.Sprintf("%.4f", c.lng)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather feed returned HTTP %d", resp.StatusCode)
	}

	var feed feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decoding weather feed: %w", err)
	}

	alerts := make([]FeedAlert, 0, len(feed.Alerts))
	for _, a := range feed.Alerts {
		alerts = append(alerts, FeedAlert{
			SenderName:  a.SenderName,
			Event:       a.Event,
			Start:       time.Unix(a.Start, 0),
			End:         time.Unix(a.End, 0),
			Description: a.Description,
			Tags:        a.Tags,
		})
	}
	return alerts, nil
}
