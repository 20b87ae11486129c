package weather

import (
	"log"
	"os"
	"strconv"
	"time"
)

// DefaultEndpoint is the Open-Meteo forecast endpoint the alert feed
// rides on.
const DefaultEndpoint = "https://api.open-meteo.com/v1/forecast"

// Config holds the weather auto-alert tunables.
type Config struct {
	Endpoint string

	// Monitored coordinate (defaults cover the Philippine region).
	Lat float64
	Lng float64

	// PollInterval is the auto-check cadence once enabled.
	PollInterval time.Duration

	// Cooldown is the minimum gap between automated proposals.
	Cooldown time.Duration
}

// LoadFromEnv loads weather configuration from environment variables.
//
// Environment variables:
//   - WEATHER_ENDPOINT: alert feed base URL (default: Open-Meteo)
//   - WEATHER_LAT / WEATHER_LNG: monitored coordinate (default: 12.8797 / 121.7740)
//   - WEATHER_POLL_MINUTES: auto-check cadence in minutes (default: 10)
//   - WEATHER_COOLDOWN_HOURS: proposal cooldown in hours (default: 24)
func LoadFromEnv() Config {
	cfg := Config{
		Endpoint:     DefaultEndpoint,
		Lat:          12.8797,
		Lng:          121.7740,
		PollInterval: 10 * time.Minute,
		Cooldown:     24 * time.Hour,
	}

	if v := os.Getenv("WEATHER_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("WEATHER_LAT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Lat = f
		} else {
			log.Printf("[weather] ignoring bad WEATHER_LAT %q", v)
		}
	}
	if v := os.Getenv("WEATHER_LNG"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Lng = f
		} else {
			log.Printf("[weather] ignoring bad WEATHER_LNG %q", v)
		}
	}
	if v := os.Getenv("WEATHER_POLL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PollInterval = time.Duration(n) * time.Minute
		} else {
			log.Printf("[weather] ignoring bad WEATHER_POLL_MINUTES %q", v)
		}
	}
	if v := os.Getenv("WEATHER_COOLDOWN_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Cooldown = time.Duration(n) * time.Hour
		} else {
			log.Printf("[weather] ignoring bad WEATHER_COOLDOWN_HOURS %q", v)
		}
	}

	return cfg
}
