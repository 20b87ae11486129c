package middleware

import (
	"net/http"
	"sync"

	"github.com/CampusTrack/CT-Backend/internal/utils"
	"golang.org/x/time/rate"
)

// WriteLimiter throttles high-frequency write routes per user. A device
// that ignores its own emission gating still can't flood the sample table.
type WriteLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func NewWriteLimiter(perSecond float64, burst int) *WriteLimiter {
	return &WriteLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (wl *WriteLimiter) limiterFor(userID string) *rate.Limiter {
	wl.mu.Lock()
	defer wl.mu.Unlock()

	lim, ok := wl.limiters[userID]
	if !ok {
		lim = rate.NewLimiter(wl.limit, wl.burst)
		wl.limiters[userID] = lim
	}
	return lim
}

func (wl *WriteLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := utils.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized: missing user ID in context", http.StatusUnauthorized)
			return
		}

		if !wl.limiterFor(userID).Allow() {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too many location updates", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
