package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

const rateLimitMaxWindows = 10000

type rateWindow struct {
	count   int
	resetAt time.Time
}

// RateLimit applies a fixed window per caller. Authenticated requests
// are keyed by user id so one abusive account cannot spend a shared
// proxy IP's budget; anonymous requests fall back to the client IP.
// Mount it after AuthJWT so the user id is available.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	var mu sync.Mutex
	windows := make(map[string]*rateWindow)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := UserIDFromContext(r.Context())
			if key == "" {
				key = ClientIP(r)
			}

			now := time.Now()
			mu.Lock()
			win, ok := windows[key]
			if !ok || now.After(win.resetAt) {
				if len(windows) >= rateLimitMaxWindows {
					for k, v := range windows {
						if now.After(v.resetAt) {
							delete(windows, k)
						}
					}
				}
				win = &rateWindow{resetAt: now.Add(per)}
				windows[key] = win
			}
			win.count++
			count := win.count
			resetAt := win.resetAt
			mu.Unlock()

			if count > limit {
				w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(resetAt).Seconds())+1))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":{"code":"rate_limited","message":"too many requests"}}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
