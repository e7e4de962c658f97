package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/bridge-pay/bridge-api/internal/pkg/response"
)

// RateLimit implements a fixed-window rate limiter backed by Redis INCR/EXPIRE,
// keyed per authenticated user (falling back to client IP). If the Redis client
// is nil or unreachable the limiter fails open so payments stay available.
func RateLimit(client *redis.Client, prefix string, max int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if client == nil {
				next.ServeHTTP(w, r)
				return
			}

			ident := getClientIP(r)
			if userID := GetUserID(r.Context()); userID != uuid.Nil {
				ident = userID.String()
			}
			key := "rl:" + prefix + ":" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + ident

			count, err := client.Incr(r.Context(), key).Result()
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("Rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				client.Expire(r.Context(), key, window)
			}

			if count > int64(max) {
				response.TooManyRequests(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
