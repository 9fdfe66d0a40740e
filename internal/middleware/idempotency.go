package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/demobank/backend/internal/services"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	ReplayHeader      = "X-Idempotency-Replay"

	inFlightMarker = "pending"

	// Bounds the writes made after the handler returned, when the request
	// context may already be cancelled.
	persistTimeout = 5 * time.Second
)

type retainKey struct{}

// keyStore is the subset of the redis client the middleware needs.
type keyStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RetainIdempotencyKey marks the current response as final even when it is a
// server error. Handlers call it when a failure leaves the outcome unknown,
// so a retry replays the error instead of executing again.
func RetainIdempotencyKey(ctx context.Context) {
	if retain, ok := ctx.Value(retainKey{}).(*bool); ok {
		*retain = true
	}
}

type cachedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// Idempotency replays the first response for a repeated Idempotency-Key.
// Keys are scoped to the authenticated caller. The key is reserved with SETNX
// before the handler runs so that a concurrent duplicate gets 409 instead of
// executing twice. Server errors release the reservation unless the handler
// called RetainIdempotencyKey.
func Idempotency(client *redis.Client, ttl time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	if client == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return idempotency(client, ttl, logger)
}

func idempotency(client keyStore, ttl time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			if _, err := uuid.Parse(key); err != nil {
				services.SendErrorResponse(w, "Idempotency-Key must be a UUID", http.StatusBadRequest, nil)
				return
			}

			identity, _ := IdentityFrom(r.Context())
			redisKey := fmt.Sprintf("idempotency:%d:%s", identity.UserID, key)

			reserved, err := client.SetNX(r.Context(), redisKey, inFlightMarker, ttl).Result()
			if err != nil {
				logger.Error("idempotency reservation failed", zap.Error(err))
				services.SendErrorResponse(w, "Service unavailable", http.StatusServiceUnavailable, nil)
				return
			}

			if !reserved {
				replay(w, client, r, redisKey, logger)
				return
			}

			retain := false
			var buf bytes.Buffer
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&buf)
			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), retainKey{}, &retain)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			// The client may have gone away; the outcome must still be recorded.
			ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), persistTimeout)
			defer cancel()

			if status >= http.StatusInternalServerError && !retain {
				if err := client.Del(ctx, redisKey).Err(); err != nil {
					logger.Warn("failed to release idempotency key", zap.Error(err))
				}
				return
			}

			payload, _ := json.Marshal(cachedResponse{Status: status, Body: buf.Bytes()})
			if err := client.Set(ctx, redisKey, string(payload), ttl).Err(); err != nil {
				logger.Warn("failed to store idempotent response", zap.Error(err))
			}
		})
	}
}

func replay(w http.ResponseWriter, client keyStore, r *http.Request, redisKey string, logger *zap.Logger) {
	val, err := client.Get(r.Context(), redisKey).Result()
	if err != nil && err != redis.Nil {
		logger.Error("idempotency lookup failed", zap.Error(err))
		services.SendErrorResponse(w, "Service unavailable", http.StatusServiceUnavailable, nil)
		return
	}

	if err == redis.Nil || val == inFlightMarker {
		services.SendErrorResponse(w, "A request with this Idempotency-Key is already in progress", http.StatusConflict, nil)
		return
	}

	var cached cachedResponse
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		logger.Error("corrupt idempotent response", zap.Error(err))
		services.SendErrorResponse(w, "Service unavailable", http.StatusServiceUnavailable, nil)
		return
	}

	logger.Info("idempotent replay", zap.Int("status", cached.Status))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(ReplayHeader, "true")
	w.WriteHeader(cached.Status)
	w.Write(cached.Body)
}
