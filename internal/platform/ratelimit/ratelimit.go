// Package ratelimit limita requests por cliente en endpoints de escritura pública
// (crear solicitud de adopción, pedir token). Dos backends: token bucket en memoria
// (una sola instancia) o ventana fija en Redis (compartido entre instancias).
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/respond"
)

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Memory es un token bucket por key con limpieza oportunista de keys ociosas.
type Memory struct {
	rps   rate.Limit
	burst int
	ttl   time.Duration

	mu       sync.Mutex
	visitors map[string]*visitor
	lookups  uint64
	now      func() time.Time
}

func NewMemory(rps float64, burst int) *Memory {
	if burst <= 0 {
		burst = 1
	}
	return &Memory{
		rps:      rate.Limit(rps),
		burst:    burst,
		ttl:      10 * time.Minute,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	now := m.now()

	m.mu.Lock()
	m.lookups++
	if m.lookups >= 5000 {
		for k, v := range m.visitors {
			if now.Sub(v.lastSeen) >= m.ttl {
				delete(m.visitors, k)
			}
		}
		m.lookups = 0
	}

	v, ok := m.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(m.rps, m.burst)}
		m.visitors[key] = v
	}
	v.lastSeen = now
	lim := v.limiter
	m.mu.Unlock()

	return lim.AllowN(now, 1), nil
}

// Redis usa ventana fija de 1s: INCR + EXPIRE en pipeline.
// Límite por ventana = max(burst, ceil(rps)).
type Redis struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

func NewRedis(client *redis.Client, rps float64, burst int) *Redis {
	limit := int64(math.Ceil(rps))
	if int64(burst) > limit {
		limit = int64(burst)
	}
	if limit < 1 {
		limit = 1
	}
	return &Redis{
		client: client,
		prefix: "ratelimit:",
		limit:  limit,
		window: time.Second,
	}
}

func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	slot := time.Now().UnixNano() / int64(r.window)
	k := fmt.Sprintf("%s%s:%d", r.prefix, key, slot)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, 2*r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= r.limit, nil
}

// Middleware limita por IP (chi RealIP ya normalizó RemoteAddr).
// Si el backend falla se deja pasar: el limiter no debe tumbar la API.
func Middleware(l Limiter, log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := "ip:" + clientIP(r)
			ok, err := l.Allow(r.Context(), key)
			if err != nil {
				log.Warn("rate limiter unavailable", map[string]any{"error": err, "key": key})
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				w.Header().Set("Retry-After", "1")
				respond.Fail(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
