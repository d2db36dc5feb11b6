package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ChatQuota reparte el cupo de mensajes de cada sesión de chat.
//
// Ambas implementaciones usan GCRA: cada sesión guarda el instante teórico
// en que su cupo vuelve a estar completo. Una sesión puede mandar limit
// mensajes seguidos y después uno cada window/limit.
type ChatQuota interface {
	// Take consume un mensaje. Sin cupo devuelve false y cuánto falta para
	// el próximo mensaje permitido.
	Take(ctx context.Context, sessionID string) (bool, time.Duration, error)
	// Release olvida el cupo de una sesión cerrada.
	Release(ctx context.Context, sessionID string) error
}

// RateLimitError indica cuánto debe esperar la sesión antes de volver a escribir.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%v: retry in %s", ErrRateLimited, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

func quotaInterval(limit int, window time.Duration) (time.Duration, time.Duration) {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	interval := window / time.Duration(limit)
	if interval <= 0 {
		interval = time.Millisecond
	}
	return interval, window
}

type memoryChatQuota struct {
	mu        sync.Mutex
	interval  time.Duration
	window    time.Duration
	full      map[string]time.Time
	nextSweep time.Time
	now       func() time.Time
}

// NewMemoryChatQuota guarda el cupo en el proceso. Las sesiones cerradas o
// con el cupo ya completo se olvidan.
func NewMemoryChatQuota(limit int, window time.Duration) ChatQuota {
	interval, window := quotaInterval(limit, window)
	return &memoryChatQuota{
		interval: interval,
		window:   window,
		full:     make(map[string]time.Time),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (q *memoryChatQuota) Take(_ context.Context, sessionID string) (bool, time.Duration, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	q.sweep(now)

	tat := q.full[sessionID]
	if tat.Before(now) {
		tat = now
	}
	next := tat.Add(q.interval)
	if excess := next.Sub(now) - q.window; excess > 0 {
		return false, excess, nil
	}
	q.full[sessionID] = next
	return true, 0, nil
}

func (q *memoryChatQuota) Release(_ context.Context, sessionID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.full, sessionID)
	return nil
}

// sweep borra, como mucho una vez por ventana, las sesiones cuyo cupo ya se
// recuperó por completo: para ellas no guardar nada es equivalente.
func (q *memoryChatQuota) sweep(now time.Time) {
	if now.Before(q.nextSweep) {
		return
	}
	for id, tat := range q.full {
		if !tat.After(now) {
			delete(q.full, id)
		}
	}
	q.nextSweep = now.Add(q.window)
}

func (q *memoryChatQuota) tracked() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.full)
}

// chatQuotaScript aplica GCRA en Redis con el reloj del servidor, así todas
// las réplicas ven el mismo instante. Devuelve 0 si admite o los ms de espera.
const chatQuotaScript = `
local t = redis.call("TIME")
local now = tonumber(t[1]) * 1000 + math.floor(tonumber(t[2]) / 1000)
local interval = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local tat = tonumber(redis.call("GET", KEYS[1]) or now)
if tat < now then
  tat = now
end
local new_tat = tat + interval
local excess = new_tat - now - window
if excess > 0 then
  return excess
end
redis.call("SET", KEYS[1], new_tat, "PX", new_tat - now)
return 0
`

type redisScripter interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisChatQuota struct {
	client   redisScripter
	interval time.Duration
	window   time.Duration
	prefix   string
}

// NewRedisChatQuota comparte el cupo entre réplicas. La clave expira sola
// cuando el cupo se recupera.
func NewRedisChatQuota(client *redis.Client, limit int, window time.Duration) ChatQuota {
	if client == nil {
		return nil
	}
	interval, window := quotaInterval(limit, window)
	return &redisChatQuota{
		client:   client,
		interval: interval,
		window:   window,
		prefix:   "chat:quota:",
	}
}

func (q *redisChatQuota) key(sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", errors.New("session id is required")
	}
	return q.prefix + sessionID, nil
}

func (q *redisChatQuota) Take(ctx context.Context, sessionID string) (bool, time.Duration, error) {
	key, err := q.key(sessionID)
	if err != nil {
		return false, 0, err
	}
	waitMs, err := q.client.Eval(ctx, chatQuotaScript, []string{key}, q.interval.Milliseconds(), q.window.Milliseconds()).Int64()
	if err != nil {
		return false, 0, fmt.Errorf("chat quota: %w", err)
	}
	if waitMs > 0 {
		return false, time.Duration(waitMs) * time.Millisecond, nil
	}
	return true, 0, nil
}

func (q *redisChatQuota) Release(ctx context.Context, sessionID string) error {
	key, err := q.key(sessionID)
	if err != nil {
		return err
	}
	return q.client.Del(ctx, key).Err()
}
