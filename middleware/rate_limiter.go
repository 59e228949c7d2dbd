package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"taskboard/utils"
)

// In-memory sliding-window rate limiting plus login lockout tracking. Redis
// backs the lockout when configured so multiple instances agree; the request
// limiters stay per-instance.

type timestamps []int64 // unix nanos

func nowUnix() int64 { return time.Now().UnixNano() }

// IPRateLimiter enforces a per-IP request budget within a sliding window.
type IPRateLimiter struct {
	max         int
	window      time.Duration
	mu          sync.Mutex
	state       map[string]timestamps
	trustedCIDR []string
}

func NewIPRateLimiter(maxReq int, window time.Duration) *IPRateLimiter {
	l := &IPRateLimiter{
		max:    maxReq,
		window: window,
		state:  make(map[string]timestamps),
	}
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		l.trustedCIDR = strings.Split(v, ",")
	}
	go l.cleanupLoop()
	return l
}

// clientIPGeneric returns the client IP string. X-Forwarded-For / X-Real-IP
// headers are honored only when the remote addr is inside one of the trusted
// CIDRs or IPs.
func clientIPGeneric(r *http.Request, trustedCIDR []string) string {
	remoteHost, _, _ := net.SplitHostPort(r.RemoteAddr)
	remoteIP := net.ParseIP(remoteHost)
	trusted := false
	for _, cidr := range trustedCIDR {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		if strings.Contains(cidr, "/") {
			if _, ipnet, err := net.ParseCIDR(cidr); err == nil {
				if remoteIP != nil && ipnet.Contains(remoteIP) {
					trusted = true
					break
				}
			}
			continue
		}
		if ip := net.ParseIP(cidr); ip != nil && remoteIP != nil && ip.Equal(remoteIP) {
			trusted = true
			break
		}
	}
	if trusted {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			if len(parts) > 0 {
				return strings.TrimSpace(parts[0])
			}
		}
		if xr := r.Header.Get("X-Real-IP"); xr != "" {
			return strings.TrimSpace(xr)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (l *IPRateLimiter) allow(key string) (bool, int) {
	now := nowUnix()
	cutoff := now - int64(l.window)

	l.mu.Lock()
	defer l.mu.Unlock()
	var filtered timestamps
	for _, ts := range l.state[key] {
		if ts >= cutoff {
			filtered = append(filtered, ts)
		}
	}
	if len(filtered) >= l.max {
		l.state[key] = filtered
		oldest := filtered[0]
		retry := int((oldest + int64(l.window) - now) / 1e9)
		if retry < 1 {
			retry = 1
		}
		return false, retry
	}
	l.state[key] = append(filtered, now)
	return true, 0
}

func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIPGeneric(r, l.trustedCIDR)
		ok, retry := l.allow(ip)
		if !ok {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retry))
			utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{
				Success: false,
				Message: "Too many requests, try again later",
				Data:    map[string]interface{}{"retry_after_seconds": retry},
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *IPRateLimiter) cleanupLoop() {
	tick := time.NewTicker(time.Minute)
	defer tick.Stop()
	for range tick.C {
		cutoff := nowUnix() - int64(l.window)
		l.mu.Lock()
		for k, arr := range l.state {
			var filtered timestamps
			for _, ts := range arr {
				if ts >= cutoff {
					filtered = append(filtered, ts)
				}
			}
			if len(filtered) == 0 {
				delete(l.state, k)
			} else {
				l.state[k] = filtered
			}
		}
		l.mu.Unlock()
	}
}

// UserRateLimiter enforces per-user budgets, with a tighter limit on writes.
type UserRateLimiter struct {
	readLimiter  *IPRateLimiter
	writeLimiter *IPRateLimiter
}

func NewUserRateLimiter(maxRead, maxWrite int, window time.Duration) *UserRateLimiter {
	l := &UserRateLimiter{
		readLimiter:  &IPRateLimiter{max: maxRead, window: window, state: make(map[string]timestamps)},
		writeLimiter: &IPRateLimiter{max: maxWrite, window: window, state: make(map[string]timestamps)},
	}
	go l.readLimiter.cleanupLoop()
	go l.writeLimiter.cleanupLoop()
	return l
}

func (l *UserRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := utils.GetUserID(r)
		if !ok {
			// unauthenticated endpoints fall back to the IP limiters
			next.ServeHTTP(w, r)
			return
		}
		limiter := l.readLimiter
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			limiter = l.writeLimiter
		}
		allowed, retry := limiter.allow(fmt.Sprintf("u:%d", uid))
		if !allowed {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retry))
			utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{
				Success: false,
				Message: "Too many requests, try again later",
				Data:    map[string]interface{}{"retry_after_seconds": retry},
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Account lockout tracker for failed logins.
var (
	loginMu   sync.Mutex
	failedMap = make(map[uint]int)
	lockMap   = make(map[uint]int64) // lockUntil unix nanos
)

func lockDuration(failures int) time.Duration {
	switch {
	case failures < 3:
		return 0
	case failures == 3:
		return time.Minute
	case failures == 4:
		return 5 * time.Minute
	case failures == 5:
		return 15 * time.Minute
	default:
		return 30 * time.Minute
	}
}

func IsAccountLocked(userID uint) (bool, time.Duration) {
	if utils.RedisClient != nil {
		ttl, err := utils.RedisClient.TTL(context.Background(), fmt.Sprintf("login:lock:u:%d", userID)).Result()
		if err == nil && ttl > 0 {
			return true, ttl
		}
		return false, 0
	}
	loginMu.Lock()
	defer loginMu.Unlock()
	until := lockMap[userID]
	if until == 0 {
		return false, 0
	}
	now := nowUnix()
	if until > now {
		return true, time.Duration(until - now)
	}
	delete(lockMap, userID)
	failedMap[userID] = 0
	return false, 0
}

func RecordFailedLogin(userID uint) {
	if utils.RedisClient != nil {
		ctx := context.Background()
		failKey := fmt.Sprintf("login:fail:u:%d", userID)
		failures, err := utils.RedisClient.Incr(ctx, failKey).Result()
		if err == nil {
			_, _ = utils.RedisClient.Expire(ctx, failKey, 30*time.Minute).Result()
			if d := lockDuration(int(failures)); d > 0 {
				_ = utils.RedisClient.Set(ctx, fmt.Sprintf("login:lock:u:%d", userID), "1", d).Err()
			}
			return
		}
		// Redis error: fall through to the in-memory tracker
	}
	loginMu.Lock()
	defer loginMu.Unlock()
	failedMap[userID]++
	if d := lockDuration(failedMap[userID]); d > 0 {
		lockMap[userID] = nowUnix() + int64(d)
	}
}

func ResetFailedLogin(userID uint) {
	if utils.RedisClient != nil {
		ctx := context.Background()
		_, _ = utils.RedisClient.Del(ctx,
			fmt.Sprintf("login:fail:u:%d", userID),
			fmt.Sprintf("login:lock:u:%d", userID)).Result()
		return
	}
	loginMu.Lock()
	defer loginMu.Unlock()
	delete(lockMap, userID)
	failedMap[userID] = 0
}
