package httpx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/bizdesk/pkg/slogx"
	"github.com/caarlos0/env/v11"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines a token bucket: RequestsPerWindow refill over
// Window, with up to Burst requests available at once.
type RateLimitConfig struct {
	RequestsPerWindow int           `env:"REQUESTS"`
	Window            time.Duration `env:"WINDOW"`
	Burst             int           `env:"BURST"`
}

func (c RateLimitConfig) valid() bool {
	return c.RequestsPerWindow > 0 && c.Window > 0 && c.Burst > 0
}

// Profiles groups the limits used by the router.
type Profiles struct {
	// Strict covers credential endpoints (login, registration, redemption).
	Strict RateLimitConfig `envPrefix:"STRICT_"`
	// Moderate covers authenticated writes.
	Moderate RateLimitConfig `envPrefix:"MODERATE_"`
	// Lenient covers authenticated reads.
	Lenient RateLimitConfig `envPrefix:"LENIENT_"`
	// Public covers health checks.
	Public RateLimitConfig `envPrefix:"PUBLIC_"`

	// TrustedProxies lists the networks whose forwarding headers are
	// believed. Empty means the peer address is always the client.
	TrustedProxies []netip.Prefix `env:"TRUSTED_PROXIES" envSeparator:","`
}

// ClientIP returns the client address extractor for p.TrustedProxies.
func (p Profiles) ClientIP() KeyExtractor {
	return TrustedProxyIPKeyExtractor(p.TrustedProxies)
}

// DefaultProfiles returns the production limits.
func DefaultProfiles() Profiles {
	return Profiles{
		Strict:   RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5},
		Moderate: RateLimitConfig{RequestsPerWindow: 30, Window: time.Minute, Burst: 30},
		Lenient:  RateLimitConfig{RequestsPerWindow: 120, Window: time.Minute, Burst: 120},
		Public:   RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000},
	}
}

// LoadProfiles reads overrides from RATELIMIT_<PROFILE>_{REQUESTS,WINDOW,BURST}
// (e.g. RATELIMIT_STRICT_WINDOW=30s). A profile whose resulting values are not
// all positive falls back to its default. RATELIMIT_TRUSTED_PROXIES takes a
// comma separated list of CIDRs, e.g. 10.0.0.0/8,fd00::/8.
func LoadProfiles() (Profiles, error) {
	return loadProfiles(env.Options{Prefix: "RATELIMIT_"})
}

func loadProfiles(opts env.Options) (Profiles, error) {
	defaults := DefaultProfiles()
	p := defaults
	if err := env.ParseWithOptions(&p, opts); err != nil {
		return defaults, fmt.Errorf("httpx: parse rate limits: %w", err)
	}

	for _, pair := range []struct {
		got *RateLimitConfig
		def RateLimitConfig
	}{
		{&p.Strict, defaults.Strict},
		{&p.Moderate, defaults.Moderate},
		{&p.Lenient, defaults.Lenient},
		{&p.Public, defaults.Public},
	} {
		if !pair.got.valid() {
			*pair.got = pair.def
		}
	}
	return p, nil
}

// KeyExtractor returns the bucket key for a request. An empty key skips
// limiting for that request.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor keys on the peer address of the connection. Forwarding
// headers are ignored since any client can set them.
func IPKeyExtractor(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// TrustedProxyIPKeyExtractor honours X-Forwarded-For and X-Real-IP, but only
// when the peer is inside one of trusted. X-Forwarded-For is read right to
// left and the first hop outside trusted is taken as the client.
func TrustedProxyIPKeyExtractor(trusted []netip.Prefix) KeyExtractor {
	if len(trusted) == 0 {
		return IPKeyExtractor
	}

	isTrusted := func(s string) bool {
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return false
		}
		addr = addr.Unmap()
		for _, p := range trusted {
			if p.Contains(addr) {
				return true
			}
		}
		return false
	}

	return func(r *http.Request) string {
		peer := IPKeyExtractor(r)
		if !isTrusted(peer) {
			return peer
		}

		hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop != "" && !isTrusted(hop) {
				return hop
			}
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			return xri
		}
		return peer
	}
}

// SubjectKeyExtractor keys on the authenticated subject set with WithSubject.
func SubjectKeyExtractor(r *http.Request) string {
	return SubjectFromContext(r.Context())
}

// JSONFieldKeyExtractor keys on a top-level string field of a JSON body.
// The body is restored so handlers can decode it again. Field values are
// lower-cased so "Bob@x.com" and "bob@x.com" share a bucket.
func JSONFieldKeyExtractor(field string) KeyExtractor {
	return func(r *http.Request) string {
		if r.Body == nil {
			return ""
		}
		raw, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes))
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(raw))
		if err != nil {
			return ""
		}

		var fields map[string]json.RawMessage
		if json.Unmarshal(raw, &fields) != nil {
			return ""
		}
		var v string
		if json.Unmarshal(fields[field], &v) != nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(v))
	}
}

// CompositeKeyExtractor joins the non-empty keys of several extractors.
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(extractors))
		for _, extract := range extractors {
			if key := extract(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// keyedLimiter hands out one token bucket per key and forgets buckets that
// have been idle for longer than idleTTL.
type keyedLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func newKeyedLimiter(cfg RateLimitConfig) *keyedLimiter {
	idle := cfg.Window * 2
	if idle < 5*time.Minute {
		idle = 5 * time.Minute
	}
	return &keyedLimiter{
		limit:     rate.Limit(float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()),
		burst:     cfg.Burst,
		idleTTL:   idle,
		buckets:   make(map[string]*bucket),
		lastSweep: time.Now(),
	}
}

// reserve takes a token for key. It returns zero when the request may
// proceed, otherwise the wait until the next token.
func (kl *keyedLimiter) reserve(key string, now time.Time) time.Duration {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	if now.Sub(kl.lastSweep) > kl.idleTTL {
		for k, b := range kl.buckets {
			if now.Sub(b.lastSeen) > kl.idleTTL {
				delete(kl.buckets, k)
			}
		}
		kl.lastSweep = now
	}

	b, ok := kl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(kl.limit, kl.burst)}
		kl.buckets[key] = b
	}
	b.lastSeen = now

	if b.limiter.AllowN(now, 1) {
		return 0
	}
	r := b.limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return delay
}

// RateLimitMiddleware limits requests per key with the given configuration.
func RateLimitMiddleware(cfg RateLimitConfig, keyOf KeyExtractor) Middleware {
	kl := newKeyedLimiter(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyOf(r)
			if key == "" {
				slogx.FromContext(r.Context()).Debug("rate limit: no key, request not limited")
				next.ServeHTTP(w, r)
				return
			}

			delay := kl.reserve(key, time.Now())
			if delay == 0 {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := max(int(delay.Round(time.Second).Seconds()), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Window", cfg.Window.String())

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"key", key,
				"retry_after", retryAfter,
			)

			WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"error":             "rate_limit_exceeded",
				"error_description": "Too many requests. Please try again later.",
			})
		})
	}
}

// RateLimitByIP limits by client IP as reported by clientIP.
func RateLimitByIP(cfg RateLimitConfig, clientIP KeyExtractor) Middleware {
	return RateLimitMiddleware(cfg, clientIP)
}

// RateLimitBySubject limits by authenticated subject, falling back to IP
// when the request carries none.
func RateLimitBySubject(cfg RateLimitConfig, clientIP KeyExtractor) Middleware {
	return RateLimitMiddleware(cfg, func(r *http.Request) string {
		if s := SubjectKeyExtractor(r); s != "" {
			return "sub:" + s
		}
		return "ip:" + clientIP(r)
	})
}

// RateLimitByIPAndJSONField limits by IP plus a JSON body field, e.g. the
// email on a login attempt.
func RateLimitByIPAndJSONField(cfg RateLimitConfig, clientIP KeyExtractor, field string) Middleware {
	return RateLimitMiddleware(cfg, CompositeKeyExtractor("|",
		clientIP,
		JSONFieldKeyExtractor(field),
	))
}
