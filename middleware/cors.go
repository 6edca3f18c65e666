package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig controls which back-office front ends may call the API from
// a browser.
type CORSConfig struct {
	// AllowedOrigins holds exact origins ("https://desk.example.com") or
	// one-level subdomain wildcards ("https://*.preview.example.com").
	// Empty allows any origin without credentials.
	AllowedOrigins []string

	AllowCredentials bool
	AllowedMethods   []string
	AllowedHeaders   []string

	// ExposedHeaders lists the response headers browsers may read.
	ExposedHeaders []string

	// MaxAge is how long, in seconds, a preflight result may be cached.
	MaxAge int
}

// DefaultCORSConfig returns a default CORS config
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length", "Retry-After"},
		MaxAge:           3600,
	}
}

// ForOrigins returns the default config restricted to origins.
func ForOrigins(origins []string) CORSConfig {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = origins
	return cfg
}

// originMatcher matches exact origins and "scheme://*.domain" patterns.
type originMatcher struct {
	exact    map[string]struct{}
	suffixes []struct{ scheme, domain string }
}

func newOriginMatcher(origins []string) originMatcher {
	m := originMatcher{exact: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if scheme, host, ok := strings.Cut(o, "://*."); ok {
			m.suffixes = append(m.suffixes, struct{ scheme, domain string }{scheme + "://", "." + host})
			continue
		}
		if o != "" {
			m.exact[o] = struct{}{}
		}
	}
	return m
}

func (m originMatcher) allows(origin string) bool {
	if origin == "" {
		return false
	}
	if _, ok := m.exact[origin]; ok {
		return true
	}
	for _, s := range m.suffixes {
		rest, ok := strings.CutPrefix(origin, s.scheme)
		if !ok || !strings.HasSuffix(rest, s.domain) {
			continue
		}
		// Exactly one label in front of the domain.
		label := strings.TrimSuffix(rest, s.domain)
		if label != "" && !strings.ContainsAny(label, ".:/") {
			return true
		}
	}
	return false
}

// CORS answers preflights and tags responses for allowed origins. A
// preflight from a disallowed origin gets 403.
func CORS(config ...CORSConfig) fiber.Handler {
	cfg := DefaultCORSConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	anyOrigin := len(cfg.AllowedOrigins) == 0
	matcher := newOriginMatcher(cfg.AllowedOrigins)
	allowedMethods := strings.Join(cfg.AllowedMethods, ",")
	allowedHeaders := strings.Join(cfg.AllowedHeaders, ",")
	exposedHeaders := strings.Join(cfg.ExposedHeaders, ",")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		preflight := c.Method() == fiber.MethodOptions &&
			c.Get(fiber.HeaderAccessControlRequestMethod) != ""

		allowed := false
		switch {
		case anyOrigin:
			allowed = true
			c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		case matcher.allows(origin):
			allowed = true
			c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
			if cfg.AllowCredentials {
				c.Set(fiber.HeaderAccessControlAllowCredentials, "true")
			}
		}
		if !anyOrigin {
			c.Vary(fiber.HeaderOrigin)
		}

		if !preflight {
			if allowed && exposedHeaders != "" {
				c.Set(fiber.HeaderAccessControlExposeHeaders, exposedHeaders)
			}
			return c.Next()
		}

		if !allowed {
			return c.SendStatus(fiber.StatusForbidden)
		}
		c.Set(fiber.HeaderAccessControlAllowMethods, allowedMethods)
		c.Set(fiber.HeaderAccessControlAllowHeaders, allowedHeaders)
		c.Set(fiber.HeaderAccessControlMaxAge, maxAge)
		return c.SendStatus(fiber.StatusNoContent)
	}
}
