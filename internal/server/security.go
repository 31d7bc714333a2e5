package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// Request limits applied to /v1/integrate.
const (
	MaxSteps   = 100_000_000
	MaxTerms   = 100_000
	MaxThreads = 256
)

// SecurityConfig controls response hardening and request limits.
type SecurityConfig struct {
	// EnableCORS adds Access-Control-* headers for allowed origins.
	EnableCORS bool
	// AllowedOrigins lists accepted Origin values; "*" accepts any.
	AllowedOrigins []string
	// AllowedMethods is advertised in Access-Control-Allow-Methods.
	AllowedMethods []string
	// MaxSteps, MaxTerms and MaxThreads bound a single integration.
	MaxSteps   int
	MaxTerms   int
	MaxThreads int
}

// DefaultSecurityConfig returns permissive CORS for the read-only API and
// the package limits.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxSteps:       MaxSteps,
		MaxTerms:       MaxTerms,
		MaxThreads:     MaxThreads,
	}
}

// securityMiddleware sets the hardening headers on every response, adds CORS
// headers for allowed origins and answers preflight requests directly.
func securityMiddleware(config SecurityConfig) gin.HandlerFunc {
	methods := strings.Join(config.AllowedMethods, ", ")
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		if config.EnableCORS {
			if origin, ok := allowedOrigin(config.AllowedOrigins, c.GetHeader("Origin")); ok {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", "Content-Type")
				h.Set("Access-Control-Max-Age", strconv.Itoa(86400))
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// allowedOrigin returns the value for Access-Control-Allow-Origin.
func allowedOrigin(allowed []string, origin string) (string, bool) {
	for _, a := range allowed {
		if a == "*" {
			return "*", true
		}
		if origin != "" && a == origin {
			return origin, true
		}
	}
	return "", false
}
