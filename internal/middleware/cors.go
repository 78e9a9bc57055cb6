package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig holds the cross-origin policy: the canonical frontend origin,
// an optional allowed-suffix for preview deploys, and the dev bypass.
type CORSConfig struct {
	SiteURL       string // exact frontend origin, always allowed
	AllowedSuffix string // e.g. ".voxnova.app" for preview deployments
	DevPassword   string
}

// CORS allows the configured frontend origin, origins ending with
// AllowedSuffix, local frontends, or requests carrying the dev-password
// header. Credentials are always allowed because the session rides on a
// cookie.
func CORS(cfg CORSConfig) fiber.Handler {
	site := strings.TrimRight(strings.ToLower(cfg.SiteURL), "/")
	return func(c *fiber.Ctx) error {
		origin := c.Get("Origin")
		// No origin (same-origin or tools): allow.
		if origin == "" {
			return c.Next()
		}

		if originAllowed(origin, site, cfg.AllowedSuffix) ||
			(cfg.DevPassword != "" && c.Get("dev-password") == cfg.DevPassword) {
			setCORSHeaders(c, origin)
			if c.Method() == fiber.MethodOptions {
				return c.SendStatus(fiber.StatusNoContent)
			}
			return c.Next()
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status": "error",
			"error": fiber.Map{
				"message":    "Not allowed by CORS",
				"statusCode": 403,
				"details":    fiber.Map{},
			},
		})
	}
}

func originAllowed(origin, site, suffix string) bool {
	lower := strings.ToLower(origin)
	if site != "" && lower == site {
		return true
	}
	if suffix != "" && strings.HasSuffix(lower, strings.ToLower(suffix)) {
		return true
	}
	// Local frontend during development.
	return strings.HasPrefix(lower, "http://localhost:") || strings.HasPrefix(lower, "http://127.0.0.1:")
}

func setCORSHeaders(c *fiber.Ctx, origin string) {
	c.Set("Access-Control-Allow-Origin", origin)
	c.Set("Access-Control-Allow-Credentials", "true")
	c.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
	c.Set("Access-Control-Allow-Headers", "Content-Type, X-Trace-Id, dev-password")
}
