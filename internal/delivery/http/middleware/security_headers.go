package middleware

import (
	"github.com/gin-gonic/gin"
)

const (
	// baselineCSP covers JSON responses and the swagger page
	baselineCSP = "default-src 'self'; " +
		"script-src 'self'; " +
		"style-src 'self' 'unsafe-inline'; " +
		"img-src 'self' data:; " +
		"font-src 'self'; " +
		"connect-src 'self'; " +
		"frame-ancestors 'none'; " +
		"base-uri 'self'; " +
		"form-action 'self'"

	// docsCSP lets the swagger UI run its inline bootstrap script
	docsCSP = "default-src 'self'; " +
		"script-src 'self' 'unsafe-inline'; " +
		"style-src 'self' 'unsafe-inline'; " +
		"img-src 'self' data:; " +
		"frame-ancestors 'none'; " +
		"base-uri 'self'"

	// uploadCSP: an uploaded .html must never execute anything on this origin
	uploadCSP = "default-src 'none'; img-src 'self'; frame-ancestors 'none'"
)

// SecurityHeadersMiddleware adds essential security headers to all responses.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// HTTP Strict Transport Security (HSTS)
		c.Header("Strict-Transport-Security", "max-age=63072000; includeSubDomains")

		// Prevent MIME type sniffing of uploaded files
		c.Header("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking by disallowing framing
		c.Header("X-Frame-Options", "DENY")

		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Content Security Policy (basic policy)
		c.Header("Content-Security-Policy", baselineCSP)

		c.Next()
	}
}

// DocsCSP relaxes the policy for the swagger UI pages.
func DocsCSP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Security-Policy", docsCSP)
		c.Next()
	}
}
