package middleware

import (
	"go-contact-backend/pkg/apperror"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// StaticFiles serves regular files from dir at the site root. Directory
// listings are disabled.
func StaticFiles(dir string) gin.HandlerFunc {
	fileServer := http.FileServer(gin.Dir(dir, false))

	return func(c *gin.Context) {
		c.Header("Content-Security-Policy", uploadCSP)

		method := c.Request.Method
		if (method != http.MethodGet && method != http.MethodHead) || strings.HasSuffix(c.Request.URL.Path, "/") {
			c.Error(apperror.NotFound("Not Found"))
			return
		}
		fileServer.ServeHTTP(c.Writer, c.Request)
	}
}
