package middleware

import (
	"errors"
	"go-contact-backend/internal/domain"
	"go-contact-backend/pkg/apperror"
	"go-contact-backend/pkg/logger"
	"go-contact-backend/pkg/upload"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// room for the text fields and multipart framing on top of the file limit
	formOverheadBytes = 1 << 20
	multipartMemory   = 32 << 20
)

// SingleUpload stores at most one file from field before the handler runs and
// exposes it under domain.KeyAttachment. Oversized uploads never reach the
// handler. The stored file is removed once the chain returns, if still present.
func SingleUpload(store *upload.Store, field string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
			c.Next()
			return
		}

		limit := store.MaxBytes() + formOverheadBytes
		if c.Request.ContentLength > limit {
			abortTooLarge(c)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

		if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				abortTooLarge(c)
				return
			}
			c.Error(apperror.BadRequest("Malformed multipart form"))
			c.Abort()
			return
		}

		files := c.Request.MultipartForm.File[field]
		if len(files) == 0 {
			c.Next()
			return
		}
		if len(files) > 1 {
			c.Error(apperror.BadRequest("Only one file may be uploaded in field " + field))
			c.Abort()
			return
		}

		att, err := store.Save(files[0])
		if errors.Is(err, upload.ErrTooLarge) {
			abortTooLarge(c)
			return
		}
		if err != nil {
			c.Error(apperror.Internal(err))
			c.Abort()
			return
		}
		defer func() {
			if err := store.Remove(att); err != nil {
				logger.Log.Warn("Failed to remove uploaded file", "file", att.Filename, "error", err)
			}
		}()

		logger.Log.Debug("Uploaded file",
			"field", field,
			"original_name", att.OriginalName,
			"stored_as", att.Filename,
			"size", att.SizeBytes,
			"content_type", att.ContentType,
		)

		c.Set(string(domain.KeyAttachment), att)
		c.Next()
	}
}

func abortTooLarge(c *gin.Context) {
	c.Error(apperror.TooLarge("File too large"))
	c.Abort()
}
