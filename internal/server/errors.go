package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alnah/go-mdpublish"
)

type httpError struct {
	Status  int
	Message string
}

func (e *httpError) Error() string {
	return e.Message
}

var errNotFound = &httpError{
	Status:  http.StatusNotFound,
	Message: "resource not found",
}

// statusFor maps library errors to HTTP status codes.
func statusFor(err error) int {
	var httpErr *httpError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Status
	case errors.Is(err, mdpublish.ErrUploadTooLarge), errors.Is(err, mdpublish.ErrArchiveTooLarge):
		return http.StatusRequestEntityTooLarge
	case mdpublish.IsValidation(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes {"ok": false, "error": message}. Internal failures
// are logged.
func (s *Server) respondError(c *gin.Context, err error) {
	if err == nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"ok": false, "error": err.Error()})
}
