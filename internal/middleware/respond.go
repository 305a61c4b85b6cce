package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pangan/internal/errx"
	"pangan/internal/logx"
)

// RespondError writes err as JSON with the status errx assigns to it.
// Validation failures also carry the per-row issues.
func RespondError(c *gin.Context, err error) {
	status := errx.Status(err)
	body := gin.H{"error": errx.Message(err)}

	var invalid *errx.ValidationError
	if errors.As(err, &invalid) {
		body["issues"] = invalid.Issues
	}
	if status == http.StatusInternalServerError {
		logx.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}

	c.AbortWithStatusJSON(status, body)
}

// Actor returns the authenticated user id, or "" on public routes.
func Actor(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
