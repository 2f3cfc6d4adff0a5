package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abdulachik/threados/internal/insights"
	"github.com/abdulachik/threados/internal/oauth"
	"github.com/abdulachik/threados/internal/posts"
	"github.com/abdulachik/threados/internal/threads"
)

const notConnectedDetail = "No connected Threads account found. Please connect first."

// writeError maps err to a status and a {"detail": ...} body.
func writeError(c *gin.Context, err error) {
	status, detail := errorStatus(err)
	if status >= 500 {
		slog.Error("request failed",
			"path", c.Request.URL.Path,
			"request_id", RequestIDFrom(c),
			"error", err,
		)
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, oauth.ErrNotConnected):
		return http.StatusUnauthorized, notConnectedDetail
	case errors.Is(err, posts.ErrNotFound):
		return http.StatusNotFound, "Post not found locally"
	case errors.Is(err, oauth.ErrExchangeFailed):
		return http.StatusBadRequest, "Failed to exchange authorization code"
	case errors.Is(err, oauth.ErrNoAccessToken):
		return http.StatusBadRequest, "No access token received"
	case errors.Is(err, oauth.ErrProfileFetch):
		return http.StatusBadRequest, "Failed to fetch user info from Threads"
	case errors.Is(err, insights.ErrMalformedMetric):
		return http.StatusBadGateway, err.Error()
	}

	if ie, ok := threads.AsIntegrationError(err); ok {
		switch {
		case ie.StatusCode != 0:
			return ie.StatusCode, ie.Message
		case ie.Kind == threads.KindTransport:
			return http.StatusBadGateway, ie.Message
		default:
			return http.StatusInternalServerError, ie.Message
		}
	}

	return http.StatusInternalServerError, err.Error()
}

func abortDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}
