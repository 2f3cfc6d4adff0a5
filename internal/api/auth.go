package api

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

func (h *Handler) startAuth(c *gin.Context) {
	state := h.states.Issue()
	c.JSON(http.StatusOK, gin.H{"url": h.oauth.AuthorizeURL(state)})
}

func (h *Handler) authStatus(c *gin.Context) {
	st, err := h.oauth.Status(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) authCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		abortDetail(c, http.StatusBadRequest, "Missing authorization code")
		return
	}
	if !h.states.Consume(c.Query("state")) {
		abortDetail(c, http.StatusBadRequest, "Invalid or expired OAuth state")
		return
	}

	account, err := h.oauth.Connect(c.Request.Context(), code)
	if err != nil {
		writeError(c, err)
		return
	}

	q := url.Values{}
	q.Set("connected", "true")
	q.Set("username", account.Username)
	c.Redirect(http.StatusTemporaryRedirect, h.cfg.FrontendURL+"/connect?"+q.Encode())
}
