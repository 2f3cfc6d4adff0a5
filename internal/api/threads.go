package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/abdulachik/threados/internal/threads"
)

type createPostRequest struct {
	Text string `json:"text" binding:"required"`
}

type createReplyRequest struct {
	Text          string `json:"text" binding:"required"`
	ParentMediaID string `json:"parent_media_id" binding:"required"`
	Author        string `json:"author"`
}

// withClient opens a client for the connected account. It writes the error
// response and returns false when no account is connected.
func (h *Handler) withClient(c *gin.Context) (threads.Credential, *threads.Client, bool) {
	cred, err := h.oauth.Credential(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return threads.Credential{}, nil, false
	}
	return cred, h.oauth.NewClient(cred), true
}

func (h *Handler) me(c *gin.Context) {
	_, client, ok := h.withClient(c)
	if !ok {
		return
	}
	defer client.Close()

	profile, err := client.FetchProfile(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// myPosts degrades to an empty list on any remote failure.
func (h *Handler) myPosts(c *gin.Context) {
	cred, client, ok := h.withClient(c)
	if !ok {
		return
	}
	defer client.Close()

	items, err := client.ListMyContent(c.Request.Context(), cred.UserID)
	if err != nil {
		slog.Error("failed to fetch posts", "error", err)
		c.JSON(http.StatusOK, []threads.ContentSummary{})
		return
	}
	if items == nil {
		items = []threads.ContentSummary{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) listPosts(c *gin.Context) {
	limit := 10
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			abortDetail(c, http.StatusUnprocessableEntity, "limit must be an integer")
			return
		}
		limit = n
	}

	list, err := h.posts.List(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPosts(list))
}

func (h *Handler) createPost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, "text is required")
		return
	}
	if err := threads.ValidateText(req.Text); err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	cred, client, ok := h.withClient(c)
	if !ok {
		return
	}
	defer client.Close()

	post, err := h.posts.Publish(c.Request.Context(), client, cred.UserID, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPost(post))
}

func (h *Handler) deletePost(c *gin.Context) {
	_, client, ok := h.withClient(c)
	if !ok {
		return
	}
	defer client.Close()

	if _, err := h.posts.Delete(c.Request.Context(), client, c.Param("media_id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) listReplies(c *gin.Context) {
	_, client, ok := h.withClient(c)
	if !ok {
		return
	}
	defer client.Close()

	replies, err := client.ListReplies(c.Request.Context(), c.Param("media_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if replies == nil {
		replies = []threads.ReplySummary{}
	}
	c.JSON(http.StatusOK, replies)
}

func (h *Handler) createReply(c *gin.Context) {
	var req createReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, "text and parent_media_id are required")
		return
	}
	if err := threads.ValidateText(req.Text); err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	cred, client, ok := h.withClient(c)
	if !ok {
		return
	}
	defer client.Close()

	reply, err := h.posts.Reply(c.Request.Context(), client, cred.UserID, req.ParentMediaID, req.Text, req.Author)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReply(reply))
}

func (h *Handler) getInsights(c *gin.Context) {
	_, client, ok := h.withClient(c)
	if !ok {
		return
	}
	defer client.Close()

	snapshot, err := h.insights.Refresh(c.Request.Context(), client, c.Param("media_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSnapshot(snapshot))
}
