// Package api exposes the Threads workflows over HTTP.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abdulachik/threados/internal/config"
	"github.com/abdulachik/threados/internal/insights"
	"github.com/abdulachik/threados/internal/oauth"
	"github.com/abdulachik/threados/internal/posts"
	"github.com/abdulachik/threados/internal/scheduler"
)

// Handler serves the HTTP API.
type Handler struct {
	cfg       *config.Config
	oauth     *oauth.Service
	posts     *posts.Service
	insights  *insights.Capturer
	scheduler *scheduler.Scheduler
	health    *scheduler.Health
	states    *stateStore
}

// Deps holds the services the handler needs.
type Deps struct {
	Config    *config.Config
	OAuth     *oauth.Service
	Posts     *posts.Service
	Insights  *insights.Capturer
	Scheduler *scheduler.Scheduler
}

// New creates a new handler.
func New(d Deps) *Handler {
	return &Handler{
		cfg:       d.Config,
		oauth:     d.OAuth,
		posts:     d.Posts,
		insights:  d.Insights,
		scheduler: d.Scheduler,
		health:    d.Scheduler.Health(),
		states:    newStateStore(),
	}
}

// Router builds the gin engine with every route registered.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(requestID())
	r.Use(requestLogger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(h.cfg.CORSOrigins))

	r.GET("/health", h.healthCheck)

	auth := r.Group("/auth/threads")
	auth.POST("/start", h.startAuth)
	auth.GET("/status", h.authStatus)
	auth.GET("/callback", h.authCallback)

	th := r.Group("/threads")
	th.GET("/me", h.me)
	th.GET("/my-posts", h.myPosts)
	th.GET("/posts", h.listPosts)
	th.POST("/post", h.createPost)
	th.DELETE("/post/:media_id", h.deletePost)
	th.GET("/post/:media_id/replies", h.listReplies)
	th.POST("/reply", h.createReply)
	th.GET("/insights/:media_id", h.getInsights)

	jobs := r.Group("/jobs")
	jobs.POST("/insights/run", h.runInsights)

	return r
}

func (h *Handler) healthCheck(c *gin.Context) {
	status := "ok"
	if !h.health.Healthy() {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     status,
		"env":        h.cfg.AppEnv,
		"components": h.health.All(),
	})
}
