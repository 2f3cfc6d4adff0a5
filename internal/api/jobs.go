package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) runInsights(c *gin.Context) {
	res, err := h.scheduler.RunNow(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "completed",
		"checked":  res.Checked,
		"captured": res.Captured,
		"failed":   res.Failed,
	})
}
