package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/mentorbase/mentor-marketplace/internal/httperr"
	"github.com/mentorbase/mentor-marketplace/internal/httpresp"
	"github.com/mentorbase/mentor-marketplace/internal/jobs"
)

// CronHandler exposes the sweep jobs as GET endpoints for an external
// scheduler. Each endpoint is idempotent and safe to re-run.
type CronHandler struct {
	sweeper *jobs.Sweeper
}

func NewCronHandler(sweeper *jobs.Sweeper) *CronHandler {
	return &CronHandler{sweeper: sweeper}
}

func (h *CronHandler) CancelUnpaid(c *gin.Context) {
	res, err := h.sweeper.CancelUnpaid(c.Request.Context())
	if err != nil {
		httperr.Internal(c, "sweep_failed", err.Error())
		return
	}
	httpresp.OK(c, res)
}

func (h *CronHandler) CompletionReminders(c *gin.Context) {
	res, err := h.sweeper.CompletionReminders(c.Request.Context())
	if err != nil {
		httperr.Internal(c, "sweep_failed", err.Error())
		return
	}
	httpresp.OK(c, res)
}

func (h *CronHandler) ProcessPayouts(c *gin.Context) {
	res, err := h.sweeper.ProcessPayouts(c.Request.Context())
	if err != nil {
		httperr.Internal(c, "sweep_failed", err.Error())
		return
	}
	httpresp.OK(c, res)
}
