package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/campus-api/internal/models"
	"github.com/campushq/campus-api/internal/service"
	appErrors "github.com/campushq/campus-api/pkg/errors"
	"github.com/campushq/campus-api/pkg/response"
)

// PushHandler exposes the administrative notification enqueue endpoint.
// Regular notifications are enqueued internally by the services that own
// the triggering events.
type PushHandler struct {
	service *service.PushService
	metrics *service.MetricsService
}

// NewPushHandler constructs a push handler.
func NewPushHandler(svc *service.PushService, metrics *service.MetricsService) *PushHandler {
	return &PushHandler{service: svc, metrics: metrics}
}

// Enqueue godoc
// @Summary Enqueue a notification
// @Description Priority 2 dispatches before the call returns; 1 and 0 join the medium and low lanes
// @Tags Push
// @Accept json
// @Produce json
// @Param payload body models.Notification true "Notification payload"
// @Success 202 {object} response.Envelope
// @Router /push/notifications [post]
func (h *PushHandler) Enqueue(c *gin.Context) {
	var notification models.Notification
	if err := c.ShouldBindJSON(&notification); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	if err := h.service.Enqueue(c.Request.Context(), notification); err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.RecordPushEnqueued(priorityLabel(notification.Priority))
	response.JSON(c, http.StatusAccepted, gin.H{"status": "accepted"}, nil)
}

func priorityLabel(p models.PushPriority) string {
	switch {
	case p >= models.PushPriorityHigh:
		return "high"
	case p == models.PushPriorityMedium:
		return "medium"
	default:
		return "low"
	}
}
