package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/campus-api/internal/service"
	appErrors "github.com/campushq/campus-api/pkg/errors"
	"github.com/campushq/campus-api/pkg/response"
)

// QueryHandler exposes student-faculty Q&A threads.
type QueryHandler struct {
	service *service.QueryService
}

// NewQueryHandler constructs a query handler.
func NewQueryHandler(svc *service.QueryService) *QueryHandler {
	return &QueryHandler{service: svc}
}

// Open godoc
// @Summary Open a query thread
// @Description Student opens a thread addressed to one faculty member, with the first message
// @Tags Queries
// @Accept json
// @Produce json
// @Param payload body service.OpenQueryRequest true "Query payload"
// @Success 201 {object} response.Envelope
// @Router /queries [post]
func (h *QueryHandler) Open(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.OpenQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.StudentID = claims.UserID

	query, err := h.service.Open(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, query)
}

// List godoc
// @Summary List the caller's query threads
// @Tags Queries
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /queries [get]
func (h *QueryHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	queries, err := h.service.ListForActor(c.Request.Context(), claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, queries, nil)
}

// Thread godoc
// @Summary Read a thread with its messages
// @Tags Queries
// @Produce json
// @Param id path string true "Query ID"
// @Success 200 {object} response.Envelope
// @Router /queries/{id} [get]
func (h *QueryHandler) Thread(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	thread, err := h.service.Thread(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, thread, nil)
}

// Reply godoc
// @Summary Reply on an open thread
// @Tags Queries
// @Accept json
// @Produce json
// @Param id path string true "Query ID"
// @Param payload body service.ReplyRequest true "Message payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /queries/{id}/messages [post]
func (h *QueryHandler) Reply(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.QueryID = c.Param("id")
	req.SenderID = claims.UserID
	req.SenderRole = claims.Role

	message, err := h.service.Reply(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, message)
}

// Resolve godoc
// @Summary Resolve a thread
// @Description Only the addressed faculty member can resolve
// @Tags Queries
// @Produce json
// @Param id path string true "Query ID"
// @Success 204 {object} response.Envelope
// @Router /queries/{id}/resolve [post]
func (h *QueryHandler) Resolve(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Resolve(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete a thread
// @Description Only the owning student can delete
// @Tags Queries
// @Produce json
// @Param id path string true "Query ID"
// @Success 204 {object} response.Envelope
// @Router /queries/{id} [delete]
func (h *QueryHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
