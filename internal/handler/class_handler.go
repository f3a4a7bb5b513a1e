package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campushq/campus-api/internal/models"
	"github.com/campushq/campus-api/internal/service"
	appErrors "github.com/campushq/campus-api/pkg/errors"
	"github.com/campushq/campus-api/pkg/response"
)

// ClassHandler exposes the class timeline and detail endpoints.
type ClassHandler struct {
	service *service.ClassService
}

// NewClassHandler constructs a class handler.
func NewClassHandler(svc *service.ClassService) *ClassHandler {
	return &ClassHandler{service: svc}
}

// Upcoming returns a handler reading the caller's upcoming class at a
// zero-based index. The path's user id must be the caller's own.
//
// Upcoming godoc
// @Summary Upcoming class at index n
// @Description n is zero-based: 0 is the next class. Out-of-range returns an empty payload, not an error.
// @Tags Classes
// @Produce json
// @Param id path string true "Caller's user ID"
// @Param n path int true "Zero-based index into the upcoming timeline"
// @Success 200 {object} response.Envelope
// @Router /student/classes/upcoming-classes/{id}/{n} [get]
func (h *ClassHandler) Upcoming(idParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFromContext(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		if c.Param(idParam) != claims.UserID && claims.Role != models.RoleSupreme {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "cannot read another user's classes"))
			return
		}

		count, err := strconv.Atoi(c.Param("n"))
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "index must be a number"))
			return
		}

		occurrence, err := h.service.Upcoming(c.Request.Context(), claims, count)
		if err != nil {
			response.Error(c, err)
			return
		}
		if occurrence == nil {
			response.Empty(c)
			return
		}
		response.JSON(c, http.StatusOK, occurrence, nil)
	}
}

// Past godoc
// @Summary Past classes for the caller
// @Tags Classes
// @Produce json
// @Param id path string true "Caller's user ID"
// @Success 200 {object} response.Envelope
// @Router /student/classes/past-classes/{id} [get]
func (h *ClassHandler) Past(idParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFromContext(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		if c.Param(idParam) != claims.UserID && claims.Role != models.RoleSupreme {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "cannot read another user's classes"))
			return
		}

		occurrences, err := h.service.Past(c.Request.Context(), claims)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, occurrences, nil)
	}
}

// Detail godoc
// @Summary Deep class detail
// @Description Class plus course, syllabus, faculty, room, section and slot
// @Tags Classes
// @Produce json
// @Param class_id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{class_id} [get]
func (h *ClassHandler) Detail(c *gin.Context) {
	detail, err := h.service.Detail(c.Request.Context(), c.Param("class_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}
