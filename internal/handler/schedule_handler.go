package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campushq/campus-api/internal/models"
	"github.com/campushq/campus-api/internal/service"
	appErrors "github.com/campushq/campus-api/pkg/errors"
	"github.com/campushq/campus-api/pkg/response"
)

// ScheduleHandler exposes the manual scheduling engine plus the grouped
// timetable views.
type ScheduleHandler struct {
	service   *service.ScheduleService
	generator *service.ScheduleGeneratorService
	exports   *service.ExportService
	metrics   *service.MetricsService
}

// NewScheduleHandler constructs a schedule handler.
func NewScheduleHandler(svc *service.ScheduleService, generator *service.ScheduleGeneratorService, exports *service.ExportService, metrics *service.MetricsService) *ScheduleHandler {
	return &ScheduleHandler{service: svc, generator: generator, exports: exports, metrics: metrics}
}

// Subjects godoc
// @Summary List schedulable subjects
// @Tags Scheduling
// @Produce json
// @Param departmentId query string true "Department ID"
// @Param semester query int true "Semester"
// @Success 200 {object} response.Envelope
// @Router /mannual-schedule/subjects [get]
func (h *ScheduleHandler) Subjects(c *gin.Context) {
	semester, err := strconv.Atoi(c.DefaultQuery("semester", "0"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "semester must be a number"))
		return
	}

	courses, err := h.service.ListSubjects(c.Request.Context(), c.Query("departmentId"), semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Rooms godoc
// @Summary List rooms free for a slot on a date
// @Tags Scheduling
// @Produce json
// @Param slotId query string true "Timeslot ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param buildingId query string false "Restrict to one building"
// @Success 200 {object} response.Envelope
// @Router /mannual-schedule/rooms [get]
func (h *ScheduleHandler) Rooms(c *gin.Context) {
	req := models.AvailabilityRequest{
		SlotID:     c.Query("slotId"),
		Date:       c.Query("date"),
		BuildingID: c.Query("buildingId"),
	}

	rooms, err := h.service.ListAvailableRooms(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms, nil)
}

// Faculty godoc
// @Summary List faculty qualified for a subject and free for a slot
// @Tags Scheduling
// @Produce json
// @Param subjectId query string true "Course ID"
// @Param slotId query string true "Timeslot ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /schedule/faculty [get]
func (h *ScheduleHandler) Faculty(c *gin.Context) {
	req := models.AvailabilityRequest{
		SlotID:   c.Query("slotId"),
		Date:     c.Query("date"),
		CourseID: c.Query("subjectId"),
	}

	faculty, err := h.service.ListAvailableFaculty(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faculty, nil)
}

// Init godoc
// @Summary Open a schedule shell for a section
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param payload body models.InitScheduleRequest true "Schedule shell payload"
// @Success 201 {object} response.Envelope
// @Router /mannual-schedule/init [post]
func (h *ScheduleHandler) Init(c *gin.Context) {
	var req models.InitScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if claims := claimsFromContext(c); claims != nil {
		req.CreatedBy = claims.UserID
	}

	schedule, err := h.service.InitSchedule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, schedule)
}

// Assign godoc
// @Summary Assign one class into the grid
// @Description Books a course, faculty and room for a section's slot on a date; conflicts return 409
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param payload body models.AssignClassRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /mannual-schedule/assign [post]
func (h *ScheduleHandler) Assign(c *gin.Context) {
	var req models.AssignClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	class, err := h.service.Assign(c.Request.Context(), req)
	if err != nil {
		var conflictErr *models.BookingConflictError
		if errors.As(err, &conflictErr) {
			h.metrics.RecordBooking("conflict")
			appErr := appErrors.Clone(appErrors.ErrBookingConflict, conflictErr.Message)
			response.JSONError(c, appErr, map[string]interface{}{"conflict": conflictErr.Conflict})
			return
		}
		if appErrors.FromError(err).Code == appErrors.ErrBookingConflict.Code {
			h.metrics.RecordBooking("conflict")
		}
		response.Error(c, err)
		return
	}

	h.metrics.RecordBooking("committed")
	response.Created(c, class)
}

// Generate godoc
// @Summary Generate schedules for every section of a department
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param payload body models.GenerateScheduleRequest true "Generation payload"
// @Success 200 {object} response.Envelope
// @Router /schedule/generate [post]
func (h *ScheduleHandler) Generate(c *gin.Context) {
	var req models.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if claims := claimsFromContext(c); claims != nil {
		req.CreatedBy = claims.UserID
	}

	summary, err := h.generator.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Latest godoc
// @Summary Latest timetable per section of a department
// @Tags Scheduling
// @Produce json
// @Param departmentId query string true "Department ID"
// @Success 200 {object} response.Envelope
// @Router /schedule/latest [get]
func (h *ScheduleHandler) Latest(c *gin.Context) {
	departmentID := c.Query("departmentId")
	if departmentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "departmentId is required"))
		return
	}

	timetables, err := h.service.LatestTimetable(c.Request.Context(), departmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetables, nil)
}

// Export godoc
// @Summary Export the latest timetable as CSV or PDF
// @Tags Scheduling
// @Produce octet-stream
// @Param departmentId query string true "Department ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /schedule/latest/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
	departmentID := c.Query("departmentId")
	if departmentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "departmentId is required"))
		return
	}

	format := c.DefaultQuery("format", "csv")
	var (
		payload     []byte
		contentType string
		err         error
	)
	switch format {
	case "csv":
		payload, err = h.exports.TimetableCSV(c.Request.Context(), departmentID)
		contentType = "text/csv"
	case "pdf":
		payload, err = h.exports.TimetablePDF(c.Request.Context(), departmentID)
		contentType = "application/pdf"
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("timetable-%s.%s", departmentID, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
