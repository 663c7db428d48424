package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campushub/timetable-api/internal/models"
	"github.com/campushub/timetable-api/internal/service"
	appErrors "github.com/campushub/timetable-api/pkg/errors"
	"github.com/campushub/timetable-api/pkg/response"
)

type calendarService interface {
	ListConflicts(ctx context.Context, timetableID, userID string) ([]models.ConflictPair, error)
	Occurrences(ctx context.Context, timetableID, userID string, window service.OccurrenceWindow) ([]models.CalendarOccurrence, error)
	DefaultWindow(anchor time.Time) service.OccurrenceWindow
}

type exportService interface {
	Export(ctx context.Context, timetableID, userID, format string, anchor time.Time) (*service.ExportResult, error)
}

// CalendarHandler serves the read-side projections: conflict warnings,
// dated occurrences and file exports.
type CalendarHandler struct {
	calendar calendarService
	export   exportService
}

// NewCalendarHandler constructs handler.
func NewCalendarHandler(calendar calendarService, export exportService) *CalendarHandler {
	return &CalendarHandler{calendar: calendar, export: export}
}

// Conflicts godoc
// @Summary List pairwise conflicts in a timetable
// @Tags Calendar
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/conflicts [get]
func (h *CalendarHandler) Conflicts(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	conflicts, err := h.calendar.ListConflicts(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conflicts)
}

// Occurrences godoc
// @Summary Materialize dated occurrences for a display window
// @Tags Calendar
// @Produce json
// @Param id path string true "Timetable ID"
// @Param anchor query string false "Anchor date (YYYY-MM-DD), defaults to today"
// @Param weeksBefore query int false "Weeks before the anchor"
// @Param weeksAfter query int false "Weeks after the anchor"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/occurrences [get]
func (h *CalendarHandler) Occurrences(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	window, err := h.parseWindow(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	occurrences, err := h.calendar.Occurrences(c.Request.Context(), c.Param("id"), claims.UserID, window)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occurrences)
}

// Export godoc
// @Summary Export a timetable as CSV, PDF or an ICS calendar feed
// @Tags Calendar
// @Produce octet-stream
// @Param id path string true "Timetable ID"
// @Param format query string true "Export format" Enums(csv, pdf, ics)
// @Param anchor query string false "Anchor date for the ICS window (YYYY-MM-DD)"
// @Success 200 {file} binary
// @Router /timetables/{id}/export [get]
func (h *CalendarHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	anchor, err := parseAnchor(c.Query("anchor"))
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.export.Export(c.Request.Context(), c.Param("id"), claims.UserID, c.Query("format"), anchor)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

// parseWindow assembles the occurrence window from query parameters, filling
// unset bounds from the service defaults.
func (h *CalendarHandler) parseWindow(c *gin.Context) (service.OccurrenceWindow, error) {
	anchor, err := parseAnchor(c.Query("anchor"))
	if err != nil {
		return service.OccurrenceWindow{}, err
	}
	window := h.calendar.DefaultWindow(anchor)

	if raw := c.Query("weeksBefore"); raw != "" {
		weeks, err := strconv.Atoi(raw)
		if err != nil || weeks < 0 {
			return service.OccurrenceWindow{}, appErrors.Clone(appErrors.ErrValidation, "weeksBefore must be a non-negative integer")
		}
		window.WeeksBefore = weeks
	}
	if raw := c.Query("weeksAfter"); raw != "" {
		weeks, err := strconv.Atoi(raw)
		if err != nil || weeks < 0 {
			return service.OccurrenceWindow{}, appErrors.Clone(appErrors.ErrValidation, "weeksAfter must be a non-negative integer")
		}
		window.WeeksAfter = weeks
	}
	return window, nil
}

func parseAnchor(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC(), nil
	}
	anchor, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "anchor must be a date in YYYY-MM-DD format")
	}
	return anchor, nil
}
