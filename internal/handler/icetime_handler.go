package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/icetimehq/icetime-api/internal/dto"
	"github.com/icetimehq/icetime-api/internal/service"
	appErrors "github.com/icetimehq/icetime-api/pkg/errors"
	"github.com/icetimehq/icetime-api/pkg/response"
)

// IceTimeHandler handles schedule listing endpoints.
type IceTimeHandler struct {
	iceTimes *service.IceTimeService
	exports  *service.ExportService
}

// NewIceTimeHandler constructs an ice-time handler.
func NewIceTimeHandler(iceTimes *service.IceTimeService, exports *service.ExportService) *IceTimeHandler {
	return &IceTimeHandler{iceTimes: iceTimes, exports: exports}
}

// List godoc
// @Summary List active ice times
// @Tags IceTimes
// @Produce json
// @Param clinic query bool false "Include CLINIC sessions"
// @Param openSkate query bool false "Include OPEN_SKATE sessions"
// @Param stickTime query bool false "Include STICK_TIME sessions"
// @Param openHockey query bool false "Include OPEN_HOCKEY sessions"
// @Param substituteRequest query bool false "Include SUBSTITUTE_REQUEST sessions"
// @Param learnToSkate query bool false "Include LEARN_TO_SKATE sessions"
// @Param youthClinic query bool false "Include YOUTH_CLINIC sessions"
// @Param adultClinic query bool false "Include ADULT_CLINIC sessions"
// @Param adultSkate query bool false "Include ADULT_SKATE sessions"
// @Param other query bool false "Include OTHER sessions"
// @Param dateFilter query string false "Date window" Enums(today, tomorrow, thisWeek)
// @Param rinkId query string false "Restrict to one rink"
// @Success 200 {object} response.Envelope
// @Router /ice-times [get]
func (h *IceTimeHandler) List(c *gin.Context) {
	var query dto.IceTimeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}

	views, err := h.iceTimes.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil, map[string]interface{}{"count": len(views)})
}

// Export godoc
// @Summary Export the filtered schedule as CSV or PDF
// @Tags IceTimes
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "Output format" Enums(csv, pdf)
// @Param dateFilter query string false "Date window" Enums(today, tomorrow, thisWeek)
// @Success 200 {file} file
// @Router /ice-times/export [get]
func (h *IceTimeHandler) Export(c *gin.Context) {
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}

	file, err := h.exports.Export(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
