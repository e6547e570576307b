package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/icetimehq/icetime-api/internal/service"
	"github.com/icetimehq/icetime-api/pkg/response"
)

// RinkHandler handles rink directory endpoints.
type RinkHandler struct {
	rinks *service.RinkService
}

// NewRinkHandler constructs a rink handler.
func NewRinkHandler(rinks *service.RinkService) *RinkHandler {
	return &RinkHandler{rinks: rinks}
}

// List godoc
// @Summary List known rinks
// @Tags Rinks
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /rinks [get]
func (h *RinkHandler) List(c *gin.Context) {
	rinks, err := h.rinks.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rinks, nil)
}
