package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wearella/marketpulse/internal/domain"
	"github.com/wearella/marketpulse/internal/service"
)

type ProjectionHandler struct {
	projectionService *service.ProjectionService
}

func NewProjectionHandler(projectionService *service.ProjectionService) *ProjectionHandler {
	return &ProjectionHandler{projectionService: projectionService}
}

// GetProjection forecasts sales over a horizon. Query params: sku
// (optional, empty means overall), days (default 30), platform (optional).
func (h *ProjectionHandler) GetProjection(c *gin.Context) {
	sku := strings.TrimSpace(c.Query("sku"))
	days := parsePositiveIntWithDefault(c.Query("days"), 30)

	var platform domain.Platform
	if v := strings.TrimSpace(c.Query("platform")); v != "" {
		parsed, err := domain.ParsePlatform(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		platform = parsed
	}

	result, err := h.projectionService.Project(c.Request.Context(), sku, days, platform)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute projection"})
		return
	}
	c.JSON(http.StatusOK, result)
}
