package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wearella/marketpulse/internal/service"
)

type ReportHandler struct {
	reportService *service.ReportService
}

func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// GetSummary serves the cross-record dashboard aggregate.
func (h *ReportHandler) GetSummary(c *gin.Context) {
	filter, err := parseRecordFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.reportService.Summary(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ReportHandler) GetTopSkus(c *gin.Context) {
	filter, err := parseRecordFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n := parsePositiveIntWithDefault(c.Query("limit"), 10)
	filter.Limit = 0

	totals, err := h.reportService.TopSkus(c.Request.Context(), filter, n)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch top skus"})
		return
	}
	c.JSON(http.StatusOK, totals)
}

func (h *ReportHandler) GetTopCategories(c *gin.Context) {
	filter, err := parseRecordFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n := parsePositiveIntWithDefault(c.Query("limit"), 10)
	filter.Limit = 0

	totals, err := h.reportService.TopCategories(c.Request.Context(), filter, n)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch top categories"})
		return
	}
	c.JSON(http.StatusOK, totals)
}

// GetPlatforms serves the per-marketplace sales breakdown.
func (h *ReportHandler) GetPlatforms(c *gin.Context) {
	filter, err := parseRecordFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	totals, err := h.reportService.PlatformBreakdown(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch platform breakdown"})
		return
	}
	c.JSON(http.StatusOK, totals)
}

// GetParentSkus serves style-level rollups with per-child drill-down.
func (h *ReportHandler) GetParentSkus(c *gin.Context) {
	filter, err := parseRecordFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n := parsePositiveIntWithDefault(c.Query("limit"), 10)
	filter.Limit = 0

	rollups, err := h.reportService.ParentSkus(c.Request.Context(), filter, n)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch parent skus"})
		return
	}
	c.JSON(http.StatusOK, rollups)
}

func (h *ReportHandler) GetWarehouses(c *gin.Context) {
	filter, err := parseRecordFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	totals, err := h.reportService.Warehouses(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch warehouses"})
		return
	}
	c.JSON(http.StatusOK, totals)
}

// GetWarehouseSkus drills into one warehouse's per-SKU stock.
func (h *ReportHandler) GetWarehouseSkus(c *gin.Context) {
	warehouse := c.Param("warehouse")
	if warehouse == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "warehouse name is required"})
		return
	}
	filter, err := parseRecordFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	breakdown, err := h.reportService.WarehouseSkus(c.Request.Context(), filter, warehouse)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch warehouse breakdown"})
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

// GetSkuWarehouses is the inverse drill-down: one SKU's stock by warehouse.
func (h *ReportHandler) GetSkuWarehouses(c *gin.Context) {
	sku := c.Param("sku")
	if sku == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sku is required"})
		return
	}
	filter, err := parseRecordFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	breakdown, err := h.reportService.SkuWarehouses(c.Request.Context(), filter, sku)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch sku breakdown"})
		return
	}
	c.JSON(http.StatusOK, breakdown)
}
