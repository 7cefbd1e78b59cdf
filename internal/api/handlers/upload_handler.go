package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/wearella/marketpulse/internal/domain"
	"github.com/wearella/marketpulse/internal/ingest"
	"github.com/wearella/marketpulse/internal/repository"
	"github.com/wearella/marketpulse/internal/service"
)

type UploadHandler struct {
	uploadService *service.UploadService
}

func NewUploadHandler(uploadService *service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// Upload ingests one report file. Multipart form fields: file, platform,
// report_type, start_date, end_date, overwrite.
func (h *UploadHandler) Upload(c *gin.Context) {
	platform, err := domain.ParsePlatform(c.PostForm("platform"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	reportType, err := domain.ParseReportType(c.PostForm("report_type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, err := time.Parse(domain.DateRangeLayout, c.PostForm("start_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := time.Parse(domain.DateRangeLayout, c.PostForm("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
		return
	}
	overwrite, _ := strconv.ParseBool(c.PostForm("overwrite"))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open uploaded file"})
		return
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
		return
	}

	rows, err := ingest.Read(bytes.NewReader(buf.Bytes()), fileHeader.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.uploadService.Process(c.Request.Context(), service.UploadRequest{
		Platform:   platform,
		ReportType: reportType,
		StartDate:  start,
		EndDate:    end,
		Filename:   fileHeader.Filename,
		Rows:       rows,
		Raw:        buf.Bytes(),
		Overwrite:  overwrite,
	})
	if errors.Is(err, service.ErrDuplicateUpload) {
		c.JSON(http.StatusConflict, gin.H{
			"error":    err.Error(),
			"existing": record.Key(),
			"hint":     "retry with overwrite=true to replace the stored record",
		})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("failed to process upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process upload"})
		return
	}

	c.JSON(http.StatusCreated, record)
}

// List returns stored records, newest first, filterable by platform,
// report_type, from/to and limit.
func (h *UploadHandler) List(c *gin.Context) {
	filter, err := parseRecordFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, err := h.uploadService.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch uploads"})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *UploadHandler) Get(c *gin.Context) {
	record, err := h.uploadService.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "upload not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch upload"})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *UploadHandler) Delete(c *gin.Context) {
	err := h.uploadService.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "upload not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete upload"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "upload deleted"})
}

func parseRecordFilter(c *gin.Context) (domain.RecordFilter, error) {
	var filter domain.RecordFilter

	if v := strings.TrimSpace(c.Query("platform")); v != "" {
		platform, err := domain.ParsePlatform(v)
		if err != nil {
			return filter, err
		}
		filter.Platform = platform
	}
	if v := strings.TrimSpace(c.Query("report_type")); v != "" {
		reportType, err := domain.ParseReportType(v)
		if err != nil {
			return filter, err
		}
		filter.ReportType = reportType
	}
	if v := strings.TrimSpace(c.Query("from")); v != "" {
		t, err := time.Parse(domain.DateRangeLayout, v)
		if err != nil {
			return filter, errors.New("from must be YYYY-MM-DD")
		}
		filter.From = t
	}
	if v := strings.TrimSpace(c.Query("to")); v != "" {
		t, err := time.Parse(domain.DateRangeLayout, v)
		if err != nil {
			return filter, errors.New("to must be YYYY-MM-DD")
		}
		filter.To = t
	}
	filter.Limit = parseNonNegativeInt(c.Query("limit"))
	return filter, nil
}

func parsePositiveIntWithDefault(value string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func parseNonNegativeInt(value string) int {
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && v >= 0 {
		return v
	}
	return 0
}
