package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"gst-service/internal/gst"
	"gst-service/internal/models"
	"gst-service/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler handles GSTR-1 report and filing requests
type ReportHandler struct {
	reports *services.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func bindPeriod(c *gin.Context, bind func(obj any) error) (gst.Period, bool) {
	var req models.GSTR1Request
	if err := bind(&req); err != nil {
		badRequest(c, "Invalid period", err)
		return gst.Period{}, false
	}
	period, err := services.ParsePeriod(req.From, req.To)
	if err != nil {
		respondError(c, "Invalid period", err)
		return gst.Period{}, false
	}
	return period, true
}

// GetGSTR1 handles GET /api/v1/reports/gstr1?from=&to=
func (h *ReportHandler) GetGSTR1(c *gin.Context) {
	period, ok := bindPeriod(c, c.ShouldBindQuery)
	if !ok {
		return
	}

	report, err := h.reports.BuildGSTR1(c.Request.Context(), getTenantID(c), period)
	if err != nil {
		respondError(c, "Failed to build GSTR-1", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ExportGSTR1 handles GET /api/v1/reports/gstr1/export?from=&to=
func (h *ReportHandler) ExportGSTR1(c *gin.Context) {
	period, ok := bindPeriod(c, c.ShouldBindQuery)
	if !ok {
		return
	}

	// buffered so a failure can still be reported as JSON
	var buf bytes.Buffer
	if err := h.reports.ExportGSTR1(c.Request.Context(), getTenantID(c), period, &buf); err != nil {
		respondError(c, "Failed to export GSTR-1", err)
		return
	}

	filename := fmt.Sprintf("gstr1_%s_%s.xlsx", period.From.Format("20060102"), period.To.Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// SaveGSTR1 handles POST /api/v1/reports/gstr1
func (h *ReportHandler) SaveGSTR1(c *gin.Context) {
	period, ok := bindPeriod(c, c.ShouldBindJSON)
	if !ok {
		return
	}

	filing, err := h.reports.SaveGSTR1(c.Request.Context(), getTenantID(c), period)
	if err != nil {
		respondError(c, "Failed to save GSTR-1", err)
		return
	}
	c.JSON(http.StatusCreated, filing)
}

// ListFilings handles GET /api/v1/reports/gstr1/filings
func (h *ReportHandler) ListFilings(c *gin.Context) {
	filings, err := h.reports.ListFilings(c.Request.Context(), getTenantID(c))
	if err != nil {
		respondError(c, "Failed to list filings", err)
		return
	}
	c.JSON(http.StatusOK, filings)
}

// GetFiling handles GET /api/v1/reports/gstr1/filings/:id
func (h *ReportHandler) GetFiling(c *gin.Context) {
	id, ok := parseID(c, "filing")
	if !ok {
		return
	}

	filing, err := h.reports.GetFiling(c.Request.Context(), getTenantID(c), id)
	if err != nil {
		respondError(c, "Filing not found", err)
		return
	}
	c.JSON(http.StatusOK, filing)
}

// FileGSTR1 handles POST /api/v1/reports/gstr1/:id/file
func (h *ReportHandler) FileGSTR1(c *gin.Context) {
	id, ok := parseID(c, "filing")
	if !ok {
		return
	}

	var req models.FileGSTR1Request
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request", err)
			return
		}
	}
	if req.FiledBy == "" {
		req.FiledBy = getActor(c).Name
	}

	filing, err := h.reports.FileGSTR1(c.Request.Context(), getTenantID(c), id, req)
	if err != nil {
		respondError(c, "Failed to file GSTR-1", err)
		return
	}
	c.JSON(http.StatusOK, filing)
}
