package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"gst-service/internal/models"
	"gst-service/internal/services"
)

// InvoiceHandler handles invoice HTTP requests
type InvoiceHandler struct {
	invoices *services.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoices *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// CreateInvoice handles POST /api/v1/invoices
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req models.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	invoice, err := h.invoices.CreateInvoice(c.Request.Context(), getTenantID(c), req)
	if err != nil {
		respondError(c, "Failed to create invoice", err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

// ListInvoices handles GET /api/v1/invoices?from=&to=&status=&limit=&offset=
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	filter, err := parseInvoiceFilter(c)
	if err != nil {
		badRequest(c, "Invalid query", err)
		return
	}

	invoices, total, err := h.invoices.ListInvoices(c.Request.Context(), getTenantID(c), filter)
	if err != nil {
		respondError(c, "Failed to list invoices", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":   invoices,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

func parseInvoiceFilter(c *gin.Context) (models.InvoiceFilter, error) {
	var filter models.InvoiceFilter
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return filter, err
		}
		filter.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return filter, err
		}
		filter.To = t.Add(24*time.Hour - time.Nanosecond)
	}
	if status := c.Query("status"); status != "" {
		filter.Status = models.InvoiceStatus(strings.ToUpper(status))
	}

	var err error
	if filter.Limit, err = queryInt(c, "limit", 50); err != nil {
		return filter, err
	}
	if filter.Offset, err = queryInt(c, "offset", 0); err != nil {
		return filter, err
	}
	return filter, nil
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

// GetInvoice handles GET /api/v1/invoices/:id
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, ok := parseID(c, "invoice")
	if !ok {
		return
	}

	invoice, err := h.invoices.GetInvoice(c.Request.Context(), getTenantID(c), id)
	if err != nil {
		respondError(c, "Invoice not found", err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// CancelInvoice handles POST /api/v1/invoices/:id/cancel
func (h *InvoiceHandler) CancelInvoice(c *gin.Context) {
	id, ok := parseID(c, "invoice")
	if !ok {
		return
	}

	var req models.CancelInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	invoice, err := h.invoices.CancelInvoice(c.Request.Context(), getTenantID(c), id, req.Reason)
	if err != nil {
		respondError(c, "Failed to cancel invoice", err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}
