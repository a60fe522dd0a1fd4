package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gst-service/internal/models"
	"gst-service/internal/services"
)

// TaxHandler handles tax calculation, GSTIN, profile and category requests
type TaxHandler struct {
	calculator *services.TaxCalculator
	profiles   *services.ProfileService
}

// NewTaxHandler creates a new tax handler
func NewTaxHandler(calculator *services.TaxCalculator, profiles *services.ProfileService) *TaxHandler {
	return &TaxHandler{
		calculator: calculator,
		profiles:   profiles,
	}
}

// CalculateLine handles POST /api/v1/tax/calculate-line
func (h *TaxHandler) CalculateLine(c *gin.Context) {
	var req models.CalculateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	breakdown, err := h.calculator.CalculateLine(c.Request.Context(), getTenantID(c), req)
	if err != nil {
		respondError(c, "Failed to calculate tax", err)
		return
	}

	c.JSON(http.StatusOK, breakdown)
}

// CalculateTax handles POST /api/v1/tax/calculate
func (h *TaxHandler) CalculateTax(c *gin.Context) {
	var req models.CalculateTaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	response, err := h.calculator.CalculateTax(c.Request.Context(), getTenantID(c), req)
	if err != nil {
		respondError(c, "Failed to calculate tax", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ValidateGSTIN handles POST /api/v1/gstin/validate
func (h *TaxHandler) ValidateGSTIN(c *gin.Context) {
	var req models.ValidateGSTINRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}
	c.JSON(http.StatusOK, services.ValidateGSTIN(req.GSTIN))
}

// ==================== Tax Profile ====================

// GetProfile handles GET /api/v1/profile
func (h *TaxHandler) GetProfile(c *gin.Context) {
	profile, err := h.profiles.GetProfile(c.Request.Context(), getTenantID(c))
	if err != nil {
		respondError(c, "Tax profile not found", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile handles PUT /api/v1/profile
func (h *TaxHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	profile, err := h.profiles.UpdateProfile(c.Request.Context(), getTenantID(c), req)
	if err != nil {
		respondError(c, "Failed to update tax profile", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ==================== Product Category CRUD ====================

// ListProductCategories handles GET /api/v1/categories
func (h *TaxHandler) ListProductCategories(c *gin.Context) {
	categories, err := h.profiles.ListCategories(c.Request.Context(), getTenantID(c))
	if err != nil {
		respondError(c, "Failed to list categories", err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// CreateProductCategory handles POST /api/v1/categories
func (h *TaxHandler) CreateProductCategory(c *gin.Context) {
	var req models.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	category, err := h.profiles.CreateCategory(c.Request.Context(), getTenantID(c), getActor(c), req)
	if err != nil {
		respondError(c, "Failed to create category", err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// UpdateProductCategory handles PUT /api/v1/categories/:id
func (h *TaxHandler) UpdateProductCategory(c *gin.Context) {
	id, ok := parseID(c, "category")
	if !ok {
		return
	}

	var req models.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	category, err := h.profiles.UpdateCategory(c.Request.Context(), getTenantID(c), id, getActor(c), req)
	if err != nil {
		respondError(c, "Failed to update category", err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteProductCategory handles DELETE /api/v1/categories/:id
func (h *TaxHandler) DeleteProductCategory(c *gin.Context) {
	id, ok := parseID(c, "category")
	if !ok {
		return
	}

	if err := h.profiles.DeleteCategory(c.Request.Context(), getTenantID(c), id); err != nil {
		respondError(c, "Failed to delete category", err)
		return
	}
	c.Status(http.StatusNoContent)
}
