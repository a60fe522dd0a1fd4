package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"gst-service/internal/gst"
	"gst-service/internal/models"
	"gst-service/internal/repository"
)

// ProfileService manages tenant tax profiles and HSN/SAC categories
type ProfileService struct {
	repo      repository.TaxRepositoryInterface
	publisher EventPublisher
	logger    *logrus.Entry
}

// NewProfileService creates a new ProfileService
func NewProfileService(repo repository.TaxRepositoryInterface, publisher EventPublisher, logger *logrus.Logger) *ProfileService {
	return &ProfileService{
		repo:      repo,
		publisher: publisherOrNoop(publisher),
		logger:    logger.WithField("component", "services.profile"),
	}
}

// ValidateGSTIN checks the structure of a GSTIN and reports the state it encodes
func ValidateGSTIN(gstin string) models.ValidateGSTINResponse {
	gstin = strings.ToUpper(strings.TrimSpace(gstin))
	resp := models.ValidateGSTINResponse{GSTIN: gstin, IsValid: gst.ValidateGSTIN(gstin)}
	if !resp.IsValid {
		return resp
	}
	if state := gst.StateFromGSTIN(gstin); state != "" {
		resp.StateCode = state
		resp.StateName = gst.StateCode(state).Name()
	} else {
		// well-formed but for a state code that does not exist
		resp.IsValid = false
	}
	return resp
}

// GetProfile gets the tenant's tax profile
func (s *ProfileService) GetProfile(ctx context.Context, tenantID string) (*models.TenantTaxProfile, error) {
	return s.repo.GetProfile(ctx, tenantID)
}

// UpdateProfile creates or replaces the tenant's tax profile. The state is
// derived from the GSTIN when omitted and must agree with it when given.
func (s *ProfileService) UpdateProfile(ctx context.Context, tenantID string, req models.UpdateProfileRequest) (*models.TenantTaxProfile, error) {
	gstin := strings.ToUpper(strings.TrimSpace(req.GSTIN))
	var gstinState string
	if gstin != "" {
		v := ValidateGSTIN(gstin)
		if !v.IsValid {
			return nil, invalidf("GSTIN %q is not valid", gstin)
		}
		gstinState = v.StateCode
	}

	state, err := parseState("profile", req.StateCode)
	if err != nil {
		return nil, err
	}
	switch {
	case state == "" && gstinState == "":
		return nil, invalidf("stateCode or gstin is required")
	case state == "":
		state = gst.StateCode(gstinState)
	case gstinState != "" && state.Canonical() != gst.StateCode(gstinState):
		return nil, invalidf("stateCode %s does not match GSTIN state %s", state, gstinState)
	}

	registered := gstin != ""
	if req.IsRegistered != nil {
		registered = *req.IsRegistered
	}
	if registered && gstin == "" {
		return nil, invalidf("a registered supplier needs a GSTIN")
	}

	profile, err := s.repo.GetProfile(ctx, tenantID)
	if errors.Is(err, repository.ErrNotFound) {
		profile = &models.TenantTaxProfile{ID: uuid.New(), TenantID: tenantID, NextInvoiceSeq: 1}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load tax profile: %w", err)
	}

	profile.LegalName = req.LegalName
	profile.GSTIN = gstin
	profile.StateCode = string(state.Canonical())
	profile.IsRegistered = registered
	profile.IsCompositionScheme = req.IsCompositionScheme
	if req.InvoicePrefix != "" {
		profile.InvoicePrefix = req.InvoicePrefix
	} else if profile.InvoicePrefix == "" {
		profile.InvoicePrefix = "INV"
	}
	if req.Currency != "" {
		profile.Currency = strings.ToUpper(req.Currency)
	} else if profile.Currency == "" {
		profile.Currency = defaultCurrency
	}

	if err := s.repo.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"state_code": profile.StateCode,
		"registered": profile.IsRegistered,
	}).Info("Tax profile updated")

	return profile, nil
}

// ListCategories lists the HSN/SAC categories visible to the tenant
func (s *ProfileService) ListCategories(ctx context.Context, tenantID string) ([]models.ProductTaxCategory, error) {
	return s.repo.ListProductCategories(ctx, tenantID)
}

func validateCategory(req models.CategoryRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return invalidf("name is required")
	}
	if req.HSNCode == "" && req.SACCode == "" {
		return invalidf("hsnCode or sacCode is required")
	}
	if err := validateCode(req.HSNCode); err != nil {
		return invalidf("hsnCode %q: %v", req.HSNCode, err)
	}
	if err := validateCode(req.SACCode); err != nil {
		return invalidf("sacCode %q: %v", req.SACCode, err)
	}
	if !validRate(req.GSTSlab) {
		return invalidf("gstSlab must be between 0 and 100")
	}
	if req.CessRate.IsNegative() {
		return invalidf("cessRate must not be negative")
	}
	return nil
}

func applyCategory(category *models.ProductTaxCategory, req models.CategoryRequest) {
	category.Name = strings.TrimSpace(req.Name)
	category.Description = req.Description
	category.HSNCode = normalizeCode(req.HSNCode)
	category.SACCode = normalizeCode(req.SACCode)
	category.GSTSlab = req.GSTSlab
	category.CessRate = req.CessRate
	category.IsTaxExempt = req.IsTaxExempt
	category.IsNilRated = req.IsNilRated
}

// CreateCategory adds a tenant HSN/SAC category. It overrides the compiled
// rate for its code in every later computation.
func (s *ProfileService) CreateCategory(ctx context.Context, tenantID string, actor Actor, req models.CategoryRequest) (*models.ProductTaxCategory, error) {
	if err := validateCategory(req); err != nil {
		return nil, err
	}

	category := &models.ProductTaxCategory{ID: uuid.New(), TenantID: tenantID}
	applyCategory(category, req)
	if err := s.repo.CreateProductCategory(ctx, category); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, invalidf("a category named %q already exists", category.Name)
		}
		return nil, err
	}

	if err := s.publisher.PublishCategoryCreated(ctx, category, actor.ID, actor.Name); err != nil {
		s.logger.WithError(err).WithField("category_id", category.ID).Warn("Failed to publish category created event")
	}
	return category, nil
}

// UpdateCategory replaces a tenant category. Global categories are read-only
// for tenants.
func (s *ProfileService) UpdateCategory(ctx context.Context, tenantID string, categoryID uuid.UUID, actor Actor, req models.CategoryRequest) (*models.ProductTaxCategory, error) {
	if err := validateCategory(req); err != nil {
		return nil, err
	}

	category, err := s.repo.GetProductCategory(ctx, tenantID, categoryID)
	if err != nil {
		return nil, err
	}
	if category.TenantID != tenantID {
		return nil, repository.ErrNotFound
	}

	applyCategory(category, req)
	if err := s.repo.UpdateProductCategory(ctx, category); err != nil {
		return nil, err
	}

	if err := s.publisher.PublishCategoryUpdated(ctx, category, actor.ID, actor.Name); err != nil {
		s.logger.WithError(err).WithField("category_id", category.ID).Warn("Failed to publish category updated event")
	}
	return category, nil
}

// DeleteCategory removes a tenant category
func (s *ProfileService) DeleteCategory(ctx context.Context, tenantID string, categoryID uuid.UUID) error {
	return s.repo.DeleteProductCategory(ctx, tenantID, categoryID)
}
