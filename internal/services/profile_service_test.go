package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gst-service/internal/models"
	"gst-service/internal/repository"
	"gst-service/internal/repository/mocks"
)

func TestValidateGSTIN(t *testing.T) {
	resp := ValidateGSTIN(" 27aapfu0939f1zv ")
	assert.True(t, resp.IsValid)
	assert.Equal(t, mhGSTIN, resp.GSTIN)
	assert.Equal(t, "MH", resp.StateCode)
	assert.Equal(t, "Maharashtra", resp.StateName)

	resp = ValidateGSTIN("99AAPFU0939F1ZV")
	assert.False(t, resp.IsValid)
	assert.Empty(t, resp.StateCode)

	assert.False(t, ValidateGSTIN("27AAPFU0939F1Z").IsValid)
}

func TestUpdateProfile_CreatesFromGSTIN(t *testing.T) {
	repo := new(mocks.MockTaxRepository)
	repo.On("GetProfile", mock.Anything, tenantID).Return(nil, repository.ErrNotFound)
	repo.On("SaveProfile", mock.Anything, mock.AnythingOfType("*models.TenantTaxProfile")).Return(nil)

	svc := NewProfileService(repo, nil, testLogger())
	profile, err := svc.UpdateProfile(context.Background(), tenantID, models.UpdateProfileRequest{
		LegalName: "Bengaluru Retail LLP",
		GSTIN:     kaGSTIN,
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, profile.ID)
	assert.Equal(t, "KA", profile.StateCode)
	assert.True(t, profile.IsRegistered)
	assert.Equal(t, "INV", profile.InvoicePrefix)
	assert.Equal(t, int64(1), profile.NextInvoiceSeq)
	assert.Equal(t, "INR", profile.Currency)
	repo.AssertExpectations(t)
}

func TestUpdateProfile_KeepsSequence(t *testing.T) {
	existing := mhProfile()
	existing.NextInvoiceSeq = 42
	repo := new(mocks.MockTaxRepository)
	repo.On("GetProfile", mock.Anything, tenantID).Return(existing, nil)
	repo.On("SaveProfile", mock.Anything, existing).Return(nil)

	profile, err := NewProfileService(repo, nil, testLogger()).UpdateProfile(context.Background(), tenantID,
		models.UpdateProfileRequest{StateCode: "27", GSTIN: mhGSTIN, Currency: "inr"})
	require.NoError(t, err)
	assert.Equal(t, "MH", profile.StateCode)
	assert.Equal(t, int64(42), profile.NextInvoiceSeq)
	assert.Equal(t, "ACME", profile.InvoicePrefix)
	assert.Equal(t, "INR", profile.Currency)
}

func TestUpdateProfile_Validation(t *testing.T) {
	registered := true
	tests := []struct {
		name string
		req  models.UpdateProfileRequest
	}{
		{"no state or GSTIN", models.UpdateProfileRequest{LegalName: "x"}},
		{"invalid GSTIN", models.UpdateProfileRequest{GSTIN: "27AAPFU0939F1Z"}},
		{"state disagrees with GSTIN", models.UpdateProfileRequest{GSTIN: mhGSTIN, StateCode: "KA"}},
		{"unknown state", models.UpdateProfileRequest{StateCode: "ZZ"}},
		{"registered without GSTIN", models.UpdateProfileRequest{StateCode: "MH", IsRegistered: &registered}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockTaxRepository)
			_, err := NewProfileService(repo, nil, testLogger()).UpdateProfile(context.Background(), tenantID, tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
			repo.AssertNotCalled(t, "SaveProfile", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateCategory(t *testing.T) {
	repo := new(mocks.MockTaxRepository)
	repo.On("CreateProductCategory", mock.Anything, mock.MatchedBy(func(c *models.ProductTaxCategory) bool {
		return c.TenantID == tenantID && c.HSNCode == "847130" && c.Name == "Laptops"
	})).Return(nil)
	pub := new(MockPublisher)
	pub.On("PublishCategoryCreated", mock.Anything, mock.Anything, "user-1", "Priya").Return(errors.New("nats down"))

	category, err := NewProfileService(repo, pub, testLogger()).CreateCategory(context.Background(), tenantID,
		Actor{ID: "user-1", Name: "Priya"},
		models.CategoryRequest{Name: " Laptops ", HSNCode: "8471.30", GSTSlab: dec("18")})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, category.ID)
	assertDecimal(t, "18", category.EffectiveSlab())
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestCreateCategory_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  models.CategoryRequest
	}{
		{"no code", models.CategoryRequest{Name: "x", GSTSlab: dec("5")}},
		{"odd length HSN", models.CategoryRequest{Name: "x", HSNCode: "847", GSTSlab: dec("5")}},
		{"slab above 100", models.CategoryRequest{Name: "x", HSNCode: "8471", GSTSlab: dec("101")}},
		{"negative cess", models.CategoryRequest{Name: "x", HSNCode: "8471", CessRate: dec("-1")}},
		{"blank name", models.CategoryRequest{Name: "  ", HSNCode: "8471"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockTaxRepository)
			_, err := NewProfileService(repo, nil, testLogger()).CreateCategory(context.Background(), tenantID, Actor{}, tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	repo := new(mocks.MockTaxRepository)
	repo.On("CreateProductCategory", mock.Anything, mock.Anything).Return(repository.ErrConflict)
	_, err := NewProfileService(repo, nil, testLogger()).CreateCategory(context.Background(), tenantID, Actor{},
		models.CategoryRequest{Name: "Laptops", HSNCode: "8471", GSTSlab: dec("18")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateCategory(t *testing.T) {
	own := &models.ProductTaxCategory{ID: uuid.New(), TenantID: tenantID, Name: "Laptops", HSNCode: "8471", GSTSlab: dec("18")}
	global := &models.ProductTaxCategory{ID: uuid.New(), TenantID: models.GlobalTenantID, Name: "Computers", HSNCode: "8471", GSTSlab: dec("18")}

	repo := new(mocks.MockTaxRepository)
	repo.On("GetProductCategory", mock.Anything, tenantID, own.ID).Return(own, nil)
	repo.On("GetProductCategory", mock.Anything, tenantID, global.ID).Return(global, nil)
	repo.On("UpdateProductCategory", mock.Anything, own).Return(nil)
	pub := new(MockPublisher)
	pub.On("PublishCategoryUpdated", mock.Anything, own, "user-1", "").Return(nil)

	svc := NewProfileService(repo, pub, testLogger())
	req := models.CategoryRequest{Name: "Laptops", HSNCode: "8471", GSTSlab: dec("12"), IsNilRated: true}

	updated, err := svc.UpdateCategory(context.Background(), tenantID, own.ID, Actor{ID: "user-1"}, req)
	require.NoError(t, err)
	assertDecimal(t, "12", updated.GSTSlab)
	assertDecimal(t, "0", updated.EffectiveSlab())

	_, err = svc.UpdateCategory(context.Background(), tenantID, global.ID, Actor{}, req)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	repo.AssertNumberOfCalls(t, "UpdateProductCategory", 1)
	pub.AssertExpectations(t)
}

func TestDeleteCategory(t *testing.T) {
	id := uuid.New()
	repo := new(mocks.MockTaxRepository)
	repo.On("DeleteProductCategory", mock.Anything, tenantID, id).Return(repository.ErrNotFound)

	err := NewProfileService(repo, nil, testLogger()).DeleteCategory(context.Background(), tenantID, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
