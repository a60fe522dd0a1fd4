package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Tesseract-Nexus/go-shared/cache"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gst-service/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict - record already exists or is not in the expected state")
)

// Cache TTL constants for tax data
const (
	ProfileCacheTTL         = 30 * time.Minute // Tenant profiles change infrequently
	ProductCategoryCacheTTL = 30 * time.Minute // HSN/SAC categories

	cacheKeyPrefix = "tesseract:gst:"
)

// TaxRepositoryInterface is the persistence contract used by the services
type TaxRepositoryInterface interface {
	GetProfile(ctx context.Context, tenantID string) (*models.TenantTaxProfile, error)
	SaveProfile(ctx context.Context, profile *models.TenantTaxProfile) error
	CreateProfileIfMissing(ctx context.Context, profile *models.TenantTaxProfile) (bool, error)

	ListProductCategories(ctx context.Context, tenantID string) ([]models.ProductTaxCategory, error)
	GetProductCategory(ctx context.Context, tenantID string, categoryID uuid.UUID) (*models.ProductTaxCategory, error)
	CreateProductCategory(ctx context.Context, category *models.ProductTaxCategory) error
	UpdateProductCategory(ctx context.Context, category *models.ProductTaxCategory) error
	DeleteProductCategory(ctx context.Context, tenantID string, categoryID uuid.UUID) error

	CreateInvoice(ctx context.Context, invoice *models.Invoice) error
	GetInvoice(ctx context.Context, tenantID string, invoiceID uuid.UUID) (*models.Invoice, error)
	ListInvoices(ctx context.Context, tenantID string, filter models.InvoiceFilter) ([]models.Invoice, int64, error)
	ListInvoicesForPeriod(ctx context.Context, tenantID string, from, to time.Time) ([]models.Invoice, error)
	CancelInvoice(ctx context.Context, invoice *models.Invoice, reason string) error

	SaveFiling(ctx context.Context, filing *models.GSTR1Filing) error
	GetFiling(ctx context.Context, tenantID string, filingID uuid.UUID) (*models.GSTR1Filing, error)
	ListFilings(ctx context.Context, tenantID string) ([]models.GSTR1Filing, error)
	MarkFiled(ctx context.Context, filing *models.GSTR1Filing) error
}

// TaxRepository handles tax data operations
type TaxRepository struct {
	db    *gorm.DB
	redis *redis.Client
	cache *cache.CacheLayer
}

var _ TaxRepositoryInterface = (*TaxRepository)(nil)

// NewTaxRepository creates a new tax repository. redisClient may be nil.
func NewTaxRepository(db *gorm.DB, redisClient *redis.Client) *TaxRepository {
	repo := &TaxRepository{
		db:    db,
		redis: redisClient,
	}

	// Initialize CacheLayer with the existing Redis client
	if redisClient != nil {
		cacheConfig := cache.CacheConfig{
			L1Enabled:  true,
			L1MaxItems: 1000,
			L1TTL:      30 * time.Second,
			DefaultTTL: ProductCategoryCacheTTL,
			KeyPrefix:  cacheKeyPrefix,
		}
		repo.cache = cache.NewCacheLayerFromClient(redisClient, cacheConfig)
	}

	return repo
}

func profileCacheKey(tenantID string) string {
	return fmt.Sprintf("profile:%s", tenantID)
}

func categoryListCacheKey(tenantID string) string {
	return fmt.Sprintf("category:list:%s", tenantID)
}

func (r *TaxRepository) invalidateProfileCache(ctx context.Context, tenantID string) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Delete(ctx, profileCacheKey(tenantID))
}

// invalidateProductCategoryCache drops the tenant's list, or every list when
// a global category changed
func (r *TaxRepository) invalidateProductCategoryCache(ctx context.Context, tenantID string) {
	if r.cache == nil {
		return
	}
	if tenantID == models.GlobalTenantID {
		_ = r.cache.DeletePattern(ctx, "category:list:*")
		return
	}
	_ = r.cache.Delete(ctx, categoryListCacheKey(tenantID))
}

func (r *TaxRepository) getCached(ctx context.Context, key string, dest interface{}) bool {
	if r.redis == nil {
		return false
	}
	val, err := r.redis.Get(ctx, cacheKeyPrefix+key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), dest) == nil
}

func (r *TaxRepository) setCached(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if r.redis == nil {
		return
	}
	data, err := json.Marshal(value)
	if err == nil {
		r.redis.Set(ctx, cacheKeyPrefix+key, data, ttl)
	}
}

func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	default:
		return err
	}
}

// --- Tenant profile ---

// GetProfile gets the tax profile of a tenant
func (r *TaxRepository) GetProfile(ctx context.Context, tenantID string) (*models.TenantTaxProfile, error) {
	var profile models.TenantTaxProfile
	if r.getCached(ctx, profileCacheKey(tenantID), &profile) {
		return &profile, nil
	}

	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&profile).Error; err != nil {
		return nil, translateError(err)
	}

	r.setCached(ctx, profileCacheKey(tenantID), profile, ProfileCacheTTL)
	return &profile, nil
}

// SaveProfile creates or updates the tenant profile. The invoice sequence is
// owned by CreateInvoice and never overwritten here.
func (r *TaxRepository) SaveProfile(ctx context.Context, profile *models.TenantTaxProfile) error {
	profile.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"legal_name", "gstin", "state_code", "is_registered",
			"is_composition_scheme", "invoice_prefix", "currency", "updated_at",
		}),
	}).Create(profile).Error
	if err == nil {
		r.invalidateProfileCache(ctx, profile.TenantID)
	}
	return translateError(err)
}

// CreateProfileIfMissing inserts profile unless the tenant already has one.
// It reports whether a row was created.
func (r *TaxRepository) CreateProfileIfMissing(ctx context.Context, profile *models.TenantTaxProfile) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "tenant_id"}}, DoNothing: true}).
		Create(profile)
	if result.Error != nil {
		return false, translateError(result.Error)
	}
	if result.RowsAffected > 0 {
		r.invalidateProfileCache(ctx, profile.TenantID)
	}
	return result.RowsAffected > 0, nil
}

// --- Product tax categories ---

// ListProductCategories lists all product tax categories (including global data)
func (r *TaxRepository) ListProductCategories(ctx context.Context, tenantID string) ([]models.ProductTaxCategory, error) {
	var categories []models.ProductTaxCategory
	if r.getCached(ctx, categoryListCacheKey(tenantID), &categories) {
		return categories, nil
	}

	// Global rows first so tenant rows override them when folded into a rate table
	err := r.db.WithContext(ctx).
		Where("tenant_id IN ?", []string{tenantID, models.GlobalTenantID}).
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:  "CASE WHEN tenant_id = ? THEN 0 ELSE 1 END, name",
			Vars: []interface{}{models.GlobalTenantID},
		}}).
		Find(&categories).Error
	if err != nil {
		return nil, err
	}

	r.setCached(ctx, categoryListCacheKey(tenantID), categories, ProductCategoryCacheTTL)
	return categories, nil
}

// GetProductCategory gets a category visible to the tenant
func (r *TaxRepository) GetProductCategory(ctx context.Context, tenantID string, categoryID uuid.UUID) (*models.ProductTaxCategory, error) {
	var category models.ProductTaxCategory
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id IN ?", categoryID, []string{tenantID, models.GlobalTenantID}).
		First(&category).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &category, nil
}

// CreateProductCategory creates a new product tax category
func (r *TaxRepository) CreateProductCategory(ctx context.Context, category *models.ProductTaxCategory) error {
	err := r.db.WithContext(ctx).Create(category).Error
	if err == nil {
		r.invalidateProductCategoryCache(ctx, category.TenantID)
	}
	return translateError(err)
}

// UpdateProductCategory updates a product tax category
func (r *TaxRepository) UpdateProductCategory(ctx context.Context, category *models.ProductTaxCategory) error {
	category.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).Save(category).Error
	if err == nil {
		r.invalidateProductCategoryCache(ctx, category.TenantID)
	}
	return translateError(err)
}

// DeleteProductCategory deletes a tenant's product tax category
func (r *TaxRepository) DeleteProductCategory(ctx context.Context, tenantID string, categoryID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", categoryID, tenantID).
		Delete(&models.ProductTaxCategory{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	r.invalidateProductCategoryCache(ctx, tenantID)
	return nil
}

// --- Invoices ---

// CreateInvoice stores an invoice and its lines. An empty invoice number is
// allocated from the tenant profile sequence inside the same transaction.
func (r *TaxRepository) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if invoice.InvoiceNumber == "" {
			var profile models.TenantTaxProfile
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("tenant_id = ?", invoice.TenantID).
				First(&profile).Error
			if err != nil {
				return err
			}
			invoice.InvoiceNumber = fmt.Sprintf("%s-%06d", profile.InvoicePrefix, profile.NextInvoiceSeq)
			if err := tx.Model(&profile).Update("next_invoice_seq", profile.NextInvoiceSeq+1).Error; err != nil {
				return err
			}
		}
		return tx.Create(invoice).Error
	})
	if err == nil {
		// the sequence moved
		r.invalidateProfileCache(ctx, invoice.TenantID)
	}
	return translateError(err)
}

// GetInvoice gets an invoice with its lines
func (r *TaxRepository) GetInvoice(ctx context.Context, tenantID string, invoiceID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_number") }).
		Where("id = ? AND tenant_id = ?", invoiceID, tenantID).
		First(&invoice).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &invoice, nil
}

// ListInvoices lists invoices without their lines, newest first
func (r *TaxRepository) ListInvoices(ctx context.Context, tenantID string, filter models.InvoiceFilter) ([]models.Invoice, int64, error) {
	var invoices []models.Invoice
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Invoice{}).Where("tenant_id = ?", tenantID)
	if !filter.From.IsZero() {
		query = query.Where("invoice_date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("invoice_date <= ?", filter.To)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	err := query.Order("invoice_date DESC, invoice_number DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&invoices).Error
	return invoices, total, err
}

// ListInvoicesForPeriod lists every invoice dated within [from, to] with its lines
func (r *TaxRepository) ListInvoicesForPeriod(ctx context.Context, tenantID string, from, to time.Time) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND invoice_date >= ? AND invoice_date <= ?", tenantID, from, to).
		Order("invoice_date, invoice_number").
		Find(&invoices).Error
	return invoices, err
}

// CancelInvoice marks an issued invoice as cancelled. A concurrent
// cancellation surfaces as ErrConflict.
func (r *TaxRepository) CancelInvoice(ctx context.Context, invoice *models.Invoice, reason string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("id = ? AND tenant_id = ? AND status = ?", invoice.ID, invoice.TenantID, models.InvoiceStatusIssued).
		Updates(map[string]interface{}{
			"status":         models.InvoiceStatusCancelled,
			"cancelled_at":   now,
			"cancel_reason":  reason,
			"gstr1_category": invoice.GSTR1Category,
			"updated_at":     now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConflict
	}

	invoice.Status = models.InvoiceStatusCancelled
	invoice.CancelledAt = &now
	invoice.CancelReason = reason
	invoice.UpdatedAt = now
	return nil
}

// --- GSTR-1 filings ---

// SaveFiling stores a draft filing, replacing an earlier draft of the same
// period. A period that was already filed is left untouched and reported as
// ErrConflict.
func (r *TaxRepository) SaveFiling(ctx context.Context, filing *models.GSTR1Filing) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.GSTR1Filing
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ? AND period_start = ? AND period_end = ?", filing.TenantID, filing.PeriodStart, filing.PeriodEnd).
			First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return translateError(tx.Create(filing).Error)
		case err != nil:
			return translateError(err)
		case existing.Status == models.ReportStatusFiled:
			return ErrConflict
		}

		filing.ID = existing.ID
		filing.CreatedAt = existing.CreatedAt
		filing.UpdatedAt = time.Now()
		return translateError(tx.Save(filing).Error)
	})
}

// GetFiling gets a saved filing
func (r *TaxRepository) GetFiling(ctx context.Context, tenantID string, filingID uuid.UUID) (*models.GSTR1Filing, error) {
	var filing models.GSTR1Filing
	err := r.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", filingID, tenantID).First(&filing).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &filing, nil
}

// ListFilings lists saved filings without their report bodies, newest period first
func (r *TaxRepository) ListFilings(ctx context.Context, tenantID string) ([]models.GSTR1Filing, error) {
	var filings []models.GSTR1Filing
	err := r.db.WithContext(ctx).
		Omit("report").
		Where("tenant_id = ?", tenantID).
		Order("period_start DESC").
		Find(&filings).Error
	return filings, err
}

// MarkFiled moves a draft filing to FILED
func (r *TaxRepository) MarkFiled(ctx context.Context, filing *models.GSTR1Filing) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.GSTR1Filing{}).
		Where("id = ? AND tenant_id = ? AND status = ?", filing.ID, filing.TenantID, models.ReportStatusDraft).
		Updates(map[string]interface{}{
			"status":     models.ReportStatusFiled,
			"filed_at":   now,
			"filed_by":   filing.FiledBy,
			"arn":        filing.ARN,
			"updated_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConflict
	}

	filing.Status = models.ReportStatusFiled
	filing.FiledAt = &now
	filing.UpdatedAt = now
	return nil
}
