package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gst-service/internal/gst"
)

// GlobalTenantID is the special tenant ID for HSN categories shared by all tenants
const GlobalTenantID = "global"

// TenantTaxProfile holds the supplier side of every invoice a tenant issues
type TenantTaxProfile struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID     string    `json:"tenantId" gorm:"type:varchar(255);not null;uniqueIndex"`
	LegalName    string    `json:"legalName" gorm:"type:varchar(255)"`
	GSTIN        string    `json:"gstin" gorm:"type:varchar(15)"`             // 15-char Goods and Services Tax Identification Number
	StateCode    string    `json:"stateCode" gorm:"type:varchar(2);not null"` // MH, KA or the 2-digit GST code
	IsRegistered bool      `json:"isRegistered" gorm:"default:false"`

	// GST composition scheme (limited to intrastate B2C)
	IsCompositionScheme bool `json:"isCompositionScheme" gorm:"default:false"`

	// Invoice numbering
	InvoicePrefix  string `json:"invoicePrefix" gorm:"type:varchar(20);default:'INV'"`
	NextInvoiceSeq int64  `json:"nextInvoiceSeq" gorm:"default:1"`

	Currency  string    `json:"currency" gorm:"type:varchar(3);default:'INR'"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SupplierContext returns the supplier half of a tax context
func (p *TenantTaxProfile) SupplierContext() gst.TaxContext {
	state, _ := gst.ParseStateCode(p.StateCode)
	return gst.TaxContext{
		SupplierState:      state,
		SupplierGSTIN:      p.GSTIN,
		SupplierRegistered: p.IsRegistered,
	}
}

// ProductTaxCategory maps an HSN (goods) or SAC (services) code to its GST slab
type ProductTaxCategory struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID    string          `json:"tenantId" gorm:"type:varchar(255);not null;uniqueIndex:idx_category_unique,priority:1"`
	Name        string          `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_category_unique,priority:2"`
	Description string          `json:"description" gorm:"type:text"`
	HSNCode     string          `json:"hsnCode" gorm:"type:varchar(10);index"` // Harmonized System of Nomenclature (goods)
	SACCode     string          `json:"sacCode" gorm:"type:varchar(10);index"` // Services Accounting Code
	GSTSlab     decimal.Decimal `json:"gstSlab" gorm:"type:decimal(5,2);not null;default:0"`
	CessRate    decimal.Decimal `json:"cessRate" gorm:"type:decimal(5,2);not null;default:0"`
	IsTaxExempt bool            `json:"isTaxExempt" gorm:"default:false"`
	IsNilRated  bool            `json:"isNilRated" gorm:"default:false"` // 0% GST but not exempt
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Code returns the HSN code, or the SAC code for services
func (c *ProductTaxCategory) Code() string {
	if c.HSNCode != "" {
		return c.HSNCode
	}
	return c.SACCode
}

// EffectiveSlab is the GST slab, zero for exempt and nil-rated supplies
func (c *ProductTaxCategory) EffectiveSlab() decimal.Decimal {
	if c.IsTaxExempt || c.IsNilRated {
		return decimal.Zero
	}
	return c.GSTSlab
}

// RateOverride converts the category into a rate table override
func (c *ProductTaxCategory) RateOverride() gst.RateOverride {
	cess := c.CessRate
	if c.IsTaxExempt || c.IsNilRated {
		cess = decimal.Zero
	}
	return gst.RateOverride{
		Code: c.Code(),
		Rate: c.EffectiveSlab(),
		Cess: &cess,
	}
}

// ReportStatus represents the status of a GSTR-1 filing
type ReportStatus string

const (
	ReportStatusDraft ReportStatus = "DRAFT"
	ReportStatusFiled ReportStatus = "FILED"
)

// GSTR1Filing is a saved snapshot of a period's GSTR-1 report
type GSTR1Filing struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID    string    `json:"tenantId" gorm:"type:varchar(255);not null;uniqueIndex:idx_gstr1_period,priority:1"`
	GSTIN       string    `json:"gstin" gorm:"type:varchar(15)"`
	PeriodStart time.Time `json:"periodStart" gorm:"type:date;not null;uniqueIndex:idx_gstr1_period,priority:2"`
	PeriodEnd   time.Time `json:"periodEnd" gorm:"type:date;not null;uniqueIndex:idx_gstr1_period,priority:3"`

	// Totals
	InvoiceCount int             `json:"invoiceCount" gorm:"default:0"`
	TaxableValue decimal.Decimal `json:"taxableValue" gorm:"type:decimal(14,2);default:0"`
	TotalTax     decimal.Decimal `json:"totalTax" gorm:"type:decimal(14,2);default:0"`

	// Full report
	Report JSONB `json:"report" gorm:"type:jsonb"`

	// Status
	Status  ReportStatus `json:"status" gorm:"type:varchar(20);default:'DRAFT'"`
	FiledAt *time.Time   `json:"filedAt"`
	FiledBy string       `json:"filedBy" gorm:"type:varchar(255)"`
	ARN     string       `json:"arn" gorm:"type:varchar(50)"` // acknowledgement reference number from the portal

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// JSONB is a custom type for PostgreSQL JSONB fields
type JSONB json.RawMessage

// Value implements the driver.Valuer interface for JSONB
func (j JSONB) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return []byte(j), nil
}

// Scan implements the sql.Scanner interface for JSONB
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		*j = append(JSONB(nil), v...)
	case string:
		*j = JSONB(v)
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (j JSONB) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return []byte(j), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (j *JSONB) UnmarshalJSON(data []byte) error {
	*j = append(JSONB(nil), data...)
	return nil
}
