package services

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gst-service/internal/gst"
	"gst-service/internal/models"
	"gst-service/internal/repository"
	"gst-service/internal/repository/mocks"
)

func storedInvoice(number string, day int, ctx gst.TaxContext, items ...gst.LineItem) models.Invoice {
	lines, summary := gst.NewCalculator(nil).ComputeInvoice(items, ctx, decimal.Zero)
	inv := models.Invoice{
		ID:            uuid.New(),
		TenantID:      tenantID,
		InvoiceNumber: number,
		InvoiceDate:   time.Date(2024, 9, day, 12, 0, 0, 0, time.UTC),
		Status:        models.InvoiceStatusIssued,
		CustomerGSTIN: ctx.BuyerGSTIN,
		BuyerIsSEZ:    ctx.BuyerIsSEZ,
		IsExport:      ctx.IsExport,
	}
	inv.ApplySummary(summary)
	for i := range lines {
		inv.Lines = append(inv.Lines, models.NewInvoiceLine(i+1, "", items[i], lines[i]))
	}
	return inv
}

func septemberInvoices() []models.Invoice {
	b2b := gst.TaxContext{SupplierState: "MH", SupplierGSTIN: mhGSTIN, SupplierRegistered: true,
		BuyerState: "KA", BuyerGSTIN: kaGSTIN, BuyerRegistered: true}
	b2c := gst.TaxContext{SupplierState: "MH", BuyerState: "MH"}
	export := gst.TaxContext{SupplierState: "MH", SupplierGSTIN: mhGSTIN, SupplierRegistered: true,
		BuyerRegistered: true, IsExport: true}

	cancelled := storedInvoice("INV-4", 20, b2b, gst.LineItem{HSNCode: "8517", Amount: dec("900"), Quantity: dec("1")})
	cancelled.Status = models.InvoiceStatusCancelled

	return []models.Invoice{
		storedInvoice("INV-1", 5, b2b, gst.LineItem{HSNCode: "8471", Amount: dec("1000"), Quantity: dec("1")}),
		storedInvoice("INV-2", 10, b2c, gst.LineItem{HSNCode: "3004", Amount: dec("500"), Quantity: dec("5")}),
		storedInvoice("INV-3", 12, export, gst.LineItem{HSNCode: "8471", Amount: dec("2000"), Quantity: dec("2")}),
		cancelled,
	}
}

func september(t *testing.T) gst.Period {
	period, err := ParsePeriod("2024-09-01", "2024-09-30")
	require.NoError(t, err)
	return period
}

func newReportRepo(t *testing.T) *mocks.MockTaxRepository {
	period := september(t)
	repo := new(mocks.MockTaxRepository)
	repo.On("ListInvoicesForPeriod", mock.Anything, tenantID, period.From, period.To).Return(septemberInvoices(), nil)
	return repo
}

func TestParsePeriod(t *testing.T) {
	period, err := ParsePeriod("2024-09-01", " 2024-09-30 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), period.From)
	assert.True(t, period.Contains(time.Date(2024, 9, 30, 23, 59, 0, 0, time.UTC)))
	assert.False(t, period.Contains(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)))

	for _, tc := range [][2]string{
		{"2024/09/01", "2024-09-30"},
		{"2024-09-01", ""},
		{"2024-09-30", "2024-09-01"},
	} {
		_, err := ParsePeriod(tc[0], tc[1])
		assert.ErrorIs(t, err, ErrInvalidInput, "from=%s to=%s", tc[0], tc[1])
	}
}

func TestBuildGSTR1(t *testing.T) {
	repo := newReportRepo(t)
	svc := NewReportService(repo, testLogger())

	report, err := svc.BuildGSTR1(context.Background(), tenantID, september(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"INV-1"}, report.Category(gst.CategoryB2B).InvoiceNumbers)
	assert.Equal(t, []string{"INV-2"}, report.Category(gst.CategoryB2C).InvoiceNumbers)
	assert.Equal(t, []string{"INV-3"}, report.Category(gst.CategoryExport).InvoiceNumbers)
	assert.Equal(t, []string{"INV-4"}, report.Category(gst.CategoryOther).InvoiceNumbers)

	assert.Equal(t, 3, report.Totals.InvoiceCount)
	assertDecimal(t, "3500", report.Totals.TaxableValue)
	assertDecimal(t, "240", report.Totals.TotalTax)

	require.Len(t, report.HSN, 2)
	assert.Equal(t, "3004", report.HSN[0].HSNCode)
	assert.Equal(t, "8471", report.HSN[1].HSNCode)
	assert.Equal(t, 2, report.HSN[1].InvoiceCount)
	assertDecimal(t, "3", report.HSN[1].Quantity)
	assertDecimal(t, "180", report.HSN[1].IGST)
	repo.AssertExpectations(t)
}

func TestExportGSTR1_Workbook(t *testing.T) {
	svc := NewReportService(newReportRepo(t), testLogger())

	var buf bytes.Buffer
	require.NoError(t, svc.ExportGSTR1(context.Background(), tenantID, september(t), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "B2B", "B2C", "Export", "SEZ", "Cancelled", "HSN"}, f.GetSheetList())

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"GSTR-1", "2024-09-01 to 2024-09-30"}, summary[0])
	total := summary[len(summary)-1]
	assert.Equal(t, "Total", total[0])
	assert.Equal(t, "3", total[1])
	assert.Equal(t, "3500", total[2])
	assert.Equal(t, "240", total[7])

	b2b, err := f.GetRows("B2B")
	require.NoError(t, err)
	require.Len(t, b2b, 2)
	assert.Equal(t, "Invoice Number", b2b[0][0])
	assert.Equal(t, []string{"INV-1", "2024-09-05", kaGSTIN, "KA", "1000", "180", "0", "0", "0", "180"}, b2b[1])

	cancelled, err := f.GetRows("Cancelled")
	require.NoError(t, err)
	require.Len(t, cancelled, 2)
	assert.Equal(t, "INV-4", cancelled[1][0])

	sez, err := f.GetRows("SEZ")
	require.NoError(t, err)
	assert.Len(t, sez, 1)

	hsn, err := f.GetRows("HSN")
	require.NoError(t, err)
	require.Len(t, hsn, 3)
	assert.Equal(t, []string{"8471", "2", "3", "3000", "180", "0", "0", "0", "180"}, hsn[2])
}

func TestSaveGSTR1(t *testing.T) {
	repo := newReportRepo(t)
	repo.On("GetProfile", mock.Anything, tenantID).Return(mhProfile(), nil)

	var saved *models.GSTR1Filing
	repo.On("SaveFiling", mock.Anything, mock.AnythingOfType("*models.GSTR1Filing")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*models.GSTR1Filing) }).
		Return(nil)

	filing, err := NewReportService(repo, testLogger()).SaveGSTR1(context.Background(), tenantID, september(t))
	require.NoError(t, err)
	require.Same(t, saved, filing)

	assert.Equal(t, models.ReportStatusDraft, filing.Status)
	assert.Equal(t, mhGSTIN, filing.GSTIN)
	assert.Equal(t, time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC), filing.PeriodEnd)
	assert.Equal(t, 3, filing.InvoiceCount)
	assertDecimal(t, "3500", filing.TaxableValue)

	var snapshot gst.GSTR1Report
	require.NoError(t, json.Unmarshal(filing.Report, &snapshot))
	assertDecimal(t, "240", snapshot.Totals.TotalTax)
	assert.Len(t, snapshot.Categories, len(gst.Categories))
}

func TestSaveGSTR1_PeriodAlreadyFiled(t *testing.T) {
	repo := newReportRepo(t)
	repo.On("GetProfile", mock.Anything, tenantID).Return(nil, repository.ErrNotFound)
	repo.On("SaveFiling", mock.Anything, mock.Anything).Return(repository.ErrConflict)

	_, err := NewReportService(repo, testLogger()).SaveGSTR1(context.Background(), tenantID, september(t))
	assert.ErrorIs(t, err, ErrAlreadyFiled)
}

func TestFileGSTR1(t *testing.T) {
	draft := &models.GSTR1Filing{ID: uuid.New(), TenantID: tenantID, Status: models.ReportStatusDraft}
	repo := new(mocks.MockTaxRepository)
	repo.On("GetFiling", mock.Anything, tenantID, draft.ID).Return(draft, nil)
	repo.On("MarkFiled", mock.Anything, draft).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.GSTR1Filing).Status = models.ReportStatusFiled
		}).
		Return(nil)

	filing, err := NewReportService(repo, testLogger()).FileGSTR1(context.Background(), tenantID, draft.ID,
		models.FileGSTR1Request{ARN: " AA270924000123X ", FiledBy: "priya"})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFiled, filing.Status)
	assert.Equal(t, "AA270924000123X", filing.ARN)
	assert.Equal(t, "priya", filing.FiledBy)
}

func TestFileGSTR1_AlreadyFiled(t *testing.T) {
	filed := &models.GSTR1Filing{ID: uuid.New(), TenantID: tenantID, Status: models.ReportStatusFiled}
	repo := new(mocks.MockTaxRepository)
	repo.On("GetFiling", mock.Anything, tenantID, filed.ID).Return(filed, nil)

	_, err := NewReportService(repo, testLogger()).FileGSTR1(context.Background(), tenantID, filed.ID, models.FileGSTR1Request{})
	assert.ErrorIs(t, err, ErrAlreadyFiled)
	repo.AssertNotCalled(t, "MarkFiled", mock.Anything, mock.Anything)

	draft := &models.GSTR1Filing{ID: uuid.New(), TenantID: tenantID, Status: models.ReportStatusDraft}
	repo.On("GetFiling", mock.Anything, tenantID, draft.ID).Return(draft, nil)
	repo.On("MarkFiled", mock.Anything, draft).Return(repository.ErrConflict)

	_, err = NewReportService(repo, testLogger()).FileGSTR1(context.Background(), tenantID, draft.ID, models.FileGSTR1Request{})
	assert.ErrorIs(t, err, ErrAlreadyFiled)
}
