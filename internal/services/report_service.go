package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"gst-service/internal/gst"
	"gst-service/internal/models"
	"gst-service/internal/repository"
)

// ReportService builds, exports and files GSTR-1 returns
type ReportService struct {
	repo   repository.TaxRepositoryInterface
	logger *logrus.Entry
}

// NewReportService creates a new ReportService
func NewReportService(repo repository.TaxRepositoryInterface, logger *logrus.Logger) *ReportService {
	return &ReportService{
		repo:   repo,
		logger: logger.WithField("component", "services.report"),
	}
}

// ParsePeriod parses an inclusive YYYY-MM-DD date range. The end date covers
// the whole day.
func ParsePeriod(from, to string) (gst.Period, error) {
	start, err := time.Parse(dateLayout, strings.TrimSpace(from))
	if err != nil {
		return gst.Period{}, invalidf("from must be a YYYY-MM-DD date")
	}
	end, err := time.Parse(dateLayout, strings.TrimSpace(to))
	if err != nil {
		return gst.Period{}, invalidf("to must be a YYYY-MM-DD date")
	}
	if end.Before(start) {
		return gst.Period{}, invalidf("to must not be before from")
	}
	return gst.Period{From: start, To: end.Add(24*time.Hour - time.Nanosecond)}, nil
}

func (s *ReportService) filingInvoices(ctx context.Context, tenantID string, period gst.Period) ([]gst.FilingInvoice, error) {
	invoices, err := s.repo.ListInvoicesForPeriod(ctx, tenantID, period.From, period.To)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}
	out := make([]gst.FilingInvoice, 0, len(invoices))
	for i := range invoices {
		out = append(out, invoices[i].FilingInvoice())
	}
	return out, nil
}

// BuildGSTR1 aggregates the tenant's invoices for period into a GSTR-1 report
func (s *ReportService) BuildGSTR1(ctx context.Context, tenantID string, period gst.Period) (*gst.GSTR1Report, error) {
	invoices, err := s.filingInvoices(ctx, tenantID, period)
	if err != nil {
		return nil, err
	}
	report := gst.BuildGSTR1Report(period, invoices)
	return &report, nil
}

// ExportGSTR1 writes the period's GSTR-1 workbook to w
func (s *ReportService) ExportGSTR1(ctx context.Context, tenantID string, period gst.Period, w io.Writer) error {
	invoices, err := s.filingInvoices(ctx, tenantID, period)
	if err != nil {
		return err
	}
	report := gst.BuildGSTR1Report(period, invoices)
	return WriteGSTR1Workbook(w, report, invoices)
}

// SaveGSTR1 snapshots the period's report as a draft filing, replacing an
// earlier draft for the same period
func (s *ReportService) SaveGSTR1(ctx context.Context, tenantID string, period gst.Period) (*models.GSTR1Filing, error) {
	report, err := s.BuildGSTR1(ctx, tenantID, period)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	filing := &models.GSTR1Filing{
		ID:           uuid.New(),
		TenantID:     tenantID,
		PeriodStart:  period.From,
		PeriodEnd:    truncateDay(period.To),
		InvoiceCount: report.Totals.InvoiceCount,
		TaxableValue: report.Totals.TaxableValue,
		TotalTax:     report.Totals.TotalTax,
		Report:       models.JSONB(body),
		Status:       models.ReportStatusDraft,
	}
	profile, err := s.repo.GetProfile(ctx, tenantID)
	switch {
	case err == nil:
		filing.GSTIN = profile.GSTIN
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("failed to load tax profile: %w", err)
	}

	if err := s.repo.SaveFiling(ctx, filing); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyFiled
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"filing_id": filing.ID,
		"period":    filing.PeriodStart.Format(dateLayout),
		"invoices":  filing.InvoiceCount,
	}).Info("GSTR-1 draft saved")

	return filing, nil
}

// GetFiling gets a saved filing
func (s *ReportService) GetFiling(ctx context.Context, tenantID string, filingID uuid.UUID) (*models.GSTR1Filing, error) {
	return s.repo.GetFiling(ctx, tenantID, filingID)
}

// ListFilings lists saved filings
func (s *ReportService) ListFilings(ctx context.Context, tenantID string) ([]models.GSTR1Filing, error) {
	return s.repo.ListFilings(ctx, tenantID)
}

// FileGSTR1 marks a draft filing as filed. Filing is one-way; a filed period
// can no longer be re-saved.
func (s *ReportService) FileGSTR1(ctx context.Context, tenantID string, filingID uuid.UUID, req models.FileGSTR1Request) (*models.GSTR1Filing, error) {
	filing, err := s.repo.GetFiling(ctx, tenantID, filingID)
	if err != nil {
		return nil, err
	}
	if filing.Status == models.ReportStatusFiled {
		return nil, ErrAlreadyFiled
	}

	filing.ARN = strings.TrimSpace(req.ARN)
	filing.FiledBy = req.FiledBy
	if err := s.repo.MarkFiled(ctx, filing); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyFiled
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"filing_id": filing.ID,
		"arn":       filing.ARN,
	}).Info("GSTR-1 marked as filed")

	return filing, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
