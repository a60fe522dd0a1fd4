package services

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"gst-service/internal/gst"
)

const (
	summarySheet = "Summary"
	hsnSheet     = "HSN"
	dateLayout   = "2006-01-02"
)

// sheet names for the per-invoice GSTR-1 tables
var categorySheets = map[gst.Category]string{
	gst.CategoryB2B:    "B2B",
	gst.CategoryB2C:    "B2C",
	gst.CategoryExport: "Export",
	gst.CategorySEZ:    "SEZ",
	gst.CategoryOther:  "Cancelled",
}

var invoiceColumns = []string{
	"Invoice Number", "Invoice Date", "Customer GSTIN", "Place of Supply",
	"Taxable Value", "IGST", "CGST", "SGST", "Cess", "Total Tax",
}

// WriteGSTR1Workbook renders a GSTR-1 report as an xlsx workbook: a summary
// sheet, one sheet per category listing its invoices and the HSN-wise summary
func WriteGSTR1Workbook(w io.Writer, report gst.GSTR1Report, invoices []gst.FilingInvoice) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	writeSummarySheet(f, headerStyle, report)

	byCategory := make(map[gst.Category][]gst.FilingInvoice, len(gst.Categories))
	for _, inv := range invoices {
		if !report.Period.Contains(inv.InvoiceDate) {
			continue
		}
		cat := gst.CategorizeForGSTR1(inv.InvoiceFacts)
		byCategory[cat] = append(byCategory[cat], inv)
	}
	for _, cat := range gst.Categories {
		sheet := categorySheets[cat]
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		writeInvoiceSheet(f, sheet, headerStyle, byCategory[cat])
	}

	if _, err := f.NewSheet(hsnSheet); err != nil {
		return err
	}
	writeHSNSheet(f, headerStyle, report.HSN)

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, style int, columns []string) {
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, col)
		f.SetCellStyle(sheet, cell, cell, style)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, colName, colName, 18)
	}
}

func setRow(f *excelize.File, sheet string, row int, values ...interface{}) {
	for i, v := range values {
		if d, ok := v.(decimal.Decimal); ok {
			v = d.InexactFloat64()
		}
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, v)
	}
}

func writeSummarySheet(f *excelize.File, style int, report gst.GSTR1Report) {
	period := fmt.Sprintf("%s to %s", report.Period.From.Format(dateLayout), report.Period.To.Format(dateLayout))
	setRow(f, summarySheet, 1, "GSTR-1", period)

	columns := []string{"Category", "Invoices", "Taxable Value", "IGST", "CGST", "SGST", "Cess", "Total Tax"}
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		f.SetCellValue(summarySheet, cell, col)
		f.SetCellStyle(summarySheet, cell, cell, style)
	}
	f.SetColWidth(summarySheet, "A", "H", 18)

	row := 4
	for _, ct := range report.Categories {
		setRow(f, summarySheet, row, categorySheets[ct.Category], ct.InvoiceCount,
			ct.TaxableValue, ct.IGST, ct.CGST, ct.SGST, ct.Cess, ct.TotalTax)
		row++
	}
	t := report.Totals
	setRow(f, summarySheet, row, "Total", t.InvoiceCount, t.TaxableValue, t.IGST, t.CGST, t.SGST, t.Cess, t.TotalTax)
}

func writeInvoiceSheet(f *excelize.File, sheet string, style int, invoices []gst.FilingInvoice) {
	writeHeader(f, sheet, style, invoiceColumns)
	for i, inv := range invoices {
		s := inv.Summary
		setRow(f, sheet, i+2, inv.InvoiceNumber, inv.InvoiceDate.Format(dateLayout), inv.CustomerGSTIN,
			s.PlaceOfSupply, s.TaxableAmount, s.IGST, s.CGST, s.SGST, s.Cess,
			s.CGST.Add(s.SGST).Add(s.IGST).Add(s.Cess))
	}
}

func writeHSNSheet(f *excelize.File, style int, rows []gst.HSNSummary) {
	writeHeader(f, hsnSheet, style, []string{"HSN", "Invoices", "Quantity", "Taxable Value", "IGST", "CGST", "SGST", "Cess", "Total Tax"})
	for i, r := range rows {
		setRow(f, hsnSheet, i+2, r.HSNCode, r.InvoiceCount, r.Quantity, r.TaxableValue, r.IGST, r.CGST, r.SGST, r.Cess, r.TotalTax)
	}
}
