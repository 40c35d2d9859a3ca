package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"

	"cashvelo/internal/models"
	"cashvelo/internal/repository"
)

const statementMaxRows = 500

// StatementPeriod bounds a statement; zero values leave that side open
type StatementPeriod struct {
	From time.Time
	To   time.Time
}

func (p StatementPeriod) contains(t time.Time) bool {
	if !p.From.IsZero() && t.Before(p.From) {
		return false
	}
	if !p.To.IsZero() && !t.Before(p.To.AddDate(0, 0, 1)) {
		return false
	}
	return true
}

func (p StatementPeriod) label() string {
	switch {
	case p.From.IsZero() && p.To.IsZero():
		return "All expenses"
	case p.From.IsZero():
		return "Up to " + p.To.Format("2006-01-02")
	case p.To.IsZero():
		return "From " + p.From.Format("2006-01-02")
	default:
		return p.From.Format("2006-01-02") + " to " + p.To.Format("2006-01-02")
	}
}

// StatementService renders a user's expenses as a PDF statement
type StatementService struct {
	expenses *repository.ExpenseRepository
	now      func() time.Time
}

// NewStatementService creates a new statement service
func NewStatementService(expenses *repository.ExpenseRepository) *StatementService {
	return &StatementService{expenses: expenses, now: time.Now}
}

// Expenses returns the owner's expenses inside period, newest first, and their total
func (s *StatementService) Expenses(ctx context.Context, userID string, period StatementPeriod) ([]*models.Expense, decimal.Decimal, error) {
	all, err := s.expenses.List(ctx, userID, nil)
	if err != nil {
		return nil, decimal.Zero, err
	}

	total := decimal.Zero
	items := make([]*models.Expense, 0, len(all))
	for _, e := range all {
		if !period.contains(e.Date.Time) {
			continue
		}
		items = append(items, e)
		total = total.Add(e.Amount)
	}
	return items, total, nil
}

// WriteExpenseStatement renders the statement for the owner into w
func (s *StatementService) WriteExpenseStatement(ctx context.Context, w io.Writer, user *models.User, period StatementPeriod) error {
	items, total, err := s.Expenses(ctx, user.ID, period)
	if err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()

	pdf.SetTextColor(249, 115, 22)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Cashvelo Expense Statement")
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, tr("Account: "+user.FullName+" ("+user.Email+")"))
	pdf.Ln(5)
	pdf.Cell(0, 6, "Period: "+period.label())
	pdf.Ln(10)

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(255, 247, 237)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(91, 10, "Entries", "1", 0, "C", true, 0, "")
	pdf.CellFormat(91, 10, "Total spent", "1", 1, "C", true, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(91, 10, fmt.Sprintf("%d", len(items)), "1", 0, "C", false, 0, "")
	pdf.CellFormat(91, 10, total.StringFixed(2), "1", 1, "C", false, 0, "")
	pdf.Ln(6)

	colW := []float64{28, 40, 84, 30}
	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(245, 245, 245)
		pdf.CellFormat(colW[0], 8, "DATE", "1", 0, "C", true, 0, "")
		pdf.CellFormat(colW[1], 8, "CATEGORY", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colW[2], 8, "NOTE", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colW[3], 8, "AMOUNT", "1", 1, "R", true, 0, "")
		pdf.SetFont("Helvetica", "", 9)
	}
	header()

	for i, e := range items {
		if i >= statementMaxRows {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.CellFormat(0, 8, "... truncated (too many rows)", "1", 1, "C", false, 0, "")
			break
		}
		if pdf.GetY() > 270 {
			pdf.AddPage()
			header()
		}
		pdf.CellFormat(colW[0], 8, e.Date.Format("2006-01-02"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[1], 8, tr(trimTo(e.Category, 22)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[2], 8, tr(trimTo(e.Note, 48)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[3], 8, e.Amount.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	pdf.SetY(-18)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 10, "Generated by Cashvelo - "+s.now().UTC().Format(time.RFC3339), "", 0, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to build statement pdf: %w", err)
	}
	return nil
}

func trimTo(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
