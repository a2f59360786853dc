package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExportReservationsToExcel writes every reservation to a spreadsheet
// under reports/ and returns the file path. Used by the back office.
func (s *PostgresStorage) ExportReservationsToExcel(ctx context.Context, filename string) (string, error) {
	reservations, err := s.ListReservations(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch reservations: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Reservations"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}

	headers := []string{
		"ID", "Investor ID", "Cabin", "Extras", "Payment Method",
		"Total Investment", "Extras Cost", "Credit Applied",
		"Holding Deposit", "Deposit Due", "Progress Due", "Final Due",
		"Amount Due Today", "Status", "Created At",
	}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, r := range reservations {
		data := []interface{}{
			r.ID,
			r.InvestorID,
			r.CabinType,
			strings.Join(r.ExtraIDs, ", "),
			r.PaymentMethod,
			r.TotalInvestment,
			r.ExtrasCost,
			r.CreditApplied,
			r.HoldingDeposit,
			r.DepositDue,
			r.ProgressDue,
			r.FinalDue,
			r.AmountDueToday,
			r.Status,
			r.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, value := range data {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheet, "A1", lastHeader, style)

	f.SetActiveSheet(index)

	if err := os.MkdirAll("reports", 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	path := fmt.Sprintf("reports/%s.xlsx", filename)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}

	return path, nil
}
