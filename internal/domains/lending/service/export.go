package service

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"library-backend/internal/domains/lending/model"
)

const (
	exportSheet    = "Transactions"
	exportMaxRows  = 10000
	exportDateTime = "2006-01-02 15:04"
)

var exportHeaders = []string{
	"ID",
	"Book",
	"Author",
	"Member",
	"Email",
	"Borrowed",
	"Due",
	"Returned",
	"Status",
	"Days Overdue",
	"Fine",
}

// ExportExcel renders the filtered transactions as an .xlsx workbook.
func (s *lendingService) ExportExcel(ctx context.Context, filter model.ListFilter) (*excelize.File, error) {
	if filter.Limit <= 0 || filter.Limit > exportMaxRows {
		filter.Limit = exportMaxRows
	}
	filter.Offset = 0

	views, _, err := s.ListAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	f, err := buildTransactionsWorkbook(views)
	if err != nil {
		return nil, fmt.Errorf("failed to build excel file: %w", err)
	}
	return f, nil
}

func buildTransactionsWorkbook(views []model.TransactionView) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	for colIdx, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
		_ = f.SetCellStyle(exportSheet, "A1", last, headerStyle)
	}

	for i, v := range views {
		returned := ""
		if v.ReturnDate != nil {
			returned = v.ReturnDate.Format(exportDateTime)
		}

		row := []interface{}{
			v.ID.String(),
			v.BookTitle,
			v.BookAuthor,
			v.MemberName,
			v.MemberEmail,
			v.BorrowDate.Format(exportDateTime),
			v.DueDate.Format(exportDateTime),
			returned,
			string(v.Status),
			v.DaysOverdue,
			v.Fine.InexactFloat64(),
		}

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	_ = f.SetColWidth(exportSheet, "B", "B", 40)
	_ = f.SetColWidth(exportSheet, "D", "E", 28)

	return f, nil
}
