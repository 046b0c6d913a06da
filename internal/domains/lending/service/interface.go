package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"library-backend/internal/domains/lending/model"
)

type ServiceInterface interface {
	Issue(ctx context.Context, bookID, memberID uuid.UUID) (*model.Transaction, error)
	Return(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	Get(ctx context.Context, id uuid.UUID) (*model.TransactionView, error)
	ListActive(ctx context.Context, limit, offset int) ([]model.TransactionView, int, error)
	ListAll(ctx context.Context, filter model.ListFilter) ([]model.TransactionView, int, error)
	ListOverdue(ctx context.Context) ([]model.TransactionView, error)
	OverdueSummary(ctx context.Context) (*model.OverdueSummary, error)
	ExportExcel(ctx context.Context, filter model.ListFilter) (*excelize.File, error)
}
