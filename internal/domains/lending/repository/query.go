package repository

import (
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"

	"library-backend/internal/domains/lending/model"
)

const dialectPostgres = "postgres"

var viewColumns = []interface{}{
	"t.id", "t.book_id", "t.member_id", "t.borrow_date", "t.due_date", "t.return_date", "t.status",
	goqu.COALESCE(goqu.I("b.title"), "").As("book_title"),
	goqu.COALESCE(goqu.I("b.author"), "").As("book_author"),
	goqu.COALESCE(goqu.I("m.name"), "").As("member_name"),
	goqu.COALESCE(goqu.I("m.email"), "").As("member_email"),
}

func baseView() *goqu.SelectDataset {
	return goqu.Dialect(dialectPostgres).
		From(goqu.T("transactions").As("t")).
		LeftJoin(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("t.book_id")))).
		LeftJoin(goqu.T("members").As("m"), goqu.On(goqu.I("m.id").Eq(goqu.I("t.member_id")))).
		Prepared(true)
}

func filterExpressions(f model.ListFilter) []exp.Expression {
	exprs := make([]exp.Expression, 0)

	if f.Status != nil {
		exprs = append(exprs, goqu.I("t.status").Eq(string(*f.Status)))
	}
	if f.BookID != nil {
		exprs = append(exprs, goqu.I("t.book_id").Eq(f.BookID.String()))
	}
	if f.MemberID != nil {
		exprs = append(exprs, goqu.I("t.member_id").Eq(f.MemberID.String()))
	}
	if f.OverdueAt != nil {
		exprs = append(exprs,
			goqu.I("t.status").Eq(string(model.StatusActive)),
			goqu.I("t.due_date").Lt(*f.OverdueAt),
		)
	}
	if f.BorrowedFrom != nil {
		exprs = append(exprs, goqu.I("t.borrow_date").Gte(*f.BorrowedFrom))
	}
	if f.BorrowedTo != nil {
		exprs = append(exprs, goqu.I("t.borrow_date").Lt(*f.BorrowedTo))
	}
	return exprs
}

// buildListQuery returns the page query and the matching count query.
// Active listings default to due date ascending, everything else to newest borrow first.
func buildListQuery(f model.ListFilter) (listSQL string, listArgs []interface{}, countSQL string, countArgs []interface{}, err error) {
	where := filterExpressions(f)

	countSQL, countArgs, err = baseView().
		Select(goqu.COUNT(goqu.Star())).
		Where(where...).
		ToSQL()
	if err != nil {
		return "", nil, "", nil, err
	}

	sort := f.Sort
	if sort == "" {
		sort = model.SortBorrowDateDesc
		if f.Status != nil && *f.Status == model.StatusActive {
			sort = model.SortDueDateAsc
		}
	}

	ds := baseView().Select(viewColumns...).Where(where...)
	switch sort {
	case model.SortDueDateAsc:
		ds = ds.Order(goqu.I("t.due_date").Asc(), goqu.I("t.id").Asc())
	default:
		ds = ds.Order(goqu.I("t.borrow_date").Desc(), goqu.I("t.id").Desc())
	}
	if f.Limit > 0 {
		ds = ds.Limit(uint(f.Limit)).Offset(uint(f.Offset))
	}

	listSQL, listArgs, err = ds.ToSQL()
	if err != nil {
		return "", nil, "", nil, err
	}
	return listSQL, listArgs, countSQL, countArgs, nil
}

// buildFindQuery selects a single transaction view by id.
func buildFindQuery(id string) (string, []interface{}, error) {
	return baseView().
		Select(viewColumns...).
		Where(goqu.I("t.id").Eq(id)).
		ToSQL()
}
