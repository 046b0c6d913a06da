package importer

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	activityModel "library-backend/internal/domains/activity/model"
	bookModel "library-backend/internal/domains/book/model"
	lendingModel "library-backend/internal/domains/lending/model"
	memberModel "library-backend/internal/domains/member/model"
)

const (
	pageRetryDelay     = time.Second
	politeDelay        = 300 * time.Millisecond
	maxPagesWithoutNew = 5
	maxFetchFailures   = 5
)

// =====================================================
// DEPENDENCIES
// =====================================================

type BookSource interface {
	Search(ctx context.Context, query string, page, limit int) ([]SearchDoc, error)
}

type MemberSource interface {
	Fetch(ctx context.Context, n int) ([]RandomUser, error)
}

// BookStore is the part of the book repository the importer writes through.
type BookStore interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, book *bookModel.Book) error
	List(ctx context.Context, filter bookModel.ListBooksFilter) ([]bookModel.Book, int, error)
	ExistsByISBNs(ctx context.Context, isbns []string) (map[string]bool, error)
	ExistsByTitleAuthor(ctx context.Context, title, author string) (bool, error)
	IsDeleted(ctx context.Context, isbn, title, author string) (bool, error)
}

type MemberStore interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, member *memberModel.Member) error
	ExistsByEmails(ctx context.Context, emails []string) (map[string]bool, error)
	ListAll(ctx context.Context) ([]memberModel.Member, error)
}

// Lender issues loans through the lending service so copy counts stay consistent.
type Lender interface {
	Issue(ctx context.Context, bookID, memberID uuid.UUID) (*lendingModel.Transaction, error)
	ListAll(ctx context.Context, filter lendingModel.ListFilter) ([]lendingModel.TransactionView, int, error)
}

type ActivityStore interface {
	Insert(ctx context.Context, entry *activityModel.Entry) error
	DeleteAll(ctx context.Context) (int64, error)
}

type Dependencies struct {
	Books        BookStore
	Members      MemberStore
	Lending      Lender
	Activity     ActivityStore
	BookSource   BookSource
	MemberSource MemberSource
}

// Result summarizes one import run.
type Result struct {
	Before   int `json:"before"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Total    int `json:"total"`
}

type Importer struct {
	deps  Dependencies
	sleep func(ctx context.Context, d time.Duration) error
	pick  func(n int) int
}

func New(deps Dependencies) *Importer {
	return &Importer{
		deps:  deps,
		sleep: sleepContext,
		pick:  rand.IntN,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// =====================================================
// BOOKS
// =====================================================

type BooksOptions struct {
	Target   int
	Query    string
	PageSize int
}

// ImportBooks pages OpenLibrary until the catalogue holds Target books.
// Titles recorded in deleted_books and books already present are skipped.
func (im *Importer) ImportBooks(ctx context.Context, opts BooksOptions) (*Result, error) {
	have, err := im.deps.Books.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}
	res := &Result{Before: have}
	log.Info().Int("have", have).Int("target", opts.Target).Msg("Book import starting")

	page := 1
	pagesWithoutNew := 0
	failures := 0

	for have < opts.Target {
		log.Debug().Int("page", page).Msg("Fetching OpenLibrary page")

		docs, err := im.deps.BookSource.Search(ctx, opts.Query, page, opts.PageSize)
		if err != nil {
			failures++
			log.Warn().Err(err).Int("page", page).Int("attempt", failures).Msg("Fetch failed, retrying")
			if failures >= maxFetchFailures {
				return res, fmt.Errorf("giving up on page %d: %w", page, err)
			}
			if err := im.sleep(ctx, pageRetryDelay); err != nil {
				return res, err
			}
			continue
		}
		failures = 0

		if len(docs) == 0 {
			log.Info().Int("page", page).Msg("No docs returned, stopping")
			break
		}

		inserted, skipped, err := im.importBookPage(ctx, docs, opts.Target-have)
		if err != nil {
			return res, err
		}
		have += inserted
		res.Inserted += inserted
		res.Skipped += skipped

		if inserted == 0 {
			pagesWithoutNew++
		} else {
			pagesWithoutNew = 0
		}
		if pagesWithoutNew >= maxPagesWithoutNew {
			log.Info().Int("pages", pagesWithoutNew).Msg("No new books in recent pages, stopping")
			break
		}

		page++
		if have < opts.Target {
			if err := im.sleep(ctx, politeDelay); err != nil {
				return res, err
			}
		}
	}

	res.Total = have
	log.Info().Int("inserted", res.Inserted).Int("skipped", res.Skipped).Int("total", have).Msg("Book import finished")
	return res, nil
}

func (im *Importer) importBookPage(ctx context.Context, docs []SearchDoc, room int) (inserted, skipped int, err error) {
	isbns := make([]string, 0, len(docs))
	for _, d := range docs {
		if isbn := first(d.ISBN); isbn != "" {
			isbns = append(isbns, isbn)
		}
	}
	existing, err := im.deps.Books.ExistsByISBNs(ctx, isbns)
	if err != nil {
		return 0, 0, fmt.Errorf("lookup isbns: %w", err)
	}

	seen := make(map[string]bool, len(docs))
	for _, d := range docs {
		if inserted >= room {
			break
		}

		book := d.ToBook()
		if book.Title == "" {
			skipped++
			continue
		}

		isbn := bookModel.StringValue(book.ISBN)
		key := isbn
		if key == "" {
			key = strings.ToLower(book.Title + "\x00" + book.Author)
		}
		if seen[key] {
			skipped++
			continue
		}
		seen[key] = true

		deleted, err := im.deps.Books.IsDeleted(ctx, isbn, book.Title, book.Author)
		if err != nil {
			return inserted, skipped, fmt.Errorf("check tombstone: %w", err)
		}
		if deleted {
			skipped++
			continue
		}

		exists := existing[isbn]
		if isbn == "" {
			exists, err = im.deps.Books.ExistsByTitleAuthor(ctx, book.Title, book.Author)
			if err != nil {
				return inserted, skipped, fmt.Errorf("check title/author: %w", err)
			}
		}
		if exists {
			skipped++
			continue
		}

		if err := im.deps.Books.Create(ctx, book); err != nil {
			log.Warn().Err(err).Str("title", book.Title).Msg("Insert book failed")
			skipped++
			continue
		}
		inserted++
	}
	return inserted, skipped, nil
}

// =====================================================
// MEMBERS
// =====================================================

type MembersOptions struct {
	Target int
	Batch  int
}

// ImportMembers fetches generated people in batches until Target members exist.
func (im *Importer) ImportMembers(ctx context.Context, opts MembersOptions) (*Result, error) {
	have, err := im.deps.Members.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count members: %w", err)
	}
	res := &Result{Before: have}
	log.Info().Int("have", have).Int("target", opts.Target).Msg("Member import starting")

	batch := opts.Batch
	if batch <= 0 {
		batch = 50
	}
	failures := 0
	batchesWithoutNew := 0

	for have < opts.Target {
		users, err := im.deps.MemberSource.Fetch(ctx, min(batch, opts.Target-have))
		if err != nil {
			failures++
			log.Warn().Err(err).Int("attempt", failures).Msg("Fetch failed, retrying")
			if failures >= maxFetchFailures {
				return res, fmt.Errorf("giving up on member fetch: %w", err)
			}
			if err := im.sleep(ctx, pageRetryDelay); err != nil {
				return res, err
			}
			continue
		}
		failures = 0

		if len(users) == 0 {
			log.Info().Msg("No users returned, stopping")
			break
		}

		inserted, skipped, err := im.importMemberBatch(ctx, users, opts.Target-have)
		if err != nil {
			return res, err
		}
		have += inserted
		res.Inserted += inserted
		res.Skipped += skipped

		if inserted == 0 {
			batchesWithoutNew++
		} else {
			batchesWithoutNew = 0
		}
		if batchesWithoutNew >= maxPagesWithoutNew {
			log.Info().Msg("No new members in recent batches, stopping")
			break
		}

		if have < opts.Target {
			if err := im.sleep(ctx, politeDelay); err != nil {
				return res, err
			}
		}
	}

	res.Total = have
	log.Info().Int("inserted", res.Inserted).Int("skipped", res.Skipped).Int("total", have).Msg("Member import finished")
	return res, nil
}

func (im *Importer) importMemberBatch(ctx context.Context, users []RandomUser, room int) (inserted, skipped int, err error) {
	emails := make([]string, 0, len(users))
	for _, u := range users {
		if u.Email != "" {
			emails = append(emails, u.Email)
		}
	}
	existing, err := im.deps.Members.ExistsByEmails(ctx, emails)
	if err != nil {
		return 0, 0, fmt.Errorf("lookup emails: %w", err)
	}

	for _, u := range users {
		if inserted >= room {
			break
		}

		member := u.ToMember()
		email := strings.ToLower(member.Email)
		if member.Name == "" || (email != "" && existing[email]) {
			skipped++
			continue
		}

		if err := im.deps.Members.Create(ctx, member); err != nil {
			log.Warn().Err(err).Str("email", member.Email).Msg("Insert member failed")
			skipped++
			continue
		}
		if email != "" {
			existing[email] = true
		}
		inserted++
	}
	return inserted, skipped, nil
}

// =====================================================
// TRANSACTIONS
// =====================================================

type TransactionsOptions struct {
	Target int
}

// ImportTransactions issues loans for random book/member pairs until Target
// transactions exist. Books that run out of copies drop out of the pool.
func (im *Importer) ImportTransactions(ctx context.Context, opts TransactionsOptions) (*Result, error) {
	_, have, err := im.deps.Lending.ListAll(ctx, lendingModel.ListFilter{Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("count transactions: %w", err)
	}
	res := &Result{Before: have}

	available := true
	books, _, err := im.deps.Books.List(ctx, bookModel.ListBooksFilter{Available: &available})
	if err != nil {
		return res, fmt.Errorf("list books: %w", err)
	}
	members, err := im.deps.Members.ListAll(ctx)
	if err != nil {
		return res, fmt.Errorf("list members: %w", err)
	}
	if len(books) == 0 || len(members) == 0 {
		log.Warn().Int("books", len(books)).Int("members", len(members)).Msg("Not enough books or members to create transactions")
		res.Total = have
		return res, nil
	}
	log.Info().Int("books", len(books)).Int("members", len(members)).Int("have", have).Msg("Transaction import starting")

	pool := make([]uuid.UUID, len(books))
	for i, b := range books {
		pool[i] = b.ID
	}

	for have < opts.Target && len(pool) > 0 {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		i := im.pick(len(pool))
		memberID := members[im.pick(len(members))].ID

		_, err := im.deps.Lending.Issue(ctx, pool[i], memberID)
		switch {
		case err == nil:
			have++
			res.Inserted++
			if res.Inserted%20 == 0 {
				log.Info().Int("created", res.Inserted).Msg("Transactions created so far")
			}
		case errors.Is(err, lendingModel.ErrBookUnavailable):
			res.Skipped++
			pool[i] = pool[len(pool)-1]
			pool = pool[:len(pool)-1]
		case lendingModel.IsNotFound(err):
			res.Skipped++
		default:
			return res, fmt.Errorf("issue loan: %w", err)
		}
	}

	if have < opts.Target {
		log.Warn().Int("total", have).Int("target", opts.Target).Msg("Ran out of available books")
	}

	res.Total = have
	log.Info().Int("inserted", res.Inserted).Int("total", have).Msg("Transaction import finished")
	return res, nil
}

// =====================================================
// ACTIVITY BACKFILL
// =====================================================

// BackfillActivity rebuilds the activity log from transactions (issue at
// borrow date, return at return date) and members (add_member at join date).
func (im *Importer) BackfillActivity(ctx context.Context, reset bool) (*Result, error) {
	res := &Result{}

	if reset {
		deleted, err := im.deps.Activity.DeleteAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("reset activity log: %w", err)
		}
		log.Info().Int64("deleted", deleted).Msg("Activity log cleared")
	}

	txns, _, err := im.deps.Lending.ListAll(ctx, lendingModel.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	log.Info().Int("transactions", len(txns)).Msg("Backfilling loans")

	for _, t := range txns {
		entries := []activityModel.Entry{{
			Type:      activityModel.TypeIssue,
			Message:   activityModel.IssueMessage(t.BookTitle, t.MemberName),
			CreatedAt: t.BorrowDate,
		}}
		if t.Status == lendingModel.StatusReturned && t.ReturnDate != nil {
			entries = append(entries, activityModel.Entry{
				Type:      activityModel.TypeReturn,
				Message:   activityModel.ReturnMessage(t.BookTitle, t.MemberName),
				CreatedAt: *t.ReturnDate,
			})
		}

		for _, e := range entries {
			e.BookID = activityModel.Ref(t.BookID)
			e.MemberID = activityModel.Ref(t.MemberID)
			if err := im.insertEntry(ctx, e); err != nil {
				return res, err
			}
			res.Inserted++
		}
	}

	members, err := im.deps.Members.ListAll(ctx)
	if err != nil {
		return res, fmt.Errorf("list members: %w", err)
	}
	log.Info().Int("members", len(members)).Msg("Backfilling members")

	for _, m := range members {
		if m.JoinDate.IsZero() {
			res.Skipped++
			continue
		}
		e := activityModel.Entry{
			Type:      activityModel.TypeAddMember,
			MemberID:  activityModel.Ref(m.ID),
			Message:   activityModel.AddMemberMessage(m.Name),
			CreatedAt: m.JoinDate,
		}
		if err := im.insertEntry(ctx, e); err != nil {
			return res, err
		}
		res.Inserted++
	}

	res.Total = res.Inserted
	log.Info().Int("inserted", res.Inserted).Msg("Activity backfill finished")
	return res, nil
}

func (im *Importer) insertEntry(ctx context.Context, e activityModel.Entry) error {
	e.ID = uuid.New()
	if err := im.deps.Activity.Insert(ctx, &e); err != nil {
		return fmt.Errorf("insert %s activity: %w", e.Type, err)
	}
	return nil
}
