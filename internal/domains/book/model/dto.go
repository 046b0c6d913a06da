package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	minYear        = 0
	maxTitleLength = 500
)

// CreateBookRequest is the body of POST /api/books.
type CreateBookRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	ISBN        string `json:"isbn"`
	Category    string `json:"category"`
	Image       string `json:"image"`
	Year        *int   `json:"year"`
	TotalCopies *int   `json:"total_copies"`
}

func (r CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, maxTitleLength),
		),
		validation.Field(&r.Author, validation.Length(0, 255)),
		validation.Field(&r.ISBN, validation.Length(0, 32)),
		validation.Field(&r.Category, validation.Length(0, 100)),
		validation.Field(&r.Year, validation.Min(minYear), validation.Max(time.Now().Year()+1)),
		validation.Field(&r.TotalCopies, validation.When(r.TotalCopies != nil,
			validation.Required.Error("total_copies must be at least 1"),
			validation.Min(1).Error("total_copies must be at least 1"),
		)),
	)
}

// ToBook builds a new Book with every copy available. TotalCopies defaults to 1.
func (r CreateBookRequest) ToBook() *Book {
	total := 1
	if r.TotalCopies != nil {
		total = *r.TotalCopies
	}
	return &Book{
		Title:           strings.TrimSpace(r.Title),
		Author:          strings.TrimSpace(r.Author),
		ISBN:            OptionalString(r.ISBN),
		Category:        OptionalString(r.Category),
		Image:           OptionalString(r.Image),
		Year:            r.Year,
		TotalCopies:     total,
		AvailableCopies: total,
	}
}

// UpdateBookRequest is the body of PUT /api/books/:id. Nil fields are left unchanged.
type UpdateBookRequest struct {
	Title           *string `json:"title"`
	Author          *string `json:"author"`
	ISBN            *string `json:"isbn"`
	Category        *string `json:"category"`
	Image           *string `json:"image"`
	Year            *int    `json:"year"`
	TotalCopies     *int    `json:"total_copies"`
	AvailableCopies *int    `json:"available_copies"`
}

func (r UpdateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty.Error("title cannot be empty"), validation.Length(1, maxTitleLength)),
		validation.Field(&r.Author, validation.Length(0, 255)),
		validation.Field(&r.ISBN, validation.Length(0, 32)),
		validation.Field(&r.Category, validation.Length(0, 100)),
		validation.Field(&r.Year, validation.Min(minYear), validation.Max(time.Now().Year()+1)),
		validation.Field(&r.TotalCopies, validation.Min(0)),
		validation.Field(&r.AvailableCopies, validation.Min(0)),
	)
}

// Apply merges the request into b.
//
// When total_copies changes and available_copies is omitted, available shifts
// by the same delta so the number of copies on loan is preserved. Shrinking
// total below the number on loan is rejected. An explicit available_copies
// must satisfy the invariant against the resulting total.
func (r UpdateBookRequest) Apply(b *Book) error {
	if r.Title != nil {
		b.Title = strings.TrimSpace(*r.Title)
	}
	if r.Author != nil {
		b.Author = strings.TrimSpace(*r.Author)
	}
	if r.ISBN != nil {
		b.ISBN = OptionalString(*r.ISBN)
	}
	if r.Category != nil {
		b.Category = OptionalString(*r.Category)
	}
	if r.Image != nil {
		b.Image = OptionalString(*r.Image)
	}
	if r.Year != nil {
		b.Year = r.Year
	}

	onLoan := b.OnLoan()

	if r.TotalCopies != nil {
		b.TotalCopies = *r.TotalCopies
		if r.AvailableCopies == nil {
			if b.TotalCopies < onLoan {
				return NewCopiesBelowLoanedError(b.TotalCopies, onLoan)
			}
			b.AvailableCopies = b.TotalCopies - onLoan
		}
	}
	if r.AvailableCopies != nil {
		b.AvailableCopies = *r.AvailableCopies
	}

	return b.CheckCopies()
}

// ListBooksFilter drives GET /api/books.
type ListBooksFilter struct {
	Search    string
	Category  string
	Available *bool
	Limit     int
	Offset    int
}
