package importer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	bookModel "library-backend/internal/domains/book/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultOpenLibraryURL = "https://openlibrary.org"
	coverURLFormat        = "https://covers.openlibrary.org/b/id/%d-M.jpg"
)

// =====================================================
// OPEN LIBRARY CLIENT
// =====================================================

// SearchDoc is the subset of an OpenLibrary search.json doc we import.
type SearchDoc struct {
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	ISBN             []string `json:"isbn"`
	FirstPublishYear int      `json:"first_publish_year"`
	Subject          []string `json:"subject"`
	CoverID          int      `json:"cover_i"`
}

type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []SearchDoc `json:"docs"`
}

type OpenLibraryClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewOpenLibraryClient(baseURL string) *OpenLibraryClient {
	if baseURL == "" {
		baseURL = DefaultOpenLibraryURL
	}
	return &OpenLibraryClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Search fetches one page of search results. Pages start at 1.
func (c *OpenLibraryClient) Search(ctx context.Context, query string, page, limit int) ([]SearchDoc, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))

	var body searchResponse
	if err := getJSON(ctx, c.httpClient, c.baseURL+"/search.json?"+params.Encode(), &body); err != nil {
		return nil, fmt.Errorf("openlibrary search page %d: %w", page, err)
	}
	return body.Docs, nil
}

// ToBook maps a doc to a single-copy book. The first author, ISBN and
// subject win.
func (d SearchDoc) ToBook() *bookModel.Book {
	book := &bookModel.Book{
		Title:           strings.TrimSpace(d.Title),
		Author:          first(d.AuthorName),
		ISBN:            bookModel.OptionalString(first(d.ISBN)),
		Category:        bookModel.OptionalString(first(d.Subject)),
		TotalCopies:     1,
		AvailableCopies: 1,
	}
	if d.FirstPublishYear > 0 {
		year := d.FirstPublishYear
		book.Year = &year
	}
	if d.CoverID > 0 {
		book.Image = bookModel.OptionalString(fmt.Sprintf(coverURLFormat, d.CoverID))
	}
	return book
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

// getJSON issues a GET and decodes a 2xx JSON body into dest.
func getJSON(ctx context.Context, client *http.Client, rawURL string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status: HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
