package importer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookModel "library-backend/internal/domains/book/model"
)

func TestOpenLibraryClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "go programming", r.URL.Query().Get("q"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"numFound":1,"docs":[{
			"title":"The Go Programming Language",
			"author_name":["Alan Donovan","Brian Kernighan"],
			"isbn":["9780134190440","0134190440"],
			"first_publish_year":2015,
			"subject":["Go","Programming"],
			"cover_i":123
		}]}`))
	}))
	defer srv.Close()

	docs, err := NewOpenLibraryClient(srv.URL).Search(context.Background(), "go programming", 2, 100)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	book := docs[0].ToBook()
	assert.Equal(t, "The Go Programming Language", book.Title)
	assert.Equal(t, "Alan Donovan", book.Author)
	assert.Equal(t, "9780134190440", bookModel.StringValue(book.ISBN))
	assert.Equal(t, "Go", bookModel.StringValue(book.Category))
	assert.Equal(t, "https://covers.openlibrary.org/b/id/123-M.jpg", bookModel.StringValue(book.Image))
	require.NotNil(t, book.Year)
	assert.Equal(t, 2015, *book.Year)
	assert.Equal(t, 1, book.TotalCopies)
	assert.Equal(t, 1, book.AvailableCopies)
}

func TestOpenLibraryClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewOpenLibraryClient(srv.URL).Search(context.Background(), "x", 1, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}

func TestSearchDoc_ToBook_Sparse(t *testing.T) {
	book := SearchDoc{Title: "  Untitled  "}.ToBook()

	assert.Equal(t, "Untitled", book.Title)
	assert.Empty(t, book.Author)
	assert.Nil(t, book.ISBN)
	assert.Nil(t, book.Image)
	assert.Nil(t, book.Year)
}

func TestRandomUserClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("results"))
		assert.Equal(t, "us", r.URL.Query().Get("nat"))

		_, _ = w.Write([]byte(`{"results":[
			{"name":{"first":"Ada","last":"Lovelace"},"email":"ada@example.com","phone":"555-0100",
			 "location":{"street":{"number":12,"name":"Main St"},"city":"Springfield","state":"IL","postcode":62701}},
			{"name":{"first":"Alan","last":"Turing"},"email":"alan@example.com","phone":"","cell":"555-0199",
			 "location":{"street":{"number":0,"name":"Bletchley Rd"},"city":"Milton","state":"MK","postcode":"MK3 6EB"}}
		]}`))
	}))
	defer srv.Close()

	users, err := NewRandomUserClient(srv.URL).Fetch(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, users, 2)

	ada := users[0].ToMember()
	assert.Equal(t, "Ada Lovelace", ada.Name)
	assert.Equal(t, "ada@example.com", ada.Email)
	assert.Equal(t, "555-0100", ada.Phone)
	assert.Equal(t, "12 Main St, Springfield, IL 62701", ada.Address)

	alan := users[1].ToMember()
	assert.Equal(t, "555-0199", alan.Phone)
	assert.Equal(t, "Bletchley Rd, Milton, MK MK3 6EB", alan.Address)
}
