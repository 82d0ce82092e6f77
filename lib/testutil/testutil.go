// Package testutil has the fixtures the scraper tests share.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"legiscrape/lib/fetch"
)

// ServePages serves pages keyed by url path, any other path is a 404. The
// server closes when the test ends.
func ServePages(t testing.TB, pages map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(page))
	}))
	t.Cleanup(server.Close)
	return server
}

// Client is a fetch client with the default config and no retries.
func Client(t testing.TB) *fetch.Client {
	t.Helper()
	client, err := fetch.NewClient(fetch.Config{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return client
}
