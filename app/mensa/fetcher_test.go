package mensa

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetcher_Fetch(t *testing.T) {
	var gotQuery, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("mensa")
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.URL+"/essen.php?mensa=%s", "Mensa Feed/test", 0)

	page, err := fetcher.Fetch(context.Background(), "westerberg")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if string(page) != samplePage {
		t.Error("Expected page body to be returned unchanged")
	}
	if gotQuery != "westerberg" {
		t.Errorf("Expected mensa query 'westerberg', got '%s'", gotQuery)
	}
	if gotAgent != "Mensa Feed/test" {
		t.Errorf("Expected user agent 'Mensa Feed/test', got '%s'", gotAgent)
	}
}

func TestFetcher_Fetch_NonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.URL+"/?mensa=%s", "", 0)

	_, err := fetcher.Fetch(context.Background(), "westerberg")

	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("Expected ConnectionError, got %v", err)
	}
	if connErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", connErr.StatusCode)
	}
}

func TestFetcher_Fetch_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewFetcher(url+"/?mensa=%s", "", 0).Fetch(context.Background(), "westerberg")

	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("Expected ConnectionError, got %v", err)
	}
	if connErr.Err == nil {
		t.Error("Expected underlying transport error")
	}
}

func TestFetcher_URL(t *testing.T) {
	fetcher := NewFetcher("", "", 0)

	want := "https://osnabrueck.my-mensa.de/essen.php?v=5121119&hyp=1&lang=de&mensa=mschlossg"
	if got := fetcher.URL("mschlossg"); got != want {
		t.Errorf("Expected URL '%s', got '%s'", want, got)
	}
}
