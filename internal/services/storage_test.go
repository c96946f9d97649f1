package services

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStorageDownloadAuthorizes(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("ogg-bytes"))
	}))
	defer srv.Close()

	s := &StorageService{httpClient: srv.Client(), mediaToken: "EAAG-token"}

	body, err := s.download(srv.URL)
	if err != nil {
		t.Fatalf("download returned error: %v", err)
	}
	if string(body) != "ogg-bytes" {
		t.Errorf("download body = %q, expected %q", body, "ogg-bytes")
	}
	if gotAuth != "Bearer EAAG-token" {
		t.Errorf("Authorization = %q, expected %q", gotAuth, "Bearer EAAG-token")
	}
}

func TestStorageDownloadRejectsNonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := &StorageService{httpClient: srv.Client()}

	if _, err := s.download(srv.URL); err == nil {
		t.Error("download with 401 response returned nil error")
	}
}
