package catalog_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"refcat/internal/catalog"
	"refcat/internal/testsupport"
)

func TestFetchPassportSendsUserKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("userKey"); got != "secret-token" {
			t.Errorf("expected userKey=secret-token, got %q", got)
		}
		if got := r.URL.Query().Get("identifier"); got != "1.2.643" {
			t.Errorf("expected identifier=1.2.643, got %q", got)
		}
		_, _ = w.Write([]byte(`{"shortName":"Sample","version":"3.2"}`))
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithUserKey("secret-token"))
	client := catalog.NewClient(cfg, catalog.WithBaseURL(server.URL))

	passport, err := client.FetchPassport(context.Background(), "1.2.643")
	if err != nil {
		t.Fatalf("FetchPassport returned error: %v", err)
	}
	if passport.Version != "3.2" {
		t.Fatalf("unexpected version: %q", passport.Version)
	}
}

func TestDownloadArchiveURLAndPayload(t *testing.T) {
	payload := testsupport.ZipPayload(t, "data.csv", []byte("ID;NAME\n1;one\n"))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/1.2.643_5.15_csv.zip" {
			t.Errorf("unexpected download path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	client := catalog.NewClient(cfg, catalog.WithDownloadURL(server.URL))

	data, err := client.DownloadArchive(context.Background(), "1.2.643", "5.15")
	if err != nil {
		t.Fatalf("DownloadArchive returned error: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Fatal("downloaded bytes differ from served payload")
	}
}

func TestDownloadArchiveNon200IsDownloadError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	client := catalog.NewClient(cfg, catalog.WithDownloadURL(server.URL))

	_, err := client.DownloadArchive(context.Background(), "1.2.643", "5.15")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !errors.Is(err, catalog.ErrDownload) {
		t.Fatalf("expected ErrDownload, got %v", err)
	}
}
