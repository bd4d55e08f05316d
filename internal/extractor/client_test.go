package extractor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHealthy(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{"ok", http.StatusOK, true},
		{"no content", http.StatusNoContent, true},
		{"server error", http.StatusInternalServerError, false},
		{"not found", http.StatusNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/health" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient(srv.URL)
			if got := c.Healthy(context.Background()); got != tt.want {
				t.Errorf("Healthy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHealthyUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	if c.Healthy(context.Background()) {
		t.Error("Healthy() = true for unreachable service")
	}
}

func TestConvert(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/convert" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart; %v", err)
		}
		if got := r.FormValue("filename"); got != "doc.pdf" {
			t.Errorf("filename field = %q", got)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("missing file part; %v", err)
		}
		defer file.Close()

		_ = json.NewEncoder(w).Encode(ConvertResult{
			Success:  true,
			Filename: "doc.pdf",
			Markdown: "# Converted",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	md, err := c.Convert(context.Background(), "doc.pdf", "application/pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Convert returned error; %v", err)
	}
	if md != "# Converted" {
		t.Errorf("markdown = %q", md)
	}
}

func TestConvertFailureModes(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "service reports failure",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(ConvertResult{Success: false, Error: "unsupported format"})
			},
			wantErr: "unsupported format",
		},
		{
			name: "http error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusBadGateway)
			},
			wantErr: "502",
		},
		{
			name: "malformed response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
			wantErr: "parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(srv.URL)
			_, err := c.Convert(context.Background(), "x.bin", "application/octet-stream", []byte{0x1})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestConvertURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/convert-url" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body; %v", err)
		}
		if body["url"] != "https://example.com/page" {
			t.Errorf("url = %q", body["url"])
		}
		_ = json.NewEncoder(w).Encode(ConvertURLResult{Success: true, Markdown: "# Page"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	md, err := c.ConvertURL(context.Background(), "https://example.com/page")
	if err != nil {
		t.Fatalf("ConvertURL returned error; %v", err)
	}
	if md != "# Page" {
		t.Errorf("markdown = %q", md)
	}
}
