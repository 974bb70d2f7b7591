package handwriteapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestListFonts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != FontsPath {
			t.Errorf("request = %s %s, want GET %s", r.Method, r.URL.Path, FontsPath)
		}
		if r.Header.Get(HeaderRequestID) == "" {
			t.Errorf("missing %s header", HeaderRequestID)
		}
		_, _ = io.WriteString(w, `{"fonts":["zeta","hongzhi_handwriting","alpha"]}`)
	}))
	defer srv.Close()

	fonts, err := NewClient(srv.URL).ListFonts(context.Background())
	if err != nil {
		t.Fatalf("ListFonts() error = %v", err)
	}
	want := []string{"zeta", "hongzhi_handwriting", "alpha"}
	if diff := cmp.Diff(want, fonts); diff != "" {
		t.Errorf("ListFonts() mismatch (-want +got):\n%s", diff)
	}
}

func TestListFonts_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "server error with detail",
			status:     http.StatusInternalServerError,
			body:       `{"detail":"font directory missing"}`,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "font directory missing",
		},
		{
			name:       "not found",
			status:     http.StatusNotFound,
			body:       "",
			wantStatus: http.StatusNotFound,
			wantMsg:    "Not Found",
		},
		{
			name:       "malformed body",
			status:     http.StatusOK,
			body:       `["a","b"]`,
			wantStatus: http.StatusOK,
			wantMsg:    "invalid response body",
		},
		{
			name:       "missing fonts field",
			status:     http.StatusOK,
			body:       `{}`,
			wantStatus: http.StatusOK,
			wantMsg:    "response has no fonts field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).ListFonts(context.Background())
			var fetchErr *FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("ListFonts() error = %v, want *FetchError", err)
			}
			if fetchErr.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", fetchErr.StatusCode, tt.wantStatus)
			}
			if fetchErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", fetchErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestListFonts_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).ListFonts(context.Background())
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("ListFonts() error = %v, want *FetchError", err)
	}
	if fetchErr.Cause == nil {
		t.Error("Cause = nil, want transport error")
	}
}

func TestListFonts_EmptyCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"fonts":[]}`)
	}))
	defer srv.Close()

	fonts, err := NewClient(srv.URL).ListFonts(context.Background())
	if err != nil {
		t.Fatalf("ListFonts() error = %v", err)
	}
	if len(fonts) != 0 {
		t.Errorf("ListFonts() = %v, want empty", fonts)
	}
}
