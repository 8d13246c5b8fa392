package guard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"studio/internal/settings"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func guardConfig(url string) settings.GuardConfig {
	return settings.GuardConfig{
		URL:          url,
		Token:        "secret",
		Model:        "granite3-guardian-2b",
		Temperature:  0.7,
		PromptPrefix: "Draw a picture of",
	}
}

func TestCheckRejectsEverythingButExactNo(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name     string
		content  string
		rejected bool
	}{
		{name: "exact_no", content: "No", rejected: false},
		{name: "lowercase", content: "no", rejected: true},
		{name: "trailing_period", content: "No.", rejected: true},
		{name: "empty", content: "", rejected: true},
		{name: "yes", content: "Yes", rejected: true},
		{name: "explanation", content: "No, this prompt is fine.", rejected: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, tc.content)
			}))
			defer srv.Close()

			checker := New(Options{HTTPClient: srv.Client()})
			rejected, err := checker.Check(context.Background(), guardConfig(srv.URL), "a castle")
			if err != nil {
				t.Fatalf("Check returned error: %v", err)
			}
			if rejected != tc.rejected {
				t.Fatalf("rejected = %v, want %v", rejected, tc.rejected)
			}
		})
	}
}

func TestCheckRequestShape(t *testing.T) {
	t.Parallel()
	var gotPath, gotAuth string
	var gotBody chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"content":"No"}}]}`)
	}))
	defer srv.Close()

	checker := New(Options{HTTPClient: srv.Client()})
	if _, err := checker.Check(context.Background(), guardConfig(srv.URL), "a castle"); err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if gotPath != "/chat/completions" {
		t.Fatalf("path = %q, want %q", gotPath, "/chat/completions")
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("auth = %q, want bearer token", gotAuth)
	}
	if gotBody.Model != "granite3-guardian-2b" {
		t.Fatalf("model = %q", gotBody.Model)
	}
	if gotBody.Temperature != 0.7 {
		t.Fatalf("temperature = %v", gotBody.Temperature)
	}
	if len(gotBody.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(gotBody.Messages))
	}
	if gotBody.Messages[0].Role != "user" {
		t.Fatalf("role = %q", gotBody.Messages[0].Role)
	}
	if want := "Draw a picture of a castle"; gotBody.Messages[0].Content != want {
		t.Fatalf("content = %q, want %q", gotBody.Messages[0].Content, want)
	}
}

func TestCheckMissingChoicesIsRejection(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	checker := New(Options{HTTPClient: srv.Client()})
	rejected, err := checker.Check(context.Background(), guardConfig(srv.URL), "a castle")
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if !rejected {
		t.Fatal("expected rejection when response has no choices")
	}
}

func TestCheckEndpointFailurePropagates(t *testing.T) {
	t.Parallel()
	checker := New(Options{HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("boom")
	})}})
	if _, err := checker.Check(context.Background(), guardConfig("http://guard.invalid"), "a castle"); err == nil {
		t.Fatal("expected error from failed endpoint call")
	}
}

func TestCheckBadStatusIsError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	checker := New(Options{HTTPClient: srv.Client()})
	if _, err := checker.Check(context.Background(), guardConfig(srv.URL), "a castle"); err == nil {
		t.Fatal("expected error on 500 status")
	}
}
