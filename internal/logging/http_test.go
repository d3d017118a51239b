package logging

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestRedactURL(t *testing.T) {
	u, _ := url.Parse("https://generativelanguage.googleapis.com/v1beta/models/m:generateContent?key=AIzaSECRET&alt=json")
	got := redactURL(u)
	if strings.Contains(got, "AIzaSECRET") {
		t.Errorf("redactURL() leaked key: %s", got)
	}
	if !strings.Contains(got, "alt=json") {
		t.Errorf("redactURL() dropped other params: %s", got)
	}

	plain, _ := url.Parse("https://example.com/path?a=b")
	if got := redactURL(plain); got != "https://example.com/path?a=b" {
		t.Errorf("redactURL() = %s, want unchanged", got)
	}
	if redactURL(nil) != "" {
		t.Error("redactURL(nil) should be empty")
	}
}

func TestLoggingRoundTripper(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "hello") {
			t.Errorf("server got body %q, want the original request body", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	logger := New(Options{Level: LevelDebug, Format: FormatJSON, Output: &buf})
	client := &http.Client{Transport: NewLoggingRoundTripper(nil, NewHTTPLogger(logger), true)}

	req, err := http.NewRequest(http.MethodPost, srv.URL+"?key=AIzaSECRET", strings.NewReader(`{"contents":"hello"}`))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("x-goog-api-key", "AIzaSECRET")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	respBody, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if string(respBody) != `{"candidates":[]}` {
		t.Errorf("response body = %q, should be readable after logging", respBody)
	}

	out := buf.String()
	if strings.Contains(out, "AIzaSECRET") {
		t.Errorf("log output leaked the API key: %s", out)
	}
	if !strings.Contains(out, "HTTP Request") || !strings.Contains(out, "HTTP Response") {
		t.Errorf("expected request and response entries, got %s", out)
	}
}

func TestLoggingRoundTripper_Error(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: LevelDebug, Format: FormatJSON, Output: &buf})
	client := &http.Client{Transport: NewLoggingRoundTripper(nil, NewHTTPLogger(logger), false)}

	// Closed server: connection refused
	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL
	srv.Close()

	if _, err := client.Get(target); err == nil {
		t.Fatal("expected connection error")
	}
	if !strings.Contains(buf.String(), "HTTP Error") {
		t.Errorf("expected an HTTP Error entry, got %s", buf.String())
	}
}
