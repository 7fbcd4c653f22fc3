package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestNotFound(t *testing.T) {
	e := setupTestServer(t)
	resp := e.get(e.client(false), "/no/such/page")
	readBody(t, resp)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	e := setupTestServer(t)
	resp := e.get(e.client(false), "/")
	readBody(t, resp)
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing X-Content-Type-Options")
	}
}

func TestAuthRateLimit(t *testing.T) {
	e := setupTestServerWith(t, Options{
		SecretKey:         "test-secret",
		AuthRatePerMinute: 1,
		AuthRateBurst:     1,
	})
	c := e.client(false)
	form := url.Values{"username": {"nobody"}, "password": {"x"}}

	resp := e.post(c, "/login", form)
	readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first attempt: got %d, want 200", resp.StatusCode)
	}
	resp = e.post(c, "/login", form)
	readBody(t, resp)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("second attempt: got %d, want 429", resp.StatusCode)
	}

	resp = e.get(c, "/login")
	readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET should not be limited, got %d", resp.StatusCode)
	}
}

func TestAuthRateLimitIgnoresForwardedFor(t *testing.T) {
	e := setupTestServerWith(t, Options{
		SecretKey:         "test-secret",
		AuthRatePerMinute: 1,
		AuthRateBurst:     1,
	})
	c := e.client(false)
	form := url.Values{"username": {"nobody"}, "password": {"x"}}

	var codes []int
	for i := 0; i < 5; i++ {
		req, err := http.NewRequest(http.MethodPost, e.ts.URL+"/login", strings.NewReader(form.Encode()))
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		resp, err := c.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		readBody(t, resp)
		codes = append(codes, resp.StatusCode)
	}
	if codes[0] != http.StatusOK {
		t.Fatalf("first attempt: got %d, want 200", codes[0])
	}
	for i, code := range codes[1:] {
		if code != http.StatusTooManyRequests {
			t.Errorf("attempt %d: got %d, want 429 (codes %v)", i+2, code, codes)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	e := setupTestServer(t)
	u := e.signup("user1")
	c := e.client(false)
	e.loginAs(c, u.ID)
	readBody(t, e.post(c, "/messages/new", url.Values{"text": {"counted"}}))
	readBody(t, e.get(c, "/messages/101010101"))

	body := readBody(t, e.get(c, "/metrics"))
	for _, want := range []string{
		"warbler_messages_created_total",
		"http_requests_total",
		`path="/messages/{message_id}"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}
