package web

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		trustProxy bool
		want       string
	}{
		{"peer address", "", false, "192.0.2.1"},
		{"forwarded header ignored", "203.0.113.7", false, "192.0.2.1"},
		{"forwarded header trusted", "203.0.113.7, 10.0.0.1", true, "203.0.113.7"},
		{"trusted without header", "", true, "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/login", nil)
			r.RemoteAddr = "192.0.2.1:54321"
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := clientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimiterEvictsIdle(t *testing.T) {
	l := newIPRateLimiter(60, 1, false)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for _, ip := range []string{"192.0.2.1", "192.0.2.2", "192.0.2.3"} {
		l.get(ip)
	}
	if n := l.size(); n != 3 {
		t.Fatalf("buckets: got %d, want 3", n)
	}

	now = now.Add(l.idleTTL / 2)
	l.get("192.0.2.1")

	now = now.Add(l.idleTTL)
	l.get("192.0.2.4")
	if n := l.size(); n != 1 {
		t.Errorf("buckets after sweep: got %d, want 1", n)
	}
}
