package middleware

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientIPGeneric_DirectRemote(t *testing.T) {
	req := httptest.NewRequest("GET", "http://example.local/", nil)
	req.RemoteAddr = "203.0.113.5:54321"
	ip := clientIPGeneric(req, nil)
	if ip != "203.0.113.5" {
		t.Fatalf("expected direct remote IP, got %s", ip)
	}
}

func TestClientIPGeneric_TrustedProxyXFF(t *testing.T) {
	req := httptest.NewRequest("GET", "http://example.local/", nil)
	req.RemoteAddr = "198.51.100.10:443"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 198.51.100.10")
	// trustedCIDR contains the remote IP
	ip := clientIPGeneric(req, []string{"198.51.100.10"})
	if ip != "203.0.113.7" {
		t.Fatalf("expected X-Forwarded-For first value, got %s", ip)
	}
}

func TestClientIPGeneric_UntrustedProxyIgnoresXFF(t *testing.T) {
	req := httptest.NewRequest("GET", "http://example.local/", nil)
	req.RemoteAddr = "198.51.100.11:443"
	req.Header.Set("X-Forwarded-For", "203.0.113.8, 198.51.100.11")
	ip := clientIPGeneric(req, []string{"198.51.100.10"})
	if ip != "198.51.100.11" {
		t.Fatalf("expected remote IP when proxy untrusted, got %s", ip)
	}
}

func TestIPRateLimiter_AllowThenBlock(t *testing.T) {
	l := &IPRateLimiter{max: 3, window: time.Minute, state: make(map[string]timestamps)}
	for i := 0; i < 3; i++ {
		if ok, _ := l.allow("203.0.113.9"); !ok {
			t.Fatalf("request %d unexpectedly blocked", i+1)
		}
	}
	ok, retry := l.allow("203.0.113.9")
	if ok {
		t.Fatal("fourth request should be blocked")
	}
	if retry < 1 {
		t.Fatalf("retry-after should be at least 1s, got %d", retry)
	}
	// other keys are unaffected
	if ok, _ := l.allow("203.0.113.10"); !ok {
		t.Fatal("other IP should not be blocked")
	}
}

func TestLockDuration_Escalates(t *testing.T) {
	if d := lockDuration(2); d != 0 {
		t.Fatalf("no lock expected below 3 failures, got %v", d)
	}
	if d := lockDuration(3); d != time.Minute {
		t.Fatalf("expected 1m at 3 failures, got %v", d)
	}
	if d := lockDuration(6); d != 30*time.Minute {
		t.Fatalf("expected 30m past 5 failures, got %v", d)
	}
}
