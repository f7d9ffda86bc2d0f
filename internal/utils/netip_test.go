package utils

import (
	"net/http/httptest"
	"testing"
)

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"127.0.0.1", " 10.0.0.0/8 ", "bogus", "", "::1"})

	if m.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", m.Len())
	}

	tests := []struct {
		ip   string
		want bool
	}{
		{"127.0.0.1", true},
		{"10.20.30.40", true},
		{"::ffff:10.1.1.1", true},
		{"::1", true},
		{"192.168.1.1", false},
		{"not-an-ip", false},
	}
	for _, tt := range tests {
		if got := m.Allow(tt.ip); got != tt.want {
			t.Errorf("Allow(%q) = %v, want %v", tt.ip, got, tt.want)
		}
	}

	if !NewIPMatcher(nil).IsEmpty() {
		t.Error("IsEmpty() = false for empty list")
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.1:5555"
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	if got := ClientIP(r, false); got != "192.0.2.1" {
		t.Errorf("ClientIP(untrusted) = %q, want 192.0.2.1", got)
	}
	if got := ClientIP(r, true); got != "203.0.113.9" {
		t.Errorf("ClientIP(trusted) = %q, want 203.0.113.9", got)
	}

	r.Header.Set("CF-Connecting-IP", "198.51.100.7")
	if got := ClientIP(r, true); got != "198.51.100.7" {
		t.Errorf("ClientIP(cloudflare) = %q, want 198.51.100.7", got)
	}
}
