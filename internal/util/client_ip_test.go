package util

import (
	"net"
	"net/http/httptest"
	"testing"
)

func TestTrustedProxiesParsing(t *testing.T) {
	trusted, err := NewTrustedProxies([]string{"172.16.0.0/12", " 203.0.113.9 ", ""})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !trusted.Contains(net.ParseIP("172.16.4.4")) {
		t.Fatal("CIDR member should be trusted")
	}
	if !trusted.Contains(net.ParseIP("203.0.113.9")) {
		t.Fatal("single-host entry should be trusted")
	}
	if trusted.Contains(net.ParseIP("8.8.8.8")) {
		t.Fatal("outside address should not be trusted")
	}

	if _, err := NewTrustedProxies([]string{"not-an-ip"}); err == nil {
		t.Fatal("expected error for garbage entry")
	}
	empty, err := NewTrustedProxies(nil)
	if err != nil || empty != nil {
		t.Fatalf("empty input should yield nil allowlist, got %v %v", empty, err)
	}
}

func TestClientIPResolution(t *testing.T) {
	trusted, err := NewTrustedProxies([]string{"10.0.0.0/8"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	cases := []struct {
		name    string
		remote  string
		xff     string
		realIP  string
		trusted *TrustedProxies
		want    string
	}{
		{
			name:   "untrusted peer ignores forwarded headers",
			remote: "198.51.100.7:4000",
			xff:    "203.0.113.1",
			realIP: "203.0.113.2",
			want:   "198.51.100.7",
		},
		{
			name:    "trusted peer honors forwarded-for",
			remote:  "10.1.2.3:4000",
			xff:     "203.0.113.1",
			trusted: trusted,
			want:    "203.0.113.1",
		},
		{
			name:    "rightmost untrusted hop wins",
			remote:  "10.1.2.3:4000",
			xff:     "203.0.113.1, 10.9.9.9",
			trusted: trusted,
			want:    "203.0.113.1",
		},
		{
			name:    "real-ip fallback when forwarded-for is junk",
			remote:  "10.1.2.3:4000",
			xff:     "garbage",
			realIP:  "203.0.113.5",
			trusted: trusted,
			want:    "203.0.113.5",
		},
		{
			name:    "fully trusted chain keeps leftmost hop",
			remote:  "10.1.2.3:4000",
			xff:     "10.5.5.5, 10.6.6.6",
			trusted: trusted,
			want:    "10.5.5.5",
		},
		{
			name:   "bare peer without port",
			remote: "198.51.100.7",
			want:   "198.51.100.7",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "http://api.test/", nil)
			req.RemoteAddr = tc.remote
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.realIP != "" {
				req.Header.Set("X-Real-IP", tc.realIP)
			}
			if got := ClientIP(req, tc.trusted); got != tc.want {
				t.Fatalf("ClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}
