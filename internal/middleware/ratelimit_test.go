package middleware

import (
	"net/http/httptest"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestLimiter(maxConns, rate int, window time.Duration) (*IPRateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	rl := NewIPRateLimiter(maxConns, rate, window)
	rl.now = clock.now
	return rl, clock
}

func TestConnectAllowed(t *testing.T) {
	rl, _ := newTestLimiter(2, 10, time.Second)

	if !rl.ConnectAllowed("1.2.3.4") || !rl.ConnectAllowed("1.2.3.4") {
		t.Fatal("first two connections refused")
	}
	if rl.ConnectAllowed("1.2.3.4") {
		t.Fatal("third connection allowed")
	}
	if !rl.ConnectAllowed("5.6.7.8") {
		t.Fatal("limit leaked across IPs")
	}

	rl.Disconnect("1.2.3.4")
	if !rl.ConnectAllowed("1.2.3.4") {
		t.Fatal("slot not freed by Disconnect")
	}
}

func TestMessageAllowedRefill(t *testing.T) {
	rl, clock := newTestLimiter(4, 3, time.Second)
	ip := "10.0.0.1"

	for i := 0; i < 3; i++ {
		if !rl.MessageAllowed(ip) {
			t.Fatalf("message %d refused with a full bucket", i)
		}
	}
	if rl.MessageAllowed(ip) {
		t.Fatal("empty bucket allowed a message")
	}

	clock.t = clock.t.Add(999 * time.Millisecond)
	if rl.MessageAllowed(ip) {
		t.Fatal("bucket refilled before the window elapsed")
	}

	clock.t = clock.t.Add(time.Millisecond)
	for i := 0; i < 3; i++ {
		if !rl.MessageAllowed(ip) {
			t.Fatalf("message %d refused after refill", i)
		}
	}
	if rl.MessageAllowed(ip) {
		t.Fatal("refill exceeded the rate")
	}

	// A long idle period still caps the bucket at one window's worth.
	clock.t = clock.t.Add(time.Minute)
	n := 0
	for rl.MessageAllowed(ip) {
		n++
	}
	if n != 3 {
		t.Fatalf("after idle got %d tokens, want 3", n)
	}
}

func TestSweep(t *testing.T) {
	rl, _ := newTestLimiter(2, 10, time.Second)
	rl.ConnectAllowed("a")
	rl.MessageAllowed("b")

	if rl.Visitors() != 2 {
		t.Fatalf("Visitors = %d, want 2", rl.Visitors())
	}
	rl.Sweep()
	if rl.Visitors() != 1 {
		t.Fatalf("Visitors after sweep = %d, want 1", rl.Visitors())
	}

	rl.Disconnect("a")
	rl.Sweep()
	if rl.Visitors() != 0 {
		t.Fatalf("Visitors after disconnect+sweep = %d, want 0", rl.Visitors())
	}
}

func TestRealIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		remote string
		want   string
	}{
		{"remote addr", "", "192.0.2.1:5555", "192.0.2.1"},
		{"single forwarded", "203.0.113.9", "10.0.0.1:80", "203.0.113.9"},
		{"forwarded chain", "203.0.113.9, 10.0.0.2", "10.0.0.1:80", "203.0.113.9"},
		{"no port", "", "192.0.2.7", "192.0.2.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/ws", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := RealIP(r); got != tt.want {
				t.Fatalf("RealIP = %q, want %q", got, tt.want)
			}
		})
	}
}
