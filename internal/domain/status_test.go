package domain

import "testing"

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]string{
		"  Closed ":          "closed",
		"OPEN":               "open",
		"waitlisted; open":   "waitlisted; open",
		"":                   "",
		"\tOpen; reserved\n": "open; reserved",
	}
	for in, want := range cases {
		if got := NormalizeStatus(in); got != want {
			t.Fatalf("NormalizeStatus(%q): want %q, got %q", in, want, got)
		}
	}
}

func TestShouldAlert(t *testing.T) {
	cases := []struct {
		prev, cur string
		want      bool
	}{
		{"closed", "open", true},
		{"closed", "waitlisted", true},
		{"closed", "Open", true},
		{"closed", "closed", false},
		{"closed", "", false},
		{"", "open", false},
		{"", "closed", false},
		{"open", "closed", false},
		{"waitlisted", "open", false},
	}
	for _, c := range cases {
		if got := ShouldAlert(c.prev, c.cur); got != c.want {
			t.Fatalf("ShouldAlert(%q, %q): want %v, got %v", c.prev, c.cur, c.want, got)
		}
	}
}

func TestCanTransition(t *testing.T) {
	if !CanTransition(WatcherIdle, WatcherStarting) {
		t.Fatalf("idle → starting should be allowed")
	}
	if !CanTransition(WatcherStarting, WatcherWaitingLogin) {
		t.Fatalf("starting → waiting-login should be allowed")
	}
	if !CanTransition(WatcherWaitingLogin, WatcherRunning) {
		t.Fatalf("waiting-login → running should be allowed")
	}
	if CanTransition(WatcherIdle, WatcherRunning) {
		t.Fatalf("idle → running should not skip starting")
	}
	if CanTransition(WatcherStopping, WatcherRunning) {
		t.Fatalf("stopping → running should be rejected")
	}
	if !CanTransition(WatcherStopping, WatcherIdle) {
		t.Fatalf("stopping → idle should be allowed")
	}
}
