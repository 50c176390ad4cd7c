//go:build windows

package credstore

import "testing"

func TestTargetName(t *testing.T) {
	if got := targetName("myapp", "alice"); got != "myapp/alice" {
		t.Errorf("targetName = %q, want %q", got, "myapp/alice")
	}
}

func TestAccountFromTarget(t *testing.T) {
	cases := []struct {
		target  string
		service string
		account string
		ok      bool
	}{
		{"myapp/alice", "myapp", "alice", true},
		{"myapp/alice/extra", "myapp", "alice/extra", true},
		{"otherapp/alice", "myapp", "", false},
		{"myapp", "myapp", "", false},
	}
	for _, tc := range cases {
		account, ok := accountFromTarget(tc.target, tc.service)
		if account != tc.account || ok != tc.ok {
			t.Errorf("accountFromTarget(%q, %q) = %q, %v; want %q, %v",
				tc.target, tc.service, account, ok, tc.account, tc.ok)
		}
	}
}

func TestErrnoMessageNeverEmpty(t *testing.T) {
	if errnoMessage(nil) == "" {
		t.Error("empty diagnostic for nil error")
	}
}
