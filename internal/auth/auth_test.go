package auth

import (
	"strings"
	"testing"
)

func TestEnabled(t *testing.T) {
	if auth := New("s", nil); auth.Enabled() {
		t.Errorf("no users should mean disabled")
	}
	if auth := New("s", map[string]string{"u": "p"}); !auth.Enabled() {
		t.Errorf("users configured should mean enabled")
	}
}

func TestCheck(t *testing.T) {
	a := New("secret", map[string]string{"ada": "hunter2"})
	tests := []struct {
		user, pass string
		want       bool
	}{
		{"ada", "hunter2", true},
		{"ada", "wrong", false},
		{"ada", "", false},
		{"nobody", "hunter2", false},
		{"", "", false},
	}
	for _, tt := range tests {
		if got := a.Check(tt.user, tt.pass); got != tt.want {
			t.Errorf("Check(%q, %q): expected %v, got %v", tt.user, tt.pass, tt.want, got)
		}
	}
}

func TestTokenRoundtrip(t *testing.T) {
	a := New("secret", map[string]string{"ada": "hunter2"})
	tok, err := a.Token("ada")
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if !a.Verify("ada", tok) {
		t.Errorf("freshly issued token rejected")
	}

	// a token is bound to its user
	if a.Verify("eve", tok) {
		t.Errorf("token accepted for a different user")
	}
}

func TestVerify_TamperedToken(t *testing.T) {
	a := New("secret", map[string]string{"ada": "hunter2"})
	tok, err := a.Token("ada")
	if err != nil {
		t.Fatal(err)
	}

	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", tok)
	}
	tampered := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]
	if a.Verify("ada", tampered) {
		t.Errorf("tampered signature accepted")
	}

	if a.Verify("ada", "") {
		t.Errorf("empty token accepted")
	}
	if a.Verify("ada", "garbage") {
		t.Errorf("garbage token accepted")
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	users := map[string]string{"ada": "hunter2"}
	tok, err := New("first", users).Token("ada")
	if err != nil {
		t.Fatal(err)
	}
	if New("second", users).Verify("ada", tok) {
		t.Errorf("token signed under a different secret accepted")
	}
}

func TestVerify_RemovedAccount(t *testing.T) {
	a := New("secret", map[string]string{"ada": "hunter2"})
	tok, err := a.Token("ada")
	if err != nil {
		t.Fatal(err)
	}
	b := New("secret", map[string]string{"bob": "pw"})
	if b.Verify("ada", tok) {
		t.Errorf("token for a removed account accepted")
	}
}
