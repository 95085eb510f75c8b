package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptVerifier(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash: %v", err)
	}

	v := NewBcryptVerifier()
	if !v.Verify("correct horse", string(hash)) {
		t.Error("expected the matching password to verify")
	}
	if v.Verify("battery staple", string(hash)) {
		t.Error("expected a mismatching password to fail")
	}
	if v.Verify("correct horse", "not-a-bcrypt-hash") {
		t.Error("expected a malformed hash to fail")
	}
}
