package cryptox

import (
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword([]byte("s3cret-pass"))
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if string(hash) == "s3cret-pass" {
		t.Fatalf("hash equals plaintext")
	}
	if !CheckPassword(hash, []byte("s3cret-pass")) {
		t.Fatalf("correct password rejected")
	}
	if CheckPassword(hash, []byte("wrong")) {
		t.Fatalf("wrong password accepted")
	}
}

func TestGenerateConfirmationCode(t *testing.T) {
	code, err := GenerateConfirmationCode()
	if err != nil {
		t.Fatalf("GenerateConfirmationCode error: %v", err)
	}
	if len(code) != ConfirmationCodeLength {
		t.Fatalf("code length = %d, want %d", len(code), ConfirmationCodeLength)
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			t.Fatalf("non-digit in code: %q", code)
		}
	}
}
