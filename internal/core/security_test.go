package core

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3nha!forte")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}

	ok, err := VerifyPassword("s3nha!forte", hash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !ok {
		t.Fatal("correct password rejected")
	}

	ok, err = VerifyPassword("outra-senha", hash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if ok {
		t.Fatal("wrong password accepted")
	}
}

func TestVerifyPasswordInvalidHash(t *testing.T) {
	if _, err := VerifyPassword("x", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestVerifyPasswordWithRehash(t *testing.T) {
	hash, err := HashPassword("s3nha!forte")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	valid, newHash, err := VerifyPasswordWithRehash("s3nha!forte", hash)
	if err != nil {
		t.Fatalf("VerifyPasswordWithRehash: %v", err)
	}
	if !valid {
		t.Fatal("correct password rejected")
	}
	if newHash != "" {
		t.Fatal("current-parameter hash should not trigger a rehash")
	}

	// Tampering with the encoded parameters changes the derived key.
	weak := strings.Replace(hash, "m=65536", "m=32768", 1)
	valid, _, err = VerifyPasswordWithRehash("s3nha!forte", weak)
	if err != nil {
		t.Fatalf("VerifyPasswordWithRehash: %v", err)
	}
	if valid {
		t.Fatal("hash with altered params should not verify")
	}
}

func TestVerifyPasswordTimingSafe(t *testing.T) {
	hash, err := HashPassword("s3nha!forte")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	valid, _, err := VerifyPasswordTimingSafe("s3nha!forte", &hash)
	if err != nil {
		t.Fatalf("VerifyPasswordTimingSafe: %v", err)
	}
	if !valid {
		t.Fatal("correct password rejected")
	}

	// Missing hash (unknown account) always fails without error.
	valid, _, err = VerifyPasswordTimingSafe("s3nha!forte", nil)
	if err != nil {
		t.Fatalf("VerifyPasswordTimingSafe: %v", err)
	}
	if valid {
		t.Fatal("nil hash must never verify")
	}
}

func TestResetTokenHashing(t *testing.T) {
	token, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("GenerateResetToken: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	other, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("GenerateResetToken: %v", err)
	}
	if token == other {
		t.Fatal("tokens must be unique")
	}

	hash := HashToken(token)
	if len(hash) != 64 {
		t.Fatalf("expected sha256 hex digest, got %d chars", len(hash))
	}
	if hash != HashToken(token) {
		t.Fatal("hashing must be deterministic")
	}

	if !CompareTokenHash(token, hash) {
		t.Fatal("token does not match its own hash")
	}
	if CompareTokenHash(other, hash) {
		t.Fatal("different token matched the hash")
	}
}
