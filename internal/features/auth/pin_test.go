package auth

import (
	"strings"
	"testing"
)

func TestLookupHash_Deterministic(t *testing.T) {
	a := LookupHash("1234")
	b := LookupHash("1234")
	if a != b {
		t.Errorf("expected identical hashes, got %s and %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if a == LookupHash("1235") {
		t.Error("different PINs produced the same lookup hash")
	}
}

func TestHashPIN_VerifyRoundtrip(t *testing.T) {
	hash, err := HashPIN("482913")
	if err != nil {
		t.Fatalf("hashing PIN: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("expected argon2id PHC format, got %s", hash)
	}

	if !VerifyPIN("482913", hash) {
		t.Error("correct PIN failed verification")
	}
	if VerifyPIN("482914", hash) {
		t.Error("wrong PIN passed verification")
	}
}

func TestHashPIN_UniqueSalts(t *testing.T) {
	h1, err := HashPIN("482913")
	if err != nil {
		t.Fatalf("hashing PIN: %v", err)
	}
	h2, err := HashPIN("482913")
	if err != nil {
		t.Fatalf("hashing PIN: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same PIN should differ (random salt)")
	}
}

func TestVerifyPIN_MalformedHash(t *testing.T) {
	for _, hash := range []string{
		"",
		"not-a-hash",
		"$argon2id$v=19$m=65536,t=3,p=4$tooFewParts",
		"$bcrypt$something",
	} {
		if VerifyPIN("1234", hash) {
			t.Errorf("malformed hash %q passed verification", hash)
		}
	}
}
