package utils

import "testing"

func TestNormalizeEmail(t *testing.T) {
  if got := NormalizeEmail("  Ana.Souza@Example.COM "); got != "ana.souza@example.com" {
    t.Fatalf("got %q", got)
  }
}

func TestHashPasswordRoundTrip(t *testing.T) {
  hashed, err := HashPassword("s3cret")
  if err != nil {
    t.Fatalf("hash: %v", err)
  }
  if err := CheckPassword(hashed, "s3cret"); err != nil {
    t.Fatalf("check: %v", err)
  }
  if err := CheckPassword(hashed, "wrong"); err == nil {
    t.Fatalf("wrong password accepted")
  }
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
  if _, err := HashPassword("   "); err == nil {
    t.Fatalf("empty password accepted")
  }
}
