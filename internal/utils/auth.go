package utils

import (
  "fmt"
  "strings"

  "golang.org/x/crypto/bcrypt"
)

func NormalizeEmail(email string) string {
  return strings.ToLower(strings.TrimSpace(email))
}

func HashPassword(password string) (string, error) {
  if strings.TrimSpace(password) == "" {
    return "", fmt.Errorf("password must not be empty")
  }
  hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
  if err != nil {
    return "", fmt.Errorf("hash password: %w", err)
  }
  return string(hashed), nil
}

func CheckPassword(hashed, password string) error {
  return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
}
