package repository

import (
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"
)

func TestGenerateCouponCodeFormat(t *testing.T) {
	code, err := generateCouponCode()
	if err != nil {
		t.Fatalf("generateCouponCode: %v", err)
	}
	if !strings.HasPrefix(code, "PROMO-") || len(code) != len("PROMO-")+4 {
		t.Fatalf("code = %q, want PROMO- prefix and 4 characters", code)
	}
	for _, r := range code[len("PROMO-"):] {
		if !strings.ContainsRune(couponCodeAlphabet, r) {
			t.Fatalf("code %q contains %q outside the alphabet", code, r)
		}
	}
}

func TestCreateWithFreshCodeRetriesOnCollision(t *testing.T) {
	attempts := 0
	err := createWithFreshCode(func(code string) error {
		attempts++
		if attempts < 3 {
			return gorm.ErrDuplicatedKey
		}
		return nil
	})
	if err != nil {
		t.Fatalf("createWithFreshCode: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestCreateWithFreshCodeSurfacesOtherErrors(t *testing.T) {
	boom := errors.New("connection refused")
	attempts := 0
	err := createWithFreshCode(func(code string) error {
		attempts++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the insert error unchanged", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, a non-collision error must not be retried", attempts)
	}
}

func TestCreateWithFreshCodeGivesUpAfterRetries(t *testing.T) {
	attempts := 0
	err := createWithFreshCode(func(code string) error {
		attempts++
		return gorm.ErrDuplicatedKey
	})
	if err == nil {
		t.Fatal("expected exhaustion error")
	}
	if attempts != 10 {
		t.Fatalf("attempts = %d, want 10", attempts)
	}
}
