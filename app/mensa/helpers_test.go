package mensa

import (
	"testing"

	"github.com/shopspring/decimal"
)

func checkAmount(t *testing.T, role string, got *decimal.Decimal, want string) {
	t.Helper()

	if want == "" {
		if got != nil {
			t.Errorf("Expected no %s price, got %s", role, got.String())
		}
		return
	}

	if got == nil {
		t.Errorf("Expected %s price %s, got none", role, want)
		return
	}
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("Expected %s price %s, got %s", role, want, got.String())
	}
}
