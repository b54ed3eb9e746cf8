// internal/pipeline/currency_test.go
package pipeline

import (
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		input      string
		wantSymbol string
		wantAmount float64
		wantOK     bool
	}{
		{"$1,000,000", "$", 1000000, true},
		{"₩1,234,567 (estimated)", "₩", 1234567, true},
		{"KZT 50,000,000", "KZT", 50000000, true},
		{"€12,345.67", "€", 12345.67, true},
		{"not a number", "", 0, false},
		{"", "", 0, false},
	}

	for _, tc := range cases {
		symbol, amount, ok := ParseAmount(tc.input)
		if ok != tc.wantOK {
			t.Fatalf("%q: expected ok=%v, got %v", tc.input, tc.wantOK, ok)
		}
		if !ok {
			continue
		}
		if symbol != tc.wantSymbol {
			t.Fatalf("%q: expected symbol %q, got %q", tc.input, tc.wantSymbol, symbol)
		}
		if amount != tc.wantAmount {
			t.Fatalf("%q: expected amount %v, got %v", tc.input, tc.wantAmount, amount)
		}
	}
}

func TestConvertToUSD(t *testing.T) {
	got, ok := ConvertToUSD("$2,000,000", 2010)
	if !ok || got != 2000000 {
		t.Fatalf("USD should convert 1:1, got %v (ok=%v)", got, ok)
	}

	got, ok = ConvertToUSD("₩1,000,000", 2015)
	if !ok {
		t.Fatal("expected conversion for ₩ in 2015")
	}
	if math.Abs(got-884) > 0.001 {
		t.Fatalf("expected 884 USD, got %v", got)
	}
}

func TestConvertToUSD_UnknownSymbol(t *testing.T) {
	if _, ok := ConvertToUSD("XYZ123", 2015); ok {
		t.Fatal("unknown currency symbol should yield no value")
	}
}

func TestConvertToUSD_DefaultRatesForUnknownYear(t *testing.T) {
	got, ok := ConvertToUSD("€100", 1990)
	if !ok {
		t.Fatal("years outside the table should fall back to default rates")
	}
	if math.Abs(got-110) > 0.001 {
		t.Fatalf("expected 110 USD at default rate, got %v", got)
	}
}

func TestConvertToUSD_StripsEstimatedMarker(t *testing.T) {
	got, ok := ConvertToUSD("$500,000 (estimated)", 2020)
	if !ok || got != 500000 {
		t.Fatalf("expected 500000, got %v (ok=%v)", got, ok)
	}
}
