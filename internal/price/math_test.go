package price

import (
	"math/big"
	"testing"
)

func TestMulScaleDiv(t *testing.T) {
	tests := []struct {
		name string
		a    *big.Int
		exp  int
		b    *big.Int
		want string
	}{
		{"positive exponent", big.NewInt(3), 18, big.NewInt(2), "1500000000000000000"},
		{"zero exponent", big.NewInt(10), 0, big.NewInt(4), "2"},
		{"negative exponent", big.NewInt(5_000_000), -6, big.NewInt(2), "2"},
		{"truncates toward zero", big.NewInt(7), 0, big.NewInt(2), "3"},
		{"zero divisor", big.NewInt(7), 18, big.NewInt(0), "0"},
		{"nil operand", nil, 18, big.NewInt(2), "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mulScaleDiv(tt.a, tt.exp, tt.b)
			if got.String() != tt.want {
				t.Fatalf("mulScaleDiv() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFixed18RoundTrip(t *testing.T) {
	r := new(big.Rat).SetFrac64(5, 2)
	fixed := Fixed18FromRat(r)
	if fixed.String() != "2500000000000000000" {
		t.Fatalf("Fixed18FromRat() = %s", fixed)
	}
	back := RatFromFixed18(fixed)
	if back.Cmp(r) != 0 {
		t.Fatalf("RatFromFixed18() = %s, want %s", back, r)
	}
}

func TestFixed18FromRatTruncates(t *testing.T) {
	r := new(big.Rat).SetFrac64(1, 3)
	got := Fixed18FromRat(r)
	if got.String() != "333333333333333333" {
		t.Fatalf("Fixed18FromRat() = %s", got)
	}
}

func TestScaleRatio(t *testing.T) {
	if got := scaleRatio(2); got.Cmp(new(big.Rat).SetInt64(100)) != 0 {
		t.Fatalf("scaleRatio(2) = %s", got)
	}
	if got := scaleRatio(-2); got.Cmp(new(big.Rat).SetFrac64(1, 100)) != 0 {
		t.Fatalf("scaleRatio(-2) = %s", got)
	}
	if got := scaleRatio(0); got.Cmp(new(big.Rat).SetInt64(1)) != 0 {
		t.Fatalf("scaleRatio(0) = %s", got)
	}
}

func TestAmount(t *testing.T) {
	raw, _ := new(big.Int).SetString("1500000", 10)
	got := Amount(raw, 6)
	if got.Cmp(new(big.Rat).SetFrac64(3, 2)) != 0 {
		t.Fatalf("Amount() = %s", got)
	}
	if Amount(nil, 18).Sign() != 0 {
		t.Fatal("Amount(nil) should be zero")
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2.5", "2.500000000000000000"},
		{"0", "0.000000000000000000"},
		{"", "0.000000000000000000"},
		{"not-a-number", "0.000000000000000000"},
	}

	for _, tt := range tests {
		if got := FormatDecimal(ParseDecimal(tt.input)); got != tt.want {
			t.Fatalf("ParseDecimal(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestFormatDecimalNil(t *testing.T) {
	if got := FormatDecimal(nil); got != "0" {
		t.Fatalf("FormatDecimal(nil) = %s", got)
	}
}
