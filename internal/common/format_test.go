package common

import (
	"math/big"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1", "1000000000000000000"},
		{"1.5", "1500000000000000000"},
		{"0.000000000000000001", "1"},
		{"0", "0"},
	}
	for _, c := range cases {
		got, err := ParseAmount(c.in, 18)
		if err != nil {
			t.Errorf("ParseAmount(%q) failed: %v", c.in, err)
			continue
		}
		if got.String() != c.want {
			t.Errorf("ParseAmount(%q) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestParseAmount_Rejects(t *testing.T) {
	for _, in := range []string{"-1", "abc", "1.0000000000000000001", ""} {
		if _, err := ParseAmount(in, 18); err == nil {
			t.Errorf("Expected ParseAmount(%q) to fail", in)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	v, _ := new(big.Int).SetString("1500000000000000000", 10)
	if got := FormatAmount(v, 18); got != "1.5" {
		t.Errorf("FormatAmount = %s, want 1.5", got)
	}
	if got := FormatAmount(nil, 18); got != "0" {
		t.Errorf("FormatAmount(nil) = %s, want 0", got)
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	base, err := ParseAmount("123.456789", 8)
	if err != nil {
		t.Fatalf("ParseAmount failed: %v", err)
	}
	if got := FormatAmount(base, 8); got != "123.456789" {
		t.Errorf("Round trip = %s, want 123.456789", got)
	}
}
