package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRound2(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"20.909090909", "20.91"},
		{"19.333333333", "19.33"},
		{"12.335", "12.34"},
		{"12.334999", "12.33"},
		{"0", "0.00"},
		{"61", "61.00"},
	}
	for _, c := range cases {
		got := Round2(decimal.RequireFromString(c.in))
		if got.StringFixed(2) != c.want {
			t.Errorf("Round2(%s) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestParse(t *testing.T) {
	if _, err := Parse("1234.56"); err != nil {
		t.Fatalf("Parse(1234.56): %v", err)
	}
	if _, err := Parse("  42 "); err != nil {
		t.Fatalf("Parse with spaces: %v", err)
	}
	for _, bad := range []string{"", "abc", "-1", "1,5"} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q): expected error", bad)
		}
	}
}

func TestParsePositive(t *testing.T) {
	if _, err := ParsePositive("0"); err == nil {
		t.Fatal("ParsePositive(0): expected error")
	}
	d, err := ParsePositive("0.01")
	if err != nil {
		t.Fatalf("ParsePositive(0.01): %v", err)
	}
	if !d.Equal(decimal.RequireFromString("0.01")) {
		t.Fatalf("ParsePositive(0.01) = %s", d)
	}
}

func TestParseOptional(t *testing.T) {
	if _, ok, err := ParseOptional(nil); ok || err != nil {
		t.Fatalf("ParseOptional(nil) = ok=%v err=%v", ok, err)
	}
	empty := "  "
	if _, ok, err := ParseOptional(&empty); ok || err != nil {
		t.Fatalf("ParseOptional(blank) = ok=%v err=%v", ok, err)
	}
	v := "23.00"
	d, ok, err := ParseOptional(&v)
	if err != nil || !ok {
		t.Fatalf("ParseOptional(23.00) = ok=%v err=%v", ok, err)
	}
	if d.StringFixed(2) != "23.00" {
		t.Fatalf("ParseOptional(23.00) = %s", d)
	}
	bad := "x"
	if _, _, err := ParseOptional(&bad); err == nil {
		t.Fatal("ParseOptional(x): expected error")
	}
}

func TestString2(t *testing.T) {
	if got := String2(decimal.RequireFromString("12.3")); got != "12.30" {
		t.Fatalf("String2(12.3) = %s", got)
	}
	if got := String2(decimal.Zero); got != "0.00" {
		t.Fatalf("String2(0) = %s", got)
	}
}
