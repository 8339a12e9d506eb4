package core

import (
	"encoding/json"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in      string
		cents   int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"12.345", 1235, false}, // rounds half-up on the third decimal
		{"12.344", 1234, false},
		{"0", 0, false},
		{"1000", 100000, false},
		{" 7.5 ", 750, false},
		{"", 0, true},
		{"abc", 0, true},
		{"-5", 0, true},
		{"1.2.3", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseMoney(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMoney(%q): unexpected error %v", tc.in, err)
			continue
		}
		if got.Cents != tc.cents {
			t.Errorf("ParseMoney(%q) = %d cents, want %d", tc.in, got.Cents, tc.cents)
		}
	}
}

func TestMoneyString(t *testing.T) {
	if s := (Money{Cents: 1234}).String(); s != "12.34" {
		t.Fatalf("String = %q", s)
	}
	if s := (Money{Cents: -50}).String(); s != "-0.50" {
		t.Fatalf("String = %q", s)
	}
	if s := (Money{}).String(); s != "0.00" {
		t.Fatalf("String = %q", s)
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	in := Money{Cents: 4321}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"43.21"` {
		t.Fatalf("marshal = %s", b)
	}
	var out Money
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v", out)
	}

	// Bare numbers from older snapshots are tolerated.
	var legacy Money
	if err := json.Unmarshal([]byte("12.34"), &legacy); err != nil {
		t.Fatalf("legacy unmarshal: %v", err)
	}
	if legacy.Cents != 1234 {
		t.Fatalf("legacy cents = %d", legacy.Cents)
	}
}
