package weather

import (
	"fmt"
	"testing"
)

func TestEncodePlaceAlnumPassThrough(t *testing.T) {
	for _, in := range []string{"Prague", "brno", "Zone51", "0123456789"} {
		if got := encodePlace(in); got != in {
			t.Errorf("encodePlace(%q) = %q; want unchanged", in, got)
		}
	}
}

func TestEncodePlaceIdempotentOnAlnumRuns(t *testing.T) {
	in := "Karlovy0Vary9"
	once := encodePlace(in)
	twice := encodePlace(once)
	if once != twice {
		t.Errorf("encoding not idempotent on alnum input: %q vs %q", once, twice)
	}
}

func TestEncodePlaceSpaces(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"New York", "New%20York"},
		{"Rio de Janeiro", "Rio%20de%20Janeiro"},
		{"  ", "%20%20"},
	}
	for _, tt := range tests {
		if got := encodePlace(tt.in); got != tt.want {
			t.Errorf("encodePlace(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

// Every byte outside [A-Za-z0-9] must become exactly '%' plus two uppercase
// hex digits of the byte value.
func TestEncodePlaceNonAlnumBytes(t *testing.T) {
	for b := 0; b < 256; b++ {
		c := byte(b)
		if isAlnum(c) {
			continue
		}
		got := encodePlace(string([]byte{c}))
		want := fmt.Sprintf("%%%02X", c)
		if len(got) != 3 {
			t.Fatalf("encodePlace(%#x) = %q; want 3 characters", c, got)
		}
		if got != want {
			t.Errorf("encodePlace(%#x) = %q; want %q", c, got, want)
		}
	}
}

func TestEncodePlaceMultibyte(t *testing.T) {
	// "Ž" is 0xC5 0xBD in UTF-8; each byte is encoded separately.
	got := encodePlace("Žatec")
	if got != "%C5%BDatec" {
		t.Errorf("encodePlace(Žatec) = %q; want %%C5%%BDatec", got)
	}
}
