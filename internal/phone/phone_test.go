package phone

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0771234567", "94771234567"},
		{"+94771234567", "94771234567"},
		{"94771234567", "94771234567"},
		{"+94 77 123-4567", "94771234567"},
		{"771234567", "94771234567"},
		{"(077) 123 4567", "94771234567"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"0771234567", "+94771234567", "94771234567", "123", "0005"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestLocalForm(t *testing.T) {
	if got := LocalForm("94771234567"); got != "0771234567" {
		t.Errorf("LocalForm = %q, want 0771234567", got)
	}
}

func TestSignificantDigits(t *testing.T) {
	if got := SignificantDigits("94771234567"); got != "771234567" {
		t.Errorf("SignificantDigits = %q, want 771234567", got)
	}
}
