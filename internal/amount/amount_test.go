package amount

import "testing"

func TestNormalize_Suffixes(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1.5k", 1500},
		{"2cr", 20000000},
		{"3h", 300},
		{"1l", 100000},
		{"2.5m", 2500000},
		{"1b", 1000000000},
		{"1.5K", 1500},
		{"2CR", 20000000},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Normalize(tc.in)
			if err != nil {
				t.Fatalf("Normalize(%q) returned error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("Normalize(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalize_PlainNumbers(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1000", 1000},
		{"99.99", 99.99},
		{"-250", -250},
		{"$1,234.50", 1234.5},
		{"₹5000", 5000},
		{" 42 ", 42},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Normalize(tc.in)
			if err != nil {
				t.Fatalf("Normalize(%q) returned error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("Normalize(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalize_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "12abc34", "k", "$,", "1.2.3"} {
		t.Run(in, func(t *testing.T) {
			if _, err := Normalize(in); err == nil {
				t.Errorf("Normalize(%q) expected error, got nil", in)
			}
		})
	}
}

func TestNormalize_SuffixWithCurrencySymbol(t *testing.T) {
	got, err := Normalize("$1.5k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1500 {
		t.Errorf("Normalize(\"$1.5k\") = %v, want 1500", got)
	}
}
