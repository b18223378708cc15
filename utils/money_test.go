package utils

import "testing"

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{10, "10.00"},
		{25.5, "25.50"},
		{9.999, "10.00"},
		{0.1, "0.10"},
		{1234.567, "1234.57"},
	}

	for _, tt := range tests {
		if got := FormatAmount(tt.in); got != tt.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRound(t *testing.T) {
	if got := Round(10.006); got != 10.01 {
		t.Errorf("Round(10.006) = %v, want 10.01", got)
	}
	if got := Round(10.004); got != 10.0 {
		t.Errorf("Round(10.004) = %v, want 10", got)
	}
}
