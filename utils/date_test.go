package utils

import (
	"testing"
	"time"
)

func TestFirstOfNextMonth(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2026, 8, 15, 12, 30, 0, 0, time.UTC), "2026-09-01"},
		{time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), "2026-09-01"},
		{time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC), "2026-02-01"},
		{time.Date(2026, 12, 31, 12, 0, 0, 0, time.UTC), "2027-01-01"},
	}

	for _, tt := range tests {
		if got := FormatDate(FirstOfNextMonth(tt.in)); got != tt.want {
			t.Errorf("FirstOfNextMonth(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestValidateDate(t *testing.T) {
	if !ValidateDate("2026-09-01") {
		t.Error("well-formed date rejected")
	}
	if ValidateDate("09/01/2026") {
		t.Error("slash-format date accepted")
	}
	if ValidateDate("2026-13-01") {
		t.Error("month 13 accepted")
	}
}
