package utils

import "time"

// FormatDate renders a date in the YYYY-MM-DD form the recurring API expects.
func FormatDate(date time.Time) string {
	return date.Format("2006-01-02")
}

// FirstOfNextMonth returns the first day of the calendar month following the
// given date, regardless of the day-of-month of the input.
func FirstOfNextMonth(now time.Time) time.Time {
	year, month, _ := now.Date()
	return time.Date(year, month+1, 1, 0, 0, 0, 0, now.Location())
}

func ValidateDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}
