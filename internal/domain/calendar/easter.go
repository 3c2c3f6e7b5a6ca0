package calendar

import "time"

// EasterSunday returns the Gregorian date of Easter Sunday for the given
// year, computed with the anonymous Gaussian congruence method. Integer
// arithmetic only; valid for any Gregorian year.
func EasterSunday(year int) time.Time {
	g := year % 19
	c := year / 100
	h := (c - c/4 - (8*c+13)/25 + 19*g + 15) % 30
	i := h - (h/28)*(1-(29/(h+1))*((21-g)/11))
	j := (year + year/4 + i + 2 - c + c/4) % 7
	l := i - j
	month := 3 + (l+40)/44
	day := l + 28 - 31*(month/4)
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
