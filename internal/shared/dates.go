package shared

import (
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the DD-MM-YYYY format donations are recorded in.
const DateLayout = "02-01-2006"

// ValidDate reports whether s looks like DD-MM-YYYY with a day in 1-31 and a month in 1-12.
//
// Day/month combinations are not cross-checked (31-02-2024 passes).
func ValidDate(s string) bool {
	_, _, _, err := splitDate(s)
	return err == nil
}

// ParseDate parses a DD-MM-YYYY string for ordering purposes.
//
// Dates that pass [ValidDate] but do not exist on the calendar are normalized by [time.Date].
func ParseDate(s string) (time.Time, error) {
	day, month, year, err := splitDate(s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

func splitDate(s string) (day, month, year int, err error) {
	if len(s) != 10 || s[2] != '-' || s[5] != '-' {
		return 0, 0, 0, fmt.Errorf("%w: %q is not DD-MM-YYYY", ErrInvalidDate, s)
	}
	if day, err = strconv.Atoi(s[0:2]); err != nil {
		return 0, 0, 0, fmt.Errorf("%w: bad day in %q", ErrInvalidDate, s)
	}
	if month, err = strconv.Atoi(s[3:5]); err != nil {
		return 0, 0, 0, fmt.Errorf("%w: bad month in %q", ErrInvalidDate, s)
	}
	if year, err = strconv.Atoi(s[6:10]); err != nil {
		return 0, 0, 0, fmt.Errorf("%w: bad year in %q", ErrInvalidDate, s)
	}
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return 0, 0, 0, fmt.Errorf("%w: %q out of range", ErrInvalidDate, s)
	}
	return day, month, year, nil
}
