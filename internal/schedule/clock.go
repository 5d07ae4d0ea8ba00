package schedule

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
)

// ParseClock converts a zero-padded "HH:MM" string to minutes since
// midnight. Malformed input is rejected so stored windows always compare
// numerically.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, eris.Errorf("schedule: invalid clock %q, want HH:MM", s)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, eris.Errorf("schedule: invalid clock %q, want HH:MM", s)
		}
	}
	hh := int(s[0]-'0')*10 + int(s[1]-'0')
	mm := int(s[3]-'0')*10 + int(s[4]-'0')
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, eris.Errorf("schedule: clock %q out of range", s)
	}
	return hh*60 + mm, nil
}

// FormatClock renders minutes since midnight as zero-padded "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// minuteOfDay returns t's offset from midnight in minutes.
func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
