package util

import (
	"fmt"
	"strconv"
	"time"
)

// FormatNumber groups the digits of n in thousands, e.g. 12,345
func FormatNumber(n int) string {
	s := strconv.Itoa(n)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}

	var result []byte
	for i, digit := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, digit)
	}
	return sign + string(result)
}

// FormatMillis renders a duration in milliseconds with three decimals
func FormatMillis(d time.Duration) string {
	return fmt.Sprintf("%.3f ms", float64(d)/float64(time.Millisecond))
}

// FormatOffset renders t relative to t0 as seconds.milliseconds
func FormatOffset(t, t0 time.Time) string {
	d := t.Sub(t0)
	return fmt.Sprintf("%d.%03d", int64(d/time.Second), int64(d%time.Second/time.Millisecond))
}
