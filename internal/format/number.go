package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatNumberString inserts thousand separators into a decimal integer
// string, preserving a leading minus sign.
func FormatNumberString(s string) string {
	if s == "" {
		return s
	}
	sign := ""
	if s[0] == '-' || s[0] == '+' {
		sign, s = s[:1], s[1:]
	}
	n := len(s)
	if n <= 3 {
		return sign + s
	}
	var b strings.Builder
	b.Grow(n + n/3 + len(sign))
	b.WriteString(sign)
	head := n % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatInt is FormatNumberString applied to an int.
func FormatInt(n int) string {
	return FormatNumberString(strconv.Itoa(n))
}

// FormatBytes renders a byte count with a binary unit suffix.
func FormatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

// FormatMillis renders a duration as milliseconds with three decimals, the
// precision used on the result line.
func FormatMillis(d time.Duration) string {
	return strconv.FormatFloat(Millis(d), 'f', 3, 64)
}

// Millis converts d to fractional milliseconds.
func Millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
