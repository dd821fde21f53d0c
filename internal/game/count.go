package game

import "strings"

// ParseCount turns free-form text into a marker count. The leading integer of
// the text is used (surrounding garbage is ignored); text without one, and any
// value below 1, yields 1.
func ParseCount(text string) int {
	s := strings.TrimLeft(text, " \t\n\r\v\f")

	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	n := 0
	digits := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		digits++
		if n > maxCount {
			continue // keep consuming digits, value is already clamped
		}
		n = n*10 + int(r-'0')
	}

	if digits == 0 || neg {
		return 1
	}
	return clampCount(n)
}

// maxCount bounds a single game. Beyond this the play area is solid markers.
const maxCount = 10000

func clampCount(n int) int {
	if n < 1 {
		return 1
	}
	if n > maxCount {
		return maxCount
	}
	return n
}
