package ordering

import (
	"fmt"
	"regexp"
)

// Local order codes cycle through six letter blocks of 100 numbers each:
// A-001..A-100, B-001..B-100, ... F-100, then back to A-001.
const localCodeLetters = 6

var localCodePattern = regexp.MustCompile(`^[A-F]-\d{3}$`)

// FormatLocalOrderCode derives the human-readable code for the n-th locally
// created order (n >= 1). Remote codes are opaque backend strings and never
// pass through here.
func FormatLocalOrderCode(n uint64) string {
	if n < 1 {
		n = 1
	}
	letter := rune('A' + ((n - 1) / 100 % localCodeLetters))
	number := (n-1)%100 + 1
	return fmt.Sprintf("%c-%03d", letter, number)
}

// IsLocalOrderCode reports whether code matches the local code format.
func IsLocalOrderCode(code string) bool {
	return localCodePattern.MatchString(code)
}
