package invoice

import (
	"fmt"
	"regexp"
	"strconv"
)

var trailingDigits = regexp.MustCompile(`(\d+)$`)

// NextNumber returns the invoice number that follows last within a user's
// namespace: the trailing digits of last are extracted and incremented, padded
// to at least 3 digits. An empty or unparsable last starts the sequence at 1.
func NextNumber(prefix, last string) string {
	n := 1
	if m := trailingDigits.FindStringSubmatch(last); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			n = v + 1
		}
	}
	return fmt.Sprintf("%s-%03d", prefix, n)
}
