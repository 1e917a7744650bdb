package roster

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// diagnosticHeaders is how many header texts a DateColumnError carries.
const diagnosticHeaders = 10

// ResolveColumn returns the index of the first header cell whose digits
// spell day, either zero-padded ("07") or plain ("7").
func ResolveColumn(header Row, day int) (int, error) {
	padded := fmt.Sprintf("%02d", day)
	plain := strconv.Itoa(day)
	for i, cell := range header {
		digits := digitsOnly(cell)
		if digits == padded || digits == plain {
			return i, nil
		}
	}
	return -1, &DateColumnError{Day: day, Headers: append([]string(nil), header[:min(len(header), diagnosticHeaders)]...)}
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
