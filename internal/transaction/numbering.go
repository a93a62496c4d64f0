package transaction

import (
	"fmt"
	"strconv"
	"strings"
)

const DefaultInvoicePrefix = "SK"

// SequencePrefix is the scope an invoice sequence counts within, e.g. "SK/2025/".
func SequencePrefix(prefix string, year int) string {
	return fmt.Sprintf("%s/%d/", prefix, year)
}

func FormatInvoiceNumber(prefix string, year, seq int) string {
	return fmt.Sprintf("%s%04d", SequencePrefix(prefix, year), seq)
}

// NextSequence returns one past the numerically highest suffix among the
// invoice numbers in the prefix/year scope. Numbers outside the scope and
// unparsable suffixes are ignored, so an empty scope starts at 1.
func NextSequence(existing []string, prefix string, year int) int {
	scope := SequencePrefix(prefix, year)
	highest := 0

	for _, number := range existing {
		suffix, ok := strings.CutPrefix(number, scope)
		if !ok {
			continue
		}

		n, err := strconv.Atoi(suffix)
		if err != nil || n < 0 {
			continue
		}

		highest = max(highest, n)
	}

	return highest + 1
}
