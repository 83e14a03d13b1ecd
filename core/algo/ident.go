// Package algo holds the pure algorithms behind offline record creation.
package algo

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/huangsam/bizcache/schema"
)

// codeWidth is the minimum number of digits in a synthesized code.
const codeWidth = 4

// NextCode returns the next human-readable code for prefix, e.g. "WH-0004".
// It scans the codes already in records that match PREFIX-<digits>, takes the
// highest suffix (0 when none match) and adds one. Gaps left by deletions are
// never reused. An empty prefix yields "".
func NextCode(prefix string, records []schema.Record) string {
	if prefix == "" {
		return ""
	}
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `-(\d+)$`)

	highest := 0
	for _, r := range records {
		m := pattern.FindStringSubmatch(r.Code())
		if m == nil {
			continue
		}
		// suffixes with no successor are ignored
		n, err := strconv.Atoi(m[1])
		if err != nil || n == math.MaxInt {
			continue
		}
		highest = max(highest, n)
	}
	return FormatCode(prefix, highest+1)
}

// FormatCode renders prefix and n as PREFIX-NNNN. Numbers wider than four
// digits are kept whole.
func FormatCode(prefix string, n int) string {
	return fmt.Sprintf("%s-%0*d", prefix, codeWidth, n)
}
