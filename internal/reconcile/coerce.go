package reconcile

import (
	"strconv"
	"strings"

	"examstats/pkg/contracts/domain"
)

// CoerceFlag converts one raw correctness token to a binary value under
// the table's marking scheme. The returned coerced flag is true when
// the token was not an exact token of the scheme and the documented
// fallback rule decided the value; callers surface those as
// data-quality warnings rather than dropping them.
//
// Scheme rules:
//
//   - binary: "1" is correct and "0" or an empty cell is incorrect.
//     Anything else falls back to the truthy rule: a non-empty token
//     that does not parse as numeric zero counts as correct.
//   - correct_mark: the school-system export convention. "." marks the
//     correct answer; a choice digit records the incorrect answer the
//     student picked; an empty cell or "-" is a non-response. "O"/"X"
//     style marks are accepted as exact. Any other token is coerced
//     to incorrect.
func CoerceFlag(raw string, scheme domain.MarkScheme) (value int, coerced bool) {
	token := strings.TrimSpace(raw)

	switch scheme {
	case domain.SchemeCorrectMark:
		switch token {
		case ".", "O", "o", "○":
			return 1, false
		case "", "-", "X", "x", "×":
			return 0, false
		}
		if len(token) == 1 && token[0] >= '1' && token[0] <= '9' {
			return 0, false
		}
		return 0, true

	default: // domain.SchemeBinary
		switch token {
		case "1":
			return 1, false
		case "0", "":
			return 0, false
		}
		if f, err := strconv.ParseFloat(token, 64); err == nil {
			if f == 0 {
				return 0, true
			}
			return 1, true
		}
		return 1, true
	}
}
