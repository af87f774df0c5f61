package value

import (
	"fmt"
	"strings"
)

// Compare orders two values. Numerics compare numerically via decimal
// arithmetic, dates chronologically, booleans false before true, everything
// else by lexicographic comparison of the string form. Mixed numeric kinds
// (long vs. double vs. decimal) compare numerically; any other cross-type pair
// falls back to string comparison.
func Compare(a, b Value) (int, error) {
	if !a.set || !b.set {
		return 0, fmt.Errorf("cannot compare unset values")
	}
	switch {
	case a.IsNumeric() && b.IsNumeric():
		return a.d.Cmp(b.d), nil
	case a.t == TypeDate && b.t == TypeDate:
		return a.tm.Compare(b.tm), nil
	case a.t == TypeBoolean && b.t == TypeBoolean:
		switch {
		case a.b == b.b:
			return 0, nil
		case b.b:
			return -1, nil
		default:
			return 1, nil
		}
	default:
		return strings.Compare(a.Text(), b.Text()), nil
	}
}

// Like reports whether s matches the LIKE pattern, where '%' matches any
// sequence of characters, '_' matches exactly one character, and '\' escapes
// the following character.
func Like(s, pattern string) bool {
	return likeMatch([]rune(s), []rune(pattern))
}

func likeMatch(s, p []rune) bool {
	for len(p) > 0 {
		switch p[0] {
		case '%':
			// Collapse consecutive wildcards, then try every split point.
			for len(p) > 0 && p[0] == '%' {
				p = p[1:]
			}
			if len(p) == 0 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if likeMatch(s[i:], p) {
					return true
				}
			}
			return false
		case '_':
			if len(s) == 0 {
				return false
			}
			s, p = s[1:], p[1:]
		case '\\':
			if len(p) < 2 || len(s) == 0 || s[0] != p[1] {
				return false
			}
			s, p = s[1:], p[2:]
		default:
			if len(s) == 0 || s[0] != p[0] {
				return false
			}
			s, p = s[1:], p[1:]
		}
	}
	return len(s) == 0
}
