package xl

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// checkText rejects text that cannot be represented in an XML 1.0 document:
// invalid UTF-8, C0 controls other than tab, newline and carriage return,
// surrogates, and U+FFFE/U+FFFF.
func checkText(what, s string) error {
	if err := textError(s); err != nil {
		return invalidArg("%s %v", what, err)
	}
	return nil
}

func textError(s string) error {
	for i, r := range s {
		if r == utf8.RuneError {
			if _, n := utf8.DecodeRuneInString(s[i:]); n == 1 {
				return fmt.Errorf("has invalid UTF-8 at byte %d", i)
			}
		}
		if !isXMLChar(r) {
			return fmt.Errorf("has character %U at byte %d, not allowed in XML", r, i)
		}
	}
	return nil
}

func isXMLChar(r rune) bool {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return true
	case r < 0x20:
		return false
	case r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= utf8.MaxRune:
		return true
	}
	return false
}

// CleanText replaces everything checkText would reject with U+FFFD, for
// input of unknown quality such as CSV files.
func CleanText(s string) string {
	if textError(s) == nil {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		if r == utf8.RuneError {
			if _, n := utf8.DecodeRuneInString(s[i:]); n == 1 {
				b.WriteRune(utf8.RuneError)
				continue
			}
		}
		if !isXMLChar(r) {
			r = utf8.RuneError
		}
		b.WriteRune(r)
	}
	return b.String()
}
