package selectexpr

import (
	"fmt"
	"strings"
	"unicode"
)

// Validate rejects selection expressions that reach outside plain
// comparisons over the row fields. Empty expressions are valid and
// select everything.
func Validate(src string) error {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil
	}

	illegalChars := []rune{'{', '}', '[', ']', ';', ':', '?', '@', '#', '$', '\\'}
	for _, ch := range illegalChars {
		if strings.ContainsRune(src, ch) {
			return fmt.Errorf("illegal character %q", ch)
		}
	}

	if strings.Contains(src, ".") {
		return fmt.Errorf("dot access is not allowed")
	}

	illegalOps := []string{"+", "-", "*", "/", "%"}
	for _, op := range illegalOps {
		if strings.Contains(src, op) {
			return fmt.Errorf("arithmetic operator %q is not allowed", op)
		}
	}

	for i := 0; i < len(src)-1; i++ {
		if src[i] == '(' {
			j := i - 1
			for j >= 0 && unicode.IsSpace(rune(src[j])) {
				j--
			}
			if j >= 0 && (unicode.IsLetter(rune(src[j])) || src[j] == '_') {
				k := j
				for k >= 0 && (unicode.IsLetter(rune(src[k])) || unicode.IsDigit(rune(src[k])) || src[k] == '_') {
					k--
				}
				ident := strings.TrimSpace(src[k+1 : j+1])
				if ident != "" {
					return fmt.Errorf("function calls are not allowed (found %q(...))", ident)
				}
			}
		}
	}

	return nil
}
