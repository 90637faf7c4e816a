package envjs

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Quote returns s as a single-quoted JavaScript string literal. Bytes are
// preserved; only characters that would end the literal, break the line or
// close an enclosing <script> element are escaped.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '<':
			b.WriteString(`\x3C`)
		case 0xE2:
			// U+2028 and U+2029 are line terminators inside JS source.
			if strings.HasPrefix(s[i:], "\u2028") {
				b.WriteString(`\u2028`)
				i += 2
			} else if strings.HasPrefix(s[i:], "\u2029") {
				b.WriteString(`\u2029`)
				i += 2
			} else {
				b.WriteByte(c)
			}
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// unquote reads a quoted JS string literal starting at s[i] and returns its
// value and the index just past the closing quote.
func unquote(s string, i int) (string, int, error) {
	if i >= len(s) || (s[i] != '\'' && s[i] != '"') {
		return "", 0, fmt.Errorf("%w: expected string literal", ErrMalformed)
	}
	q := s[i]
	var b strings.Builder
	for j := i + 1; j < len(s); j++ {
		c := s[j]
		if c == q {
			return b.String(), j + 1, nil
		}
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		j++
		if j >= len(s) {
			break
		}
		switch e := s[j]; e {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case 'x':
			r, err := hexRune(s, j+1, 2)
			if err != nil {
				return "", 0, err
			}
			b.WriteRune(r)
			j += 2
		case 'u':
			r, err := hexRune(s, j+1, 4)
			if err != nil {
				return "", 0, err
			}
			j += 4
			if utf16.IsSurrogate(r) {
				// Non-BMP characters arrive as a \uD8xx\uDCxx pair.
				lo := utf8.RuneError
				if strings.HasPrefix(s[j+1:], `\u`) {
					if lo, err = hexRune(s, j+3, 4); err != nil {
						return "", 0, err
					}
				}
				r = utf16.DecodeRune(r, lo)
				if r == utf8.RuneError {
					return "", 0, fmt.Errorf("%w: unpaired surrogate", ErrMalformed)
				}
				j += 6
			}
			b.WriteRune(r)
		default:
			b.WriteByte(e)
		}
	}
	return "", 0, fmt.Errorf("%w: unterminated string literal", ErrMalformed)
}

func hexRune(s string, i, n int) (rune, error) {
	if i+n > len(s) {
		return utf8.RuneError, fmt.Errorf("%w: short escape", ErrMalformed)
	}
	v, err := strconv.ParseUint(s[i:i+n], 16, 32)
	if err != nil {
		return utf8.RuneError, fmt.Errorf("%w: bad escape %q", ErrMalformed, s[i:i+n])
	}
	return rune(v), nil
}
