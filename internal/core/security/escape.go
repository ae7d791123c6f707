package security

import "strings"

// EscapeArgument backslash-escapes every dangerous character in arg.
//
// The scan walks arg one byte at a time with a single byte of lookahead:
//
//   - `\` followed by a dangerous character other than `\` is already
//     escaped and copied as is
//   - `\\` is copied as a canonical escaped backslash
//   - a lone `\` becomes `\\`
//   - any other dangerous character c becomes `\c`
//
// Every output token is either `\` plus a dangerous character or a plain
// safe character, so EscapeArgument(EscapeArgument(s)) == EscapeArgument(s).
// All dangerous characters are ASCII, so a byte scan never splits a
// multi-byte rune.
func EscapeArgument(arg string) string {
	if !ContainsDangerousChars(arg) {
		return arg
	}

	var b strings.Builder
	b.Grow(len(arg) + len(arg)/2)

	for i := 0; i < len(arg); i++ {
		c := arg[i]
		switch {
		case c == '\\':
			if i+1 < len(arg) && isDangerous(arg[i+1]) {
				b.WriteByte('\\')
				b.WriteByte(arg[i+1])
				i++
				continue
			}
			b.WriteString(`\\`)
		case isDangerous(c):
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
