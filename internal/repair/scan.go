package repair

// The passes below are single left-to-right scans that track whether the
// cursor is inside a string literal. Nothing inside a string is rewritten.

// QuoteKeys wraps bare identifier keys in quotes. A key is an identifier
// followed by ':' and preceded by '{' or ','. A key that directly follows a
// completed value is a missing-comma case: it is quoted and the comma is
// inserted right after that value.
func QuoteKeys(text string) string {
	out := make([]byte, 0, len(text)+16)
	lastSig := -1 // index in out of the last non-space byte
	bareWord := false
	inString, escaped := false, false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			out = append(out, c)
			lastSig = len(out) - 1
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		if isSpace(c) {
			out = append(out, c)
			continue
		}

		if !isIdentStart(c) {
			if c == '"' {
				inString = true
			}
			out = append(out, c)
			lastSig = len(out) - 1
			bareWord = false
			continue
		}

		j := i + 1
		for j < len(text) && isIdentPart(text[j]) {
			j++
		}
		ident := text[i:j]
		k := skipSpace(text, j)
		isKey := k < len(text) && text[k] == ':'

		var prev byte
		if lastSig >= 0 {
			prev = out[lastSig]
		}

		switch {
		case isKey && (prev == '{' || prev == ','):
			out = append(out, '"')
			out = append(out, ident...)
			out = append(out, '"')
			bareWord = false
		case isKey && lastSig >= 0 && (bareWord || endsValue(prev)):
			out = insertAt(out, lastSig+1, ',')
			out = append(out, '"')
			out = append(out, ident...)
			out = append(out, '"')
			bareWord = false
		default:
			out = append(out, ident...)
			bareWord = true
		}
		lastSig = len(out) - 1
		i = j - 1
	}
	return string(out)
}

// InsertStringCommas adds the comma missing between a closing quote and the next opening quote
func InsertStringCommas(text string) string {
	out := make([]byte, 0, len(text)+8)
	inString, escaped := false, false

	for i := 0; i < len(text); i++ {
		c := text[i]
		out = append(out, c)
		if !inString {
			if c == '"' {
				inString = true
			}
			continue
		}
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inString = false
			if k := skipSpace(text, i+1); k < len(text) && text[k] == '"' {
				out = append(out, ',')
			}
		}
	}
	return string(out)
}

// InsertObjectCommas adds the comma missing between adjacent object literals
func InsertObjectCommas(text string) string {
	return insertCommaAfter(text, '}', "{")
}

// InsertArrayCommas adds the comma missing after ']' when another element follows
func InsertArrayCommas(text string) string {
	return insertCommaAfter(text, ']', "{[")
}

func insertCommaAfter(text string, closer byte, openers string) string {
	out := make([]byte, 0, len(text)+8)
	inString, escaped := false, false

	for i := 0; i < len(text); i++ {
		c := text[i]
		out = append(out, c)
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case closer:
			k := skipSpace(text, i+1)
			if k < len(text) && containsByte(openers, text[k]) {
				out = append(out, ',')
			}
		}
	}
	return string(out)
}

func insertAt(b []byte, pos int, c byte) []byte {
	b = append(b, 0)
	copy(b[pos+1:], b[pos:])
	b[pos] = c
	return b
}

func skipSpace(text string, i int) int {
	for i < len(text) && isSpace(text[i]) {
		i++
	}
	return i
}

func endsValue(c byte) bool {
	return c == '"' || c == '}' || c == ']' || (c >= '0' && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func containsByte(s string, c byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return true
		}
	}
	return false
}
