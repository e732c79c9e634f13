package xml

import (
	"strconv"
	"strings"
	"unicode"
)

// isWhitespace matches the XML S production: #x20 | #x9 | #xD | #xA.
func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

// space consumes zero or more whitespace characters and reports whether any
// were consumed.
func space(cr *CharReader) (bool, error) {
	any := false
	for {
		r, ok, err := cr.Peek()
		if err != nil {
			return any, err
		}
		if !ok || !isWhitespace(r) {
			return any, nil
		}
		if _, err := cr.Next(); err != nil {
			return any, err
		}
		any = true
	}
}

// space1 requires at least one whitespace character, raising Syntax(prod)
// with msg otherwise.
func space1(cr *CharReader, prod, msg string) error {
	ok, err := space(cr)
	if err != nil {
		return err
	}
	if !ok {
		return newSyntaxError(cr.Position(), prod, msg)
	}
	return nil
}

// isNCNameStartChar matches NCNameStartChar: a Unicode letter or '_'.
func isNCNameStartChar(r rune) bool {
	if r == '_' {
		return true
	}
	return unicode.IsLetter(r)
}

// isNCNameChar matches NCNameChar: NCNameStartChar plus combining marks,
// modifier letters, decimal digits, '.', '-' and middle dot.
func isNCNameChar(r rune) bool {
	if isNCNameStartChar(r) {
		return true
	}
	switch r {
	case '.', '-', 0xB7:
		return true
	}
	if unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r) || unicode.Is(unicode.Me, r) {
		return true
	}
	if unicode.Is(unicode.Lm, r) {
		return true
	}
	if unicode.Is(unicode.Nd, r) {
		return true
	}
	return false
}

// readNCName reads a single NCName (no colon allowed).
func readNCName(cr *CharReader) (string, error) {
	r, ok, err := cr.Peek()
	if err != nil {
		return "", err
	}
	if !ok || !isNCNameStartChar(r) {
		return "", newSyntaxError(cr.Position(), "5", "expected a name")
	}
	var b strings.Builder
	for {
		r, ok, err := cr.Peek()
		if err != nil {
			return "", err
		}
		if !ok || !isNCNameChar(r) {
			break
		}
		b.WriteRune(r)
		if _, err := cr.Next(); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

// readQName reads QName ::= NCName (':' NCName)?.
func readQName(cr *CharReader) (QName, error) {
	local, err := readNCName(cr)
	if err != nil {
		return QName{}, err
	}
	r, ok, err := cr.Peek()
	if err != nil {
		return QName{}, err
	}
	if ok && r == ':' {
		if _, err := cr.Next(); err != nil {
			return QName{}, err
		}
		second, err := readNCName(cr)
		if err != nil {
			return QName{}, err
		}
		return QName{Prefix: local, Local: second}, nil
	}
	return QName{Local: local}, nil
}

// readQuoted reads a matched '"…"' or '\'…\'' literal and returns its raw
// (unescaped) content.
func readQuoted(cr *CharReader) (string, rune, error) {
	delim, ok, err := cr.Peek()
	if err != nil {
		return "", 0, err
	}
	if !ok || (delim != '"' && delim != '\'') {
		return "", 0, newSyntaxError(cr.Position(), "10", "expected a quoted literal")
	}
	if _, err := cr.Next(); err != nil {
		return "", 0, err
	}
	var b strings.Builder
	for {
		r, err := cr.Next()
		if err != nil {
			return "", 0, err
		}
		if r == delim {
			return b.String(), delim, nil
		}
		b.WriteRune(r)
	}
}

const pubidChars = " \r\na-zA-Z0-9-'()+,./:=?;!*#@$_%"

func isPubidChar(r rune, excludeApos bool) bool {
	if excludeApos && r == '\'' {
		return false
	}
	switch r {
	case ' ', '\r', '\n', '-', '\'', '(', ')', '+', ',', '.', '/', ':', '=', '?', ';', '!', '*', '#', '@', '$', '_', '%':
		return true
	}
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// readPubidLiteral reads PubidLiteral, restricting its content to the
// PubidChar alphabet per production [12].
func readPubidLiteral(cr *CharReader) (string, error) {
	delim, ok, err := cr.Peek()
	if err != nil {
		return "", err
	}
	if !ok || (delim != '"' && delim != '\'') {
		return "", newSyntaxError(cr.Position(), "12", "expected a public identifier literal")
	}
	if _, err := cr.Next(); err != nil {
		return "", err
	}
	excludeApos := delim == '\''
	var b strings.Builder
	for {
		r, err := cr.Next()
		if err != nil {
			return "", err
		}
		if r == delim {
			return b.String(), nil
		}
		if !isPubidChar(r, excludeApos) {
			return "", newSyntaxErrorf(cr.Position(), "12", "invalid character in public identifier: %q", r)
		}
		b.WriteRune(r)
	}
}

// readNumericRef reads the body of a numeric character reference after the
// caller has already consumed "&#": decimal digits, or "x" + hex digits,
// terminated by ';'. Does not consume the leading "&#".
func readNumericRef(cr *CharReader) (rune, error) {
	startPos := cr.Position()
	r, ok, err := cr.Peek()
	if err != nil {
		return 0, err
	}
	hex := false
	if ok && (r == 'x' || r == 'X') {
		hex = true
		if _, err := cr.Next(); err != nil {
			return 0, err
		}
	}
	var digits strings.Builder
	for {
		r, ok, err := cr.Peek()
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, newSyntaxError(cr.Position(), "66", "unterminated character reference")
		}
		if r == ';' {
			if _, err := cr.Next(); err != nil {
				return 0, err
			}
			break
		}
		if hex {
			if !isHexDigit(r) {
				return 0, newSyntaxErrorf(cr.Position(), "66", "invalid hex digit in character reference: %q", r)
			}
		} else if r < '0' || r > '9' {
			return 0, newSyntaxErrorf(cr.Position(), "66", "invalid digit in character reference: %q", r)
		}
		digits.WriteRune(r)
		if _, err := cr.Next(); err != nil {
			return 0, err
		}
	}
	if digits.Len() == 0 {
		return 0, newSyntaxError(startPos, "66", "empty character reference")
	}
	base := 10
	if hex {
		base = 16
	}
	n, err := strconv.ParseUint(digits.String(), base, 32)
	if err != nil {
		return 0, newSyntaxErrorf(startPos, "66", "character reference out of range: %v", err)
	}
	r = rune(n)
	if !isValidChar(r, cr.isXML11) {
		return 0, newSyntaxErrorf(startPos, "66", "character reference U+%04X denotes a disallowed character", r)
	}
	return r, nil
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// readEntityRefName reads NCName ';' after the caller has consumed the
// leading '&' of a named entity reference.
func readEntityRefName(cr *CharReader) (string, error) {
	name, err := readNCName(cr)
	if err != nil {
		return "", err
	}
	r, err := cr.Next()
	if err != nil {
		return "", err
	}
	if r != ';' {
		return "", newSyntaxErrorf(cr.Position(), "68", "expected ';' to terminate entity reference, got %q", r)
	}
	return name, nil
}

// peekIsNCNameStart reports whether the reader's next character could begin
// an NCName, without consuming input or failing at EOF.
func peekIsNCNameStart(cr *CharReader) (bool, error) {
	r, ok, err := cr.Peek()
	if err != nil || !ok {
		return false, err
	}
	return isNCNameStartChar(r), nil
}

// expectLiteral consumes exactly the given ASCII literal or fails Syntax(prod).
func expectLiteral(cr *CharReader, lit, prod string) error {
	for _, want := range lit {
		got, err := cr.Next()
		if err != nil {
			return err
		}
		if got != want {
			return newSyntaxErrorf(cr.Position(), prod, "expected %q", lit)
		}
	}
	return nil
}
