package xml

// MarkupToken is the sealed union the tokenizer produces once '<' has
// already been consumed by the caller.
type MarkupToken interface {
	isMarkupToken()
}

type StartToken struct {
	Name QName
}

type EndToken struct {
	Name QName
}

type PIToken struct {
	Target string
}

type CommentToken struct {
	Text string
}

// SectionToken covers both DOCTYPE-subset sections ("<![INCLUDE[",
// "<![IGNORE[") and, when Name == "CDATA", a CDATA section opener.
type SectionToken struct {
	Name string
}

// DeclToken covers "<!NAME" declarations other than comments/sections:
// DOCTYPE, ELEMENT, ATTLIST, ENTITY, NOTATION.
type DeclToken struct {
	Name string
}

func (StartToken) isMarkupToken()   {}
func (EndToken) isMarkupToken()     {}
func (PIToken) isMarkupToken()      {}
func (CommentToken) isMarkupToken() {}
func (SectionToken) isMarkupToken() {}
func (DeclToken) isMarkupToken()    {}

// readMarkupToken classifies the next lexeme after '<'. It is the sole
// entry point of the tokenizer (component 3 of the design); callers that
// need the PI body, comment contents, or the element's attributes continue
// reading directly off the CharReader afterwards.
func readMarkupToken(cr *CharReader) (MarkupToken, error) {
	r, ok, err := cr.Peek()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newSyntaxError(cr.Position(), "43", "unexpected end of input after '<'")
	}

	switch r {
	case '/':
		if _, err := cr.Next(); err != nil {
			return nil, err
		}
		name, err := readQName(cr)
		if err != nil {
			return nil, err
		}
		if _, err := space(cr); err != nil {
			return nil, err
		}
		if err := expectLiteral(cr, ">", "42"); err != nil {
			return nil, err
		}
		return EndToken{Name: name}, nil

	case '?':
		if _, err := cr.Next(); err != nil {
			return nil, err
		}
		target, err := readNCName(cr)
		if err != nil {
			return nil, err
		}
		return PIToken{Target: target}, nil

	case '!':
		if _, err := cr.Next(); err != nil {
			return nil, err
		}
		return readBangToken(cr)

	default:
		name, err := readQName(cr)
		if err != nil {
			return nil, err
		}
		return StartToken{Name: name}, nil
	}
}

// readBangToken classifies the token after "<!": a comment, a DOCTYPE
// internal-subset section, or a plain declaration keyword.
func readBangToken(cr *CharReader) (MarkupToken, error) {
	r, ok, err := cr.Peek()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newSyntaxError(cr.Position(), "15", "unexpected end of input after '<!'")
	}

	if r == '-' {
		if err := expectLiteral(cr, "--", "15"); err != nil {
			return nil, err
		}
		text, err := readCommentBody(cr)
		if err != nil {
			return nil, err
		}
		return CommentToken{Text: text}, nil
	}

	if r == '[' {
		if _, err := cr.Next(); err != nil {
			return nil, err
		}
		name, err := readSectionName(cr)
		if err != nil {
			return nil, err
		}
		return SectionToken{Name: name}, nil
	}

	name, err := readNCName(cr)
	if err != nil {
		return nil, err
	}
	return DeclToken{Name: name}, nil
}

// readCommentBody reads comment content up to (but not including) "-->",
// forbidding "--" from appearing inside per production [15].
func readCommentBody(cr *CharReader) (string, error) {
	var out []rune
	for {
		r, err := cr.Next()
		if err != nil {
			return "", err
		}
		if r == '-' {
			r2, ok, err := cr.Peek()
			if err != nil {
				return "", err
			}
			if ok && r2 == '-' {
				if _, err := cr.Next(); err != nil {
					return "", err
				}
				if err := expectLiteral(cr, ">", "15"); err != nil {
					return "", err
				}
				return string(out), nil
			}
		}
		out = append(out, r)
	}
}

// readSectionName reads the name of a "<![...[" section: either a
// parameter-entity reference "%name;" or a bare NCName (CDATA, INCLUDE,
// IGNORE), followed by '['.
func readSectionName(cr *CharReader) (string, error) {
	if _, err := space(cr); err != nil {
		return "", err
	}
	r, ok, err := cr.Peek()
	if err != nil {
		return "", err
	}
	var name string
	if ok && r == '%' {
		if _, err := cr.Next(); err != nil {
			return "", err
		}
		peName, err := readEntityRefName(cr)
		if err != nil {
			return "", err
		}
		name = "%" + peName
	} else {
		name, err = readNCName(cr)
		if err != nil {
			return "", err
		}
	}
	if _, err := space(cr); err != nil {
		return "", err
	}
	if err := expectLiteral(cr, "[", "61"); err != nil {
		return "", err
	}
	return name, nil
}
