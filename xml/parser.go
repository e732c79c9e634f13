package xml

import (
	"fmt"
	"io"
	"strings"
)

// parserState tracks the coarse region of the document the reader is in,
// mirroring the XML grammar's own Prolog/element/Misc* structure.
type parserState int

const (
	stateProlog0 parserState = iota // nothing consumed yet; XMLDecl may still appear
	stateProlog1                    // past XMLDecl (or lack of one); DOCTYPE may still appear
	stateProlog2                    // past DOCTYPE; only the document element may appear
	stateBody                       // inside the document element
	statePostlog                    // document element closed; only Misc* remains
	stateDone                       // EndDocument has been delivered
)

type miscMode int

const (
	miscBeforeDoctype miscMode = iota
	miscAfterDoctype
	miscPostlog
)

type resumeKind int

const (
	resumeNone resumeKind = iota
	resumeAttrs
	resumeAttrValue
)

// Parser is the event-based pull parser. Construct with NewParser or
// NewPartialParser and drive it by calling Next in a loop until it returns
// io.EOF. A partial parser suspends at end-of-input inside a start tag or
// element body instead of failing, returning one of the Expect* events;
// feed it more input with Feed and keep calling Next to resume.
type Parser struct {
	cr      *CharReader
	state   parserState
	level   int
	isXml11 bool
	partial bool

	startDocSent bool
	pending      []XmlEvent

	generalEntities map[string]string

	resume         resumeKind
	resumeTagName  QName
	resumeTagPos   Position
	resumeAttrs    []Attr
	resumeAttrName QName
	resumeDelim    rune
	resumeChunks   []XmlTexty
	resumeWsOK     bool
}

// Option configures a Parser at construction time.
type Option func(*Parser)

// WithXML11Hint seeds the parser's character-validity range before any
// input is read, for callers that already know (out of band) that the
// document is XML 1.1. An "<?xml version="1.1"?>" declaration overrides
// this once seen.
func WithXML11Hint(v bool) Option {
	return func(p *Parser) {
		p.isXml11 = v
		p.cr.SetXML11(v)
	}
}

// NewParser constructs a pull parser over r.
func NewParser(r io.Reader, opts ...Option) *Parser {
	p := &Parser{cr: NewCharReader(r), state: stateProlog0}
	for _, o := range opts {
		o(p)
	}
	return p
}

// NewPartialParser constructs a pull parser that suspends instead of
// failing when it runs out of input mid-construct. Call Feed to supply
// more input and Finish once no more input is coming.
func NewPartialParser(r io.Reader, opts ...Option) *Parser {
	p := NewParser(r, opts...)
	p.partial = true
	return p
}

// Feed appends more input for a partial parser to resume into.
func (p *Parser) Feed(r io.Reader) { p.cr.Feed(r) }

// Finish disables partial-parsing suspension: from this call on,
// end-of-input is treated as final, so a construct left incomplete raises
// the ordinary syntax error instead of an Expect* event.
func (p *Parser) Finish() { p.partial = false }

// GeneralEntities returns the internally-declared general entities seen so
// far in a DOCTYPE internal subset, for use by the reference resolver.
func (p *Parser) GeneralEntities() map[string]string { return p.generalEntities }

// Position reports the reader's current line/column.
func (p *Parser) Position() Position { return p.cr.Position() }

// Next produces the next event. It returns io.EOF once EndDocument has
// already been delivered.
func (p *Parser) Next() (XmlEvent, error) {
	if len(p.pending) > 0 {
		ev := p.pending[0]
		p.pending = p.pending[1:]
		return ev, nil
	}
	if r := p.resume; r != resumeNone {
		switch r {
		case resumeAttrs:
			p.resume = resumeNone
			name, pos := p.resumeTagName, p.resumeTagPos
			ev, err := p.readStartTagWS(name, pos, p.resumeAttrs, p.resumeWsOK)
			return p.finishStartTag(ev, err, name, pos)
		case resumeAttrValue:
			p.resume = resumeNone
			name, pos := p.resumeTagName, p.resumeTagPos
			ev, err := p.continueAttrValue()
			return p.finishStartTag(ev, err, name, pos)
		}
	}
	if !p.startDocSent {
		p.startDocSent = true
		return StartDocumentEvent{evBase{p.cr.Position()}}, nil
	}
	switch p.state {
	case stateProlog0:
		return p.prolog0()
	case stateProlog1:
		return p.misc(miscBeforeDoctype)
	case stateProlog2:
		return p.misc(miscAfterDoctype)
	case stateBody:
		return p.body()
	case statePostlog:
		return p.misc(miscPostlog)
	default:
		return nil, io.EOF
	}
}

// prolog0 tries to read an XML declaration exactly once, then falls
// through to ordinary Misc*/DOCTYPE handling.
func (p *Parser) prolog0() (XmlEvent, error) {
	matched, err := p.tryXMLDecl()
	if err != nil {
		return nil, err
	}
	if matched {
		ev, err := p.finishXMLDecl()
		if err != nil {
			return nil, err
		}
		p.state = stateProlog1
		return ev, nil
	}
	p.state = stateProlog1
	return p.misc(miscBeforeDoctype)
}

// tryXMLDecl peeks for the literal "<?xml" followed by something other
// than a name character (distinguishing it from a PI whose target merely
// starts with "xml"), consuming it only on a full match.
func (p *Parser) tryXMLDecl() (bool, error) {
	cr := p.cr
	matched, err := matchAndConsumeLiteral(cr, "<?xml")
	if err != nil || !matched {
		return false, err
	}
	r, ok, err := cr.Peek()
	if err != nil {
		return false, err
	}
	if ok && isNCNameChar(r) {
		pushBackLiteral(cr, "<?xml")
		return false, nil
	}
	return true, nil
}

func matchAndConsumeLiteral(cr *CharReader, lit string) (bool, error) {
	var consumed []rune
	for _, want := range lit {
		r, ok, err := cr.Peek()
		if err != nil {
			return false, err
		}
		if !ok || r != want {
			for i := len(consumed) - 1; i >= 0; i-- {
				cr.PushBack(consumed[i])
			}
			return false, nil
		}
		if _, err := cr.Next(); err != nil {
			return false, err
		}
		consumed = append(consumed, r)
	}
	return true, nil
}

func pushBackLiteral(cr *CharReader, lit string) {
	runes := []rune(lit)
	for i := len(runes) - 1; i >= 0; i-- {
		cr.PushBack(runes[i])
	}
}

// finishXMLDecl parses VersionInfo EncodingDecl? SDDecl? S? "?>" after
// "<?xml" has already been consumed by tryXMLDecl.
func (p *Parser) finishXMLDecl() (XmlEvent, error) {
	cr := p.cr
	pos := Position{Line: 1, Column: 0}

	if err := space1(cr, "23", "expected whitespace before version info"); err != nil {
		return nil, err
	}
	if err := consumeWord(cr, "version"); err != nil {
		return nil, err
	}
	if _, err := space(cr); err != nil {
		return nil, err
	}
	if err := expectLiteral(cr, "=", "24"); err != nil {
		return nil, err
	}
	if _, err := space(cr); err != nil {
		return nil, err
	}
	version, _, err := readQuoted(cr)
	if err != nil {
		return nil, err
	}
	if version != "1.0" && version != "1.1" {
		return nil, newSyntaxErrorf(cr.Position(), "26", "unsupported XML version %q", version)
	}
	if version == "1.1" {
		p.isXml11 = true
		cr.SetXML11(true)
	}

	ev := XmlDeclEvent{evBase{pos}, version, "", false, ""}

	wsBeforeNext, err := space(cr)
	if err != nil {
		return nil, err
	}
	word, err := peekWord(cr)
	if err != nil {
		return nil, err
	}
	if wsBeforeNext && strings.HasPrefix(word, "encoding") {
		if err := consumeWord(cr, "encoding"); err != nil {
			return nil, err
		}
		if _, err := space(cr); err != nil {
			return nil, err
		}
		if err := expectLiteral(cr, "=", "80"); err != nil {
			return nil, err
		}
		if _, err := space(cr); err != nil {
			return nil, err
		}
		enc, _, err := readQuoted(cr)
		if err != nil {
			return nil, err
		}
		ev.Encoding = enc
		ev.HasEncoding = true
		wsBeforeNext, err = space(cr)
		if err != nil {
			return nil, err
		}
		word, err = peekWord(cr)
		if err != nil {
			return nil, err
		}
	}
	if wsBeforeNext && strings.HasPrefix(word, "standalone") {
		if err := consumeWord(cr, "standalone"); err != nil {
			return nil, err
		}
		if _, err := space(cr); err != nil {
			return nil, err
		}
		if err := expectLiteral(cr, "=", "32"); err != nil {
			return nil, err
		}
		if _, err := space(cr); err != nil {
			return nil, err
		}
		sd, _, err := readQuoted(cr)
		if err != nil {
			return nil, err
		}
		if sd != "yes" && sd != "no" {
			return nil, newSyntaxErrorf(cr.Position(), "32", "standalone must be 'yes' or 'no', got %q", sd)
		}
		ev.Standalone = sd
	}
	if _, err := space(cr); err != nil {
		return nil, err
	}
	if err := expectLiteral(cr, "?>", "23"); err != nil {
		return nil, err
	}
	return ev, nil
}

// misc handles the shared Misc* grammar (whitespace, comments, PIs) for
// every position outside an element body, branching on what else is legal
// at that position: the DOCTYPE declaration, the single document element,
// or (in mode miscPostlog) nothing further but Misc*.
func (p *Parser) misc(mode miscMode) (XmlEvent, error) {
	cr := p.cr
	if _, err := space(cr); err != nil {
		return nil, err
	}
	r, ok, err := cr.Peek()
	if err != nil {
		return nil, err
	}
	if !ok {
		if mode == miscPostlog {
			p.state = stateDone
			return EndDocumentEvent{evBase{cr.Position()}}, nil
		}
		if p.partial {
			return ExpectNodesEvent{evBase{cr.Position()}}, nil
		}
		return nil, newSyntaxError(cr.Position(), "1", "unexpected end of input: missing document element")
	}
	if r != '<' {
		return nil, newSyntaxErrorf(cr.Position(), "27", "unexpected character %q outside markup", r)
	}
	pos := cr.Position()
	if _, err := cr.Next(); err != nil {
		return nil, err
	}
	tok, err := readMarkupToken(cr)
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case CommentToken:
		return XmlCommentEvent{evBase{pos}, t.Text}, nil
	case PIToken:
		body, err := readPIBody(cr)
		if err != nil {
			return nil, err
		}
		return XmlPIEvent{evBase{pos}, t.Target, body}, nil
	case DeclToken:
		if mode == miscBeforeDoctype && strings.EqualFold(t.Name, "DOCTYPE") {
			ev, err := p.readDoctype(pos)
			if err != nil {
				return nil, err
			}
			p.state = stateProlog2
			return ev, nil
		}
		return nil, newSyntaxErrorf(pos, "29", "unexpected declaration <!%s> here", t.Name)
	case StartToken:
		if mode == miscPostlog {
			return nil, newSyntaxError(pos, "1", "a document may have only one document element")
		}
		return p.handleStartTag(t.Name, pos)
	default:
		return nil, newSyntaxError(pos, "1", "unexpected markup here")
	}
}

// readDoctype parses the DOCTYPE declaration's tail after the "DOCTYPE"
// keyword has already been consumed as a DeclToken.
func (p *Parser) readDoctype(pos Position) (XmlEvent, error) {
	cr := p.cr
	if err := space1(cr, "28", "expected whitespace after DOCTYPE"); err != nil {
		return nil, err
	}
	docName, err := readQName(cr)
	if err != nil {
		return nil, err
	}
	ws, err := space(cr)
	if err != nil {
		return nil, err
	}
	var extID *ExternalID
	if ws {
		r, ok, err := cr.Peek()
		if err != nil {
			return nil, err
		}
		if ok && (r == 'S' || r == 'P') {
			extID, err = parseExternalID(cr, true)
			if err != nil {
				return nil, err
			}
			if _, err := space(cr); err != nil {
				return nil, err
			}
		}
	}
	var subset []DTDDecl
	r, ok, err := cr.Peek()
	if err != nil {
		return nil, err
	}
	if ok && r == '[' {
		if _, err := cr.Next(); err != nil {
			return nil, err
		}
		decls, _, err := parseInternalSubset(cr)
		if err != nil {
			return nil, err
		}
		subset = decls
		if err := expectLiteral(cr, "]", "28"); err != nil {
			return nil, err
		}
		if _, err := space(cr); err != nil {
			return nil, err
		}
		p.recordGeneralEntities(decls)
	}
	if err := expectLiteral(cr, ">", "28"); err != nil {
		return nil, err
	}
	name := docName.String()
	return XmlDoctypeEvent{evBase{pos}, name, name, extID, subset}, nil
}

func (p *Parser) recordGeneralEntities(decls []DTDDecl) {
	if p.generalEntities == nil {
		p.generalEntities = map[string]string{}
	}
	for _, d := range decls {
		if ge, ok := d.(GEDecl); ok && ge.External == nil {
			p.generalEntities[ge.Name] = flattenTexty(ge.Value)
		}
	}
}

// body reads one event's worth of element content: a run of character
// data, a reference, or markup (child element, comment, PI, CDATA, or the
// end tag that closes the current level).
func (p *Parser) body() (XmlEvent, error) {
	cr := p.cr
	r, ok, err := cr.Peek()
	if err != nil {
		return nil, err
	}
	if !ok {
		if p.partial {
			return ExpectNodesEvent{evBase{cr.Position()}}, nil
		}
		return nil, newSyntaxError(cr.Position(), "1", "unexpected end of input inside element")
	}
	if r == '&' {
		pos := cr.Position()
		if _, err := cr.Next(); err != nil {
			return nil, err
		}
		r2, ok, err := cr.Peek()
		if err != nil {
			return nil, err
		}
		if ok && r2 == '#' {
			if _, err := cr.Next(); err != nil {
				return nil, err
			}
			cp, err := readNumericRef(cr)
			if err != nil {
				return nil, err
			}
			return XmlCharRefEvent{evBase{pos}, cp}, nil
		}
		name, err := readEntityRefName(cr)
		if err != nil {
			return nil, err
		}
		return XmlEntityRefEvent{evBase{pos}, name}, nil
	}
	if r != '<' {
		return p.readCharData()
	}
	pos := cr.Position()
	if _, err := cr.Next(); err != nil {
		return nil, err
	}
	tok, err := readMarkupToken(cr)
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case CommentToken:
		return XmlCommentEvent{evBase{pos}, t.Text}, nil
	case PIToken:
		body, err := readPIBody(cr)
		if err != nil {
			return nil, err
		}
		return XmlPIEvent{evBase{pos}, t.Target, body}, nil
	case SectionToken:
		if !strings.EqualFold(t.Name, "CDATA") {
			return nil, newSyntaxErrorf(pos, "18", "unexpected conditional section %q inside element content", t.Name)
		}
		text, err := readCDATABody(cr)
		if err != nil {
			return nil, err
		}
		return XmlStringEvent{evBase{pos}, text, true}, nil
	case StartToken:
		return p.handleStartTag(t.Name, pos)
	case EndToken:
		p.level--
		if p.level == 0 {
			p.state = statePostlog
		}
		return EndTagEvent{evBase{pos}, t.Name}, nil
	default:
		return nil, newSyntaxError(pos, "18", "unexpected declaration inside element content")
	}
}

// readCharData reads a maximal run of literal character data, stopping
// before the next '<' or '&' (or at end-of-input, which the next call to
// Next will interpret as either suspension or failure). CR/CRLF have
// already collapsed to LF by the time characters reach here (CharReader
// normalizes them); what's left to enforce is production [14]'s ban on a
// literal "]]>" outside a CDATA section.
func (p *Parser) readCharData() (XmlEvent, error) {
	cr := p.cr
	pos := cr.Position()
	var b strings.Builder
	for {
		r, ok, err := cr.Peek()
		if err != nil {
			if b.Len() > 0 {
				return XmlStringEvent{evBase{pos}, b.String(), false}, nil
			}
			return nil, err
		}
		if !ok || r == '<' || r == '&' {
			break
		}
		if r == ']' {
			closePos := cr.Position()
			if _, err := cr.Next(); err != nil {
				return nil, err
			}
			r2, ok2, err := cr.Peek()
			if err != nil {
				return nil, err
			}
			if !ok2 || r2 != ']' {
				b.WriteByte(']')
				continue
			}
			if _, err := cr.Next(); err != nil {
				return nil, err
			}
			r3, ok3, err := cr.Peek()
			if err != nil {
				return nil, err
			}
			if ok3 && r3 == '>' {
				return nil, newSyntaxError(closePos, "14", "']]>' is not allowed in character data outside a CDATA section")
			}
			b.WriteString("]]")
			continue
		}
		if _, err := cr.Next(); err != nil {
			return nil, err
		}
		b.WriteRune(r)
	}
	return XmlStringEvent{evBase{pos}, b.String(), false}, nil
}

// readCDATABody reads content up to (not including) "]]>", after
// "<![CDATA[" has already been consumed. CR/CRLF arrive already collapsed
// to LF via CharReader; the one CDATA-specific transform left is the
// legacy workaround where a literal "&gt;" is recognised and emitted as
// ">" (CDATA content is otherwise unescaped, so this is a textual
// substitution, not reference resolution).
func readCDATABody(cr *CharReader) (string, error) {
	var b strings.Builder
	for {
		r, err := cr.Next()
		if err != nil {
			return "", err
		}
		if r != ']' {
			b.WriteRune(r)
			continue
		}
		r2, ok, err := cr.Peek()
		if err != nil {
			return "", err
		}
		if !ok || r2 != ']' {
			b.WriteByte(']')
			continue
		}
		if _, err := cr.Next(); err != nil {
			return "", err
		}
		r3, ok, err := cr.Peek()
		if err != nil {
			return "", err
		}
		if ok && r3 == '>' {
			if _, err := cr.Next(); err != nil {
				return "", err
			}
			return strings.ReplaceAll(b.String(), "&gt;", ">"), nil
		}
		b.WriteString("]]")
	}
}

// handleStartTag reads a start tag's attributes (or root element, reusing
// the same path from prolog) and folds in the level bookkeeping and
// self-closing synthesis shared by every call site.
func (p *Parser) handleStartTag(name QName, pos Position) (XmlEvent, error) {
	ev, err := p.readStartTag(name, pos, nil)
	return p.finishStartTag(ev, err, name, pos)
}

// finishStartTag applies the level/state bookkeeping and self-closing
// synthesis a start tag needs once it actually closes, whether readStartTag
// got there in one call (handleStartTag) or across a Feed/resume boundary
// (the resumeAttrs/resumeAttrValue cases in Next). A suspension event
// (ExpectAttributes/ExpectAttributeValue) passes through untouched.
func (p *Parser) finishStartTag(ev XmlEvent, err error, name QName, pos Position) (XmlEvent, error) {
	if err != nil {
		return nil, err
	}
	st, ok := ev.(StartTagEvent)
	if !ok {
		return ev, nil
	}
	if st.IsEmpty {
		// The synthesized end tag closes the element at once, so the depth
		// is left as it was.
		p.pending = append(p.pending, EndTagEvent{evBase{pos}, name})
		if p.level == 0 {
			p.state = statePostlog
		} else {
			p.state = stateBody
		}
		return st, nil
	}
	p.level++
	p.state = stateBody
	return st, nil
}

// readStartTag reads zero or more attributes starting from attrsSoFar
// (empty on a fresh tag, non-empty when resuming a suspended partial
// parse) until '/>' or '>' closes the tag.
func (p *Parser) readStartTag(name QName, pos Position, attrsSoFar []Attr) (XmlEvent, error) {
	return p.readStartTagWS(name, pos, attrsSoFar, false)
}

// readStartTagWS is readStartTag's implementation. wsSatisfied is true only
// when resuming a suspended parse whose separating whitespace was already
// consumed before end-of-input was hit; it substitutes for the first
// iteration's own whitespace check so a resumed attribute isn't rejected for
// missing a separator that was, in fact, already seen.
func (p *Parser) readStartTagWS(name QName, pos Position, attrsSoFar []Attr, wsSatisfied bool) (XmlEvent, error) {
	cr := p.cr
	attrs := attrsSoFar
	first := true
	for {
		wsBefore, err := space(cr)
		if err != nil {
			return nil, err
		}
		if first && wsSatisfied {
			wsBefore = true
		}
		first = false
		r, ok, err := cr.Peek()
		if err != nil {
			return nil, err
		}
		if !ok {
			if p.partial {
				p.resume = resumeAttrs
				p.resumeTagName, p.resumeTagPos, p.resumeAttrs = name, pos, attrs
				p.resumeWsOK = wsBefore
				return ExpectAttributesEvent{evBase{pos}, name, attrs}, nil
			}
			return nil, newSyntaxError(cr.Position(), "40", "unexpected end of input in start tag")
		}
		if r == '/' {
			if _, err := cr.Next(); err != nil {
				return nil, err
			}
			if err := expectLiteral(cr, ">", "44"); err != nil {
				return nil, err
			}
			return StartTagEvent{evBase{pos}, name, attrs, true}, nil
		}
		if r == '>' {
			if _, err := cr.Next(); err != nil {
				return nil, err
			}
			return StartTagEvent{evBase{pos}, name, attrs, false}, nil
		}
		if !wsBefore {
			return nil, newSyntaxErrorf(cr.Position(), "40", "expected whitespace, '/>' or '>' in start tag, got %q", r)
		}
		attrName, err := readQName(cr)
		if err != nil {
			return nil, err
		}
		if _, err := space(cr); err != nil {
			return nil, err
		}
		if err := expectLiteral(cr, "=", "25"); err != nil {
			return nil, err
		}
		if _, err := space(cr); err != nil {
			return nil, err
		}
		delim, ok, err := cr.Peek()
		if err != nil {
			return nil, err
		}
		if !ok {
			if p.partial {
				p.resume = resumeAttrValue
				p.resumeTagName, p.resumeTagPos, p.resumeAttrs = name, pos, attrs
				p.resumeAttrName = attrName
				p.resumeDelim = 0
				p.resumeChunks = nil
				return ExpectAttributeValueEvent{evBase{pos}, name, attrs, attrName}, nil
			}
			return nil, newSyntaxError(cr.Position(), "10", "expected a quoted attribute value")
		}
		if delim != '"' && delim != '\'' {
			return nil, newSyntaxErrorf(cr.Position(), "10", "expected a quoted attribute value, got %q", delim)
		}
		if _, err := cr.Next(); err != nil {
			return nil, err
		}
		chunks, suspended, err := p.readAttrValueBody(delim, nil)
		if err != nil {
			return nil, err
		}
		if suspended {
			p.resume = resumeAttrValue
			p.resumeTagName, p.resumeTagPos, p.resumeAttrs = name, pos, attrs
			p.resumeAttrName = attrName
			p.resumeDelim = delim
			p.resumeChunks = chunks
			return ExpectAttributeValueEvent{evBase{pos}, name, attrs, attrName}, nil
		}
		attrs = append(attrs, Attr{Name: attrName, Value: chunks})
	}
}

// spliceAttrs resumes a start tag suspended by an ExpectAttributesEvent,
// injecting a template-supplied sequence of Attr at the point of
// suspension instead of reading more attributes from fed source text.
// The caller is expected to Feed whatever source follows the placeholder
// before calling this, since the resumed parse continues reading from
// there once the spliced attributes are in place.
func (p *Parser) spliceAttrs(extra []Attr) (XmlEvent, error) {
	name, pos := p.resumeTagName, p.resumeTagPos
	attrs := append(append([]Attr{}, p.resumeAttrs...), extra...)
	wsOK := p.resumeWsOK
	p.resume = resumeNone
	ev, err := p.readStartTagWS(name, pos, attrs, wsOK)
	return p.finishStartTag(ev, err, name, pos)
}

// spliceAttrValue resumes a start tag suspended by an
// ExpectAttributeValueEvent, using a template argument in place of a
// quoted source value: nil drops the attribute entirely, anything else
// becomes Attr(name, [TextChunk(fmt.Sprint(arg))]). As with spliceAttrs,
// the caller feeds the next source fragment before calling this.
func (p *Parser) spliceAttrValue(arg any) (XmlEvent, error) {
	name, pos := p.resumeTagName, p.resumeTagPos
	attrs := append([]Attr{}, p.resumeAttrs...)
	if arg != nil {
		attrs = append(attrs, Attr{Name: p.resumeAttrName, Value: []XmlTexty{TextChunk{Value: fmt.Sprint(arg)}}})
	}
	p.resume = resumeNone
	p.resumeDelim = 0
	p.resumeChunks = nil
	ev, err := p.readStartTagWS(name, pos, attrs, false)
	return p.finishStartTag(ev, err, name, pos)
}

// continueAttrValue resumes a value suspended by readStartTag, finding the
// opening delimiter first if even that hadn't arrived yet.
func (p *Parser) continueAttrValue() (XmlEvent, error) {
	cr := p.cr
	delim := p.resumeDelim
	if delim == 0 {
		d, ok, err := cr.Peek()
		if err != nil {
			return nil, err
		}
		if !ok {
			return ExpectAttributeValueEvent{evBase{p.resumeTagPos}, p.resumeTagName, p.resumeAttrs, p.resumeAttrName}, nil
		}
		if d != '"' && d != '\'' {
			return nil, newSyntaxErrorf(cr.Position(), "10", "expected a quoted attribute value, got %q", d)
		}
		if _, err := cr.Next(); err != nil {
			return nil, err
		}
		delim = d
	}
	chunks, suspended, err := p.readAttrValueBody(delim, p.resumeChunks)
	if err != nil {
		return nil, err
	}
	if suspended {
		p.resume = resumeAttrValue
		p.resumeDelim = delim
		p.resumeChunks = chunks
		return ExpectAttributeValueEvent{evBase{p.resumeTagPos}, p.resumeTagName, p.resumeAttrs, p.resumeAttrName}, nil
	}
	attrs := append(p.resumeAttrs, Attr{Name: p.resumeAttrName, Value: chunks})
	return p.readStartTag(p.resumeTagName, p.resumeTagPos, attrs)
}

// readAttrValueBody reads AttValue content after the opening delimiter,
// applying literal-whitespace normalization (CR/LF/tab/space collapse to a
// single space) while leaving char/entity references as distinct,
// unnormalized chunks.
func (p *Parser) readAttrValueBody(delim rune, chunksSoFar []XmlTexty) ([]XmlTexty, bool, error) {
	cr := p.cr
	chunks := chunksSoFar
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, TextChunk{Value: cur.String()})
			cur.Reset()
		}
	}
	for {
		r, ok, err := cr.Peek()
		if err != nil {
			flush()
			return chunks, false, err
		}
		if !ok {
			flush()
			if p.partial {
				return chunks, true, nil
			}
			return chunks, false, newSyntaxError(cr.Position(), "10", "unterminated attribute value")
		}
		if r == delim {
			if _, err := cr.Next(); err != nil {
				return chunks, false, err
			}
			flush()
			return chunks, false, nil
		}
		if r == '<' {
			return nil, false, newSyntaxError(cr.Position(), "10", "'<' is not allowed in an attribute value")
		}
		if r == '&' {
			if _, err := cr.Next(); err != nil {
				return nil, false, err
			}
			r2, ok, err := cr.Peek()
			if err != nil {
				return nil, false, err
			}
			if ok && r2 == '#' {
				if _, err := cr.Next(); err != nil {
					return nil, false, err
				}
				cp, err := readNumericRef(cr)
				if err != nil {
					return nil, false, err
				}
				flush()
				chunks = append(chunks, CharRefChunk{Codepoint: cp})
				continue
			}
			name, err := readEntityRefName(cr)
			if err != nil {
				return nil, false, err
			}
			flush()
			chunks = append(chunks, EntityRefChunk{Name: name})
			continue
		}
		if isWhitespace(r) {
			if _, err := cr.Next(); err != nil {
				return nil, false, err
			}
			cur.WriteByte(' ')
			continue
		}
		if _, err := cr.Next(); err != nil {
			return nil, false, err
		}
		cur.WriteRune(r)
	}
}
