// Package xml takes already-decoded characters: r is always assumed to be
// UTF-8 (or ASCII-compatible) text by the time it reaches Parse/ParseDocument.
// A caller whose input's encoding isn't known ahead of time, or whose
// <?xml ... encoding="..."?> declaration doesn't match its actual bytes,
// should decode first with golang.org/x/net/html/charset (the same
// byte->character front end the teacher's own charsetReader comment
// pointed at before its inline Windows-1252 table was dropped), e.g.:
//
//	r, err := charset.NewReaderLabel(declaredEncoding, rawBytes)
//	doc, err := xml.ParseDocument(r)
package xml

import (
	"fmt"
	"io"
)

// docOptions configures ParseDocument's post-processing of the raw event
// stream: namespace resolution and entity expansion are both optional
// passes layered on top of the Parser/BuildTree core.
type docOptions struct {
	namespaceAware  bool
	resolveEntities bool
	maxEntityDepth  int
}

// DocOption configures ParseDocument.
type DocOption func(*docOptions)

// WithoutEntityExpansion leaves CharRef/EntityRef nodes unresolved among
// element children in the tree ParseDocument returns. Attribute values stay
// as raw chunks whether or not this option is given.
func WithoutEntityExpansion() DocOption {
	return func(o *docOptions) { o.resolveEntities = false }
}

// WithNamespaces resolves element and attribute QNames against their
// xmlns declarations before the tree is built. Off by default: a caller
// parsing namespace-unaware documents shouldn't pay for (or risk failing)
// namespace constraint checks it doesn't need.
func WithNamespaces() DocOption {
	return func(o *docOptions) { o.namespaceAware = true }
}

// WithEntityMaxDepth bounds recursive general-entity expansion.
func WithEntityMaxDepth(n int) DocOption {
	return func(o *docOptions) { o.maxEntityDepth = n }
}

// Parse returns a Parser ready to drive by hand, for callers that want
// the raw event stream instead of a built tree. The parser is not partial:
// incomplete input fails with a syntax error rather than producing Expect*
// suspensions (NewPartialParser gives those).
func Parse(r io.Reader, opts ...Option) *Parser {
	return NewParser(r, opts...)
}

// ParseDocument parses r to completion and returns the built tree. Entity
// resolution runs by default; pass WithoutEntityExpansion to keep raw
// CharRef/EntityRef nodes instead.
func ParseDocument(r io.Reader, opts ...DocOption) (*Document, error) {
	o := &docOptions{resolveEntities: true, maxEntityDepth: 20}
	for _, f := range opts {
		f(o)
	}

	p := NewParser(r)
	var src EventSource = p
	if o.namespaceAware {
		src = NewNamespaceResolver(p)
	}
	doc, err := BuildTree(src)
	if err != nil {
		return nil, err
	}
	if o.resolveEntities {
		resolver := NewEntityResolver(p.GeneralEntities()).WithMaxDepth(o.maxEntityDepth)
		if err := ResolveEntitiesInTree(doc, resolver); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// ParseParts builds a document from sources interleaved with args (k
// sources, k-1 args): the parser reads sources[0], and every time it
// suspends waiting for more input, the next args value is consumed and
// spliced into the tree being built - a []Attr between attributes, a
// single value (or a dropped attribute, for a nil value) inside a start
// tag, or a []XmlNode among an element's children - before the next
// source is fed and parsing resumes. The parser is constructed with
// partial = true and is set back to partial = false once the final
// source has been fed, so a source left genuinely incomplete fails
// instead of suspending forever.
//
// Callers driving a partial parse by hand instead of splicing typed
// template arguments - feeding literal markup fragments rather than Attr/
// XmlNode values - should use NewPartialParser directly along with Feed
// and Finish.
func ParseParts(sources []io.Reader, args []any, opts ...Option) (*Document, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("xmlcore: ParseParts needs at least one source")
	}
	p := NewPartialParser(sources[0], opts...)
	return buildTreeFromParts(p, sources, args)
}
