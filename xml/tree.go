package xml

import (
	"fmt"
	"io"
)

// XmlNode is the sealed union of tree node kinds BuildTree produces. An
// element's children stay as CharRef/EntityRef nodes (not pre-resolved
// text) unless ResolveEntitiesInTree is run afterwards: resolution is an
// explicit, optional pass, not something BuildTree does for you.
type XmlNode interface {
	isXmlNode()
}

type TextNode struct{ Value string }
type CDATANode struct{ Value string }
type CommentNode struct{ Value string }
type CharRefNode struct{ Codepoint rune }
type EntityRefNode struct{ Name string }
type PINode struct {
	Target string
	Body   string
}

// Elem is an element node: a resolved-or-not name, its attributes (still
// in raw chunk form; resolve with EntityResolver.ResolveAttr), and its
// ordered children.
type Elem struct {
	Name     QName
	Attrs    []Attr
	Children []XmlNode
}

func (TextNode) isXmlNode()      {}
func (CDATANode) isXmlNode()     {}
func (CommentNode) isXmlNode()   {}
func (CharRefNode) isXmlNode()   {}
func (EntityRefNode) isXmlNode() {}
func (PINode) isXmlNode()        {}
func (*Elem) isXmlNode()         {}

// Document is a fully built tree: the document element plus whatever
// prolog/epilog material a caller cares to inspect.
type Document struct {
	Decl     *XmlDeclEvent
	Doctype  *XmlDoctypeEvent
	Root     *Elem
	Leading  []XmlNode // comments/PIs before the document element
	Trailing []XmlNode // comments/PIs after the document element
}

// BuildTree drains src to completion and assembles a Document. It fails
// if src ever produces an Expect* suspension event - tree building
// requires a complete document; templated callers should use Render or
// ParseParts instead, which splice typed arguments in at the suspension
// points rather than treating them as errors.
func BuildTree(src EventSource) (*Document, error) {
	b := &treeBuilder{doc: &Document{}}
	for {
		ev, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch ev.(type) {
		case ExpectAttributesEvent, ExpectAttributeValueEvent, ExpectNodesEvent:
			return nil, newSyntaxError(ev.Pos(), "1", "document is incomplete: use Parser directly, or Render/ParseParts, for templated/partial input")
		}
		if err := b.handle(ev); err != nil {
			return nil, err
		}
	}
	return b.finish()
}

// treeBuilder holds the element/builder stack BuildTree walks down while
// draining events, factored out so the templated entry point below can
// share the exact same per-event handling and only add the splicing the
// plain path doesn't need.
type treeBuilder struct {
	doc   *Document
	stack []*Elem
}

func (b *treeBuilder) handle(ev XmlEvent) error {
	switch t := ev.(type) {
	case StartDocumentEvent, EndDocumentEvent:
		// no tree representation
	case XmlDeclEvent:
		e := t
		b.doc.Decl = &e
	case XmlDoctypeEvent:
		e := t
		b.doc.Doctype = &e
	case StartTagEvent:
		el := &Elem{Name: t.Name, Attrs: t.Attrs}
		if err := b.appendChild(el); err != nil {
			return err
		}
		b.stack = append(b.stack, el)
	case EndTagEvent:
		if len(b.stack) == 0 {
			return newWFCError(t.Pos(), WFCElementTypeMatch, "end tag without a matching start tag: "+t.Name.String())
		}
		top := b.stack[len(b.stack)-1]
		if !top.Name.Equal(t.Name) {
			return newWFCError(t.Pos(), WFCElementTypeMatch, "end tag "+t.Name.String()+" does not match start tag "+top.Name.String())
		}
		b.stack = b.stack[:len(b.stack)-1]
	case XmlStringEvent:
		var n XmlNode
		if t.IsCDATA {
			n = CDATANode{Value: t.Text}
		} else {
			n = TextNode{Value: t.Text}
		}
		return b.appendChild(n)
	case XmlCharRefEvent:
		return b.appendChild(CharRefNode{Codepoint: t.Codepoint})
	case XmlEntityRefEvent:
		return b.appendChild(EntityRefNode{Name: t.Name})
	case XmlCommentEvent:
		return b.appendChild(CommentNode{Value: t.Text})
	case XmlPIEvent:
		return b.appendChild(PINode{Target: t.Target, Body: t.Body})
	}
	return nil
}

func (b *treeBuilder) appendChild(n XmlNode) error {
	if len(b.stack) > 0 {
		top := b.stack[len(b.stack)-1]
		top.Children = append(top.Children, n)
		return nil
	}
	if el, ok := n.(*Elem); ok {
		if b.doc.Root != nil {
			return newSyntaxError(Position{}, "1", "a document may have only one document element")
		}
		b.doc.Root = el
		return nil
	}
	if b.doc.Root == nil {
		b.doc.Leading = append(b.doc.Leading, n)
	} else {
		b.doc.Trailing = append(b.doc.Trailing, n)
	}
	return nil
}

func (b *treeBuilder) finish() (*Document, error) {
	if b.doc.Root == nil {
		return nil, newSyntaxError(Position{}, "1", "document has no document element")
	}
	if len(b.stack) != 0 {
		return nil, newWFCError(Position{}, WFCElementTypeMatch, "document ended with unclosed elements")
	}
	return b.doc, nil
}

// buildTreeFromParts drives p directly across the k sources / k-1 args
// interleaving spec's template form describes, splicing a typed argument
// in every time the parser suspends instead of treating the suspension as
// an error: ExpectAttributesEvent consumes a []Attr and appends it to the
// in-progress start tag's attributes; ExpectAttributeValueEvent consumes
// one argument and either drops the attribute (nil) or synthesises
// Attr(name, [XmlString(arg)]); ExpectNodesEvent consumes a []XmlNode and
// splices it into the currently open element's children. p must already
// have sources[0] loaded (as NewPartialParser does); this function feeds
// the rest as each placeholder is resolved, and calls p.Finish() once the
// last source has been fed so a genuinely incomplete final fragment fails
// instead of suspending forever.
func buildTreeFromParts(p *Parser, sources []io.Reader, args []any) (*Document, error) {
	if len(sources) != len(args)+1 {
		return nil, fmt.Errorf("xmlcore: ParseParts needs len(sources) == len(args)+1, got %d sources and %d args", len(sources), len(args))
	}
	if len(sources) == 1 {
		p.Finish()
	}

	argIdx, srcIdx := 0, 1
	feedNext := func() {
		if srcIdx < len(sources) {
			p.Feed(sources[srcIdx])
			srcIdx++
		}
		if srcIdx >= len(sources) {
			p.Finish()
		}
	}
	nextArg := func() any {
		v := args[argIdx]
		argIdx++
		return v
	}

	b := &treeBuilder{doc: &Document{}}
	ev, err := p.Next()
	for {
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := ev.(type) {
		case ExpectAttributesEvent:
			extra, ok := nextArg().([]Attr)
			if !ok {
				return nil, fmt.Errorf("xmlcore: ExpectAttributes template argument must be []Attr")
			}
			feedNext()
			ev, err = p.spliceAttrs(extra)
			continue
		case ExpectAttributeValueEvent:
			arg := nextArg()
			feedNext()
			ev, err = p.spliceAttrValue(arg)
			continue
		case ExpectNodesEvent:
			nodes, ok := nextArg().([]XmlNode)
			if !ok {
				return nil, fmt.Errorf("xmlcore: ExpectNodes template argument must be []XmlNode")
			}
			if len(b.stack) == 0 {
				return nil, newSyntaxError(t.Pos(), "1", "ExpectNodes template argument spliced with no open element")
			}
			top := b.stack[len(b.stack)-1]
			top.Children = append(top.Children, nodes...)
			feedNext()
			ev, err = p.Next()
			continue
		}

		if handleErr := b.handle(ev); handleErr != nil {
			return nil, handleErr
		}
		ev, err = p.Next()
	}
	return b.finish()
}

// ResolveEntitiesInTree walks doc's document element, replacing CharRef
// and EntityRef nodes with resolved text and merging them into adjacent
// text nodes. It is idempotent: running it again on an already-resolved
// tree is a no-op since no CharRef/EntityRef nodes remain.
func ResolveEntitiesInTree(doc *Document, resolver *EntityResolver) error {
	if doc.Root == nil {
		return nil
	}
	return resolveElemEntities(doc.Root, resolver)
}

func resolveElemEntities(el *Elem, resolver *EntityResolver) error {
	var out []XmlNode
	for _, c := range el.Children {
		switch v := c.(type) {
		case CharRefNode:
			out = appendMergedText(out, string(v.Codepoint))
		case EntityRefNode:
			s, err := resolver.ResolveChunks([]XmlTexty{EntityRefChunk{Name: v.Name}}, Position{})
			if err != nil {
				return err
			}
			out = appendMergedText(out, s)
		case TextNode:
			out = appendMergedText(out, v.Value)
		case *Elem:
			if err := resolveElemEntities(v, resolver); err != nil {
				return err
			}
			out = append(out, v)
		default:
			out = append(out, c)
		}
	}
	el.Children = out
	return nil
}

func appendMergedText(nodes []XmlNode, s string) []XmlNode {
	if len(nodes) > 0 {
		if t, ok := nodes[len(nodes)-1].(TextNode); ok {
			nodes[len(nodes)-1] = TextNode{Value: t.Value + s}
			return nodes
		}
	}
	return append(nodes, TextNode{Value: s})
}
