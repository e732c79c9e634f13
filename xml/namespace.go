package xml

import "github.com/arturoeanton/xmlcore/internal/nsstack"

const xmlNamespaceURI = "http://www.w3.org/XML/1998/namespace"

// EventSource is anything that yields XmlEvents one at a time, the shape
// both Parser and NamespaceResolver (and anything else layered on top of
// a Parser) share.
type EventSource interface {
	Next() (XmlEvent, error)
}

// NamespaceResolver wraps an EventSource and resolves element and
// attribute QNames against the xmlns/xmlns:prefix declarations it
// observes, maintaining one nsstack scope per open element. xmlns
// declaration attributes themselves are consumed for resolution and
// removed from the attributes a StartTagEvent carries onward; callers
// that need to see them verbatim should read the unresolved event stream
// directly from the Parser instead of through a resolver.
type NamespaceResolver struct {
	src     EventSource
	stack   nsstack.Stack
	isXml11 bool
}

// NewNamespaceResolver wraps src with namespace resolution.
func NewNamespaceResolver(src EventSource) *NamespaceResolver {
	return &NamespaceResolver{src: src}
}

func (n *NamespaceResolver) Next() (XmlEvent, error) {
	ev, err := n.src.Next()
	if err != nil {
		return ev, err
	}
	switch t := ev.(type) {
	case XmlDeclEvent:
		n.isXml11 = t.Version == "1.1"
		return ev, nil
	case StartTagEvent:
		return n.resolveStart(t)
	case EndTagEvent:
		name, err := n.resolveName(t.Name, true, t.Pos())
		if n.stack.Len() > 0 {
			n.stack.Pop()
		}
		if err != nil {
			return nil, err
		}
		t.Name = name
		return t, nil
	default:
		return ev, nil
	}
}

func (n *NamespaceResolver) resolveStart(t StartTagEvent) (XmlEvent, error) {
	parentDefault, parentHasDefault := n.stack.Get("")
	bindings := map[string]string{}
	var realAttrs []Attr
	for _, a := range t.Attrs {
		switch {
		case a.Name.Prefix == "" && a.Name.Local == "xmlns":
			uri := a.RawString()
			if uri == "" && !n.isXml11 && parentHasDefault && parentDefault != "" {
				return nil, newNSCError(t.Pos(), NSCNoPrefixUndeclaring, "the default namespace cannot be undeclared in XML 1.0")
			}
			bindings[""] = uri
		case a.Name.Prefix == "xmlns":
			uri := a.RawString()
			if uri == "" && !n.isXml11 {
				return nil, newNSCError(t.Pos(), NSCNoPrefixUndeclaring, "prefix "+a.Name.Local+" cannot be undeclared in XML 1.0")
			}
			bindings[a.Name.Local] = uri
		default:
			realAttrs = append(realAttrs, a)
		}
	}
	n.stack.Push(bindings)

	name, err := n.resolveName(t.Name, true, t.Pos())
	if err != nil {
		return nil, err
	}

	seen := make(map[QName]bool, len(realAttrs))
	for i := range realAttrs {
		an, err := n.resolveName(realAttrs[i].Name, false, t.Pos())
		if err != nil {
			return nil, err
		}
		realAttrs[i].Name = an
		key := QName{Local: an.Local, URI: an.URI}
		if seen[key] {
			return nil, newNSCError(t.Pos(), NSCAttributesUnique, "duplicate attribute after namespace resolution: "+an.String())
		}
		seen[key] = true
	}
	t.Name = name
	t.Attrs = realAttrs
	return t, nil
}

// resolveName looks a QName's prefix up the scope stack. Unprefixed
// element names inherit the innermost default namespace; unprefixed
// attribute names never do, per the Namespaces in XML recommendation.
func (n *NamespaceResolver) resolveName(q QName, isElement bool, pos Position) (QName, error) {
	if q.Prefix == "" {
		if isElement {
			if uri, ok := n.stack.Get(""); ok && uri != "" {
				q.URI = uri
			}
		}
		return q, nil
	}
	if q.Prefix == "xml" {
		q.URI = xmlNamespaceURI
		return q, nil
	}
	uri, ok := n.stack.Get(q.Prefix)
	if !ok || uri == "" {
		return QName{}, newNSCError(pos, NSCPrefixDeclared, "undeclared namespace prefix: "+q.Prefix)
	}
	q.URI = uri
	return q, nil
}
