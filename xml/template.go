package xml

import (
	"io"
	"strings"
)

// Render builds a document from literal fragments interleaved with
// values, the same fragments/values split text/template leaves a caller
// to assemble (one more fragment than values). Each value is spliced in
// typed form at exactly the point the partial parser suspended - a
// sequence of Attr between attributes, a single attribute value (or no
// attribute at all, for a nil value) inside a start tag, or a sequence of
// XmlNode among an element's children - per the tree builder's
// templated-argument protocol. It is a thin wrapper over ParseParts for
// callers whose sources are plain string fragments.
func Render(fragments []string, values []any) (*Document, error) {
	sources := make([]io.Reader, len(fragments))
	for i, f := range fragments {
		sources[i] = strings.NewReader(f)
	}
	return ParseParts(sources, values)
}
