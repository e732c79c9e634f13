package xml

import (
	"context"
	"io"
	"log"

	"github.com/google/uuid"
)

// Stream lets a caller iterate over one repeated element type in a large
// document without holding the whole tree in memory: it drives a Parser
// directly, and builds only the subtree rooted at each <tagName> match.
//
// This generalizes the teacher's encoding/xml-backed streaming decoder,
// which decoded each matched element straight into a T via reflection;
// this module has no struct-tag mapping layer, so the caller supplies
// decode instead.
//
// id tags the stream's log lines with a correlation id, so several
// concurrent streams reading from the same log don't get their error
// messages interleaved into an ambiguous mess.
type Stream[T any] struct {
	id      uuid.UUID
	parser  *Parser
	tagName string
	decode  func(*Elem) (T, error)
}

// NewStream initializes a streaming iterator for a specific XML tag.
// r is the input reader, tagName the local name of the element to match
// (e.g. "Item", "Entry"), and decode converts each matched subtree to T.
func NewStream[T any](r io.Reader, tagName string, decode func(*Elem) (T, error), opts ...Option) *Stream[T] {
	return &Stream[T]{
		id:      uuid.New(),
		parser:  NewParser(r, opts...),
		tagName: tagName,
		decode:  decode,
	}
}

// Iter returns a read-only channel of decoded items. Convenience wrapper
// around IterWithContext using context.Background().
//
// Usage:
//
//	stream := xml.NewStream[MyType](r, "Entry", decodeEntry)
//	for item := range stream.Iter() {
//	    // process item
//	}
func (s *Stream[T]) Iter() <-chan T {
	return s.IterWithContext(context.Background())
}

// IterWithContext returns a channel of decoded items, respecting ctx.
// Use this to cancel streaming early or bound it with a timeout.
func (s *Stream[T]) IterWithContext(ctx context.Context) <-chan T {
	ch := make(chan T)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			ev, err := s.parser.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				log.Printf("xmlcore: stream[%s]: %v", s.id, err)
				return
			}

			st, ok := ev.(StartTagEvent)
			if !ok || st.Name.Local != s.tagName {
				continue
			}

			el, err := buildElemSubtree(s.parser, st)
			if err != nil {
				log.Printf("xmlcore: stream[%s]: building <%s>: %v", s.id, s.tagName, err)
				return
			}
			item, err := s.decode(el)
			if err != nil {
				log.Printf("xmlcore: stream[%s]: decoding <%s>: %v", s.id, s.tagName, err)
				continue
			}

			select {
			case ch <- item:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// buildElemSubtree assembles just the subtree rooted at an already-seen
// StartTagEvent, continuing to pull events from p until its matching end
// tag (including the synthesized one for an empty-element tag).
func buildElemSubtree(p *Parser, start StartTagEvent) (*Elem, error) {
	root := &Elem{Name: start.Name, Attrs: start.Attrs}
	stack := []*Elem{root}
	for len(stack) > 0 {
		ev, err := p.Next()
		if err != nil {
			return nil, err
		}
		top := stack[len(stack)-1]
		switch t := ev.(type) {
		case StartTagEvent:
			el := &Elem{Name: t.Name, Attrs: t.Attrs}
			top.Children = append(top.Children, el)
			stack = append(stack, el)
		case EndTagEvent:
			stack = stack[:len(stack)-1]
		case XmlStringEvent:
			if t.IsCDATA {
				top.Children = append(top.Children, CDATANode{Value: t.Text})
			} else {
				top.Children = append(top.Children, TextNode{Value: t.Text})
			}
		case XmlCharRefEvent:
			top.Children = append(top.Children, CharRefNode{Codepoint: t.Codepoint})
		case XmlEntityRefEvent:
			top.Children = append(top.Children, EntityRefNode{Name: t.Name})
		case XmlCommentEvent:
			top.Children = append(top.Children, CommentNode{Value: t.Text})
		case XmlPIEvent:
			top.Children = append(top.Children, PINode{Target: t.Target, Body: t.Body})
		}
	}
	return root, nil
}
