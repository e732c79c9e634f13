package xml

import "testing"

func TestRender_SplicesAttributeValue(t *testing.T) {
	doc, err := Render([]string{`<root attr=`, `/>`}, []any{"hello"})
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Root.Attrs) != 1 {
		t.Fatalf("got %d attrs, want 1: %#v", len(doc.Root.Attrs), doc.Root.Attrs)
	}
	if doc.Root.Attrs[0].Name.Local != "attr" || doc.Root.Attrs[0].RawString() != "hello" {
		t.Errorf("got %#v, want attr=hello", doc.Root.Attrs[0])
	}
}

func TestRender_NilAttributeValueDropsAttribute(t *testing.T) {
	doc, err := Render([]string{`<root attr=`, `/>`}, []any{nil})
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Root.Attrs) != 0 {
		t.Fatalf("got %d attrs, want 0 (nil should drop the attribute): %#v", len(doc.Root.Attrs), doc.Root.Attrs)
	}
}

func TestRender_SplicesAttributeSequence(t *testing.T) {
	extra := []Attr{{Name: QName{Local: "a"}, Value: []XmlTexty{TextChunk{Value: "x"}}}}
	doc, err := Render([]string{`<root `, `/>`}, []any{extra})
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Root.Attrs) != 1 || doc.Root.Attrs[0].Name.Local != "a" || doc.Root.Attrs[0].RawString() != "x" {
		t.Fatalf("got %#v, want one attr a=x", doc.Root.Attrs)
	}
}

func TestRender_SplicesNodeSequence(t *testing.T) {
	nodes := []XmlNode{TextNode{Value: "hello"}}
	doc, err := Render([]string{`<root>`, `</root>`}, []any{nodes})
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Root.Children) != 1 {
		t.Fatalf("got %d children, want 1: %#v", len(doc.Root.Children), doc.Root.Children)
	}
	tn, ok := doc.Root.Children[0].(TextNode)
	if !ok || tn.Value != "hello" {
		t.Fatalf("got %#v, want TextNode{hello}", doc.Root.Children[0])
	}
}

func TestRender_MismatchedFragmentsAndValuesIsError(t *testing.T) {
	_, err := Render([]string{"<a/>"}, []any{"extra"})
	if err == nil {
		t.Error("expected an error when len(fragments) != len(values)+1")
	}
}

func TestRender_NoSubstitutions(t *testing.T) {
	doc, err := Render([]string{"<root>plain</root>"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	tn, ok := doc.Root.Children[0].(TextNode)
	if !ok || tn.Value != "plain" {
		t.Fatalf("got %#v", doc.Root.Children[0])
	}
}
