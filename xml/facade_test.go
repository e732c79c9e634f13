package xml

import (
	"io"
	"strings"
	"testing"
)

func TestParse_ReturnsRawEventStream(t *testing.T) {
	p := Parse(strings.NewReader(`<root/>`))
	var kinds []string
	for {
		ev, err := p.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		switch ev.(type) {
		case StartDocumentEvent:
			kinds = append(kinds, "StartDocument")
		case StartTagEvent:
			kinds = append(kinds, "StartTag")
		case EndTagEvent:
			kinds = append(kinds, "EndTag")
		case EndDocumentEvent:
			kinds = append(kinds, "EndDocument")
		}
	}
	want := []string{"StartDocument", "StartTag", "EndTag", "EndDocument"}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("got %v, want %v", kinds, want)
		}
	}
}

func TestParseDocument_ResolvesEntitiesByDefault(t *testing.T) {
	doc, err := ParseDocument(strings.NewReader(`<root>&amp;</root>`))
	if err != nil {
		t.Fatal(err)
	}
	tn, ok := doc.Root.Children[0].(TextNode)
	if !ok || tn.Value != "&" {
		t.Fatalf("got %#v, want a resolved TextNode{&}", doc.Root.Children[0])
	}
}

func TestParseDocument_WithNamespacesResolvesQNames(t *testing.T) {
	doc, err := ParseDocument(strings.NewReader(`<root xmlns:a="urn:a"><a:child/></root>`), WithNamespaces())
	if err != nil {
		t.Fatal(err)
	}
	child, ok := doc.Root.Children[0].(*Elem)
	if !ok || child.Name.URI != "urn:a" {
		t.Fatalf("got %#v, want child bound to urn:a", doc.Root.Children[0])
	}
}

func TestParseDocument_WithoutNamespacesLeavesPrefixUnresolved(t *testing.T) {
	doc, err := ParseDocument(strings.NewReader(`<root xmlns:a="urn:a"><a:child/></root>`))
	if err != nil {
		t.Fatal(err)
	}
	child, ok := doc.Root.Children[0].(*Elem)
	if !ok || child.Name.URI != "" || child.Name.Prefix != "a" {
		t.Fatalf("got %#v, want an unresolved prefixed name", doc.Root.Children[0])
	}
}

func TestParseDocument_EntityMaxDepthOption(t *testing.T) {
	xmlData := `<!DOCTYPE root [<!ENTITY a "&b;"><!ENTITY b "&c;"><!ENTITY c "&d;"><!ENTITY d "x">]><root>&a;</root>`
	_, err := ParseDocument(strings.NewReader(xmlData), WithEntityMaxDepth(2))
	xerr, ok := AsXmlCoreError(err)
	if !ok || xerr.WFC != WFCNoRecursion {
		t.Fatalf("got %v, want a WFCNoRecursion error", err)
	}
}

func TestNewPartialParser_SuspendsAndResumes(t *testing.T) {
	p := NewPartialParser(strings.NewReader(`<root>hel`))
	var gotFirstText string
	for {
		ev, err := p.Next()
		if err != nil {
			t.Fatal(err)
		}
		if s, ok := ev.(XmlStringEvent); ok {
			gotFirstText = s.Text
		}
		if _, ok := ev.(ExpectNodesEvent); ok {
			break
		}
	}
	if gotFirstText != "hel" {
		t.Errorf("got %q, want %q before suspension", gotFirstText, "hel")
	}

	p.Feed(strings.NewReader(`lo</root>`))
	p.Finish()
	var gotSecondText string
	for {
		ev, err := p.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if s, ok := ev.(XmlStringEvent); ok {
			gotSecondText = s.Text
		}
	}
	if gotSecondText != "lo" {
		t.Errorf("got %q, want %q after resuming", gotSecondText, "lo")
	}
}

func TestParseParts_SplicesNodesBetweenSources(t *testing.T) {
	doc, err := ParseParts(
		[]io.Reader{strings.NewReader(`<root>hel`), strings.NewReader(`lo</root>`)},
		[]any{[]XmlNode{TextNode{Value: "-mid-"}}},
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Root.Children) != 3 {
		t.Fatalf("got %d children, want 3: %#v", len(doc.Root.Children), doc.Root.Children)
	}
	want := []string{"hel", "-mid-", "lo"}
	for i, w := range want {
		tn, ok := doc.Root.Children[i].(TextNode)
		if !ok || tn.Value != w {
			t.Fatalf("child %d: got %#v, want TextNode{%q}", i, doc.Root.Children[i], w)
		}
	}
}

func TestParseParts_SplicesAttributesAndValues(t *testing.T) {
	doc, err := ParseParts(
		[]io.Reader{strings.NewReader(`<root `), strings.NewReader(` extra="y" b=`), strings.NewReader(`/>`)},
		[]any{
			[]Attr{{Name: QName{Local: "a"}, Value: []XmlTexty{TextChunk{Value: "x"}}}},
			42,
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Root.Attrs) != 3 {
		t.Fatalf("got %d attrs, want 3: %#v", len(doc.Root.Attrs), doc.Root.Attrs)
	}
}

func TestParseParts_NilArgDropsAttribute(t *testing.T) {
	doc, err := ParseParts(
		[]io.Reader{strings.NewReader(`<root b=`), strings.NewReader(`/>`)},
		[]any{nil},
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Root.Attrs) != 0 {
		t.Fatalf("got %d attrs, want 0 (nil argument should drop the attribute): %#v", len(doc.Root.Attrs), doc.Root.Attrs)
	}
}
