package xml

import "testing"

func TestEntityResolver_Predefined(t *testing.T) {
	er := NewEntityResolver(nil)
	chunks := []XmlTexty{
		TextChunk{Value: "a "},
		EntityRefChunk{Name: "lt"},
		TextChunk{Value: "b"},
		EntityRefChunk{Name: "amp"},
		CharRefChunk{Codepoint: 'c'},
	}
	got, err := er.ResolveChunks(chunks, Position{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "a <b&c" {
		t.Errorf("got %q, want %q", got, "a <b&c")
	}
}

func TestEntityResolver_DeclaredEntity(t *testing.T) {
	er := NewEntityResolver(map[string]string{"foo": "bar & baz"})
	got, err := er.ResolveChunks([]XmlTexty{EntityRefChunk{Name: "foo"}}, Position{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "bar & baz" {
		t.Errorf("got %q, want %q", got, "bar & baz")
	}
}

func TestEntityResolver_NestedEntityExpandsRecursively(t *testing.T) {
	er := NewEntityResolver(map[string]string{
		"outer": "before &inner; after",
		"inner": "X",
	})
	got, err := er.ResolveChunks([]XmlTexty{EntityRefChunk{Name: "outer"}}, Position{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "before X after" {
		t.Errorf("got %q, want %q", got, "before X after")
	}
}

func TestEntityResolver_UndeclaredEntityIsWFCError(t *testing.T) {
	er := NewEntityResolver(nil)
	_, err := er.ResolveChunks([]XmlTexty{EntityRefChunk{Name: "missing"}}, Position{Line: 2, Column: 3})
	xerr, ok := AsXmlCoreError(err)
	if !ok || xerr.Kind != KindWFC || xerr.WFC != WFCEntityDeclared {
		t.Fatalf("got %v, want a WFCEntityDeclared error", err)
	}
}

func TestEntityResolver_SelfReferenceIsNoRecursionError(t *testing.T) {
	er := NewEntityResolver(map[string]string{"loop": "&loop;"})
	_, err := er.ResolveChunks([]XmlTexty{EntityRefChunk{Name: "loop"}}, Position{})
	xerr, ok := AsXmlCoreError(err)
	if !ok || xerr.WFC != WFCNoRecursion {
		t.Fatalf("got %v, want a WFCNoRecursion error", err)
	}
}

func TestEntityResolver_MaxDepthExceeded(t *testing.T) {
	general := map[string]string{
		"a": "&b;",
		"b": "&c;",
		"c": "&d;",
		"d": "&e;",
		"e": "x",
	}
	er := NewEntityResolver(general).WithMaxDepth(3)
	_, err := er.ResolveChunks([]XmlTexty{EntityRefChunk{Name: "a"}}, Position{})
	xerr, ok := AsXmlCoreError(err)
	if !ok || xerr.WFC != WFCNoRecursion {
		t.Fatalf("got %v, want a WFCNoRecursion error from exceeding max depth", err)
	}
}

func TestEntityResolver_ResolveAttr(t *testing.T) {
	er := NewEntityResolver(nil)
	a := Attr{Name: QName{Local: "x"}, Value: []XmlTexty{
		TextChunk{Value: "v="},
		EntityRefChunk{Name: "quot"},
	}}
	got, err := er.ResolveAttr(a)
	if err != nil {
		t.Fatal(err)
	}
	if got != `v="` {
		t.Errorf("got %q, want %q", got, `v="`)
	}
}
