package xml

import (
	"strings"
	"testing"
)

func readAfterLt(t *testing.T, s string) (MarkupToken, *CharReader) {
	t.Helper()
	cr := NewCharReader(strings.NewReader(s))
	// Consume the leading '<' the way the parser's dispatcher does.
	if _, err := cr.Next(); err != nil {
		t.Fatal(err)
	}
	tok, err := readMarkupToken(cr)
	if err != nil {
		t.Fatal(err)
	}
	return tok, cr
}

func TestReadMarkupToken_StartTag(t *testing.T) {
	tok, _ := readAfterLt(t, "<ns:item>")
	st, ok := tok.(StartToken)
	if !ok {
		t.Fatalf("got %T, want StartToken", tok)
	}
	if st.Name.Prefix != "ns" || st.Name.Local != "item" {
		t.Errorf("got %+v", st.Name)
	}
}

func TestReadMarkupToken_EndTag(t *testing.T) {
	tok, _ := readAfterLt(t, "</root>")
	et, ok := tok.(EndToken)
	if !ok {
		t.Fatalf("got %T, want EndToken", tok)
	}
	if et.Name.Local != "root" {
		t.Errorf("got %+v", et.Name)
	}
}

func TestReadMarkupToken_PI(t *testing.T) {
	tok, _ := readAfterLt(t, "<?xml-stylesheet?>")
	pi, ok := tok.(PIToken)
	if !ok {
		t.Fatalf("got %T, want PIToken", tok)
	}
	if pi.Target != "xml-stylesheet" {
		t.Errorf("got %q", pi.Target)
	}
}

func TestReadMarkupToken_Comment(t *testing.T) {
	tok, _ := readAfterLt(t, "<!-- hello -->")
	c, ok := tok.(CommentToken)
	if !ok {
		t.Fatalf("got %T, want CommentToken", tok)
	}
	if c.Text != " hello " {
		t.Errorf("got %q", c.Text)
	}
}

func TestReadMarkupToken_CommentRejectsDoubleDash(t *testing.T) {
	cr := NewCharReader(strings.NewReader("<!-- a -- b -->"))
	if _, err := cr.Next(); err != nil {
		t.Fatal(err)
	}
	if _, err := readMarkupToken(cr); err == nil {
		t.Error("expected an error for '--' inside a comment")
	}
}

func TestReadMarkupToken_Decl(t *testing.T) {
	tok, _ := readAfterLt(t, "<!ENTITY foo \"bar\">")
	d, ok := tok.(DeclToken)
	if !ok {
		t.Fatalf("got %T, want DeclToken", tok)
	}
	if d.Name != "ENTITY" {
		t.Errorf("got %q", d.Name)
	}
}

func TestReadMarkupToken_Section(t *testing.T) {
	tok, _ := readAfterLt(t, "<![CDATA[hi]]>")
	s, ok := tok.(SectionToken)
	if !ok {
		t.Fatalf("got %T, want SectionToken", tok)
	}
	if s.Name != "CDATA" {
		t.Errorf("got %q", s.Name)
	}
}
