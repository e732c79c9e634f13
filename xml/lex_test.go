package xml

import (
	"strings"
	"testing"
)

func TestReadNCName(t *testing.T) {
	cr := NewCharReader(strings.NewReader("foo-bar.baz2 rest"))
	name, err := readNCName(cr)
	if err != nil {
		t.Fatal(err)
	}
	if name != "foo-bar.baz2" {
		t.Errorf("got %q, want %q", name, "foo-bar.baz2")
	}
}

func TestReadNCName_RejectsColon(t *testing.T) {
	cr := NewCharReader(strings.NewReader("foo:bar"))
	name, err := readNCName(cr)
	if err != nil {
		t.Fatal(err)
	}
	if name != "foo" {
		t.Errorf("got %q, want %q (stop at ':')", name, "foo")
	}
}

func TestReadQName_WithAndWithoutPrefix(t *testing.T) {
	cr := NewCharReader(strings.NewReader("ns:local"))
	q, err := readQName(cr)
	if err != nil {
		t.Fatal(err)
	}
	if q.Prefix != "ns" || q.Local != "local" {
		t.Errorf("got %+v, want {Prefix:ns Local:local}", q)
	}

	cr2 := NewCharReader(strings.NewReader("bare"))
	q2, err := readQName(cr2)
	if err != nil {
		t.Fatal(err)
	}
	if q2.Prefix != "" || q2.Local != "bare" {
		t.Errorf("got %+v, want {Prefix:'' Local:bare}", q2)
	}
}

func TestReadQuoted(t *testing.T) {
	cr := NewCharReader(strings.NewReader(`"hello world"tail`))
	s, delim, err := readQuoted(cr)
	if err != nil {
		t.Fatal(err)
	}
	if s != "hello world" || delim != '"' {
		t.Errorf("got %q/%q, want %q/%q", s, delim, "hello world", '"')
	}
}

func TestReadNumericRef_DecimalAndHex(t *testing.T) {
	cr := NewCharReader(strings.NewReader("65;"))
	r, err := readNumericRef(cr)
	if err != nil || r != 'A' {
		t.Fatalf("decimal ref: got %q, %v; want 'A', nil", r, err)
	}

	cr2 := NewCharReader(strings.NewReader("x41;"))
	r2, err := readNumericRef(cr2)
	if err != nil || r2 != 'A' {
		t.Fatalf("hex ref: got %q, %v; want 'A', nil", r2, err)
	}
}

func TestReadEntityRefName(t *testing.T) {
	cr := NewCharReader(strings.NewReader("amp;rest"))
	name, err := readEntityRefName(cr)
	if err != nil || name != "amp" {
		t.Fatalf("got %q, %v; want 'amp', nil", name, err)
	}
}

func TestSpace1_FailsWithoutWhitespace(t *testing.T) {
	cr := NewCharReader(strings.NewReader("x"))
	if err := space1(cr, "99", "want space"); err == nil {
		t.Error("expected an error when no whitespace is present")
	}
}
