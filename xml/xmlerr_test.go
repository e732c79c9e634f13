package xml

import (
	"strings"
	"testing"
)

func TestXmlCoreError_SyntaxPosition(t *testing.T) {
	malformed := `
<root>
	<valid>ok</valid>
	<broken>oops
</root>`

	_, err := ParseDocument(strings.NewReader(malformed))
	if err == nil {
		t.Fatal("expected an error, got nil")
	}

	xerr, ok := AsXmlCoreError(err)
	if !ok {
		t.Fatalf("expected an *XmlCoreError, got %T: %v", err, err)
	}
	if xerr.Kind != KindWFC {
		t.Errorf("expected a WFC violation (mismatched end tag), got kind %v: %v", xerr.Kind, xerr)
	}
	if xerr.Pos.Line <= 0 {
		t.Errorf("expected Pos.Line > 0, got %d", xerr.Pos.Line)
	}
	t.Logf("got expected error: %v", xerr)
}

func TestXmlCoreError_Unwrap(t *testing.T) {
	err := newSyntaxError(Position{Line: 3, Column: 4}, "1", "unexpected end of input")
	if err.Unwrap() != nil {
		t.Errorf("expected a nil wrapped error for a bare syntax error, got %v", err.Unwrap())
	}
	if !strings.Contains(err.Error(), "3:4") {
		t.Errorf("expected the error message to carry its position, got %q", err.Error())
	}
}

func TestXmlCoreError_Kinds(t *testing.T) {
	wfc := newWFCError(Position{}, WFCEntityDeclared, "reference to undeclared entity: foo")
	if !strings.Contains(wfc.Error(), "EntityDeclared") {
		t.Errorf("expected the WFC kind name in the message, got %q", wfc.Error())
	}
	nsc := newNSCError(Position{}, NSCPrefixDeclared, "undeclared namespace prefix: x")
	if !strings.Contains(nsc.Error(), "PrefixDeclared") {
		t.Errorf("expected the NSC kind name in the message, got %q", nsc.Error())
	}
}
