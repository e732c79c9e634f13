package xml

import (
	"strings"
	"testing"
)

func TestBuildTree_NestedElementsAndMixedContent(t *testing.T) {
	doc, err := ParseDocument(strings.NewReader(
		`<?xml version="1.0"?><!-- top --><root><child a="1">text<!--c--><?p b?></child></root><!-- bottom -->`),
		WithoutEntityExpansion())
	if err != nil {
		t.Fatal(err)
	}
	if doc.Decl == nil || doc.Decl.Version != "1.0" {
		t.Fatalf("got Decl %#v", doc.Decl)
	}
	if len(doc.Leading) != 1 {
		t.Fatalf("got %d leading nodes, want 1", len(doc.Leading))
	}
	if _, ok := doc.Leading[0].(CommentNode); !ok {
		t.Errorf("leading[0] = %#v, want a CommentNode", doc.Leading[0])
	}
	if len(doc.Trailing) != 1 {
		t.Fatalf("got %d trailing nodes, want 1", len(doc.Trailing))
	}

	if doc.Root == nil || doc.Root.Name.Local != "root" {
		t.Fatalf("got Root %#v", doc.Root)
	}
	if len(doc.Root.Children) != 1 {
		t.Fatalf("got %d root children, want 1", len(doc.Root.Children))
	}
	child, ok := doc.Root.Children[0].(*Elem)
	if !ok || child.Name.Local != "child" {
		t.Fatalf("got %#v, want a child Elem", doc.Root.Children[0])
	}
	if len(child.Attrs) != 1 || child.Attrs[0].RawString() != "1" {
		t.Errorf("got %#v", child.Attrs)
	}
	if len(child.Children) != 3 {
		t.Fatalf("got %d child nodes, want 3 (text, comment, PI): %#v", len(child.Children), child.Children)
	}
	if tn, ok := child.Children[0].(TextNode); !ok || tn.Value != "text" {
		t.Errorf("child.Children[0] = %#v", child.Children[0])
	}
	if _, ok := child.Children[1].(CommentNode); !ok {
		t.Errorf("child.Children[1] = %#v, want CommentNode", child.Children[1])
	}
	if pn, ok := child.Children[2].(PINode); !ok || pn.Target != "p" {
		t.Errorf("child.Children[2] = %#v", child.Children[2])
	}
}

func TestBuildTree_MismatchedEndTagFailsWFC(t *testing.T) {
	_, err := ParseDocument(strings.NewReader(`<a><b></c></a>`))
	xerr, ok := AsXmlCoreError(err)
	if !ok || xerr.Kind != KindWFC || xerr.WFC != WFCElementTypeMatch {
		t.Fatalf("got %v, want a WFCElementTypeMatch error", err)
	}
}

func TestBuildTree_RejectsSuspensionEvents(t *testing.T) {
	p := NewPartialParser(strings.NewReader(`<root>text`))
	_, err := BuildTree(p)
	if err == nil {
		t.Fatal("expected an error building a tree from a suspended partial parse")
	}
}

func TestResolveEntitiesInTree_MergesAdjacentText(t *testing.T) {
	doc, err := ParseDocument(strings.NewReader(`<root>a&amp;b&#99;d</root>`))
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Root.Children) != 1 {
		t.Fatalf("got %d children, want 1 merged text node: %#v", len(doc.Root.Children), doc.Root.Children)
	}
	tn, ok := doc.Root.Children[0].(TextNode)
	if !ok || tn.Value != "a&bcd" {
		t.Fatalf("got %#v, want TextNode{a&bcd}", doc.Root.Children[0])
	}
}

func TestResolveEntitiesInTree_DeclaredEntityInSubset(t *testing.T) {
	doc, err := ParseDocument(strings.NewReader(
		`<!DOCTYPE root [<!ENTITY greet "hello">]><root>&greet; world</root>`))
	if err != nil {
		t.Fatal(err)
	}
	tn, ok := doc.Root.Children[0].(TextNode)
	if !ok || tn.Value != "hello world" {
		t.Fatalf("got %#v, want TextNode{hello world}", doc.Root.Children[0])
	}
}

func TestParseDocument_WithoutEntityExpansionKeepsRawNodes(t *testing.T) {
	doc, err := ParseDocument(strings.NewReader(`<root>&amp;</root>`), WithoutEntityExpansion())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := doc.Root.Children[0].(EntityRefNode); !ok {
		t.Fatalf("got %#v, want an unresolved EntityRefNode", doc.Root.Children[0])
	}
}
