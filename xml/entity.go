package xml

import (
	"strconv"
	"strings"
)

// predefinedEntities are the five entities every XML document may use
// without declaring them.
var predefinedEntities = map[string]rune{
	"lt":   '<',
	"gt":   '>',
	"amp":  '&',
	"apos": '\'',
	"quot": '"',
}

// EntityResolver substitutes character and entity references to produce
// plain text, the component the tree builder and facade call once a
// caller opts into reference resolution (spec.md's "Applying the
// reference resolver... produce plain text" is deliberately a separate,
// optional pass rather than something Parser/Next does automatically, so
// that the raw CharRef/EntityRef event/node view stays available too).
type EntityResolver struct {
	general  map[string]string
	maxDepth int
}

// NewEntityResolver builds a resolver over the general entities declared
// in a document's internal subset (see Parser.GeneralEntities).
func NewEntityResolver(general map[string]string) *EntityResolver {
	if general == nil {
		general = map[string]string{}
	}
	return &EntityResolver{general: general, maxDepth: 20}
}

// WithMaxDepth bounds recursive entity expansion (WFCNoRecursion);
// the default is 20.
func (er *EntityResolver) WithMaxDepth(n int) *EntityResolver {
	er.maxDepth = n
	return er
}

// ResolveChunks collapses a sequence of XmlTexty chunks into plain text.
func (er *EntityResolver) ResolveChunks(chunks []XmlTexty, pos Position) (string, error) {
	return er.resolve(chunks, pos, 0, map[string]bool{})
}

// ResolveAttr collapses an attribute's raw value into plain text.
func (er *EntityResolver) ResolveAttr(a Attr) (string, error) {
	return er.ResolveChunks(a.Value, Position{})
}

func (er *EntityResolver) resolve(chunks []XmlTexty, pos Position, depth int, inProgress map[string]bool) (string, error) {
	if depth > er.maxDepth {
		return "", newWFCError(pos, WFCNoRecursion, "entity expansion exceeded the maximum nesting depth")
	}
	var b strings.Builder
	for _, c := range chunks {
		switch v := c.(type) {
		case TextChunk:
			b.WriteString(v.Value)
		case CharRefChunk:
			b.WriteRune(v.Codepoint)
		case EntityRefChunk:
			if rn, ok := predefinedEntities[v.Name]; ok {
				b.WriteRune(rn)
				continue
			}
			raw, ok := er.general[v.Name]
			if !ok {
				return "", newWFCError(pos, WFCEntityDeclared, "reference to undeclared entity: "+v.Name)
			}
			if inProgress[v.Name] {
				return "", newWFCError(pos, WFCNoRecursion, "entity "+v.Name+" refers to itself")
			}
			inProgress[v.Name] = true
			sub, err := er.resolve(tokenizeEntityValue(raw), pos, depth+1, inProgress)
			delete(inProgress, v.Name)
			if err != nil {
				return "", err
			}
			b.WriteString(sub)
		}
	}
	return b.String(), nil
}

// tokenizeEntityValue re-lexes an already-flattened entity replacement
// string (produced by flattenTexty when the declaration was read) back
// into chunks, so nested entity and character references inside it are
// found on every expansion rather than only at declaration time.
func tokenizeEntityValue(s string) []XmlTexty {
	rs := []rune(s)
	var chunks []XmlTexty
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, TextChunk{Value: cur.String()})
			cur.Reset()
		}
	}
	for i := 0; i < len(rs); i++ {
		if rs[i] != '&' {
			cur.WriteRune(rs[i])
			continue
		}
		j := i + 1
		for j < len(rs) && rs[j] != ';' {
			j++
		}
		if j >= len(rs) {
			cur.WriteRune(rs[i])
			continue
		}
		body := string(rs[i+1 : j])
		flush()
		switch {
		case strings.HasPrefix(body, "#x") || strings.HasPrefix(body, "#X"):
			if n, err := strconv.ParseUint(body[2:], 16, 32); err == nil {
				chunks = append(chunks, CharRefChunk{Codepoint: rune(n)})
			}
		case strings.HasPrefix(body, "#"):
			if n, err := strconv.ParseUint(body[1:], 10, 32); err == nil {
				chunks = append(chunks, CharRefChunk{Codepoint: rune(n)})
			}
		default:
			chunks = append(chunks, EntityRefChunk{Name: body})
		}
		i = j
	}
	flush()
	return chunks
}
